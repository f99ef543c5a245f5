package pathguard

import "path/filepath"

// Standard builds the usual allowed set: the scratch area, the workspace and
// each user media folder, labeled by its base name.
func Standard(scratch, workspace string, media []string) []Dir {
	dirs := []Dir{
		{Label: "scratch directory", Path: scratch},
		{Label: "workspace", Path: workspace},
	}
	for _, m := range media {
		if m == "" {
			continue
		}
		dirs = append(dirs, Dir{Label: filepath.Base(m), Path: m})
	}
	return dirs
}
