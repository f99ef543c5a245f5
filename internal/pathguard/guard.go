// Package pathguard confines local file reads and writes to a fixed set of
// allowed directories. Candidate paths are resolved through symlinks before
// comparison, so a link inside an allowed directory that points elsewhere is
// rejected.
package pathguard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotAllowed is matched by every rejection returned from a Guard.
var ErrNotAllowed = errors.New("path not allowed")

// Dir is one allowed directory and the category name shown to users.
type Dir struct {
	Label string
	Path  string
}

// RejectedError carries the fixed explanatory message for a rejected path.
// It never includes the candidate path.
type RejectedError struct {
	msg string
}

func (e *RejectedError) Error() string { return e.msg }

// Is reports ErrNotAllowed so callers can use errors.Is.
func (e *RejectedError) Is(target error) bool { return target == ErrNotAllowed }

// Guard holds the canonical allowed-directory set. It is immutable after New.
type Guard struct {
	dirs   []Dir
	home   string
	reject *RejectedError
}

// Option configures a Guard.
type Option func(*Guard)

// WithHomeDir sets the directory used to expand a leading "~".
func WithHomeDir(home string) Option {
	return func(g *Guard) { g.home = home }
}

// New canonicalizes dirs and returns a Guard. Directories that do not exist
// yet are kept in cleaned absolute form. Empty paths are skipped.
func New(dirs []Dir, opts ...Option) (*Guard, error) {
	g := &Guard{}
	for _, opt := range opts {
		opt(g)
	}
	if g.home == "" {
		g.home, _ = os.UserHomeDir()
	}

	seen := make(map[string]bool)
	for _, d := range dirs {
		if strings.TrimSpace(d.Path) == "" {
			continue
		}
		canon, err := canonicalDir(g.expandHome(d.Path))
		if err != nil {
			return nil, fmt.Errorf("pathguard: allowed dir %q: %w", d.Label, err)
		}
		if seen[canon] {
			continue
		}
		seen[canon] = true
		g.dirs = append(g.dirs, Dir{Label: d.Label, Path: canon})
	}
	if len(g.dirs) == 0 {
		return nil, errors.New("pathguard: no allowed directories configured")
	}
	g.reject = &RejectedError{msg: rejectMessage(g.dirs)}
	return g, nil
}

// Dirs returns a copy of the canonical allowed directories.
func (g *Guard) Dirs() []Dir {
	out := make([]Dir, len(g.dirs))
	copy(out, g.dirs)
	return out
}

// Resolve returns the canonical real path of candidate if it lies inside an
// allowed directory. Any resolution failure is a rejection.
func (g *Guard) Resolve(candidate string) (string, error) {
	if strings.TrimSpace(candidate) == "" || strings.ContainsRune(candidate, 0) {
		return "", g.reject
	}
	abs, err := filepath.Abs(g.expandHome(candidate))
	if err != nil {
		return "", g.reject
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", g.reject
	}
	if !g.contains(resolved) {
		return "", g.reject
	}
	return resolved, nil
}

// ResolveForWrite validates a destination that may not exist yet. The parent
// directory must resolve inside an allowed directory; the final element is
// joined onto the resolved parent. An existing destination is resolved again
// so a pre-planted symlink cannot redirect the write, and must not be a
// directory.
func (g *Guard) ResolveForWrite(candidate string) (string, error) {
	if strings.TrimSpace(candidate) == "" || strings.ContainsRune(candidate, 0) {
		return "", g.reject
	}
	abs, err := filepath.Abs(g.expandHome(candidate))
	if err != nil {
		return "", g.reject
	}
	base := filepath.Base(abs)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", g.reject
	}
	parent, err := g.Resolve(filepath.Dir(abs))
	if err != nil {
		return "", err
	}
	target := filepath.Join(parent, base)
	if _, err := os.Lstat(target); err == nil {
		resolved, err := g.Resolve(target)
		if err != nil {
			return "", err
		}
		if info, err := os.Stat(resolved); err != nil || info.IsDir() {
			return "", g.reject
		}
		return resolved, nil
	}
	return target, nil
}

// contains reports whether resolved equals or descends from an allowed directory.
func (g *Guard) contains(resolved string) bool {
	for _, d := range g.dirs {
		if resolved == d.Path || strings.HasPrefix(resolved, withSeparator(d.Path)) {
			return true
		}
	}
	return false
}

func (g *Guard) expandHome(p string) string {
	if g.home == "" {
		return p
	}
	if p == "~" {
		return g.home
	}
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		return filepath.Join(g.home, p[2:])
	}
	return p
}

func canonicalDir(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return filepath.Clean(abs), nil
}

// withSeparator appends a trailing separator unless dir is the root.
func withSeparator(dir string) string {
	if strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir
	}
	return dir + string(filepath.Separator)
}

func rejectMessage(dirs []Dir) string {
	var labels []string
	seen := make(map[string]bool)
	for _, d := range dirs {
		if d.Label == "" || seen[d.Label] {
			continue
		}
		seen[d.Label] = true
		labels = append(labels, d.Label)
	}
	if len(labels) == 0 {
		return "path not allowed: files must be inside an allowed directory"
	}
	return "path not allowed: files must be inside one of: " + strings.Join(labels, ", ")
}
