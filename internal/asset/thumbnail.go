package asset

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// ThumbnailOptions bound the thumbnail size and JPEG quality.
type ThumbnailOptions struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

func (o ThumbnailOptions) withDefaults() ThumbnailOptions {
	if o.MaxWidth <= 0 {
		o.MaxWidth = 512
	}
	if o.MaxHeight <= 0 {
		o.MaxHeight = 512
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = 80
	}
	return o
}

// ThumbnailPath returns where the thumbnail for src is written.
func ThumbnailPath(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + "_thumb.jpg"
}

// Thumbnail writes a JPEG of src fitted inside the configured bounds to dst,
// which the caller has already validated, and returns its bytes. Smaller
// images are not enlarged. The file is written to a temp name and renamed, so
// an existing link at dst is replaced rather than followed.
func Thumbnail(src, dst string, opts ThumbnailOptions) ([]byte, error) {
	opts = opts.withDefaults()

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("asset: decode image: %w", err)
	}
	thumb := imaging.Fit(img, opts.MaxWidth, opts.MaxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(opts.Quality)); err != nil {
		return nil, fmt.Errorf("asset: encode thumbnail: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".thumb-*")
	if err != nil {
		return nil, fmt.Errorf("asset: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return nil, fmt.Errorf("asset: write thumbnail: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return nil, fmt.Errorf("asset: close thumbnail: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return nil, fmt.Errorf("asset: save thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
