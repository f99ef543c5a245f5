package asset

import (
	"mime"
	"strings"
)

var preferredExt = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/jpg":       ".jpg",
	"image/webp":      ".webp",
	"image/gif":       ".gif",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/quicktime": ".mov",
}

// MediaType strips parameters and lower-cases a Content-Type value.
func MediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}
	return strings.ToLower(mt)
}

// ExtensionFor infers a file extension from a Content-Type value.
func ExtensionFor(contentType string) string {
	mt := MediaType(contentType)
	if ext, ok := preferredExt[mt]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(mt); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

// IsImage reports whether contentType names an image.
func IsImage(contentType string) bool {
	return strings.HasPrefix(MediaType(contentType), "image/")
}

// IsVideo reports whether contentType names a video.
func IsVideo(contentType string) bool {
	return strings.HasPrefix(MediaType(contentType), "video/")
}
