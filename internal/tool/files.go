package tool

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ppiankov/mediagate/internal/logging"
	"github.com/ppiankov/mediagate/internal/remote"
)

// upload sends a local file inside the allowlist to the remote asset store.
func (t *Tool) upload(ctx context.Context, c *call) Result {
	if strings.TrimSpace(c.Path) == "" {
		return failureText("path is required")
	}
	path, err := t.deps.Guard.Resolve(c.Path)
	if err != nil {
		return failureText(err.Error())
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return failureText("path is not a regular file")
	}
	if t.deps.MaxUploadBytes > 0 && info.Size() > t.deps.MaxUploadBytes {
		return failure("file is %s, exceeds the %s upload limit",
			humanize.IBytes(uint64(info.Size())), humanize.IBytes(uint64(t.deps.MaxUploadBytes)))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logging.Warn().With(logging.InvocationID(c.id), logging.Path(path), logging.Err(err)).Msg("upload read failed")
		return failureText("could not read the file")
	}

	resp, err := t.deps.API.UploadAsset(ctx, filepath.Base(path), contentTypeOf(path, data), data)
	if err != nil || !resp.OK {
		return adminFailure(c, resp, err)
	}

	var up remote.UploadedAsset
	if err := resp.Decode(&up); err != nil || up.ID == "" {
		return jsonResult("Uploaded", resp.Body)
	}
	text := fmt.Sprintf("Uploaded %s as asset %s.", filepath.Base(path), up.ID)
	if up.URL != "" {
		text += "\nURL: " + up.URL
	}
	return Result{Text: text, Data: up}
}

// rehost publishes a local file on the public file host.
func (t *Tool) rehost(ctx context.Context, c *call) Result {
	if t.deps.FileHost == nil {
		return failureText("re-hosting is disabled; set filehost.enabled in the config")
	}
	if strings.TrimSpace(c.Path) == "" {
		return failureText("path is required")
	}
	path, err := t.deps.Guard.Resolve(c.Path)
	if err != nil {
		return failureText(err.Error())
	}

	url, err := t.deps.FileHost.Upload(ctx, path)
	if err != nil {
		logging.Warn().With(logging.InvocationID(c.id), logging.Path(path), logging.Err(err)).Msg("rehost failed")
		return failure("Re-hosting failed: %v", err)
	}
	return Result{
		Text: "Public URL: " + url,
		Data: map[string]string{"path": path, "public_url": url},
	}
}

func contentTypeOf(path string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
