// Package filehost re-hosts a local file on a public pastebin-style host
// and returns its public URL.
package filehost

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	requestTimeout = 5 * time.Minute
	maxReplyBytes  = 4 << 10
)

// UploadError reports a host reply that did not contain a public URL.
type UploadError struct {
	Status int
	Reply  string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("file host rejected upload: HTTP %d: %s", e.Status, e.Reply)
}

// ErrTooLarge is returned before upload for files over the host limit.
var ErrTooLarge = errors.New("file exceeds host upload limit")

// Client uploads files with a multipart form.
type Client struct {
	endpoint   string
	maxBytes   int64
	httpClient *http.Client
}

// New returns a Client for endpoint. maxBytes <= 0 disables the local check.
func New(endpoint string, maxBytes int64, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: requestTimeout}
	}
	return &Client{endpoint: endpoint, maxBytes: maxBytes, httpClient: hc}
}

// Upload sends the file at path, which the caller has already validated.
func (c *Client) Upload(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("filehost: stat: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", errors.New("filehost: not a regular file")
	}
	if c.maxBytes > 0 && info.Size() > c.maxBytes {
		return "", fmt.Errorf("filehost: %w (%s > %s)", ErrTooLarge,
			humanize.IBytes(uint64(info.Size())), humanize.IBytes(uint64(c.maxBytes)))
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("filehost: open: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("reqtype", "fileupload"); err != nil {
		return "", fmt.Errorf("filehost: build form: %w", err)
	}
	part, err := form.CreateFormFile("fileToUpload", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("filehost: build form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("filehost: read file: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("filehost: build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("filehost: create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("filehost: upload: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	reply, _ := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	text := strings.TrimSpace(string(reply))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !strings.HasPrefix(text, "http") {
		return "", &UploadError{Status: resp.StatusCode, Reply: text}
	}
	return text, nil
}
