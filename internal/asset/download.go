// Package asset downloads generated media into a local directory with a
// hard size bound, and derives thumbnails for images.
package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const defaultTimeout = 2 * time.Minute

// TooLargeError reports an asset over the configured size bound.
type TooLargeError struct {
	Limit int64
	// Size is the declared or transferred size; with Partial set it is a lower bound.
	Size    int64
	Partial bool
}

func (e *TooLargeError) Error() string {
	if e.Partial {
		return fmt.Sprintf("asset exceeds the %s limit", humanize.IBytes(uint64(e.Limit)))
	}
	return fmt.Sprintf("asset is %s, exceeds the %s limit",
		humanize.IBytes(uint64(e.Size)), humanize.IBytes(uint64(e.Limit)))
}

// IsTooLarge reports whether err is a size-limit violation.
func IsTooLarge(err error) bool {
	var tl *TooLargeError
	return errors.As(err, &tl)
}

// Result describes a saved asset.
type Result struct {
	Path        string
	ContentType string
	Bytes       int64
}

// Downloader saves remote assets under a fixed directory.
type Downloader struct {
	dir      string
	maxBytes int64
	client   *http.Client
	check    func(path string) (string, error)
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithHTTPClient replaces the HTTP client used for downloads.
func WithHTTPClient(hc *http.Client) Option {
	return func(d *Downloader) {
		if hc != nil {
			d.client = hc
		}
	}
}

// WithPathCheck validates every final destination, including names derived
// from the response content type, before anything is written. check returns
// the path to write, or an error to abort the download.
func WithPathCheck(check func(path string) (string, error)) Option {
	return func(d *Downloader) { d.check = check }
}

// NewDownloader returns a Downloader writing into dir with the given bound.
func NewDownloader(dir string, maxBytes int64, timeout time.Duration, opts ...Option) *Downloader {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	d := &Downloader{
		dir:      dir,
		maxBytes: maxBytes,
		client:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dir returns the download directory.
func (d *Downloader) Dir() string { return d.dir }

// MaxBytes returns the size bound.
func (d *Downloader) MaxBytes() int64 { return d.maxBytes }

// Fetch downloads assetURL into the download directory as name plus an
// extension inferred from the response Content-Type.
func (d *Downloader) Fetch(ctx context.Context, assetURL, name string) (*Result, error) {
	base := SafeName(name)
	if base == "" {
		return nil, errors.New("asset: empty file name")
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return nil, fmt.Errorf("asset: create download dir: %w", err)
	}
	return d.fetch(ctx, assetURL, func(contentType string) string {
		return filepath.Join(d.dir, base+ExtensionFor(contentType))
	})
}

// FetchTo downloads assetURL to dest, which the caller has already validated.
// An extension is appended when dest has none.
func (d *Downloader) FetchTo(ctx context.Context, assetURL, dest string) (*Result, error) {
	return d.fetch(ctx, assetURL, func(contentType string) string {
		if filepath.Ext(dest) == "" {
			return dest + ExtensionFor(contentType)
		}
		return dest
	})
}

func (d *Downloader) fetch(ctx context.Context, assetURL string, target func(contentType string) string) (*Result, error) {
	u, err := url.Parse(assetURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.New("asset: download url must be http or https")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("asset: build request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("asset: download: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("asset: download returned HTTP %d", resp.StatusCode)
	}
	if d.maxBytes > 0 && resp.ContentLength > d.maxBytes {
		return nil, &TooLargeError{Limit: d.maxBytes, Size: resp.ContentLength}
	}

	contentType := resp.Header.Get("Content-Type")
	dest := target(contentType)
	if d.check != nil {
		if dest, err = d.check(dest); err != nil {
			return nil, err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return nil, fmt.Errorf("asset: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	var src io.Reader = resp.Body
	if d.maxBytes > 0 {
		src = io.LimitReader(resp.Body, d.maxBytes+1)
	}
	n, err := io.Copy(tmp, src)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("asset: write: %w", err)
	}
	if d.maxBytes > 0 && n > d.maxBytes {
		cleanup()
		return nil, &TooLargeError{Limit: d.maxBytes, Size: n, Partial: true}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return nil, fmt.Errorf("asset: close: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return nil, fmt.Errorf("asset: save: %w", err)
	}

	return &Result{Path: dest, ContentType: MediaType(contentType), Bytes: n}, nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeName reduces an untrusted identifier to a single safe path element.
func SafeName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		return ""
	}
	return base
}
