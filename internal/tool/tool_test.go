package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/mediagate/internal/asset"
	"github.com/ppiankov/mediagate/internal/filehost"
	"github.com/ppiankov/mediagate/internal/gallery"
	"github.com/ppiankov/mediagate/internal/pathguard"
	"github.com/ppiankov/mediagate/internal/remote"
	"github.com/ppiankov/mediagate/internal/sanitize"
)

type fixture struct {
	tool      *Tool
	srv       *httptest.Server
	mux       *http.ServeMux
	scratch   string
	workspace string
	outside   string
	calls     atomic.Int32
}

func realDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func newFixture(t *testing.T, opts ...func(*Deps)) *fixture {
	t.Helper()
	f := &fixture{
		mux:       http.NewServeMux(),
		scratch:   realDir(t),
		workspace: realDir(t),
		outside:   realDir(t),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v1/") {
			f.calls.Add(1)
		}
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.srv.Close)

	api, err := remote.New(f.srv.URL,
		remote.WithAPIKey("X-API-Key", "test-key"),
		remote.WithTimeout(2*time.Second),
		remote.WithGenerateTimeout(2*time.Second),
	)
	require.NoError(t, err)

	guard, err := pathguard.New(pathguard.Standard(f.scratch, f.workspace, nil))
	require.NoError(t, err)

	log, err := gallery.Open(filepath.Join(f.workspace, "gallery.jsonl"))
	require.NoError(t, err)

	deps := Deps{
		API:            api,
		Guard:          guard,
		Downloader:     asset.NewDownloader(f.scratch, 1<<20, 5*time.Second, asset.WithPathCheck(guard.ResolveForWrite)),
		Gallery:        log,
		Thumbnails:     true,
		ThumbnailOpts:  asset.ThumbnailOptions{MaxWidth: 32, MaxHeight: 32},
		MaxUploadBytes: 1 << 20,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	f.tool = New(deps)
	t.Cleanup(func() { _ = f.tool.Close() })
	return f
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for x := 0; x < 64; x++ {
		for y := 0; y < 64; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: 80, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprint(w, body)
}

func (f *fixture) serveImage(t *testing.T, path string) {
	data := pngBytes(t)
	f.mux.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	})
}

func (f *fixture) completedJob(jobID, assetPath string) string {
	return fmt.Sprintf(`{"job_id":%q,"status":"completed","assets":[{"id":"a1","url":%q,"content_type":"image/png"}]}`,
		jobID, f.srv.URL+assetPath)
}

func TestGenerateSavesAssetThumbnailAndGallery(t *testing.T) {
	f := newFixture(t)
	f.serveImage(t, "/files/a1.png")
	f.mux.HandleFunc("POST /v1/generate", func(w http.ResponseWriter, r *http.Request) {
		var req remote.GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a red fox", req.Prompt)
		assert.Equal(t, "image", req.Kind)
		writeJSON(w, 200, f.completedJob("j1", "/files/a1.png"))
	})

	res := f.tool.Invoke(context.Background(), Params{Action: "generate", Prompt: "a red fox"})
	require.False(t, res.IsError, res.Text)
	assert.NotEmpty(t, res.InvocationID)

	saved := filepath.Join(f.scratch, "j1.png")
	assert.FileExists(t, saved)
	assert.FileExists(t, filepath.Join(f.scratch, "j1_thumb.jpg"))
	assert.Contains(t, res.Text, "Saved: "+saved)
	require.Len(t, res.Media, 1)
	assert.Equal(t, "image/jpeg", res.Media[0].MIMEType)

	entries, err := gallery.ReadAll(filepath.Join(f.workspace, "gallery.jsonl"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "generate", entries[0].Action)
	assert.Equal(t, "j1", entries[0].JobID)
	assert.Equal(t, saved, entries[0].Path)
	assert.Equal(t, res.InvocationID, entries[0].InvocationID)
}

func TestGenerateToOutputPath(t *testing.T) {
	f := newFixture(t)
	f.serveImage(t, "/files/a1.png")
	f.mux.HandleFunc("POST /v1/generate", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, f.completedJob("j2", "/files/a1.png"))
	})

	dest := filepath.Join(f.workspace, "fox")
	res := f.tool.Invoke(context.Background(), Params{Action: "generate", Prompt: "fox", OutputPath: dest})
	require.False(t, res.IsError, res.Text)
	assert.FileExists(t, dest+".png")
}

func TestLocalValidationRunsBeforeNetwork(t *testing.T) {
	f := newFixture(t)
	outsideFile := filepath.Join(f.outside, "secret.txt")
	require.NoError(t, os.WriteFile(outsideFile, []byte("x"), 0o600))

	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{"missing prompt", Params{Action: "generate"}, "prompt is required"},
		{"bad kind", Params{Action: "generate", Prompt: "p", Kind: "audio"}, "kind must be"},
		{"output outside", Params{Action: "generate", Prompt: "p", OutputPath: filepath.Join(f.outside, "x.png")}, "path not allowed"},
		{"rehost disabled", Params{Action: "generate", Prompt: "p", Rehost: true}, "re-hosting is disabled"},
		{"missing job id", Params{Action: "job_status"}, "job_id is required"},
		{"invalid job id", Params{Action: "job_status", JobID: "../../etc"}, "invalid identifier"},
		{"missing asset id", Params{Action: "download"}, "asset_id is required"},
		{"upload outside", Params{Action: "upload", Path: outsideFile}, "path not allowed"},
		{"upload traversal", Params{Action: "upload", Path: f.workspace + "/../" + filepath.Base(f.outside) + "/secret.txt"}, "path not allowed"},
		{"rehost tool disabled", Params{Action: "rehost", Path: outsideFile}, "re-hosting is disabled"},
		{"post without text", Params{Action: "post"}, "text is required"},
		{"negative limit", Params{Action: "list_jobs", Limit: -1}, "limit must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.tool.Invoke(context.Background(), tt.params)
			assert.True(t, res.IsError)
			assert.Contains(t, res.Text, tt.want)
		})
	}
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestRejectionNeverEchoesPath(t *testing.T) {
	f := newFixture(t)
	res := f.tool.Invoke(context.Background(), Params{Action: "upload", Path: "/etc/passwd"})
	assert.True(t, res.IsError)
	assert.NotContains(t, res.Text, "/etc/passwd")
}

func TestUnknownAction(t *testing.T) {
	f := newFixture(t)
	res := f.tool.Invoke(context.Background(), Params{Action: "explode"})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, `unknown action "explode"`)
	assert.Contains(t, res.Text, "generate_async")
	assert.NotEmpty(t, res.InvocationID)
}

func TestGenerationErrorsAreSanitized(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   sanitize.Category
	}{
		{"nsfw 400", 400, `{"detail":"NSFW content detected by worker-7 at 10.0.0.3"}`, sanitize.ContentPolicy},
		{"rate limited", 429, `{"error":"Too Many Requests"}`, sanitize.RateLimited},
		{"balance", 402, `{"error":"insufficient token balance: 3 left"}`, sanitize.InsufficientBalance},
		{"internal", 500, `{"trace":"panic at gpu.go:42"}`, sanitize.Generic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.mux.HandleFunc("POST /v1/generate", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			res := f.tool.Invoke(context.Background(), Params{Action: "generate", Prompt: "p"})
			assert.True(t, res.IsError)
			assert.Equal(t, sanitize.Message(tt.want), res.Text)
		})
	}
}

func TestFailedJobIsSanitized(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("GET /v1/jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "j9", r.PathValue("id"))
		writeJSON(w, 200, `{"job_id":"j9","status":"failed","error":"upstream rate limit on pod gpu-3"}`)
	})

	res := f.tool.Invoke(context.Background(), Params{Action: "job_status", JobID: "j9"})
	assert.True(t, res.IsError)
	assert.Equal(t, sanitize.Message(sanitize.RateLimited), res.Text)
	assert.NotContains(t, res.Text, "gpu-3")
}

func TestJobStatusPendingAndDownload(t *testing.T) {
	f := newFixture(t)
	f.serveImage(t, "/files/a1.png")
	var completed atomic.Bool
	f.mux.HandleFunc("GET /v1/jobs/{id}", func(w http.ResponseWriter, _ *http.Request) {
		if !completed.Load() {
			writeJSON(w, 200, `{"job_id":"j3","status":"running"}`)
			return
		}
		writeJSON(w, 200, f.completedJob("j3", "/files/a1.png"))
	})

	res := f.tool.Invoke(context.Background(), Params{Action: "job_status", JobID: "j3"})
	require.False(t, res.IsError, res.Text)
	assert.Equal(t, "Job j3 is running.", res.Text)

	completed.Store(true)
	res = f.tool.Invoke(context.Background(), Params{Action: "job_status", JobID: "j3"})
	require.False(t, res.IsError, res.Text)
	assert.Contains(t, res.Text, "download=true")
	assert.NoFileExists(t, filepath.Join(f.scratch, "j3.png"))

	res = f.tool.Invoke(context.Background(), Params{Action: "job_status", JobID: "j3", Download: true})
	require.False(t, res.IsError, res.Text)
	assert.FileExists(t, filepath.Join(f.scratch, "j3.png"))
}

func TestGenerateAsyncReturnsJobID(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("POST /v1/jobs", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 202, `{"job_id":"j4","status":"queued"}`)
	})
	res := f.tool.Invoke(context.Background(), Params{Action: "generate_async", Prompt: "p", Kind: "video"})
	require.False(t, res.IsError, res.Text)
	assert.Contains(t, res.Text, "Submitted video job j4")
}

func TestGenerateTimeoutReportsElapsed(t *testing.T) {
	f := newFixture(t)
	api, err := remote.New(f.srv.URL, remote.WithGenerateTimeout(50*time.Millisecond))
	require.NoError(t, err)
	f.tool.deps.API = api
	f.mux.HandleFunc("POST /v1/generate", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	res := f.tool.Invoke(context.Background(), Params{Action: "generate", Prompt: "p"})
	assert.True(t, res.IsError)
	assert.True(t, strings.HasPrefix(res.Text, "Request timed out after "), res.Text)
	assert.True(t, strings.HasSuffix(res.Text, "."), res.Text)
}

func TestDownloadTooLarge(t *testing.T) {
	f := newFixture(t, func(d *Deps) {
		d.Downloader = asset.NewDownloader(d.Downloader.Dir(), 16, time.Second)
	})
	f.serveImage(t, "/files/big.png")
	f.mux.HandleFunc("GET /v1/assets/{id}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, fmt.Sprintf(`{"id":"big","url":%q}`, f.srv.URL+"/files/big.png"))
	})

	res := f.tool.Invoke(context.Background(), Params{Action: "download", AssetID: "big"})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "exceeds the 16 B limit")
	assert.NoFileExists(t, filepath.Join(f.scratch, "big.png"))
}

func TestUploadInsideAllowlist(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(f.workspace, "cat.png")
	require.NoError(t, os.WriteFile(src, pngBytes(t), 0o600))
	f.mux.HandleFunc("POST /v1/assets", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "cat.png", body["filename"])
		assert.Equal(t, "image/png", body["content_type"])
		writeJSON(w, 201, `{"asset_id":"up1","url":"https://cdn.test/up1.png"}`)
	})

	res := f.tool.Invoke(context.Background(), Params{Action: "upload", Path: src})
	require.False(t, res.IsError, res.Text)
	assert.Contains(t, res.Text, "as asset up1")
}

func TestUploadRejectsOversizeAndDirectories(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.MaxUploadBytes = 4 })
	src := filepath.Join(f.workspace, "big.bin")
	require.NoError(t, os.WriteFile(src, []byte("0123456789"), 0o600))

	res := f.tool.Invoke(context.Background(), Params{Action: "upload", Path: src})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "upload limit")

	res = f.tool.Invoke(context.Background(), Params{Action: "upload", Path: f.workspace})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "not a regular file")
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestAdminErrorsAreVerbatim(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("GET /v1/account/balance", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 402, `{"error":"account suspended"}`)
	})
	res := f.tool.Invoke(context.Background(), Params{Action: "balance"})
	assert.True(t, res.IsError)
	assert.Equal(t, `API error (HTTP 402): {"error":"account suspended"}`, res.Text)
}

func TestTransportFailureReportsTimeoutMessage(t *testing.T) {
	for _, p := range []Params{
		{Action: "pods"},
		{Action: "balance"},
		{Action: "generate", Prompt: "p"},
		{Action: "job_status", JobID: "j1"},
	} {
		t.Run(p.Action, func(t *testing.T) {
			f := newFixture(t)
			f.srv.Close()
			res := f.tool.Invoke(context.Background(), p)
			assert.True(t, res.IsError)
			assert.True(t, strings.HasPrefix(res.Text, "Request timed out after "), res.Text)
			assert.True(t, strings.HasSuffix(res.Text, "."), res.Text)
		})
	}
}

func TestAdminSuccessRendersJSON(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("GET /v1/account/transactions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		writeJSON(w, 200, `[{"id":"t1","amount":-3}]`)
	})
	f.mux.HandleFunc("POST /v1/social/posts", func(w http.ResponseWriter, r *http.Request) {
		var post remote.SocialPost
		require.NoError(t, json.NewDecoder(r.Body).Decode(&post))
		assert.Equal(t, "hello", post.Text)
		writeJSON(w, 200, `{"post_id":"p1"}`)
	})

	res := f.tool.Invoke(context.Background(), Params{Action: "transactions", Limit: 5})
	require.False(t, res.IsError, res.Text)
	assert.True(t, strings.HasPrefix(res.Text, "Transactions:\n"))
	assert.Contains(t, res.Text, `"id": "t1"`)

	res = f.tool.Invoke(context.Background(), Params{Action: "post", Text: "hello"})
	require.False(t, res.IsError, res.Text)
	assert.Contains(t, res.Text, `"post_id": "p1"`)
}

func TestRehostPublishesFile(t *testing.T) {
	hostSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "fileupload", r.FormValue("reqtype"))
		_, _ = fmt.Fprint(w, "https://files.test/abc.png")
	}))
	t.Cleanup(hostSrv.Close)

	f := newFixture(t, func(d *Deps) {
		d.FileHost = filehost.New(hostSrv.URL, 1<<20, hostSrv.Client())
	})
	src := filepath.Join(f.scratch, "cat.png")
	require.NoError(t, os.WriteFile(src, pngBytes(t), 0o600))

	res := f.tool.Invoke(context.Background(), Params{Action: "rehost", Path: src})
	require.False(t, res.IsError, res.Text)
	assert.Equal(t, "Public URL: https://files.test/abc.png", res.Text)
}

func TestActionsSorted(t *testing.T) {
	f := newFixture(t)
	actions := f.tool.Actions()
	assert.Len(t, actions, 12)
	assert.Equal(t, "balance", actions[0])
	assert.Equal(t, "upload", actions[len(actions)-1])
}

func (f *fixture) twoAssetJob(jobID string) string {
	return fmt.Sprintf(`{"job_id":%q,"status":"completed","prompt":"two foxes","assets":[`+
		`{"id":"a1","url":%q,"content_type":"image/png"},`+
		`{"id":"a2","url":%q,"content_type":"image/png"}]}`,
		jobID, f.srv.URL+"/files/a1.png", f.srv.URL+"/files/a2.png")
}

func TestMultiAssetNaming(t *testing.T) {
	tests := []struct {
		name   string
		params func(f *fixture) Params
		want   func(f *fixture) []string
	}{
		{
			name:   "generate into scratch",
			params: func(*fixture) Params { return Params{Action: "generate", Prompt: "two foxes"} },
			want: func(f *fixture) []string {
				return []string{filepath.Join(f.scratch, "j5-1.png"), filepath.Join(f.scratch, "j5-2.png")}
			},
		},
		{
			name: "generate to output path",
			params: func(f *fixture) Params {
				return Params{Action: "generate", Prompt: "two foxes", OutputPath: filepath.Join(f.workspace, "fox.png")}
			},
			want: func(f *fixture) []string {
				return []string{filepath.Join(f.workspace, "fox.png"), filepath.Join(f.workspace, "fox-2.png")}
			},
		},
		{
			name: "job status to output path",
			params: func(f *fixture) Params {
				return Params{Action: "job_status", JobID: "j5", OutputPath: filepath.Join(f.workspace, "pair")}
			},
			want: func(f *fixture) []string {
				return []string{filepath.Join(f.workspace, "pair.png"), filepath.Join(f.workspace, "pair-2.png")}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.serveImage(t, "/files/a1.png")
			f.serveImage(t, "/files/a2.png")
			f.mux.HandleFunc("POST /v1/generate", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, 200, f.twoAssetJob("j5"))
			})
			f.mux.HandleFunc("GET /v1/jobs/{id}", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, 200, f.twoAssetJob("j5"))
			})

			p := tt.params(f)
			res := f.tool.Invoke(context.Background(), p)
			require.False(t, res.IsError, res.Text)

			want := tt.want(f)
			for _, path := range want {
				assert.FileExists(t, path)
				assert.Contains(t, res.Text, "Saved: "+path)
			}
			assert.Len(t, res.Media, 2)

			entries, err := gallery.ReadAll(filepath.Join(f.workspace, "gallery.jsonl"))
			require.NoError(t, err)
			require.Len(t, entries, 2)
			for i, e := range entries {
				assert.Equal(t, want[i], e.Path)
				assert.Equal(t, "j5", e.JobID)
				assert.Equal(t, p.Action, e.Action)
			}
			assert.Equal(t, "a1", entries[0].AssetID)
			assert.Equal(t, "a2", entries[1].AssetID)
		})
	}
}

func TestThumbnailLinkOutsideAllowlistIsNotFollowed(t *testing.T) {
	f := newFixture(t)
	f.serveImage(t, "/files/a1.png")
	f.mux.HandleFunc("POST /v1/generate", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, f.completedJob("j6", "/files/a1.png"))
	})

	victim := filepath.Join(f.outside, "victim.txt")
	require.NoError(t, os.WriteFile(victim, []byte("keep"), 0o600))
	require.NoError(t, os.Symlink(victim, filepath.Join(f.workspace, "fox_thumb.jpg")))

	res := f.tool.Invoke(context.Background(), Params{
		Action:     "generate",
		Prompt:     "fox",
		OutputPath: filepath.Join(f.workspace, "fox.png"),
	})
	require.False(t, res.IsError, res.Text)
	assert.FileExists(t, filepath.Join(f.workspace, "fox.png"))
	assert.Empty(t, res.Media)

	got, err := os.ReadFile(victim)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(got))
}

func TestSiblingLinkOutsideAllowlistIsRejected(t *testing.T) {
	f := newFixture(t)
	f.serveImage(t, "/files/a1.png")
	f.serveImage(t, "/files/a2.png")
	f.mux.HandleFunc("POST /v1/generate", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, f.twoAssetJob("j7"))
	})

	victim := filepath.Join(f.outside, "victim.png")
	require.NoError(t, os.WriteFile(victim, []byte("keep"), 0o600))
	require.NoError(t, os.Symlink(victim, filepath.Join(f.workspace, "fox-2.png")))

	res := f.tool.Invoke(context.Background(), Params{
		Action:     "generate",
		Prompt:     "fox",
		OutputPath: filepath.Join(f.workspace, "fox.png"),
	})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "path not allowed")

	got, err := os.ReadFile(victim)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(got))
}

func TestAppendedExtensionIsChecked(t *testing.T) {
	f := newFixture(t)
	f.serveImage(t, "/files/a1.png")
	f.mux.HandleFunc("POST /v1/generate", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, f.completedJob("j8", "/files/a1.png"))
	})

	victim := filepath.Join(f.outside, "victim.png")
	require.NoError(t, os.WriteFile(victim, []byte("keep"), 0o600))
	require.NoError(t, os.Symlink(victim, filepath.Join(f.workspace, "cover.png")))

	res := f.tool.Invoke(context.Background(), Params{
		Action:     "generate",
		Prompt:     "fox",
		OutputPath: filepath.Join(f.workspace, "cover"),
	})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "path not allowed")

	got, err := os.ReadFile(victim)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(got))
}

func TestOutputPathDirectoryRejected(t *testing.T) {
	f := newFixture(t)
	sub := filepath.Join(f.workspace, "sub")
	require.NoError(t, os.Mkdir(sub, 0o700))

	res := f.tool.Invoke(context.Background(), Params{Action: "generate", Prompt: "p", OutputPath: sub})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "path not allowed")
	assert.Equal(t, int32(0), f.calls.Load())
}
