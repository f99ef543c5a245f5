package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolate points every location mediagate reads at a fresh temp tree.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, ".config"))
	t.Setenv("TMPDIR", filepath.Join(tmpDir, "tmp"))
	configPath = ""
	logLevel = ""
	logFormat = ""
	return tmpDir
}

func TestRunInit_WritesConfig(t *testing.T) {
	tmpDir := isolate(t)
	initForce = false

	if err := runInit(nil, nil); err != nil {
		t.Fatalf("runInit failed: %v", err)
	}

	path := filepath.Join(tmpDir, ".config", "mediagate", "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config.yaml not created: %v", err)
	}
	if !strings.Contains(string(data), "base_url:") {
		t.Error("config.yaml missing api.base_url")
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "mediagate")); err != nil {
		t.Error("workspace directory not created")
	}
}

func TestRunInit_NoOverwriteWithoutForce(t *testing.T) {
	tmpDir := isolate(t)
	path := filepath.Join(tmpDir, ".config", "mediagate", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("# custom\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	initForce = false
	if err := runInit(nil, nil); err != nil {
		t.Fatalf("runInit failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "# custom\n" {
		t.Error("existing config was overwritten without --force")
	}

	initForce = true
	defer func() { initForce = false }()
	if err := runInit(nil, nil); err != nil {
		t.Fatalf("runInit --force failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) == "# custom\n" {
		t.Error("--force did not overwrite config")
	}
}

func TestRunCommand_Balance(t *testing.T) {
	tmpDir := isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/account/balance" || r.Header.Get("X-API-Key") != "k1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tokens":7}`))
	}))
	defer srv.Close()

	t.Setenv("MEDIAGATE_API_BASE_URL", srv.URL)
	t.Setenv("MEDIAGATE_API_KEY", "k1")
	t.Setenv("MEDIAGATE_PATHS_SCRATCH", filepath.Join(tmpDir, "scratch"))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"run", "balance"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("run balance failed: %v", err)
	}
	if !strings.Contains(out.String(), `"tokens": 7`) {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRunCommand_ErrorResultFails(t *testing.T) {
	isolate(t)
	t.Setenv("MEDIAGATE_API_BASE_URL", "http://127.0.0.1:1")

	rootCmd.SetArgs([]string{"run", "generate"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "prompt is required") {
		t.Fatalf("expected prompt error, got %v", err)
	}
}
