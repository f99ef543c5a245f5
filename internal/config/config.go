// Package config holds the immutable process configuration. It is loaded once
// at startup and passed by value into every component.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the full mediagate configuration.
type Config struct {
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Paths     PathsConfig     `mapstructure:"paths"     yaml:"paths"`
	Download  DownloadConfig  `mapstructure:"download"  yaml:"download"`
	Thumbnail ThumbnailConfig `mapstructure:"thumbnail" yaml:"thumbnail"`
	FileHost  FileHostConfig  `mapstructure:"filehost"  yaml:"filehost"`
	Log       LogConfig       `mapstructure:"log"       yaml:"log"`
}

// APIConfig describes the remote generation API.
type APIConfig struct {
	BaseURL         string        `mapstructure:"base_url"         yaml:"base_url"`
	Key             string        `mapstructure:"key"              yaml:"key"`
	KeyHeader       string        `mapstructure:"key_header"       yaml:"key_header"`
	Timeout         time.Duration `mapstructure:"timeout"          yaml:"timeout"`
	GenerateTimeout time.Duration `mapstructure:"generate_timeout" yaml:"generate_timeout"`
	PricingTTL      time.Duration `mapstructure:"pricing_ttl"      yaml:"pricing_ttl"`
}

// PathsConfig lists local directories. Scratch, Workspace and Media form the
// allowed-directory set.
type PathsConfig struct {
	Scratch    string   `mapstructure:"scratch"     yaml:"scratch"`
	Workspace  string   `mapstructure:"workspace"   yaml:"workspace"`
	Media      []string `mapstructure:"media"       yaml:"media"`
	GalleryLog string   `mapstructure:"gallery_log" yaml:"gallery_log"`
}

// DownloadConfig bounds asset downloads.
type DownloadConfig struct {
	MaxBytes int64         `mapstructure:"max_bytes" yaml:"max_bytes"`
	Timeout  time.Duration `mapstructure:"timeout"   yaml:"timeout"`
}

// ThumbnailConfig controls local thumbnail generation for images.
type ThumbnailConfig struct {
	Enabled   bool `mapstructure:"enabled"    yaml:"enabled"`
	MaxWidth  int  `mapstructure:"max_width"  yaml:"max_width"`
	MaxHeight int  `mapstructure:"max_height" yaml:"max_height"`
	Quality   int  `mapstructure:"quality"    yaml:"quality"`
}

// FileHostConfig configures the optional public re-hosting service.
type FileHostConfig struct {
	Enabled  bool   `mapstructure:"enabled"   yaml:"enabled"`
	Endpoint string `mapstructure:"endpoint"  yaml:"endpoint"`
	MaxBytes int64  `mapstructure:"max_bytes" yaml:"max_bytes"`
}

// LogConfig selects log level and format.
type LogConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

const (
	DefaultBaseURL   = "https://api.mediagate.dev"
	DefaultKeyHeader = "X-API-Key"
	DefaultFileHost  = "https://catbox.moe/user/api.php"
)

// Default returns the built-in configuration rooted at home.
func Default(home string) Config {
	workspace := filepath.Join(home, "mediagate")
	return Config{
		API: APIConfig{
			BaseURL:         DefaultBaseURL,
			KeyHeader:       DefaultKeyHeader,
			Timeout:         30 * time.Second,
			GenerateTimeout: 10 * time.Minute,
			PricingTTL:      5 * time.Minute,
		},
		Paths: PathsConfig{
			Scratch:   filepath.Join(os.TempDir(), "mediagate"),
			Workspace: workspace,
			Media: []string{
				filepath.Join(home, "Pictures"),
				filepath.Join(home, "Videos"),
				filepath.Join(home, "Downloads"),
				filepath.Join(home, "Desktop"),
			},
			GalleryLog: filepath.Join(workspace, "gallery.jsonl"),
		},
		Download: DownloadConfig{
			MaxBytes: 100 << 20,
			Timeout:  2 * time.Minute,
		},
		Thumbnail: ThumbnailConfig{
			Enabled:   true,
			MaxWidth:  512,
			MaxHeight: 512,
			Quality:   80,
		},
		FileHost: FileHostConfig{
			Endpoint: DefaultFileHost,
			MaxBytes: 200 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.API.BaseURL) == "" {
		errs = append(errs, errors.New("api.base_url is required"))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("api.timeout must be positive"))
	}
	if c.API.GenerateTimeout <= 0 {
		errs = append(errs, errors.New("api.generate_timeout must be positive"))
	}
	if c.Download.MaxBytes <= 0 {
		errs = append(errs, errors.New("download.max_bytes must be positive"))
	}
	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download.timeout must be positive"))
	}
	if strings.TrimSpace(c.Paths.Scratch) == "" || strings.TrimSpace(c.Paths.Workspace) == "" {
		errs = append(errs, errors.New("paths.scratch and paths.workspace are required"))
	}
	if c.FileHost.Enabled && strings.TrimSpace(c.FileHost.Endpoint) == "" {
		errs = append(errs, errors.New("filehost.endpoint is required when filehost is enabled"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Dir returns the mediagate config directory.
// Uses XDG_CONFIG_HOME/mediagate, defaulting to ~/.config/mediagate.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "mediagate"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}
