package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MEDIAGATE_API_KEY.
const EnvPrefix = "MEDIAGATE"

// Load layers defaults, the YAML file at path and MEDIAGATE_* environment
// variables. An empty path means the default location, which may be absent.
func Load(path, home string) (Config, error) {
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("config: resolve home directory: %w", err)
		}
		home = h
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default(home))

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, fmt.Errorf("config: resolve default path: %w", err)
		}
		path = p
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
		if explicit || !missing {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.expandPaths(home)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.key", d.API.Key)
	v.SetDefault("api.key_header", d.API.KeyHeader)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("api.generate_timeout", d.API.GenerateTimeout)
	v.SetDefault("api.pricing_ttl", d.API.PricingTTL)

	v.SetDefault("paths.scratch", d.Paths.Scratch)
	v.SetDefault("paths.workspace", d.Paths.Workspace)
	v.SetDefault("paths.media", d.Paths.Media)
	v.SetDefault("paths.gallery_log", d.Paths.GalleryLog)

	v.SetDefault("download.max_bytes", d.Download.MaxBytes)
	v.SetDefault("download.timeout", d.Download.Timeout)

	v.SetDefault("thumbnail.enabled", d.Thumbnail.Enabled)
	v.SetDefault("thumbnail.max_width", d.Thumbnail.MaxWidth)
	v.SetDefault("thumbnail.max_height", d.Thumbnail.MaxHeight)
	v.SetDefault("thumbnail.quality", d.Thumbnail.Quality)

	v.SetDefault("filehost.enabled", d.FileHost.Enabled)
	v.SetDefault("filehost.endpoint", d.FileHost.Endpoint)
	v.SetDefault("filehost.max_bytes", d.FileHost.MaxBytes)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

func (c *Config) expandPaths(home string) {
	c.Paths.Scratch = expandHome(c.Paths.Scratch, home)
	c.Paths.Workspace = expandHome(c.Paths.Workspace, home)
	c.Paths.GalleryLog = expandHome(c.Paths.GalleryLog, home)
	for i, m := range c.Paths.Media {
		c.Paths.Media[i] = expandHome(strings.TrimSpace(m), home)
	}
}

func expandHome(p, home string) string {
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(home, p[2:])
	}
	return p
}
