package tool

import (
	"fmt"
	"os"

	"github.com/ppiankov/mediagate/internal/asset"
	"github.com/ppiankov/mediagate/internal/config"
	"github.com/ppiankov/mediagate/internal/filehost"
	"github.com/ppiankov/mediagate/internal/gallery"
	"github.com/ppiankov/mediagate/internal/pathguard"
	"github.com/ppiankov/mediagate/internal/remote"
)

// Build wires a Tool from cfg. The scratch and workspace directories are
// created if missing.
func Build(cfg config.Config, opts ...remote.Option) (*Tool, error) {
	for _, dir := range []string{cfg.Paths.Scratch, cfg.Paths.Workspace} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	guard, err := pathguard.New(pathguard.Standard(cfg.Paths.Scratch, cfg.Paths.Workspace, cfg.Paths.Media))
	if err != nil {
		return nil, err
	}

	clientOpts := []remote.Option{
		remote.WithAPIKey(cfg.API.KeyHeader, cfg.API.Key),
		remote.WithTimeout(cfg.API.Timeout),
		remote.WithGenerateTimeout(cfg.API.GenerateTimeout),
		remote.WithPricingTTL(cfg.API.PricingTTL),
	}
	api, err := remote.New(cfg.API.BaseURL, append(clientOpts, opts...)...)
	if err != nil {
		return nil, err
	}

	deps := Deps{
		API:        api,
		Guard:      guard,
		Downloader: asset.NewDownloader(cfg.Paths.Scratch, cfg.Download.MaxBytes, cfg.Download.Timeout,
			asset.WithPathCheck(guard.ResolveForWrite)),
		Thumbnails: cfg.Thumbnail.Enabled,
		ThumbnailOpts: asset.ThumbnailOptions{
			MaxWidth:  cfg.Thumbnail.MaxWidth,
			MaxHeight: cfg.Thumbnail.MaxHeight,
			Quality:   cfg.Thumbnail.Quality,
		},
		MaxUploadBytes: cfg.Download.MaxBytes,
	}

	if cfg.Paths.GalleryLog != "" {
		deps.Gallery, err = gallery.Open(cfg.Paths.GalleryLog)
		if err != nil {
			return nil, fmt.Errorf("open gallery log: %w", err)
		}
	}
	if cfg.FileHost.Enabled {
		deps.FileHost = filehost.New(cfg.FileHost.Endpoint, cfg.FileHost.MaxBytes, nil)
	}
	return New(deps), nil
}
