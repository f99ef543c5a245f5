package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/mediagate/internal/config"
	"github.com/ppiankov/mediagate/internal/pathguard"
	"github.com/ppiankov/mediagate/internal/remote"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, API access and local directories",
	RunE:  runDoctor,
}

type checkResult struct {
	label  string
	ok     bool
	detail string
	fix    string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	var checks []checkResult

	cfg, err := loadConfig()
	if err != nil {
		checks = append(checks, checkResult{label: "config", detail: err.Error(), fix: "mediagate init"})
		return printChecks(checks)
	}
	checks = append(checks, configFileCheck())

	if cfg.API.Key == "" {
		checks = append(checks, checkResult{
			label:  "API key",
			detail: "not set",
			fix:    "export " + config.EnvPrefix + "_API_KEY=<key>",
		})
	} else {
		checks = append(checks, checkResult{label: "API key", ok: true, detail: "set"})
	}

	checks = append(checks, apiCheck(cfg))
	checks = append(checks, dirChecks(cfg)...)
	checks = append(checks, galleryCheck(cfg.Paths.GalleryLog))

	return printChecks(checks)
}

func configFileCheck() checkResult {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return checkResult{label: "config file", detail: err.Error()}
		}
		path = p
	}
	if _, err := os.Stat(path); err != nil {
		// Defaults and environment are enough to run.
		return checkResult{label: "config file", ok: true, detail: "none (using defaults)"}
	}
	return checkResult{label: "config file", ok: true, detail: path}
}

func apiCheck(cfg config.Config) checkResult {
	c := checkResult{label: "API reachable"}
	api, err := remote.New(cfg.API.BaseURL,
		remote.WithAPIKey(cfg.API.KeyHeader, cfg.API.Key),
		remote.WithTimeout(10*time.Second),
	)
	if err != nil {
		c.detail = err.Error()
		c.fix = "check api.base_url"
		return c
	}
	resp, err := api.Balance(context.Background())
	switch {
	case err != nil:
		c.detail = err.Error()
	case !resp.OK:
		c.detail = remote.APIError(resp).Error()
		c.fix = "check the API key"
	default:
		c.ok = true
		c.detail = cfg.API.BaseURL
	}
	return c
}

func dirChecks(cfg config.Config) []checkResult {
	var out []checkResult
	for _, d := range pathguard.Standard(cfg.Paths.Scratch, cfg.Paths.Workspace, cfg.Paths.Media) {
		label := "dir " + d.Label
		info, err := os.Stat(d.Path)
		switch {
		case err != nil:
			out = append(out, checkResult{label: label, detail: d.Path + " missing", fix: "mkdir -p " + d.Path})
		case !info.IsDir():
			out = append(out, checkResult{label: label, detail: d.Path + " is not a directory"})
		default:
			out = append(out, checkResult{label: label, ok: true, detail: d.Path})
		}
	}
	return out
}

func galleryCheck(path string) checkResult {
	c := checkResult{label: "gallery log"}
	if path == "" {
		c.ok = true
		c.detail = "disabled"
		return c
	}
	dir := filepath.Dir(path)
	probe, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		c.detail = dir + " not writable"
		c.fix = "mediagate init"
		return c
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())
	c.ok = true
	c.detail = path
	return c
}

func printChecks(checks []checkResult) error {
	hasFailures := false
	for _, c := range checks {
		mark := "\u2713" // ✓
		if !c.ok {
			mark = "\u2717" // ✗
			hasFailures = true
		}
		line := fmt.Sprintf("%s %-24s %s", mark, c.label+":", c.detail)
		if !c.ok && c.fix != "" {
			line += fmt.Sprintf("  ->  %s", c.fix)
		}
		fmt.Println(line)
	}

	if hasFailures {
		fmt.Println()
		fmt.Println("Some checks failed. Run the suggested commands to fix.")
		return fmt.Errorf("doctor found issues")
	}

	fmt.Println()
	fmt.Println("All checks passed.")
	return nil
}
