package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/mediagate/internal/tool"
)

var (
	runParams tool.Params
	runSeed   int64
	runJSON   bool
)

func init() {
	f := runCmd.Flags()
	f.StringVar(&runParams.Prompt, "prompt", "", "Generation prompt")
	f.StringVar(&runParams.Kind, "kind", "", "Media kind: image or video")
	f.StringVar(&runParams.Model, "model", "", "Model name")
	f.StringVar(&runParams.NegativePrompt, "negative-prompt", "", "Negative prompt")
	f.IntVar(&runParams.Width, "width", 0, "Width in pixels")
	f.IntVar(&runParams.Height, "height", 0, "Height in pixels")
	f.IntVar(&runParams.DurationSeconds, "duration", 0, "Video duration in seconds")
	f.Int64Var(&runSeed, "seed", 0, "Random seed")
	f.StringVar(&runParams.JobID, "job-id", "", "Job identifier")
	f.StringVar(&runParams.AssetID, "asset-id", "", "Asset identifier")
	f.BoolVar(&runParams.Download, "download", false, "Save a completed job's assets (job_status)")
	f.StringVar(&runParams.Path, "path", "", "Local file path (upload, rehost)")
	f.StringVar(&runParams.OutputPath, "output", "", "Destination path inside an allowed directory")
	f.StringVar(&runParams.Status, "status", "", "Job status filter (list_jobs)")
	f.IntVar(&runParams.Limit, "limit", 0, "Maximum number of items")
	f.BoolVar(&runParams.Rehost, "rehost", false, "Publish saved files on the public file host")
	f.StringVar(&runParams.Platform, "platform", "", "Social platform (post)")
	f.StringVar(&runParams.Text, "text", "", "Post text (post)")
	f.StringVar(&runParams.MediaURL, "media-url", "", "Media URL to attach (post)")
	f.BoolVar(&runJSON, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run <action>",
	Short: "Invoke one tool action from the command line",
	Long: `Runs a single action exactly as an agent would through MCP.

Examples:
  mediagate run generate --prompt "a red fox in snow"
  mediagate run job_status --job-id j_123 --download
  mediagate run balance`,
	Args: cobra.ExactArgs(1),
	RunE: runAction,
}

type runOutput struct {
	InvocationID string `json:"invocation_id"`
	IsError      bool   `json:"is_error"`
	Text         string `json:"text"`
	Data         any    `json:"data,omitempty"`
}

func runAction(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	t, err := tool.Build(cfg)
	if err != nil {
		return fmt.Errorf("failed to build tool: %w", err)
	}
	defer func() { _ = t.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	params := runParams
	params.Action = args[0]
	if cmd.Flags().Changed("seed") {
		seed := runSeed
		params.Seed = &seed
	}

	res := t.Invoke(ctx, params)

	out := cmd.OutOrStdout()
	if runJSON {
		data, err := json.MarshalIndent(runOutput{
			InvocationID: res.InvocationID,
			IsError:      res.IsError,
			Text:         res.Text,
			Data:         res.Data,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	} else if !res.IsError {
		fmt.Fprintln(out, res.Text)
	}

	if res.IsError {
		if runJSON {
			return errors.New("action failed")
		}
		return errors.New(res.Text)
	}
	return nil
}
