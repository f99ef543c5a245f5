package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/mediagate/internal/logging"
	mgmcp "github.com/ppiankov/mediagate/internal/mcp"
	"github.com/ppiankov/mediagate/internal/tool"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long: "Runs mediagate as an MCP (Model Context Protocol) server over stdio.\n" +
		"Exposes one tool, \"mediagate\", whose action parameter selects the operation.",
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	t, err := tool.Build(cfg)
	if err != nil {
		return fmt.Errorf("failed to build tool: %w", err)
	}
	srv := mgmcp.New(mgmcp.Config{Version: version}, t)
	defer func() { _ = srv.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().With(
		logging.Str("api", cfg.API.BaseURL),
		logging.Str("scratch", cfg.Paths.Scratch),
		logging.Str("workspace", cfg.Paths.Workspace),
	).Msg("mediagate MCP server running on stdio")

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	logging.Info().Msg("MCP server stopped")
	return nil
}
