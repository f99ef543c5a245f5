package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/mediagate/internal/gallery"
)

var (
	galleryLast   int
	galleryFollow bool
	galleryJSON   bool
)

func init() {
	galleryCmd.Flags().IntVarP(&galleryLast, "last", "n", 20, "Number of recent entries to show (0 for all)")
	galleryCmd.Flags().BoolVarP(&galleryFollow, "follow", "f", false, "Keep printing entries as they are recorded")
	galleryCmd.Flags().BoolVar(&galleryJSON, "json", false, "Print raw JSON lines")
	rootCmd.AddCommand(galleryCmd)
}

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Show saved assets from the gallery log",
	RunE:  runGallery,
}

func runGallery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := cfg.Paths.GalleryLog
	if path == "" {
		return fmt.Errorf("gallery log is disabled (paths.gallery_log is empty)")
	}

	entries, err := gallery.Tail(path, galleryLast)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, e := range entries {
		printEntry(out, e)
	}
	if !galleryFollow {
		if len(entries) == 0 {
			fmt.Fprintln(os.Stderr, "No gallery entries yet.")
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = gallery.Follow(ctx, path, func(e gallery.Entry) { printEntry(out, e) })
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func printEntry(w io.Writer, e gallery.Entry) {
	if galleryJSON {
		data, _ := json.Marshal(e)
		fmt.Fprintln(w, string(data))
		return
	}
	line := fmt.Sprintf("%s  %-14s %s", e.Timestamp, e.Action, e.Path)
	if e.URL != "" {
		line += "  " + e.URL
	}
	fmt.Fprintln(w, line)
}
