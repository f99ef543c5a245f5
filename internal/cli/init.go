package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/mediagate/internal/config"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file and create the working directories",
	Long: `Creates the config file (default $XDG_CONFIG_HOME/mediagate/config.yaml)
with every setting at its default, then creates the scratch and workspace
directories. The API key is left blank; set MEDIAGATE_API_KEY or edit the file.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("cannot determine home directory: %w", err)
	}

	path := configPath
	if path == "" {
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}

	defaults := config.Default(home)
	content, err := config.RenderYAML(defaults)
	if err != nil {
		return err
	}

	var created []string
	if wrote, err := writeIfMissing(path, content); err != nil {
		return err
	} else if wrote {
		created = append(created, path)
	}

	for _, dir := range []string{defaults.Paths.Scratch, defaults.Paths.Workspace} {
		if _, err := os.Stat(dir); err == nil {
			continue
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
		created = append(created, dir)
	}

	fmt.Println("mediagate init complete.")
	fmt.Println()
	if len(created) > 0 {
		fmt.Println("Created:")
		for _, p := range created {
			fmt.Printf("  %s\n", p)
		}
		fmt.Println()
	} else {
		fmt.Println("All files already exist (use --force to overwrite).")
		fmt.Println()
	}

	fmt.Println("Next:")
	fmt.Println("  export MEDIAGATE_API_KEY=<your key>")
	fmt.Println("  mediagate doctor")
	return nil
}

// writeIfMissing writes content to path if it doesn't exist or --force is set.
// Returns true if the file was written.
func writeIfMissing(path, content string) (bool, error) {
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
