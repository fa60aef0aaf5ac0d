package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/dshield/internal/config"
	"github.com/theirongolddev/dshield/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive settings editor",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Edit what is on disk, not the flag-adjusted view.
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	updated, err := tui.RunSetup(cfg)
	if errors.Is(err, huh.ErrUserAborted) {
		fmt.Println("  Setup cancelled, nothing saved.")
		return nil
	}
	if err != nil {
		return err
	}

	if err := config.Save(updated); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\n  Saved to %s\n", config.Path())
	fmt.Println("  Run `dshield config` to review.")
	return nil
}
