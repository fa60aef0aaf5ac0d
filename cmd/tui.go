package cmd

import (
	"fmt"
	"io"

	"github.com/theirongolddev/dshield/internal/profile"
	"github.com/theirongolddev/dshield/internal/tui"
	"github.com/theirongolddev/dshield/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui profile.toml",
	Short: "Interactive what-if dashboard",
	Args:  cobra.ExactArgs(1),
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, args []string) error {
	p, err := loadProfile(args[0])
	if err != nil {
		return err
	}

	opts := pipelineOptions()
	in, err := profile.Inputs(p, opts.Conversion)
	if err != nil {
		return err
	}

	theme.SetActive(appConfig.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	// The alt screen owns the terminal while the dashboard runs.
	logger.SetOutput(io.Discard)

	app := tui.NewApp(p.Name, in, p.DebtLines(), opts)
	prog := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
