// Package cmd implements the dshield CLI commands.
package cmd

import (
	"fmt"

	"github.com/theirongolddev/dshield/internal/config"
	"github.com/theirongolddev/dshield/internal/pipeline"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appConfig

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Log level:  %s\n", cfg.General.LogLevel)
	fmt.Printf("    Use cache:  %v\n", cfg.General.UseCache)
	fmt.Printf("    Cache file: %s\n", pipeline.CachePath())
	fmt.Println()

	fmt.Println("  [Simulation]")
	fmt.Printf("    Trials:                %d\n", cfg.Simulation.Trials)
	fmt.Printf("    Seed:                  %d\n", cfg.Simulation.Seed)
	if cfg.Simulation.Workers > 0 {
		fmt.Printf("    Workers:               %d\n", cfg.Simulation.Workers)
	} else {
		fmt.Println("    Workers:               all CPUs")
	}
	fmt.Printf("    Variance fraction:     %.2f\n", cfg.Simulation.VarianceFraction)
	fmt.Printf("    Expenses include debt: %v\n", cfg.Simulation.ExpensesIncludeDebt)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `dshield setup` to reconfigure.")
	return nil
}
