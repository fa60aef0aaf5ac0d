package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/dshield/internal/cli"
	"github.com/theirongolddev/dshield/internal/config"
	"github.com/theirongolddev/dshield/internal/pipeline"
	"github.com/theirongolddev/dshield/internal/profile"
	"github.com/theirongolddev/dshield/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagTrials   int
	flagSeed     uint64
	flagWorkers  int
	flagNoCache  bool
	flagQuiet    bool
	flagLogLevel string
)

// Set by the persistent pre-run hook.
var (
	appConfig config.Config
	logger    = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "dshield [profile.toml]",
	Short: "Debt Shield risk scoring",
	Long: "Estimate the probability of missing a debt payment within 12 months\n" +
		"by Monte Carlo simulation, and turn it into a 0-100 Shield Score.",
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: loadSettings,
	RunE:              runScore,
	SilenceUsage:      true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&flagTrials, "trials", "n", 0, "Monte Carlo trials (default from config)")
	rootCmd.PersistentFlags().Uint64Var(&flagSeed, "seed", 0, "Random seed (default from config)")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "Worker goroutines, 0 = all CPUs (default from config)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the SQLite result cache")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
}

// loadSettings loads configuration, applies flag overrides and configures logging.
func loadSettings(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("trials") {
		cfg.Simulation.Trials = flagTrials
	}
	if flags.Changed("seed") {
		cfg.Simulation.Seed = flagSeed
	}
	if flags.Changed("workers") {
		cfg.Simulation.Workers = flagWorkers
	}
	if flags.Changed("log-level") {
		cfg.General.LogLevel = flagLogLevel
	}
	if flagNoCache {
		cfg.General.UseCache = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logrus.ParseLevel(cfg.General.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(level)

	appConfig = cfg
	return nil
}

func pipelineOptions() pipeline.Options {
	sim := appConfig.Simulation
	return pipeline.Options{
		Conversion: profile.ConversionOptions{
			Trials:              sim.Trials,
			Seed:                sim.Seed,
			VarianceFraction:    sim.VarianceFraction,
			ExpensesIncludeDebt: sim.ExpensesIncludeDebt,
		},
		Workers: sim.Workers,
		Logger:  logger,
	}
}

// scoreProfile is the shared scoring path used by all commands.
// Uses the SQLite cache when enabled so repeated runs are instant.
func scoreProfile(p profile.Profile) (*pipeline.RunResult, error) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scoring %s (%s trials)...\n",
			p.Name, cli.FormatNumber(int64(appConfig.Simulation.Trials)))
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  Simulating %s", cli.RenderProgressBar(current, total, 30))
	}
	done := func(r *pipeline.RunResult) {
		if flagQuiet {
			return
		}
		if r.Report.CacheHit {
			fmt.Fprintf(os.Stderr, "\r  Loaded from cache (run %s)%s\n", shortID(r.Report.RunID), clearTail)
			return
		}
		fmt.Fprintf(os.Stderr, "\r  Simulated in %s%s\n", cli.FormatElapsed(r.Report.Elapsed), clearTail)
	}

	opts := pipelineOptions()

	if appConfig.General.UseCache {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			logger.WithError(err).Warn("cache unavailable, scoring without it")
		} else {
			defer cache.Close()

			r, err := pipeline.RunWithCache(p, opts, cache, progressFn)
			if err != nil {
				return nil, err
			}
			done(r)
			return r, nil
		}
	}

	r, err := pipeline.Run(p, opts, progressFn)
	if err != nil {
		return nil, err
	}
	done(r)
	return r, nil
}

const clearTail = "                              "

func loadProfile(path string) (profile.Profile, error) {
	p, err := profile.Load(path)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
