package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/dshield/internal/config"
	"github.com/theirongolddev/dshield/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// setupValues holds the editable form fields as strings where huh needs them.
type setupValues struct {
	theme       string
	trials      string
	seed        string
	varFraction string
	includeDebt bool
	useCache    bool
	logLevel    string
}

func valuesFromConfig(cfg config.Config) setupValues {
	return setupValues{
		theme:       cfg.Appearance.Theme,
		trials:      strconv.Itoa(cfg.Simulation.Trials),
		seed:        strconv.FormatUint(cfg.Simulation.Seed, 10),
		varFraction: strconv.FormatFloat(cfg.Simulation.VarianceFraction, 'f', -1, 64),
		includeDebt: cfg.Simulation.ExpensesIncludeDebt,
		useCache:    cfg.General.UseCache,
		logLevel:    cfg.General.LogLevel,
	}
}

// apply copies parsed form values onto cfg.
func (v setupValues) apply(cfg config.Config) (config.Config, error) {
	trials, err := strconv.Atoi(strings.TrimSpace(v.trials))
	if err != nil {
		return cfg, fmt.Errorf("trials: %w", err)
	}
	seed, err := strconv.ParseUint(strings.TrimSpace(v.seed), 10, 64)
	if err != nil {
		return cfg, fmt.Errorf("seed: %w", err)
	}
	frac, err := strconv.ParseFloat(strings.TrimSpace(v.varFraction), 64)
	if err != nil {
		return cfg, fmt.Errorf("variance fraction: %w", err)
	}

	cfg.Appearance.Theme = v.theme
	cfg.Simulation.Trials = trials
	cfg.Simulation.Seed = seed
	cfg.Simulation.VarianceFraction = frac
	cfg.Simulation.ExpensesIncludeDebt = v.includeDebt
	cfg.General.UseCache = v.useCache
	cfg.General.LogLevel = v.logLevel
	return cfg, cfg.Validate()
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("enter a positive whole number")
	}
	return nil
}

func nonNegativeFloat(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return errors.New("enter a number of zero or more")
	}
	return nil
}

func unsigned(s string) error {
	if _, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64); err != nil {
		return errors.New("enter a whole number of zero or more")
	}
	return nil
}

func newSetupForm(vals *setupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Trials per score").
				Description("More trials shrink the standard error; 200,000 gives about ±0.05%.").
				Value(&vals.trials).
				Validate(positiveInt),
			huh.NewInput().
				Title("Random seed").
				Value(&vals.seed).
				Validate(unsigned),
			huh.NewInput().
				Title("Assumed volatility").
				Description("Standard deviation as a fraction of the mean, used when a profile has no variance.").
				Value(&vals.varFraction).
				Validate(nonNegativeFloat),
			huh.NewConfirm().
				Title("Profile expenses already include debt payments?").
				Affirmative("Yes").
				Negative("No").
				Value(&vals.includeDebt),
		).Title("Simulation"),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.theme),
			huh.NewConfirm().
				Title("Cache results between runs?").
				Value(&vals.useCache),
			huh.NewSelect[string]().
				Title("Log level").
				Options(
					huh.NewOption("warn", "warn"),
					huh.NewOption("info", "info"),
					huh.NewOption("debug", "debug"),
					huh.NewOption("error", "error"),
				).
				Value(&vals.logLevel),
		).Title("General"),
	).WithTheme(huh.ThemeBase())
}

// RunSetup shows the settings form seeded from cfg and returns the edited
// configuration. It returns huh.ErrUserAborted if the user cancels.
func RunSetup(cfg config.Config) (config.Config, error) {
	vals := valuesFromConfig(cfg)
	if err := newSetupForm(&vals).Run(); err != nil {
		return cfg, err
	}
	return vals.apply(cfg)
}
