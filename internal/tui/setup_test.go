package tui

import (
	"testing"

	"github.com/theirongolddev/dshield/internal/config"
)

func TestSetupValuesRoundTrip(t *testing.T) {
	cfg := config.DefaultConfig()
	vals := valuesFromConfig(cfg)

	got, err := vals.apply(cfg)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got != cfg {
		t.Fatalf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestSetupValuesApplyEdits(t *testing.T) {
	vals := valuesFromConfig(config.DefaultConfig())
	vals.trials = " 50000 "
	vals.seed = "7"
	vals.varFraction = "0.3"
	vals.theme = "tokyo-night"
	vals.includeDebt = false

	cfg, err := vals.apply(config.DefaultConfig())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.Simulation.Trials != 50000 || cfg.Simulation.Seed != 7 || cfg.Simulation.VarianceFraction != 0.3 {
		t.Errorf("simulation = %+v", cfg.Simulation)
	}
	if cfg.Appearance.Theme != "tokyo-night" || cfg.Simulation.ExpensesIncludeDebt {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestSetupValuesRejectBadInput(t *testing.T) {
	vals := valuesFromConfig(config.DefaultConfig())
	vals.trials = "many"
	if _, err := vals.apply(config.DefaultConfig()); err == nil {
		t.Fatal("apply accepted non-numeric trials")
	}

	if positiveInt("0") == nil || positiveInt("12") != nil {
		t.Error("positiveInt wrong")
	}
	if nonNegativeFloat("-0.1") == nil || nonNegativeFloat("0.2") != nil {
		t.Error("nonNegativeFloat wrong")
	}
	if unsigned("-1") == nil || unsigned("42") != nil {
		t.Error("unsigned wrong")
	}
}
