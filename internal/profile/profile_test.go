package profile

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/dshield/internal/engine"

	"github.com/shopspring/decimal"
)

const sampleProfile = `
name = "alex"
current_savings = 1200.50
average_income = 5000
average_expenses = 4000
correlation = 0.3

[[debts]]
category = "auto"
label = "Car loan"
total_amount = 10000
monthly_payment = 300
apr = 6
months_remaining = 36

[[debts]]
category = "credit_card"
label = "Visa"
total_amount = 2500
monthly_payment = 200
apr = 24
`

func mustParse(t *testing.T, body string) Profile {
	t.Helper()
	p, err := Parse([]byte(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return p
}

func TestParse_Sample(t *testing.T) {
	p := mustParse(t, sampleProfile)

	if p.Name != "alex" {
		t.Errorf("Name = %q", p.Name)
	}
	if !p.CurrentSavings.Equal(decimal.RequireFromString("1200.50")) {
		t.Errorf("CurrentSavings = %s", p.CurrentSavings)
	}
	if len(p.Debts) != 2 {
		t.Fatalf("len(Debts) = %d, want 2", len(p.Debts))
	}
	if p.Debts[0].MonthsRemaining == nil || *p.Debts[0].MonthsRemaining != 36 {
		t.Errorf("car loan months_remaining = %v", p.Debts[0].MonthsRemaining)
	}
	if p.Debts[1].MonthsRemaining != nil {
		t.Errorf("card months_remaining = %v, want nil", *p.Debts[1].MonthsRemaining)
	}
	if p.VarIncome != nil || p.VarExpenses != nil {
		t.Error("variances should be absent")
	}
	if got := p.TotalMonthlyPayments(); !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("TotalMonthlyPayments = %s, want 500", got)
	}
	if got := p.TotalDebt(); !got.Equal(decimal.NewFromInt(12500)) {
		t.Errorf("TotalDebt = %s, want 12500", got)
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alex.toml")
	if err := os.WriteFile(path, []byte(sampleProfile), 0o600); err != nil {
		t.Fatal(err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Name != "alex" {
		t.Errorf("Name = %q", p.Name)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("Load of missing file succeeded")
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no name", "average_income = 1\n"},
		{"negative income", "name = \"x\"\naverage_income = -1\n"},
		{"negative variance", "name = \"x\"\nvar_income = -4.0\n"},
		{"correlation", "name = \"x\"\ncorrelation = 1.5\n"},
		{"unknown key", "name = \"x\"\nsalary = 10\n"},
		{"zero months", "name = \"x\"\n[[debts]]\nlabel = \"a\"\nmonths_remaining = 0\n"},
		{"negative apr", "name = \"x\"\n[[debts]]\nlabel = \"a\"\napr = -3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			if tt.name != "unknown key" && !errors.Is(err, ErrInvalidProfile) {
				t.Fatalf("err = %v, want ErrInvalidProfile", err)
			}
		})
	}
}

func TestParse_MalformedTOML(t *testing.T) {
	if _, err := Parse([]byte("name = ")); err == nil {
		t.Fatal("Parse accepted malformed TOML")
	}
}

func TestMonthlyRate(t *testing.T) {
	if got := MonthlyRate(decimal.NewFromInt(12)); math.Abs(got-0.01) > 1e-15 {
		t.Errorf("MonthlyRate(12) = %v, want 0.01", got)
	}
	if got := MonthlyRate(decimal.Zero); got != 0 {
		t.Errorf("MonthlyRate(0) = %v, want 0", got)
	}
}

func TestInputs_Conversion(t *testing.T) {
	p := mustParse(t, sampleProfile)
	in, err := Inputs(p, DefaultConversion())
	if err != nil {
		t.Fatalf("Inputs: %v", err)
	}

	if in.IncomeMean != 5000 {
		t.Errorf("IncomeMean = %v", in.IncomeMean)
	}
	// 4000 - (300 + 200)
	if in.ExpenseMean != 3500 {
		t.Errorf("ExpenseMean = %v, want 3500", in.ExpenseMean)
	}
	if want := (5000 * 0.2) * (5000 * 0.2); math.Abs(in.IncomeVariance-want) > 1e-6 {
		t.Errorf("IncomeVariance = %v, want %v", in.IncomeVariance, want)
	}
	if want := (3500 * 0.2) * (3500 * 0.2); math.Abs(in.ExpenseVariance-want) > 1e-6 {
		t.Errorf("ExpenseVariance = %v, want %v", in.ExpenseVariance, want)
	}
	if in.StartingCash != 1200.5 {
		t.Errorf("StartingCash = %v", in.StartingCash)
	}
	if in.Correlation != 0.3 {
		t.Errorf("Correlation = %v", in.Correlation)
	}
	if in.Trials != engine.DefaultTrials || in.Seed != engine.DefaultSeed {
		t.Errorf("Trials/Seed = %d/%d", in.Trials, in.Seed)
	}

	d := in.Debts
	if d.Len() != 2 {
		t.Fatalf("Debts.Len() = %d", d.Len())
	}
	if d.Terms[0] != 36 || !math.IsInf(d.Terms[1], 1) {
		t.Errorf("Terms = %v", d.Terms)
	}
	if math.Abs(d.Rates[0]-0.005) > 1e-15 || math.Abs(d.Rates[1]-0.02) > 1e-15 {
		t.Errorf("Rates = %v", d.Rates)
	}
}

func TestInputs_ExplicitVariancesAndRawExpenses(t *testing.T) {
	p := mustParse(t, sampleProfile+"\n")
	vi, ve := 90000.0, 40000.0
	p.VarIncome, p.VarExpenses = &vi, &ve

	opts := DefaultConversion()
	opts.ExpensesIncludeDebt = false
	in, err := Inputs(p, opts)
	if err != nil {
		t.Fatalf("Inputs: %v", err)
	}
	if in.IncomeVariance != vi || in.ExpenseVariance != ve {
		t.Errorf("variances = %v/%v, want %v/%v", in.IncomeVariance, in.ExpenseVariance, vi, ve)
	}
	if in.ExpenseMean != 4000 {
		t.Errorf("ExpenseMean = %v, want 4000", in.ExpenseMean)
	}
}

func TestInputs_ExpensesFloorAtZero(t *testing.T) {
	p := mustParse(t, sampleProfile)
	p.AverageExpenses = decimal.NewFromInt(100)

	in, err := Inputs(p, DefaultConversion())
	if err != nil {
		t.Fatalf("Inputs: %v", err)
	}
	if in.ExpenseMean != 0 || in.ExpenseVariance != 0 {
		t.Errorf("ExpenseMean/Variance = %v/%v, want 0/0", in.ExpenseMean, in.ExpenseVariance)
	}
}

func TestInputs_RejectsBadOptions(t *testing.T) {
	p := mustParse(t, sampleProfile)

	opts := DefaultConversion()
	opts.Trials = 0
	if _, err := Inputs(p, opts); !errors.Is(err, engine.ErrTrialCount) {
		t.Errorf("err = %v, want ErrTrialCount", err)
	}

	opts = DefaultConversion()
	opts.VarianceFraction = -1
	if _, err := Inputs(p, opts); err == nil {
		t.Error("Inputs accepted a negative variance fraction")
	}
}

func TestDebtLines(t *testing.T) {
	p := mustParse(t, `
name = "balloon"
[[debts]]
label = "Bridge"
total_amount = 1200
monthly_payment = 100
apr = 0
months_remaining = 10

[[debts]]
label = "Card"
total_amount = 1000
monthly_payment = 0
apr = 12
`)
	lines := p.DebtLines()
	if len(lines) != 2 {
		t.Fatalf("len = %d", len(lines))
	}

	bridge := lines[0]
	if bridge.BalloonMonth != 10 || math.Abs(bridge.BalloonAmount-200) > 1e-9 {
		t.Errorf("bridge balloon = month %d amount %v, want 10/200", bridge.BalloonMonth, bridge.BalloonAmount)
	}
	if bridge.BalanceAfterHorizon != 0 {
		t.Errorf("bridge closing = %v, want 0", bridge.BalanceAfterHorizon)
	}

	card := lines[1]
	if card.BalloonMonth != 0 {
		t.Errorf("card balloon month = %d, want none", card.BalloonMonth)
	}
	want := 1000 * math.Pow(1.01, engine.Horizon)
	if math.Abs(card.BalanceAfterHorizon-want) > 1e-6 {
		t.Errorf("card closing = %v, want %v", card.BalanceAfterHorizon, want)
	}
	if !math.IsInf(card.TermMonths, 1) {
		t.Errorf("card term = %v, want +Inf", card.TermMonths)
	}
}
