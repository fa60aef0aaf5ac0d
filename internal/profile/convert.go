package profile

import (
	"fmt"
	"math"

	"github.com/theirongolddev/dshield/internal/engine"
	"github.com/theirongolddev/dshield/internal/model"

	"github.com/shopspring/decimal"
)

// ConversionOptions controls how a profile is turned into engine inputs.
type ConversionOptions struct {
	Trials int
	Seed   uint64

	// VarianceFraction is the standard deviation, as a fraction of the
	// mean, assumed for a variance the profile leaves out.
	VarianceFraction float64

	// ExpensesIncludeDebt subtracts total debt payments from average
	// expenses, floored at zero.
	ExpensesIncludeDebt bool
}

// DefaultConversion mirrors the config defaults.
func DefaultConversion() ConversionOptions {
	return ConversionOptions{
		Trials:              engine.DefaultTrials,
		Seed:                engine.DefaultSeed,
		VarianceFraction:    0.20,
		ExpensesIncludeDebt: true,
	}
}

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// MonthlyRate converts an annual percentage rate to a monthly decimal rate.
func MonthlyRate(apr decimal.Decimal) float64 {
	return apr.Div(hundred).Div(twelve).InexactFloat64()
}

// Term returns the debt's term in months, engine.Indefinite when open-ended.
func (d Debt) Term() float64 {
	if d.MonthsRemaining == nil {
		return engine.Indefinite
	}
	return float64(*d.MonthsRemaining)
}

// Portfolio builds the engine's column-wise debt portfolio.
func (p Profile) Portfolio() engine.Portfolio {
	debts := make([]engine.Debt, 0, len(p.Debts))
	for _, d := range p.Debts {
		debts = append(debts, engine.Debt{
			Balance:     d.TotalAmount.InexactFloat64(),
			Payment:     d.MonthlyPayment.InexactFloat64(),
			MonthlyRate: MonthlyRate(d.APR),
			TermMonths:  d.Term(),
		})
	}
	return engine.NewPortfolio(debts...)
}

// EssentialExpenses returns average expenses net of debt service when the
// profile's expense figure includes it.
func (p Profile) EssentialExpenses(includeDebt bool) decimal.Decimal {
	if !includeDebt {
		return p.AverageExpenses
	}
	return decimal.Max(decimal.Zero, p.AverageExpenses.Sub(p.TotalMonthlyPayments()))
}

// Inputs converts a validated profile into engine inputs.
func Inputs(p Profile, opts ConversionOptions) (engine.Inputs, error) {
	if err := p.Validate(); err != nil {
		return engine.Inputs{}, err
	}
	if opts.VarianceFraction < 0 || math.IsNaN(opts.VarianceFraction) {
		return engine.Inputs{}, fmt.Errorf("variance fraction must be non-negative, got %v", opts.VarianceFraction)
	}

	income := p.AverageIncome.InexactFloat64()
	expenses := p.EssentialExpenses(opts.ExpensesIncludeDebt).InexactFloat64()

	in := engine.Inputs{
		IncomeMean:      income,
		ExpenseMean:     expenses,
		IncomeVariance:  variance(p.VarIncome, income, opts.VarianceFraction),
		ExpenseVariance: variance(p.VarExpenses, expenses, opts.VarianceFraction),
		Correlation:     p.Correlation,
		StartingCash:    p.CurrentSavings.InexactFloat64(),
		Debts:           p.Portfolio(),
		Trials:          opts.Trials,
		Seed:            opts.Seed,
	}
	if err := in.Validate(); err != nil {
		return engine.Inputs{}, fmt.Errorf("converting profile %s: %w", p.Name, err)
	}
	return in, nil
}

// An explicit variance is used as given.
func variance(explicit *float64, mean, fraction float64) float64 {
	if explicit != nil {
		return *explicit
	}
	sd := mean * fraction
	return sd * sd
}

// DebtLines projects every debt over the simulation horizon for display.
func (p Profile) DebtLines() []model.DebtLine {
	schedule := p.Portfolio().Project(engine.Horizon)
	lines := make([]model.DebtLine, len(p.Debts))
	for i, d := range p.Debts {
		line := model.DebtLine{
			Label:          d.Label,
			Category:       d.Category,
			Balance:        d.TotalAmount.InexactFloat64(),
			MonthlyPayment: d.MonthlyPayment.InexactFloat64(),
			APR:            d.APR.InexactFloat64(),
			TermMonths:     d.Term(),
		}
		rows := schedule[i]
		if len(rows) > 0 {
			line.BalanceAfterHorizon = rows[len(rows)-1].Closing
		}
		for _, inst := range rows {
			if inst.Balloon > 0 {
				line.BalloonMonth = inst.Month
				line.BalloonAmount = inst.Balloon
				break
			}
		}
		lines[i] = line
	}
	return lines
}
