// Package engine estimates the probability that a household's cash balance
// goes negative within a twelve-month horizon, by Monte Carlo simulation of
// correlated income/expense shocks against a portfolio of debts.
package engine

import (
	"errors"
	"fmt"
	"math"
)

const (
	// Horizon is the number of simulated months per trial.
	Horizon = 12

	// Epsilon is the balance below which a debt is treated as paid off.
	Epsilon = 1e-9

	// DefaultTrials is the trial count used when callers have no preference.
	DefaultTrials = 200_000

	// DefaultSeed keeps scores reproducible across runs.
	DefaultSeed uint64 = 42
)

// Indefinite is the term of a revolving debt with no payoff month.
var Indefinite = math.Inf(1)

// Input errors. Validate wraps these with the offending values.
var (
	ErrShapeMismatch    = errors.New("debt attribute lists differ in length")
	ErrNegativeVariance = errors.New("variance must be non-negative")
	ErrCorrelationRange = errors.New("correlation must be within [-1, 1]")
	ErrTrialCount       = errors.New("trial count must be positive")
	ErrDebtRange        = errors.New("debt attribute out of range")
	ErrNonFinite        = errors.New("value is not a finite number")
)

// Debt is one obligation: outstanding balance, fixed monthly payment,
// monthly interest rate (decimal) and term in months (or Indefinite).
type Debt struct {
	Balance     float64
	Payment     float64
	MonthlyRate float64
	TermMonths  float64
}

// Portfolio stores debts column-wise. All four columns must have the same
// length; Inputs.Validate reports ErrShapeMismatch otherwise.
type Portfolio struct {
	Balances []float64
	Payments []float64
	Terms    []float64
	Rates    []float64
}

// NewPortfolio builds a column-wise portfolio from individual debts.
func NewPortfolio(debts ...Debt) Portfolio {
	p := Portfolio{
		Balances: make([]float64, len(debts)),
		Payments: make([]float64, len(debts)),
		Terms:    make([]float64, len(debts)),
		Rates:    make([]float64, len(debts)),
	}
	for i, d := range debts {
		p.Balances[i] = d.Balance
		p.Payments[i] = d.Payment
		p.Terms[i] = d.TermMonths
		p.Rates[i] = d.MonthlyRate
	}
	return p
}

// Len returns the number of debts.
func (p Portfolio) Len() int {
	return len(p.Balances)
}

// Debt returns the i-th debt.
func (p Portfolio) Debt(i int) Debt {
	return Debt{
		Balance:     p.Balances[i],
		Payment:     p.Payments[i],
		MonthlyRate: p.Rates[i],
		TermMonths:  p.Terms[i],
	}
}

// normalized substitutes an inert placeholder for an empty portfolio so the
// monthly loop always has at least one debt to step.
func (p Portfolio) normalized() Portfolio {
	if p.Len() > 0 {
		return p
	}
	return NewPortfolio(Debt{TermMonths: Indefinite})
}

func (p Portfolio) validate() error {
	k := len(p.Balances)
	if len(p.Payments) != k || len(p.Terms) != k || len(p.Rates) != k {
		return fmt.Errorf("%w: balances=%d payments=%d terms=%d rates=%d",
			ErrShapeMismatch, k, len(p.Payments), len(p.Terms), len(p.Rates))
	}

	var errs []error
	for i := 0; i < k; i++ {
		d := p.Debt(i)
		if !isFinite(d.Balance) || d.Balance < 0 {
			errs = append(errs, fmt.Errorf("%w: debt %d balance %v", ErrDebtRange, i, d.Balance))
		}
		if !isFinite(d.Payment) || d.Payment < 0 {
			errs = append(errs, fmt.Errorf("%w: debt %d payment %v", ErrDebtRange, i, d.Payment))
		}
		if !isFinite(d.MonthlyRate) || d.MonthlyRate < 0 {
			errs = append(errs, fmt.Errorf("%w: debt %d rate %v", ErrDebtRange, i, d.MonthlyRate))
		}
		// NaN fails the comparison; +Inf is the revolving sentinel.
		if !(d.TermMonths > 0) {
			errs = append(errs, fmt.Errorf("%w: debt %d term %v", ErrDebtRange, i, d.TermMonths))
		}
	}
	return errors.Join(errs...)
}

// Inputs describes one simulation: income and essential-expense statistics
// (expenses exclude debt service), their correlation, starting cash, the debt
// portfolio, and the trial count and seed.
type Inputs struct {
	IncomeMean      float64
	ExpenseMean     float64
	IncomeVariance  float64
	ExpenseVariance float64
	Correlation     float64
	StartingCash    float64
	Debts           Portfolio
	Trials          int
	Seed            uint64
}

// Validate reports every shape and range problem in the inputs, joined.
func (in Inputs) Validate() error {
	var errs []error

	finite := []struct {
		name string
		v    float64
	}{
		{"income mean", in.IncomeMean},
		{"expense mean", in.ExpenseMean},
		{"starting cash", in.StartingCash},
	}
	for _, f := range finite {
		if !isFinite(f.v) {
			errs = append(errs, fmt.Errorf("%w: %s %v", ErrNonFinite, f.name, f.v))
		}
	}

	for _, v := range []struct {
		name string
		v    float64
	}{
		{"income variance", in.IncomeVariance},
		{"expense variance", in.ExpenseVariance},
	} {
		switch {
		case !isFinite(v.v):
			errs = append(errs, fmt.Errorf("%w: %s %v", ErrNonFinite, v.name, v.v))
		case v.v < 0:
			errs = append(errs, fmt.Errorf("%w: %s %v", ErrNegativeVariance, v.name, v.v))
		}
	}

	switch {
	case math.IsNaN(in.Correlation):
		errs = append(errs, fmt.Errorf("%w: correlation %v", ErrNonFinite, in.Correlation))
	case in.Correlation < -1 || in.Correlation > 1:
		errs = append(errs, fmt.Errorf("%w: got %v", ErrCorrelationRange, in.Correlation))
	}

	if in.Trials <= 0 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrTrialCount, in.Trials))
	}

	if err := in.Debts.validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
