// Package profile reads a user's financial profile and converts it into
// simulation inputs.
package profile

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

// ErrInvalidProfile is wrapped by every validation failure.
var ErrInvalidProfile = errors.New("invalid profile")

// Profile is the externally maintained description of one person's finances.
type Profile struct {
	Name            string          `toml:"name"`
	CurrentSavings  decimal.Decimal `toml:"current_savings"`
	AverageIncome   decimal.Decimal `toml:"average_income"`
	AverageExpenses decimal.Decimal `toml:"average_expenses"`

	// Optional; derived from the means when absent.
	VarIncome   *float64 `toml:"var_income,omitempty"`
	VarExpenses *float64 `toml:"var_expenses,omitempty"`

	Correlation float64 `toml:"correlation,omitempty"`
	Debts       []Debt  `toml:"debts"`
}

// Debt is one loan or credit line as the user reports it.
type Debt struct {
	Category       string          `toml:"category"`
	Label          string          `toml:"label"`
	TotalAmount    decimal.Decimal `toml:"total_amount"`
	MonthlyPayment decimal.Decimal `toml:"monthly_payment"`
	// APR is an annual percentage, e.g. 19.9.
	APR decimal.Decimal `toml:"apr"`
	// MonthsRemaining is nil for revolving credit.
	MonthsRemaining *int `toml:"months_remaining,omitempty"`
}

// Load reads and validates a profile from a TOML file.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // profile path is supplied by the caller
	if err != nil {
		return Profile{}, fmt.Errorf("reading profile: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a TOML profile.
func Parse(data []byte) (Profile, error) {
	var p Profile
	md, err := toml.Decode(string(data), &p)
	if err != nil {
		return Profile{}, fmt.Errorf("parsing profile: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Profile{}, fmt.Errorf("%w: unknown key %q", ErrInvalidProfile, undecoded[0].String())
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks the fields the conversion relies on.
func (p Profile) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidProfile}, args...)...))
	}

	if p.Name == "" {
		invalid("name is required")
	}
	if p.AverageIncome.IsNegative() {
		invalid("average_income %s is negative", p.AverageIncome)
	}
	if p.AverageExpenses.IsNegative() {
		invalid("average_expenses %s is negative", p.AverageExpenses)
	}
	if p.VarIncome != nil && *p.VarIncome < 0 {
		invalid("var_income %v is negative", *p.VarIncome)
	}
	if p.VarExpenses != nil && *p.VarExpenses < 0 {
		invalid("var_expenses %v is negative", *p.VarExpenses)
	}
	if p.Correlation < -1 || p.Correlation > 1 {
		invalid("correlation %v outside [-1, 1]", p.Correlation)
	}

	for i, d := range p.Debts {
		name := d.Label
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}
		if d.TotalAmount.IsNegative() {
			invalid("debt %s total_amount %s is negative", name, d.TotalAmount)
		}
		if d.MonthlyPayment.IsNegative() {
			invalid("debt %s monthly_payment %s is negative", name, d.MonthlyPayment)
		}
		if d.APR.IsNegative() {
			invalid("debt %s apr %s is negative", name, d.APR)
		}
		if d.MonthsRemaining != nil && *d.MonthsRemaining <= 0 {
			invalid("debt %s months_remaining %d must be positive", name, *d.MonthsRemaining)
		}
	}

	return errors.Join(errs...)
}

// TotalMonthlyPayments sums the fixed payment of every debt.
func (p Profile) TotalMonthlyPayments() decimal.Decimal {
	total := decimal.Zero
	for _, d := range p.Debts {
		total = total.Add(d.MonthlyPayment)
	}
	return total
}

// TotalDebt sums the outstanding balance of every debt.
func (p Profile) TotalDebt() decimal.Decimal {
	total := decimal.Zero
	for _, d := range p.Debts {
		total = total.Add(d.TotalAmount)
	}
	return total
}
