package engine

import (
	"encoding/binary"
	"math"
	"math/rand/v2"
)

// ShockGenerator draws correlated monthly income and expense values.
type ShockGenerator struct {
	incomeMean  float64
	expenseMean float64
	incomeSD    float64
	expenseSD   float64
	rho         float64
	// rhoComplement is sqrt(1-rho^2), clamped so rho = ±1 cannot go negative.
	rhoComplement float64
}

// NewShockGenerator prepares a generator for validated inputs.
func NewShockGenerator(in Inputs) ShockGenerator {
	return ShockGenerator{
		incomeMean:    in.IncomeMean,
		expenseMean:   in.ExpenseMean,
		incomeSD:      math.Sqrt(in.IncomeVariance),
		expenseSD:     math.Sqrt(in.ExpenseVariance),
		rho:           in.Correlation,
		rhoComplement: math.Sqrt(math.Max(0, 1-in.Correlation*in.Correlation)),
	}
}

// Draw consumes two standard normals from rng and returns one month's income
// and expense.
func (g ShockGenerator) Draw(rng *rand.Rand) (income, expense float64) {
	z1 := rng.NormFloat64()
	z2 := rng.NormFloat64()
	income = g.incomeMean + g.incomeSD*z1
	expense = g.expenseMean + g.expenseSD*(g.rho*z1+g.rhoComplement*z2)
	return income, expense
}

// Fill writes net cash flow (income - expense) into net, laid out
// trial-major: net[trial*Horizon + month-1].
func (g ShockGenerator) Fill(rng *rand.Rand, net []float64) {
	for j := range net {
		income, expense := g.Draw(rng)
		net[j] = income - expense
	}
}

// blockRNG returns the generator owned by one block of trials. Its key
// depends only on the seed and block index, so draws do not depend on how
// blocks are scheduled across workers.
func blockRNG(seed uint64, block int) *rand.Rand {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[0:8], seed)
	binary.LittleEndian.PutUint64(key[8:16], uint64(block))
	return rand.New(rand.NewChaCha8(key))
}
