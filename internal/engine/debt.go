package engine

import "math"

// Installment is one month of a single debt's repayment.
type Installment struct {
	Month     int
	Opening   float64
	Interest  float64
	Scheduled float64
	Balloon   float64
	Closing   float64
}

// Due returns the total paid this month.
func (in Installment) Due() float64 {
	return in.Scheduled + in.Balloon
}

// settle applies month (1-indexed) of debt i's contract to bal: interest
// accrues first, then the scheduled payment, then any balloon due in the
// final contractual month.
func (p Portfolio) settle(i, month int, bal float64) Installment {
	inst := Installment{Month: month, Opening: bal}

	if bal > 0 {
		accrued := bal * (1 + p.Rates[i])
		inst.Interest = accrued - bal
		bal = accrued
	}

	m := float64(month)
	term := p.Terms[i]
	if bal > Epsilon {
		if m <= term {
			inst.Scheduled = math.Min(p.Payments[i], bal)
		}
		if m == term {
			inst.Balloon = bal - inst.Scheduled
		}
	}

	inst.Closing = math.Max(0, bal-inst.Scheduled-inst.Balloon)
	return inst
}

// Step advances one trial's debt balances through the given month in place
// and returns the total payment required that month. balances must hold one
// entry per debt.
func (p Portfolio) Step(month int, balances []float64) float64 {
	var required float64
	for i := range balances {
		inst := p.settle(i, month, balances[i])
		balances[i] = inst.Closing
		required += inst.Scheduled + inst.Balloon
	}
	return required
}

// Project applies the repayment contract to the initial balances for the
// given number of months. The result is indexed by debt, then month.
func (p Portfolio) Project(months int) [][]Installment {
	out := make([][]Installment, p.Len())
	for i := range out {
		bal := p.Balances[i]
		rows := make([]Installment, 0, months)
		for m := 1; m <= months; m++ {
			inst := p.settle(i, m, bal)
			bal = inst.Closing
			rows = append(rows, inst)
		}
		out[i] = rows
	}
	return out
}
