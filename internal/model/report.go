// Package model defines the report types shared by the pipeline, cache and renderers.
package model

import "time"

// Report is the outcome of one scored profile.
type Report struct {
	RunID       string
	Profile     string
	Fingerprint string

	Trials      int
	Seed        uint64
	Correlation float64
	Defaults    int

	Probability float64
	StdErr      float64
	ShieldScore float64

	// DefaultCurve is the cumulative default probability at the end of each month.
	DefaultCurve []float64

	Elapsed   time.Duration
	CreatedAt time.Time
	CacheHit  bool
}

// ConfidenceInterval returns the 95% normal-approximation interval around
// Probability, clamped to [0, 1].
func (r Report) ConfidenceInterval() (lo, hi float64) {
	const z = 1.96
	lo = r.Probability - z*r.StdErr
	hi = r.Probability + z*r.StdErr
	if lo < 0 {
		lo = 0
	}
	if hi > 1 {
		hi = 1
	}
	return lo, hi
}

// DebtLine summarizes one debt for display.
type DebtLine struct {
	Label          string
	Category       string
	Balance        float64
	MonthlyPayment float64
	APR            float64
	TermMonths     float64 // +Inf for revolving
	// BalanceAfterHorizon is the deterministic balance after twelve months.
	BalanceAfterHorizon float64
	BalloonMonth        int // 0 when no balloon falls within the horizon
	BalloonAmount       float64
}

// Trend summarizes a sequence of reports for one profile.
type Trend struct {
	Runs   int
	Latest float64
	Best   float64
	Worst  float64
	// Change is the latest score minus the oldest one.
	Change float64
	// Scores are ordered oldest first.
	Scores []float64
}
