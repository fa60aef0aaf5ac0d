package engine

import "math"

// Result is the reduction of all trial outcomes.
type Result struct {
	Trials   int
	Defaults int
	// DefaultsByMonth counts trials by the month of their first default.
	DefaultsByMonth [Horizon]int

	Probability float64
	StdErr      float64
	Score       float64
}

// Curve returns the cumulative probability of having defaulted by the end
// of each month.
func (r Result) Curve() []float64 {
	curve := make([]float64, Horizon)
	if r.Trials <= 0 {
		return curve
	}
	running := 0
	for m, n := range r.DefaultsByMonth {
		running += n
		curve[m] = float64(running) / float64(r.Trials)
	}
	return curve
}

// ShieldScore maps a default probability to 100*(1-p), clamped to [0, 100]
// and rounded to one decimal place.
func ShieldScore(probability float64) float64 {
	s := 100 * (1 - probability)
	s = math.Max(0, math.Min(100, s))
	return math.Round(s*10) / 10
}

// ProbabilityOfDefault runs the simulation with default options.
func ProbabilityOfDefault(in Inputs) (float64, error) {
	r, err := Run(in, Options{})
	if err != nil {
		return 0, err
	}
	return r.Probability, nil
}

// Score runs the simulation with default options and returns the Shield Score.
func Score(in Inputs) (float64, error) {
	r, err := Run(in, Options{})
	if err != nil {
		return 0, err
	}
	return r.Score, nil
}

func summarize(trials int, blocks []blockResult) Result {
	r := Result{Trials: trials}
	var total blockResult
	for _, b := range blocks {
		total.add(b)
	}
	r.Defaults = total.defaults
	r.DefaultsByMonth = total.byMonth

	p := float64(r.Defaults) / float64(trials)
	r.Probability = math.Max(0, math.Min(1, p))
	r.StdErr = math.Sqrt(r.Probability * (1 - r.Probability) / float64(trials))
	r.Score = ShieldScore(r.Probability)
	return r
}
