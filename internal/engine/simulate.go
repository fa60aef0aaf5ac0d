package engine

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// BlockSize is the number of trials that share one random generator.
// Changing it changes which draws each trial sees.
const BlockSize = 8192

// ProgressFunc is called as blocks of trials finish.
// current is the number of blocks done so far, total is the block count.
type ProgressFunc func(current, total int)

// Options controls how a simulation is executed. It never affects results.
type Options struct {
	// Workers bounds the worker pool; zero or negative means GOMAXPROCS.
	Workers int
	// Progress, when set, is called from worker goroutines.
	Progress ProgressFunc
}

type blockResult struct {
	defaults int
	byMonth  [Horizon]int
}

// Run validates the inputs and simulates in.Trials independent twelve-month
// trials. Results are identical for identical inputs regardless of Options.
func Run(in Inputs, opts Options) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}

	debts := in.Debts.normalized()
	gen := NewShockGenerator(in)
	numBlocks := blockCount(in.Trials)

	numWorkers := opts.Workers
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > numBlocks {
		numWorkers = numBlocks
	}

	// Workers claim block indexes from next and keep their own totals.
	// Counts are integers, so the sum does not depend on which worker ran
	// which block.
	partials := make([]blockResult, numWorkers)
	var wg sync.WaitGroup
	var next, processed atomic.Int64

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func(acc *blockResult) {
			defer wg.Done()
			var s scratch
			for {
				b := int(next.Add(1) - 1)
				if b >= numBlocks {
					return
				}
				size := min(BlockSize, in.Trials-b*BlockSize)
				acc.add(s.simulate(in, debts, gen, b, size))
				n := processed.Add(1)
				if opts.Progress != nil {
					opts.Progress(int(n), numBlocks)
				}
			}
		}(&partials[w])
	}

	wg.Wait()

	return summarize(in.Trials, partials), nil
}

// blockCount returns the number of blocks needed for trials > 0 trials
// without overflowing near math.MaxInt.
func blockCount(trials int) int {
	return (trials-1)/BlockSize + 1
}

func (r *blockResult) add(o blockResult) {
	r.defaults += o.defaults
	for m, n := range o.byMonth {
		r.byMonth[m] += n
	}
}

// scratch holds one worker's reusable trial state, one row per trial.
type scratch struct {
	net       []float64 // n*Horizon, trial-major
	cash      []float64 // n
	bal       []float64 // n*k, trial-major
	defaulted []bool    // n
}

func (s *scratch) reset(n, k int) {
	s.net = grow(s.net, n*Horizon)
	s.cash = grow(s.cash, n)
	s.bal = grow(s.bal, n*k)
	if cap(s.defaulted) < n {
		s.defaulted = make([]bool, n)
	}
	s.defaulted = s.defaulted[:n]
}

func grow(buf []float64, n int) []float64 {
	if cap(buf) < n {
		return make([]float64, n)
	}
	return buf[:n]
}

// simulate runs the monthly state machine for one block of n trials,
// month-major across the block.
func (s *scratch) simulate(in Inputs, debts Portfolio, gen ShockGenerator, block, n int) blockResult {
	k := debts.Len()
	s.reset(n, k)

	gen.Fill(blockRNG(in.Seed, block), s.net)

	for i := 0; i < n; i++ {
		s.cash[i] = in.StartingCash
		copy(s.bal[i*k:(i+1)*k], debts.Balances)
		s.defaulted[i] = false
	}

	var res blockResult
	for m := 1; m <= Horizon; m++ {
		for i := 0; i < n; i++ {
			// Debt balances keep amortizing after default; only the flag is read.
			required := debts.Step(m, s.bal[i*k:(i+1)*k])
			if s.defaulted[i] {
				continue
			}

			s.cash[i] += s.net[i*Horizon+m-1]
			s.cash[i] -= required
			if s.cash[i] < 0 {
				s.defaulted[i] = true
				res.defaults++
				res.byMonth[m-1]++
			}
		}
	}
	return res
}
