// Package pipeline turns profiles into scored reports, consulting the
// result cache when one is available.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/dshield/internal/engine"
	"github.com/theirongolddev/dshield/internal/model"
	"github.com/theirongolddev/dshield/internal/profile"
	"github.com/theirongolddev/dshield/internal/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ProgressFunc is called as the simulation advances.
// current is the number of trial blocks finished so far, total is the block count.
type ProgressFunc func(current, total int)

// Options controls a pipeline run.
type Options struct {
	Conversion profile.ConversionOptions
	// Workers bounds the engine's worker pool; zero means GOMAXPROCS.
	Workers int
	// Logger receives run diagnostics. Nil means the logrus standard logger.
	Logger *logrus.Logger
}

func (o Options) logger() *logrus.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logrus.StandardLogger()
}

// RunResult holds a scored report with the inputs and debt projections
// that produced it.
type RunResult struct {
	Report model.Report
	Inputs engine.Inputs
	Debts  []model.DebtLine
}

// Run converts and scores a profile without touching the cache.
func Run(p profile.Profile, opts Options, progressFn ProgressFunc) (*RunResult, error) {
	in, err := profile.Inputs(p, opts.Conversion)
	if err != nil {
		return nil, err
	}

	report, err := Simulate(p.Name, in, opts, progressFn)
	if err != nil {
		return nil, err
	}

	return &RunResult{Report: report, Inputs: in, Debts: p.DebtLines()}, nil
}

// RunWithCache returns a cached report when one matches the profile's
// fingerprint, and otherwise simulates and stores the new report.
// Cache failures are logged and never fail the run.
func RunWithCache(p profile.Profile, opts Options, cache *store.Cache, progressFn ProgressFunc) (*RunResult, error) {
	in, err := profile.Inputs(p, opts.Conversion)
	if err != nil {
		return nil, err
	}

	log := opts.logger()
	fp := Fingerprint(in)
	result := &RunResult{Inputs: in, Debts: p.DebtLines()}

	cached, ok, err := cache.Lookup(fp, p.Name)
	switch {
	case err != nil:
		log.WithError(err).WithField("fingerprint", fp).Warn("cache lookup failed, simulating")
	case ok:
		if cached.Profile != p.Name {
			// Another profile produced these numbers; record the result as a
			// run of this profile so its history stays complete.
			cached.RunID = uuid.NewString()
			cached.Profile = p.Name
			cached.CreatedAt = time.Now()
			if err := cache.SaveReport(cached); err != nil {
				log.WithError(err).WithField("run_id", cached.RunID).Warn("saving report to cache")
			}
		}
		cached.CacheHit = true
		log.WithFields(logrus.Fields{
			"run_id":    cached.RunID,
			"profile":   p.Name,
			"cache_hit": true,
		}).Debug("using cached report")
		if progressFn != nil {
			progressFn(1, 1)
		}
		result.Report = cached
		return result, nil
	}

	report, err := Simulate(p.Name, in, opts, progressFn)
	if err != nil {
		return nil, err
	}

	if err := cache.SaveReport(report); err != nil {
		log.WithError(err).WithField("run_id", report.RunID).Warn("saving report to cache")
	}

	result.Report = report
	return result, nil
}

// Simulate scores already-converted inputs and wraps the result in a report.
func Simulate(name string, in engine.Inputs, opts Options, progressFn ProgressFunc) (model.Report, error) {
	log := opts.logger()
	runID := uuid.NewString()

	start := time.Now()
	res, err := engine.Run(in, engine.Options{
		Workers:  opts.Workers,
		Progress: engine.ProgressFunc(progressFn),
	})
	if err != nil {
		return model.Report{}, fmt.Errorf("scoring %s: %w", name, err)
	}
	elapsed := time.Since(start)

	log.WithFields(logrus.Fields{
		"run_id":    runID,
		"profile":   name,
		"trials":    in.Trials,
		"seed":      in.Seed,
		"workers":   opts.Workers,
		"elapsed":   elapsed,
		"cache_hit": false,
	}).Info("simulation finished")

	return model.Report{
		RunID:        runID,
		Profile:      name,
		Fingerprint:  Fingerprint(in),
		Trials:       res.Trials,
		Seed:         in.Seed,
		Correlation:  in.Correlation,
		Defaults:     res.Defaults,
		Probability:  res.Probability,
		StdErr:       res.StdErr,
		ShieldScore:  res.Score,
		DefaultCurve: res.Curve(),
		Elapsed:      elapsed,
		CreatedAt:    start,
	}, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "dshield")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "dshield")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "results.db")
}
