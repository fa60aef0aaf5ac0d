package pipeline

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/dshield/internal/engine"
	"github.com/theirongolddev/dshield/internal/model"
	"github.com/theirongolddev/dshield/internal/profile"
	"github.com/theirongolddev/dshield/internal/store"

	"github.com/sirupsen/logrus"
)

const testProfile = `
name = "alex"
current_savings = 1500
average_income = 5000
average_expenses = 4200
correlation = 0.2

[[debts]]
category = "auto"
label = "Car"
total_amount = 9000
monthly_payment = 350
apr = 7.5
months_remaining = 30

[[debts]]
category = "credit_card"
label = "Card"
total_amount = 3000
monthly_payment = 150
apr = 22
`

func testSetup(t *testing.T) (profile.Profile, Options) {
	t.Helper()
	p, err := profile.Parse([]byte(testProfile))
	if err != nil {
		t.Fatalf("profile.Parse: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	conv := profile.DefaultConversion()
	conv.Trials = 20_000
	return p, Options{Conversion: conv, Logger: logger}
}

func openCache(t *testing.T) *store.Cache {
	t.Helper()
	c, err := store.Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRun_MatchesEngine(t *testing.T) {
	p, opts := testSetup(t)

	res, err := Run(p, opts, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want, err := engine.Run(res.Inputs, engine.Options{})
	if err != nil {
		t.Fatalf("engine.Run: %v", err)
	}
	r := res.Report
	if r.Probability != want.Probability || r.ShieldScore != want.Score || r.Defaults != want.Defaults {
		t.Fatalf("report = %v/%v/%d, engine = %v/%v/%d",
			r.Probability, r.ShieldScore, r.Defaults, want.Probability, want.Score, want.Defaults)
	}
	if r.RunID == "" || r.Fingerprint != Fingerprint(res.Inputs) {
		t.Errorf("RunID=%q Fingerprint=%q", r.RunID, r.Fingerprint)
	}
	if r.Profile != "alex" || r.Trials != 20_000 || r.Seed != engine.DefaultSeed {
		t.Errorf("identity = %s/%d/%d", r.Profile, r.Trials, r.Seed)
	}
	if len(r.DefaultCurve) != engine.Horizon {
		t.Errorf("curve len = %d", len(r.DefaultCurve))
	}
	if r.CacheHit {
		t.Error("uncached run marked as cache hit")
	}
	if len(res.Debts) != 2 {
		t.Errorf("debt lines = %d, want 2", len(res.Debts))
	}
}

func TestRun_InvalidProfile(t *testing.T) {
	p, opts := testSetup(t)
	p.Correlation = 2

	if _, err := Run(p, opts, nil); err == nil {
		t.Fatal("Run accepted correlation 2")
	}
}

func TestRunWithCache_HitsOnSecondRun(t *testing.T) {
	p, opts := testSetup(t)
	cache := openCache(t)

	first, err := RunWithCache(p, opts, cache, nil)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Report.CacheHit {
		t.Fatal("first run was a cache hit")
	}

	var calls int
	second, err := RunWithCache(p, opts, cache, func(current, total int) { calls++ })
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second.Report.CacheHit {
		t.Fatal("second run missed the cache")
	}
	if second.Report.RunID != first.Report.RunID {
		t.Errorf("RunID = %q, want %q", second.Report.RunID, first.Report.RunID)
	}
	if second.Report.Probability != first.Report.Probability {
		t.Errorf("Probability = %v, want %v", second.Report.Probability, first.Report.Probability)
	}
	if calls != 1 {
		t.Errorf("progress calls on hit = %d, want 1", calls)
	}

	n, err := cache.ReportCount()
	if err != nil || n != 1 {
		t.Fatalf("ReportCount = %d, %v; want 1", n, err)
	}
}

func TestRunWithCache_SharedInputsKeepProfileName(t *testing.T) {
	alice, opts := testSetup(t)
	alice.Name = "alice"
	bob := alice
	bob.Name = "bob"
	cache := openCache(t)

	first, err := RunWithCache(alice, opts, cache, nil)
	if err != nil {
		t.Fatalf("alice: %v", err)
	}
	second, err := RunWithCache(bob, opts, cache, nil)
	if err != nil {
		t.Fatalf("bob: %v", err)
	}

	if !second.Report.CacheHit {
		t.Fatal("identical inputs missed the cache")
	}
	if second.Report.Profile != "bob" {
		t.Fatalf("Profile = %q, want bob", second.Report.Profile)
	}
	if second.Report.RunID == first.Report.RunID {
		t.Fatal("bob reused alice's run ID")
	}
	if second.Report.Probability != first.Report.Probability {
		t.Errorf("Probability = %v, want %v", second.Report.Probability, first.Report.Probability)
	}

	rows, err := cache.History("bob", 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(rows) != 1 || rows[0].RunID != second.Report.RunID {
		t.Fatalf("bob history = %v, want the one relabelled run", rows)
	}
	if rows, _ := cache.History("alice", 0); len(rows) != 1 || rows[0].Profile != "alice" {
		t.Fatalf("alice history = %v, want one alice run", rows)
	}

	// A repeat for bob hits bob's own row and adds nothing.
	third, err := RunWithCache(bob, opts, cache, nil)
	if err != nil {
		t.Fatalf("bob again: %v", err)
	}
	if third.Report.RunID != second.Report.RunID {
		t.Errorf("RunID = %q, want %q", third.Report.RunID, second.Report.RunID)
	}

	// Switching back to alice finds alice's own run.
	again, err := RunWithCache(alice, opts, cache, nil)
	if err != nil {
		t.Fatalf("alice again: %v", err)
	}
	if again.Report.RunID != first.Report.RunID {
		t.Errorf("alice RunID = %q, want %q", again.Report.RunID, first.Report.RunID)
	}
	if n, _ := cache.ReportCount(); n != 2 {
		t.Fatalf("ReportCount = %d, want 2", n)
	}
}

func TestRunWithCache_SeedChangeMisses(t *testing.T) {
	p, opts := testSetup(t)
	cache := openCache(t)

	if _, err := RunWithCache(p, opts, cache, nil); err != nil {
		t.Fatal(err)
	}
	opts.Conversion.Seed++
	res, err := RunWithCache(p, opts, cache, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Report.CacheHit {
		t.Fatal("different seed hit the cache")
	}
	if n, _ := cache.ReportCount(); n != 2 {
		t.Fatalf("ReportCount = %d, want 2", n)
	}
}

func TestRunWithCache_ClosedCacheStillScores(t *testing.T) {
	p, opts := testSetup(t)
	cache, err := store.Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatal(err)
	}
	_ = cache.Close()

	res, err := RunWithCache(p, opts, cache, nil)
	if err != nil {
		t.Fatalf("RunWithCache with closed cache: %v", err)
	}
	if res.Report.CacheHit || res.Report.RunID == "" {
		t.Fatalf("report = %+v", res.Report)
	}
}

func TestFingerprint(t *testing.T) {
	p, opts := testSetup(t)
	in, err := profile.Inputs(p, opts.Conversion)
	if err != nil {
		t.Fatal(err)
	}

	base := Fingerprint(in)
	if len(base) != 64 {
		t.Fatalf("fingerprint length = %d, want 64", len(base))
	}
	if Fingerprint(in) != base {
		t.Fatal("fingerprint not stable")
	}

	changed := in
	changed.Debts = engine.NewPortfolio(in.Debts.Debt(0))
	if Fingerprint(changed) == base {
		t.Error("dropping a debt did not change the fingerprint")
	}

	changed = in
	changed.StartingCash += 0.01
	if Fingerprint(changed) == base {
		t.Error("starting cash change did not change the fingerprint")
	}
}

func TestSummarizeHistory(t *testing.T) {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	reports := []model.Report{
		{ShieldScore: 90, CreatedAt: base.Add(2 * time.Hour)},
		{ShieldScore: 80, CreatedAt: base},
		{ShieldScore: 95, CreatedAt: base.Add(time.Hour)},
	}

	tr := SummarizeHistory(reports)
	if tr.Runs != 3 || tr.Latest != 90 || tr.Best != 95 || tr.Worst != 80 || tr.Change != 10 {
		t.Fatalf("trend = %+v", tr)
	}
	if tr.Scores[0] != 80 || tr.Scores[1] != 95 || tr.Scores[2] != 90 {
		t.Fatalf("Scores = %v, want oldest first", tr.Scores)
	}

	if got := SummarizeHistory(nil); got.Runs != 0 {
		t.Fatalf("empty trend = %+v", got)
	}
}

func TestFilterByProfile(t *testing.T) {
	reports := []model.Report{{Profile: "a"}, {Profile: "b"}, {Profile: "a"}}
	if got := FilterByProfile(reports, "a"); len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
}

func TestCachePath_RespectsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	if want := filepath.Join(dir, "dshield", "results.db"); CachePath() != want {
		t.Fatalf("CachePath = %q, want %q", CachePath(), want)
	}
}
