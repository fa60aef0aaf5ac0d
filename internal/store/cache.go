// Package store provides a SQLite-backed cache of scored profiles.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/dshield/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache stores every scored run, keyed by run ID and indexed by input fingerprint.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const reportColumns = `run_id, fingerprint, profile, trials, seed, correlation,
	defaults_count, probability, std_err, shield_score, elapsed_ms, created_at`

// SaveReport stores a run and its monthly default curve.
func (c *Cache) SaveReport(r model.Report) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	// SQLite integers are signed; the seed round-trips through int64 bits.
	_, err = tx.Exec(`INSERT OR REPLACE INTO runs (`+reportColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Fingerprint, r.Profile, r.Trials, int64(r.Seed), r.Correlation,
		r.Defaults, r.Probability, r.StdErr, r.ShieldScore, r.Elapsed.Milliseconds(),
		created.UTC().Format(timeLayout),
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec("DELETE FROM run_months WHERE run_id = ?", r.RunID)
	if err != nil {
		return err
	}

	for i, p := range r.DefaultCurve {
		_, err = tx.Exec(`INSERT INTO run_months (run_id, month, cumulative_default)
			VALUES (?, ?, ?)`, r.RunID, i+1, p)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Lookup returns the most recent run with the given fingerprint, preferring
// runs recorded for profile over those of other profiles.
// ok is false when no run matches.
func (c *Cache) Lookup(fingerprint, profile string) (model.Report, bool, error) {
	row := c.db.QueryRow(`SELECT `+reportColumns+` FROM runs
		WHERE fingerprint = ?
		ORDER BY (profile = ?) DESC, created_at DESC LIMIT 1`, fingerprint, profile)

	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Report{}, false, nil
	}
	if err != nil {
		return model.Report{}, false, err
	}

	if err := c.loadCurves([]model.Report{r}, func(_ int, curve []float64) { r.DefaultCurve = curve }); err != nil {
		return model.Report{}, false, err
	}
	return r, true, nil
}

// History returns up to limit runs, newest first. An empty profile matches
// every profile; a non-positive limit means no limit.
func (c *Cache) History(profile string, limit int) ([]model.Report, error) {
	var (
		where []string
		args  []any
	)
	if profile != "" {
		where = append(where, "profile = ?")
		args = append(args, profile)
	}

	query := `SELECT ` + reportColumns + ` FROM runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var reports []model.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = c.loadCurves(reports, func(i int, curve []float64) { reports[i].DefaultCurve = curve })
	return reports, err
}

// loadCurves batch-loads the monthly curves for reports and hands each to set.
func (c *Cache) loadCurves(reports []model.Report, set func(i int, curve []float64)) error {
	if len(reports) == 0 {
		return nil
	}

	idx := make(map[string]int, len(reports))
	placeholders := make([]string, len(reports))
	args := make([]any, len(reports))
	for i, r := range reports {
		idx[r.RunID] = i
		placeholders[i] = "?"
		args[i] = r.RunID
	}

	rows, err := c.db.Query(`SELECT run_id, month, cumulative_default FROM run_months
		WHERE run_id IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY run_id, month`, args...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	curves := make(map[string][]float64, len(reports))
	for rows.Next() {
		var (
			id    string
			month int
			p     float64
		)
		if err := rows.Scan(&id, &month, &p); err != nil {
			return err
		}
		curves[id] = append(curves[id], p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for id, curve := range curves {
		if i, ok := idx[id]; ok {
			set(i, curve)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(s scanner) (model.Report, error) {
	var (
		r         model.Report
		seed      int64
		elapsedMs sql.NullInt64
		stdErr    sql.NullFloat64
		corr      sql.NullFloat64
		created   string
	)
	err := s.Scan(&r.RunID, &r.Fingerprint, &r.Profile, &r.Trials, &seed, &corr,
		&r.Defaults, &r.Probability, &stdErr, &r.ShieldScore, &elapsedMs, &created)
	if err != nil {
		return model.Report{}, err
	}

	r.Seed = uint64(seed)
	if corr.Valid {
		r.Correlation = corr.Float64
	}
	if stdErr.Valid {
		r.StdErr = stdErr.Float64
	}
	if elapsedMs.Valid {
		r.Elapsed = time.Duration(elapsedMs.Int64) * time.Millisecond
	}
	r.CreatedAt, _ = time.Parse(timeLayout, created)
	return r, nil
}

// Run lookup errors returned by DeleteRun.
var (
	ErrRunNotFound  = errors.New("no cached run matches")
	ErrAmbiguousRun = errors.New("run ID prefix matches more than one run")
)

// DeleteRun removes the run whose ID starts with prefix, along with its curve.
// It returns the full ID of the deleted run.
func (c *Cache) DeleteRun(prefix string) (string, error) {
	if prefix == "" {
		return "", ErrRunNotFound
	}
	rows, err := c.db.Query("SELECT run_id FROM runs WHERE substr(run_id, 1, ?) = ? LIMIT 2", len(prefix), prefix)
	if err != nil {
		return "", fmt.Errorf("finding run: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return "", err
		}
		ids = append(ids, id)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w %q", ErrRunNotFound, prefix)
	case 1:
	default:
		return "", fmt.Errorf("%w: %q", ErrAmbiguousRun, prefix)
	}

	if _, err := c.db.Exec("DELETE FROM runs WHERE run_id = ?", ids[0]); err != nil {
		return "", fmt.Errorf("deleting run: %w", err)
	}
	return ids[0], nil
}

// ReportCount returns the number of cached runs.
func (c *Cache) ReportCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count)
	return count, err
}
