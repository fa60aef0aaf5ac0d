package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    run_id               TEXT PRIMARY KEY,
    fingerprint          TEXT NOT NULL,
    profile              TEXT NOT NULL,
    trials               INTEGER NOT NULL,
    seed                 INTEGER NOT NULL,
    correlation          REAL,
    defaults_count       INTEGER NOT NULL,
    probability          REAL NOT NULL,
    std_err              REAL,
    shield_score         REAL NOT NULL,
    elapsed_ms           INTEGER,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_months (
    run_id               TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    month                INTEGER NOT NULL,
    cumulative_default   REAL NOT NULL,
    PRIMARY KEY (run_id, month)
);

CREATE INDEX IF NOT EXISTS idx_runs_fingerprint ON runs(fingerprint);
CREATE INDEX IF NOT EXISTS idx_runs_profile ON runs(profile, created_at);
`
