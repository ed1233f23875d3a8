package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;

-- Runs table: one row per pipeline stage execution
CREATE TABLE IF NOT EXISTS runs (
    run_id      INTEGER PRIMARY KEY AUTOINCREMENT,
    day         TEXT NOT NULL,              -- YYYY-MM-DD the stage ran for
    stage       TEXT NOT NULL,              -- collect | clean
    status      TEXT NOT NULL,              -- running | ok | skipped | failed
    started_at  TIMESTAMP NOT NULL,
    finished_at TIMESTAMP,

    -- Stage counters; meaning depends on the stage
    total       INTEGER DEFAULT 0,          -- threads listed / raw rows
    stored      INTEGER DEFAULT 0,          -- threads stored / records cleaned
    skipped     INTEGER DEFAULT 0,
    failures    INTEGER DEFAULT 0,

    detail      TEXT                        -- error text or informational note
);

CREATE INDEX IF NOT EXISTS idx_runs_day ON runs(day);
CREATE INDEX IF NOT EXISTS idx_runs_stage ON runs(stage);
`
