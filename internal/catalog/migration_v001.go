package catalog

import "database/sql"

// migrateV001 creates the initial catalog schema. Every statement uses
// IF NOT EXISTS for idempotency.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			input_file  TEXT NOT NULL,
			input_hash  TEXT NOT NULL DEFAULT '',
			periodicity TEXT NOT NULL,
			only_last   BOOLEAN NOT NULL DEFAULT 0,
			timestamps  INTEGER NOT NULL DEFAULT 0,
			pages       INTEGER NOT NULL DEFAULT 0,
			revisions   INTEGER NOT NULL DEFAULT 0,
			skipped     INTEGER NOT NULL DEFAULT 0,
			pairs       INTEGER NOT NULL DEFAULT 0,
			started_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			finished_at DATETIME,
			status      TEXT NOT NULL DEFAULT 'running'
			            CHECK (status IN ('running', 'completed', 'failed')),
			error       TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_input_hash ON runs(input_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_status     ON runs(status)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
