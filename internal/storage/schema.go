package storage

import (
	"database/sql"
	"fmt"
)

// migrations[i] upgrades a database from version i to i+1. The version is
// kept in SQLite's user_version header field.
var migrations = []func(tx *sql.Tx) error{
	createRadarTables,
}

// currentSchemaVersion is the version a fully migrated database reports.
var currentSchemaVersion = len(migrations)

// migrate brings the schema up to currentSchemaVersion. A new file starts
// at version 0 and runs every step.
func (db *DB) migrate() error {
	version, err := db.schemaVersion()
	if err != nil {
		return err
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}
	if version == currentSchemaVersion {
		return nil
	}

	err = db.WithTx(func(tx *sql.Tx) error {
		for v := version; v < currentSchemaVersion; v++ {
			if err := migrations[v](tx); err != nil {
				return fmt.Errorf("migration to version %d: %w", v+1, err)
			}
		}
		// PRAGMA takes no bind parameters.
		_, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion))
		return err
	})
	if err != nil {
		return err
	}

	db.logger.Info("Database schema migrated", map[string]interface{}{
		"from_version": version,
		"to_version":   currentSchemaVersion,
	})
	return nil
}

func (db *DB) schemaVersion() (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// createRadarTables creates radar_runs, which keeps each full report as a
// compressed blob next to listing columns, and file_snapshots, one row per
// analyzed file per run for trends.
func createRadarTables(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE radar_runs (
			run_id TEXT PRIMARY KEY,
			repository TEXT NOT NULL,
			source TEXT NOT NULL,
			generated_at TEXT NOT NULL,
			file_count INTEGER NOT NULL,
			failed_count INTEGER NOT NULL DEFAULT 0,
			report_blob BLOB NOT NULL
		)`,
		`CREATE INDEX idx_radar_runs_generated ON radar_runs(generated_at)`,
		`CREATE TABLE file_snapshots (
			run_id TEXT NOT NULL REFERENCES radar_runs(run_id) ON DELETE CASCADE,
			path TEXT NOT NULL,
			snapshot_date TEXT NOT NULL,
			changes INTEGER NOT NULL,
			max_cognitive INTEGER NOT NULL,
			hotness INTEGER NOT NULL,
			score REAL NOT NULL,
			PRIMARY KEY (run_id, path)
		)`,
		`CREATE INDEX idx_file_snapshots_path ON file_snapshots(path, snapshot_date)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
