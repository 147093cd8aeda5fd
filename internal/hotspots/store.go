package hotspots

import (
	"database/sql"
	"fmt"
	"time"

	radarerrors "radar/internal/errors"
	"radar/internal/logging"
	"radar/internal/storage"
)

// storedTimeLayout is fixed-width so stored timestamps sort lexically.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RunSummary describes a stored run without its rows.
type RunSummary struct {
	RunID       string    `json:"runId" yaml:"runId"`
	Repository  string    `json:"repository" yaml:"repository"`
	Source      string    `json:"source" yaml:"source"`
	GeneratedAt time.Time `json:"generatedAt" yaml:"generatedAt"`
	Files       int       `json:"files" yaml:"files"`
	Failed      int       `json:"failed" yaml:"failed"`
}

// Store persists reports for later comparison.
type Store struct {
	db     *storage.DB
	logger *logging.Logger
}

// OpenStore opens (or creates) the history database at path.
func OpenStore(path string, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	db, err := storage.Open(path, logger)
	if err != nil {
		return nil, radarerrors.NewRadarError(radarerrors.BackendUnavailable, "cannot open history store", err, nil).WithPath(path)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveReport stores the report and one snapshot per analyzed row.
func (s *Store) SaveReport(r *Report) error {
	blob, err := storage.EncodeBlob(r)
	if err != nil {
		return err
	}
	generated := r.GeneratedAt.UTC().Format(storedTimeLayout)

	err = s.db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT INTO radar_runs (run_id, repository, source, generated_at, file_count, failed_count, report_blob)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, r.RunID, r.Repository, r.Source, generated, len(r.Rows), r.Failed, blob); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO file_snapshots (run_id, path, snapshot_date, changes, max_cognitive, hotness, score)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, row := range r.Rows {
			if row.Status != StatusAnalyzed {
				continue
			}
			if _, err := stmt.Exec(r.RunID, row.Path, generated, row.Changes, row.MaxCognitive, row.Hotness, row.Score); err != nil {
				return fmt.Errorf("insert snapshot %s: %w", row.Path, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("Saved report", map[string]interface{}{
		"runId": r.RunID,
		"rows":  len(r.Rows),
		"bytes": len(blob),
	})
	return nil
}

// ListRuns returns stored runs, newest first. limit <= 0 returns all.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	query := `SELECT run_id, repository, source, generated_at, file_count, failed_count
		FROM radar_runs ORDER BY generated_at DESC, run_id`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var rs RunSummary
		var generated string
		if err := rows.Scan(&rs.RunID, &rs.Repository, &rs.Source, &generated, &rs.Files, &rs.Failed); err != nil {
			return nil, err
		}
		rs.GeneratedAt, _ = time.Parse(storedTimeLayout, generated)
		runs = append(runs, rs)
	}
	return runs, rows.Err()
}

// LoadReport returns the full report of a stored run.
func (s *Store) LoadReport(runID string) (*Report, error) {
	var blob []byte
	err := s.db.QueryRow(`SELECT report_blob FROM radar_runs WHERE run_id = ?`, runID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, radarerrors.NewRadarError(radarerrors.InternalError, "run not found: "+runID, err, nil)
	}
	if err != nil {
		return nil, err
	}

	var r Report
	if err := storage.DecodeBlob(blob, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// FileHistory returns a file's snapshots, oldest first.
func (s *Store) FileHistory(path string) ([]Snapshot, error) {
	rows, err := s.db.Query(`
		SELECT run_id, path, snapshot_date, changes, max_cognitive, hotness, score
		FROM file_snapshots WHERE path = ? ORDER BY snapshot_date, run_id
	`, path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var sn Snapshot
		var date string
		if err := rows.Scan(&sn.RunID, &sn.Path, &date, &sn.Changes, &sn.MaxCognitive, &sn.Hotness, &sn.Score); err != nil {
			return nil, err
		}
		sn.Date, _ = time.Parse(storedTimeLayout, date)
		snaps = append(snaps, sn)
	}
	return snaps, rows.Err()
}

// FileTrend computes the score trend of a file across stored runs.
func (s *Store) FileTrend(path string) (*Trend, []Snapshot, error) {
	snaps, err := s.FileHistory(path)
	if err != nil {
		return nil, nil, err
	}
	return CalculateTrend(snaps), snaps, nil
}
