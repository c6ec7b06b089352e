// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists analysis runs in a local SQLite database so past
// digests can be re-rendered and compared without re-running the model.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/ttp-monitor/pkg/types"
)

// Store manages the run history SQLite database.
type Store struct {
	db *sql.DB
}

// Run summarizes one persisted analysis run.
type Run struct {
	ID            int64
	StartedAt     time.Time
	Model         string
	Actionable    int
	Informational int
	Failed        int
}

// Total returns the number of records in the run.
func (r Run) Total() int {
	return r.Actionable + r.Informational + r.Failed
}

// NewStore opens or creates the database at dbPath, creating the schema
// if needed.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			model TEXT NOT NULL,
			actionable INTEGER NOT NULL,
			informational INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			seq INTEGER NOT NULL,
			source_url TEXT,
			content_type TEXT NOT NULL,
			summary TEXT,
			error TEXT,
			data TEXT,
			PRIMARY KEY (run_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_content_type ON records(content_type)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun persists one analysis run and its records in input order,
// returning the new run ID. Record counts are derived from the records
// themselves.
func (s *Store) SaveRun(ctx context.Context, model string, startedAt time.Time, records []types.AnalysisRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var actionable, informational, failed int
	for _, rec := range records {
		switch {
		case rec.Actionable():
			actionable++
		case rec.ContentType == types.TypeNotActionable:
			informational++
		default:
			failed++
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, model, actionable, informational, failed)
		 VALUES (?, ?, ?, ?, ?)`,
		startedAt.UTC().Format(time.RFC3339), model, actionable, informational, failed,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run ID: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (run_id, seq, source_url, content_type, summary, error, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		var dataJSON []byte
		if rec.Data != nil {
			dataJSON, err = json.Marshal(rec.Data)
			if err != nil {
				return 0, fmt.Errorf("marshaling record %d data: %w", i, err)
			}
		}
		if _, err := stmt.ExecContext(ctx,
			runID, i, rec.SourceURL, string(rec.ContentType), rec.Summary, rec.Error, string(dataJSON),
		); err != nil {
			return 0, fmt.Errorf("inserting record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// LatestRun returns the most recently saved run.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	return s.scanRun(s.db.QueryRowContext(ctx,
		`SELECT id, started_at, model, actionable, informational, failed
		 FROM runs ORDER BY id DESC LIMIT 1`))
}

// GetRun returns the run with the given ID.
func (s *Store) GetRun(ctx context.Context, runID int64) (Run, error) {
	return s.scanRun(s.db.QueryRowContext(ctx,
		`SELECT id, started_at, model, actionable, informational, failed
		 FROM runs WHERE id = ?`, runID))
}

func (s *Store) scanRun(row *sql.Row) (Run, error) {
	var run Run
	var startedAt string
	err := row.Scan(&run.ID, &startedAt, &run.Model, &run.Actionable, &run.Informational, &run.Failed)
	if err == sql.ErrNoRows {
		return Run{}, fmt.Errorf("no runs recorded yet")
	}
	if err != nil {
		return Run{}, fmt.Errorf("reading run: %w", err)
	}
	if t, parseErr := time.Parse(time.RFC3339, startedAt); parseErr == nil {
		run.StartedAt = t
	}
	return run, nil
}

// RunRecords returns a run's records in their original input order.
func (s *Store) RunRecords(ctx context.Context, runID int64) ([]types.AnalysisRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_url, content_type, summary, error, data
		 FROM records WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []types.AnalysisRecord
	for rows.Next() {
		var rec types.AnalysisRecord
		var contentType, dataJSON string
		if err := rows.Scan(&rec.SourceURL, &contentType, &rec.Summary, &rec.Error, &dataJSON); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec.ContentType = types.ContentType(contentType)
		if dataJSON != "" {
			if err := json.Unmarshal([]byte(dataJSON), &rec.Data); err != nil {
				return nil, fmt.Errorf("parsing record data: %w", err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountByType returns how many records of each content type a run holds.
func (s *Store) CountByType(ctx context.Context, runID int64) (map[types.ContentType]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT content_type, count(*) FROM records WHERE run_id = ? GROUP BY content_type`, runID)
	if err != nil {
		return nil, fmt.Errorf("counting records: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.ContentType]int)
	for rows.Next() {
		var ct string
		var n int
		if err := rows.Scan(&ct, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[types.ContentType(ct)] = n
	}
	return counts, rows.Err()
}
