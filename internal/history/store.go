// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a SQLite log of build runs and their stages.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/reportbuild/pkg/types"
)

// DBFile is the history database name inside the build directory.
const DBFile = "history.db"

const defaultLimit = 20

// timeLayout is fixed width so text order in SQLite matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the run history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates buildDir/history.db and its schema.
func Open(buildDir string) (*Store, error) {
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating build directory: %w", err)
	}

	dbPath := filepath.Join(buildDir, DBFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
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
			id TEXT PRIMARY KEY,
			flow TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			failed_stage TEXT,
			artifact TEXT,
			pages INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS stages (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			name TEXT NOT NULL,
			tool TEXT,
			artifact TEXT,
			log_path TEXT,
			status TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			error TEXT,
			PRIMARY KEY (run_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends run and its stages. A run without an ID gets a new one,
// which is returned.
func (s *Store) Record(ctx context.Context, run types.RunRecord) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, flow, started_at, finished_at, failed_stage, artifact, pages)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Flow),
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		run.FailedStage, run.Artifact, run.Pages,
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO stages (run_id, seq, name, tool, artifact, log_path, status, duration_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, st := range run.Stages {
		_, err := stmt.ExecContext(ctx,
			run.ID, i, st.Name, st.Tool, st.Artifact, st.LogPath,
			string(st.Status), st.Duration.Milliseconds(), st.Error,
		)
		if err != nil {
			return "", fmt.Errorf("inserting stage %s: %w", st.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return run.ID, nil
}

// Recent returns up to limit runs, newest first, with their stages.
// A limit of zero or less uses the default of 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.RunRecord, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, flow, started_at, finished_at, failed_stage, artifact, pages
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.RunRecord
	for rows.Next() {
		var (
			r                 types.RunRecord
			flow              string
			started, finished string
			failed, artifact  sql.NullString
			pages             sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &flow, &started, &finished, &failed, &artifact, &pages); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Flow = types.Flow(flow)
		r.StartedAt = parseTime(started)
		r.FinishedAt = parseTime(finished)
		r.FailedStage = failed.String
		r.Artifact = artifact.String
		r.Pages = int(pages.Int64)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i := range runs {
		stages, err := s.stages(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Stages = stages
	}
	return runs, nil
}

// parseTime also accepts RFC 3339 text written before timeLayout was fixed
// width.
func parseTime(v string) time.Time {
	if t, err := time.Parse(timeLayout, v); err == nil {
		return t
	}
	t, _ := time.Parse(time.RFC3339Nano, v)
	return t
}

func (s *Store) stages(ctx context.Context, runID string) ([]types.StageRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, tool, artifact, log_path, status, duration_ms, error
		 FROM stages WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying stages for run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []types.StageRecord
	for rows.Next() {
		var (
			st                           types.StageRecord
			tool, artifact, logPath, msg sql.NullString
			status                       string
			ms                           int64
		)
		if err := rows.Scan(&st.Name, &tool, &artifact, &logPath, &status, &ms, &msg); err != nil {
			return nil, fmt.Errorf("scanning stage: %w", err)
		}
		st.Tool = tool.String
		st.Artifact = artifact.String
		st.LogPath = logPath.String
		st.Status = types.StageStatus(status)
		st.Duration = time.Duration(ms) * time.Millisecond
		st.Error = msg.String
		out = append(out, st)
	}
	return out, rows.Err()
}
