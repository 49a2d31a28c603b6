// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the entity list, per-entity results and batch
// runs in SQLite, and exports them as YAML or JSON backups.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/ambiguity-engine/pkg/types"
)

// ErrUnknownEntity is returned by Record for an index that was never imported.
var ErrUnknownEntity = errors.New("unknown entity")

// Store manages the result database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates the SQLite database at cfg.DBPath and creates
// the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("store: database path is empty")
	}
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: cfg.DBPath}
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

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entities (
			idx INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			processed INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL DEFAULT '',
			ambiguity_data TEXT NOT NULL DEFAULT '',
			source_links TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			link TEXT NOT NULL DEFAULT '',
			failure_kind TEXT NOT NULL DEFAULT '',
			failure_detail TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS candidates (
			entity_idx INTEGER NOT NULL REFERENCES entities(idx) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			label TEXT NOT NULL,
			link TEXT NOT NULL,
			PRIMARY KEY (entity_idx, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entities_processed ON entities(processed)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL DEFAULT '',
			resolved INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// ImportSummary holds counts from an entity list import.
type ImportSummary struct {
	Added      int
	Duplicates int
	Blank      int
}

// Import appends names to the entity list in order. Blank names and names
// already present are skipped, so importing the same list twice is a no-op.
func (s *Store) Import(ctx context.Context, names []string) (ImportSummary, error) {
	var summary ImportSummary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(idx) + 1, 0) FROM entities`).Scan(&next); err != nil {
		return summary, fmt.Errorf("reading next index: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO entities (idx, name) VALUES (?, ?)`)
	if err != nil {
		return summary, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			summary.Blank++
			continue
		}
		res, err := stmt.ExecContext(ctx, next, name)
		if err != nil {
			return summary, fmt.Errorf("inserting entity %q: %w", name, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			summary.Duplicates++
			continue
		}
		summary.Added++
		next++
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing import: %w", err)
	}
	return summary, nil
}

// Entities returns every entity in index order with its processed flag.
func (s *Store) Entities(ctx context.Context) ([]types.Entity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT idx, name, processed FROM entities ORDER BY idx`)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	var entities []types.Entity
	for rows.Next() {
		var e types.Entity
		if err := rows.Scan(&e.Index, &e.Name, &e.Processed); err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// Record stores the result for an entity and marks it processed. The
// previous result and candidates of the entity are replaced.
func (s *Store) Record(ctx context.Context, e types.Entity, res types.AmbiguityResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var failureKind, failureDetail string
	if res.Failure != nil {
		failureKind = string(res.Failure.Kind)
		failureDetail = res.Failure.Detail
	}

	out, err := tx.ExecContext(ctx,
		`UPDATE entities SET
			processed = 1, status = ?, kind = ?, ambiguity_data = ?, source_links = ?,
			summary = ?, link = ?, failure_kind = ?, failure_detail = ?, updated_at = ?
		 WHERE idx = ?`,
		res.Status(), string(res.Kind), res.Meanings(), res.Links(),
		res.Summary, res.Link, failureKind, failureDetail,
		time.Now().UTC().Format(time.RFC3339Nano),
		e.Index,
	)
	if err != nil {
		return fmt.Errorf("updating entity %d: %w", e.Index, err)
	}
	if n, _ := out.RowsAffected(); n == 0 {
		return fmt.Errorf("recording %q (index %d): %w", e.Name, e.Index, ErrUnknownEntity)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM candidates WHERE entity_idx = ?`, e.Index); err != nil {
		return fmt.Errorf("deleting old candidates: %w", err)
	}

	if len(res.Candidates) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO candidates (entity_idx, position, label, link) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing candidate insert: %w", err)
		}
		defer stmt.Close()

		for i, c := range res.Candidates {
			if _, err := stmt.ExecContext(ctx, e.Index, i, c.Label, c.Link); err != nil {
				return fmt.Errorf("inserting candidate %d of %q: %w", i, e.Name, err)
			}
		}
	}

	return tx.Commit()
}

// Results returns every entity with its stored result, in index order.
// Unprocessed entities carry a zero result.
func (s *Store) Results(ctx context.Context) ([]types.Record, error) {
	candidates, err := s.candidatesByEntity(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, name, processed, status, kind, summary, link,
			failure_kind, failure_detail, updated_at
		 FROM entities ORDER BY idx`)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var records []types.Record
	for rows.Next() {
		var (
			r                          types.Record
			kind, failKind, failDetail string
			updatedAt                  string
		)
		if err := rows.Scan(&r.Index, &r.Name, &r.Processed, &r.Status, &kind,
			&r.Result.Summary, &r.Result.Link, &failKind, &failDetail, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		r.Result.Kind = types.ResultKind(kind)
		if failKind != "" {
			r.Result.Failure = &types.Failure{Kind: types.FailureKind(failKind), Detail: failDetail}
		}
		if r.Result.Kind == types.ResultDisambiguated {
			r.Result.Candidates = candidates[r.Index]
		}
		if updatedAt != "" {
			if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
				r.UpdatedAt = t
			}
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) candidatesByEntity(ctx context.Context) (map[int][]types.Candidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entity_idx, label, link FROM candidates ORDER BY entity_idx, position`)
	if err != nil {
		return nil, fmt.Errorf("querying candidates: %w", err)
	}
	defer rows.Close()

	out := make(map[int][]types.Candidate)
	for rows.Next() {
		var (
			idx int
			c   types.Candidate
		)
		if err := rows.Scan(&idx, &c.Label, &c.Link); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		out[idx] = append(out[idx], c)
	}
	return out, rows.Err()
}

// Reset clears stored results so the next run resolves the entities again.
// With failedOnly set, only entities whose status is Failed are cleared.
// It returns the number of entities reset.
func (s *Store) Reset(ctx context.Context, failedOnly bool) (int64, error) {
	where := ""
	var args []any
	if failedOnly {
		where = ` WHERE status = ?`
		args = append(args, types.StatusFailed)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM candidates WHERE entity_idx IN (SELECT idx FROM entities`+where+`)`, args...); err != nil {
		return 0, fmt.Errorf("deleting candidates: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE entities SET processed = 0, status = '', kind = '', ambiguity_data = '',
			source_links = '', summary = '', link = '', failure_kind = '', failure_detail = '',
			updated_at = ''`+where, args...)
	if err != nil {
		return 0, fmt.Errorf("resetting entities: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, tx.Commit()
}

// RunStats holds the counts stored for a finished batch run.
type RunStats struct {
	Resolved int
	Failed   int
	Skipped  int
}

// StartRun records the start of a batch run and returns its id.
func (s *Store) StartRun(ctx context.Context) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("recording run start: %w", err)
	}
	return id, nil
}

// FinishRun stores the final counts of a run.
func (s *Store) FinishRun(ctx context.Context, id string, stats RunStats) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, resolved = ?, failed = ?, skipped = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), stats.Resolved, stats.Failed, stats.Skipped, id)
	if err != nil {
		return fmt.Errorf("recording run finish: %w", err)
	}
	return nil
}

// Run is one row of the runs table.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	RunStats
}

// Runs lists batch runs, most recent first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, resolved, failed, skipped FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished string
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.Resolved, &r.Failed, &r.Skipped); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished != "" {
			r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
