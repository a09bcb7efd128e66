// Package database persists the run history in SQLite.
package database

import (
	"database/sql"
	"fmt"
	"time"

	"tuto-go/internal/database/migrations"
	"tuto-go/internal/model"
	"tuto-go/internal/tuto"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Run statuses.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusError   = "error"
)

// SQLiteRunStore implements tuto.RunStore on a SQLite database.
type SQLiteRunStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ tuto.RunStore = (*SQLiteRunStore)(nil)

// NewSQLiteRunStore opens the database at path and migrates it to the latest
// schema. path can be a file path or ":memory:".
func NewSQLiteRunStore(path string) (*SQLiteRunStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}

	return &SQLiteRunStore{db: db, now: time.Now}, nil
}

// OpenConnection opens a SQLite database with a single connection, so
// in-memory databases keep their contents across queries.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func (s *SQLiteRunStore) CreateRun(runID, operation, parameters string) (*model.Run, error) {
	started := s.now()
	res, err := s.db.Exec(
		"INSERT INTO runs (run_id, operation, parameters, status, started_at) VALUES (?, ?, ?, ?, ?)",
		runID, operation, parameters, StatusRunning, started,
	)
	if err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}

	return &model.Run{
		ID:         id,
		RunID:      runID,
		Operation:  operation,
		Parameters: parameters,
		Status:     StatusRunning,
		StartedAt:  started,
	}, nil
}

func (s *SQLiteRunStore) FinishRun(id int64, status string) error {
	res, err := s.db.Exec(
		"UPDATE runs SET status = ?, finished_at = ? WHERE id = ?",
		status, s.now(), id,
	)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finishing run: no run with id %d", id)
	}
	return nil
}

func (s *SQLiteRunStore) ListRuns(limit int) ([]*model.Run, error) {
	rows, err := s.db.Query(
		"SELECT id, run_id, operation, parameters, status, started_at, finished_at FROM runs ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		var r model.Run
		if err := rows.Scan(&r.ID, &r.RunID, &r.Operation, &r.Parameters, &r.Status, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

func (s *SQLiteRunStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
