package workflow

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	flow         TEXT NOT NULL,
	status       TEXT NOT NULL,
	current_step TEXT NOT NULL DEFAULT '',
	error        TEXT NOT NULL DEFAULT '',
	created_at   INTEGER NOT NULL,
	updated_at   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS checkpoints (
	run_id       TEXT NOT NULL,
	step         TEXT NOT NULL,
	payload      BLOB NOT NULL,
	completed_at INTEGER NOT NULL,
	PRIMARY KEY (run_id, step)
);
`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the checkpoint database at dsn and
// applies the schema.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dsn); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) CreateRun(ctx context.Context, run RunInfo) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, flow, status, current_step, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Flow, string(run.Status), run.CurrentStep, run.Error,
		run.CreatedAt.UnixMilli(), run.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (RunInfo, error) {
	var run RunInfo
	var status string
	var createdAt, updatedAt int64

	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, flow, status, current_step, error, created_at, updated_at
		FROM runs WHERE run_id = ?`, id).Scan(
		&run.ID, &run.Flow, &status, &run.CurrentStep, &run.Error, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return run, ErrRunNotFound
	}
	if err != nil {
		return run, fmt.Errorf("query run: %w", err)
	}

	run.Status = Status(status)
	run.CreatedAt = time.UnixMilli(createdAt)
	run.UpdatedAt = time.UnixMilli(updatedAt)
	return run, nil
}

func (s *SQLiteStore) UpdateRun(ctx context.Context, id string, status Status, currentStep, errMsg string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, current_step = ?, error = ?, updated_at = ?
		WHERE run_id = ?`,
		string(status), currentStep, errMsg, time.Now().UnixMilli(), id,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (s *SQLiteStore) SaveCheckpoint(ctx context.Context, runID, step string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO checkpoints (run_id, step, payload, completed_at)
		VALUES (?, ?, ?, ?)`,
		runID, step, payload, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert checkpoint: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetCheckpoint(ctx context.Context, runID, step string) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM checkpoints WHERE run_id = ? AND step = ?`,
		runID, step).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query checkpoint: %w", err)
	}
	return payload, true, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
