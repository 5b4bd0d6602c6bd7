// Package workflow provides durable, independently-retryable step execution
// for the ingest and query flows. A step's result is checkpointed before the
// next step runs, so a resumed run never re-executes completed steps.
package workflow

import (
	"context"
	"errors"
	"time"
)

// ErrRunNotFound is returned when a run id has no record.
var ErrRunNotFound = errors.New("run not found")

// Status is the lifecycle state of a flow run.
type Status string

const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// RunInfo is the persisted record of a flow run.
type RunInfo struct {
	ID          string    `json:"id"`
	Flow        string    `json:"flow"`
	Status      Status    `json:"status"`
	CurrentStep string    `json:"current_step,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store persists run state transitions and step checkpoints. Every
// transition is written before execution proceeds.
type Store interface {
	CreateRun(ctx context.Context, run RunInfo) error
	GetRun(ctx context.Context, id string) (RunInfo, error)
	UpdateRun(ctx context.Context, id string, status Status, currentStep, errMsg string) error

	SaveCheckpoint(ctx context.Context, runID, step string, payload []byte) error
	// GetCheckpoint returns the checkpointed payload for (runID, step) and
	// whether one exists.
	GetCheckpoint(ctx context.Context, runID, step string) ([]byte, bool, error)

	Close() error
}
