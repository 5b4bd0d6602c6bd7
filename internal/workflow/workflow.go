package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// fatalError marks an error as non-retryable. Configuration and schema
// errors are wrapped with Fatal by flow code; everything else is treated as
// transient and retried until the backoff budget is exhausted.
type fatalError struct {
	err error
}

func (f *fatalError) Error() string { return f.err.Error() }
func (f *fatalError) Unwrap() error { return f.err }

// Fatal wraps err so step execution fails immediately instead of retrying.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

// IsFatal reports whether err carries the non-retryable marker.
func IsFatal(err error) bool {
	var f *fatalError
	return errors.As(err, &f)
}

// Engine executes flows as sequences of checkpointed steps against a Store.
// Runs are independent; an Engine may drive many concurrently.
type Engine struct {
	store  Store
	logger *slog.Logger
}

// NewEngine creates an Engine over the given checkpoint store.
func NewEngine(store Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, logger: logger}
}

// Run is a handle to one flow invocation.
type Run struct {
	ID     string
	Flow   string
	engine *Engine
}

// StartRun persists a new run for the named flow and transitions it to
// running.
func (e *Engine) StartRun(ctx context.Context, flow string) (*Run, error) {
	now := time.Now()
	run := RunInfo{
		ID:        uuid.New().String(),
		Flow:      flow,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	if err := e.store.UpdateRun(ctx, run.ID, StatusRunning, "", ""); err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}

	e.logger.Info("run started", "run", run.ID, "flow", flow)
	return &Run{ID: run.ID, Flow: flow, engine: e}, nil
}

// ResumeRun reopens an interrupted run. Completed steps are skipped via
// their checkpoints when the flow re-executes. Completed runs cannot be
// resumed.
func (e *Engine) ResumeRun(ctx context.Context, id string) (*Run, error) {
	info, err := e.store.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if info.Status == StatusComplete {
		return nil, fmt.Errorf("run %s already complete", id)
	}
	if err := e.store.UpdateRun(ctx, id, StatusRunning, info.CurrentStep, ""); err != nil {
		return nil, fmt.Errorf("resume run: %w", err)
	}

	e.logger.Info("run resumed", "run", id, "flow", info.Flow, "step", info.CurrentStep)
	return &Run{ID: id, Flow: info.Flow, engine: e}, nil
}

// RunInfo returns the persisted state of a run.
func (e *Engine) RunInfo(ctx context.Context, id string) (RunInfo, error) {
	return e.store.GetRun(ctx, id)
}

// Complete transitions the run to its terminal success state.
func (r *Run) Complete(ctx context.Context) error {
	r.engine.logger.Info("run complete", "run", r.ID, "flow", r.Flow)
	return r.engine.store.UpdateRun(ctx, r.ID, StatusComplete, "", "")
}

// Fail transitions the run to its terminal failure state, recording the
// error for operator diagnosis.
func (r *Run) Fail(ctx context.Context, cause error) error {
	r.engine.logger.Error("run failed", "run", r.ID, "flow", r.Flow, "error", cause)
	info, err := r.engine.store.GetRun(ctx, r.ID)
	if err != nil {
		return err
	}
	return r.engine.store.UpdateRun(ctx, r.ID, StatusFailed, info.CurrentStep, cause.Error())
}

// Step executes one named step of a run with checkpoint-or-execute
// semantics: if a checkpoint for (run, name) exists its decoded result is
// returned without re-running fn; otherwise fn runs under exponential
// backoff retry and its JSON-marshalled result is checkpointed before
// returning. fn must be idempotent with respect to its declared inputs —
// the step may re-execute after a crash that struck between fn returning
// and the checkpoint write.
func Step[T any](ctx context.Context, r *Run, name string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	payload, ok, err := r.engine.store.GetCheckpoint(ctx, r.ID, name)
	if err != nil {
		return zero, fmt.Errorf("step %s: load checkpoint: %w", name, err)
	}
	if ok {
		var result T
		if err := json.Unmarshal(payload, &result); err != nil {
			return zero, fmt.Errorf("step %s: decode checkpoint: %w", name, err)
		}
		r.engine.logger.Debug("step already checkpointed, skipping", "run", r.ID, "step", name)
		return result, nil
	}

	if err := r.engine.store.UpdateRun(ctx, r.ID, StatusRunning, name, ""); err != nil {
		return zero, fmt.Errorf("step %s: %w", name, err)
	}

	var result T
	operation := func() error {
		res, err := fn(ctx)
		if err != nil {
			if IsFatal(err) {
				return backoff.Permanent(err)
			}
			r.engine.logger.Warn("step attempt failed, will retry", "run", r.ID, "step", name, "error", err)
			return err
		}
		result = res
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		err = unwrapFatal(err)
		if updateErr := r.engine.store.UpdateRun(ctx, r.ID, StatusFailed, name, err.Error()); updateErr != nil {
			r.engine.logger.Error("failed to record step failure", "run", r.ID, "step", name, "error", updateErr)
		}
		r.engine.logger.Error("step failed", "run", r.ID, "flow", r.Flow, "step", name, "error", err)
		return zero, fmt.Errorf("step %s: %w", name, err)
	}

	data, err := json.Marshal(result)
	if err != nil {
		return zero, fmt.Errorf("step %s: encode result: %w", name, err)
	}
	if err := r.engine.store.SaveCheckpoint(ctx, r.ID, name, data); err != nil {
		return zero, fmt.Errorf("step %s: save checkpoint: %w", name, err)
	}

	r.engine.logger.Info("step complete", "run", r.ID, "step", name)
	return result, nil
}

// unwrapFatal strips the fatal marker so callers see the underlying error.
func unwrapFatal(err error) error {
	var f *fatalError
	if errors.As(err, &f) {
		return f.err
	}
	return err
}
