package workflow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "checkpoints.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewEngine(store, nil)
}

func TestRun_HappyPath(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	run, err := engine.StartRun(ctx, "test-flow")
	require.NoError(t, err)

	info, err := engine.RunInfo(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, info.Status)

	result, err := Step(ctx, run, "step-one", func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)

	require.NoError(t, run.Complete(ctx))

	info, err = engine.RunInfo(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, info.Status)
}

func TestStep_SkipsCheckpointedWork(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	run, err := engine.StartRun(ctx, "test-flow")
	require.NoError(t, err)

	executions := 0
	body := func(ctx context.Context) (string, error) {
		executions++
		return "expensive result", nil
	}

	first, err := Step(ctx, run, "expensive-step", body)
	require.NoError(t, err)

	// Simulate a crash and resume: same run id, step re-declared.
	resumed, err := engine.ResumeRun(ctx, run.ID)
	require.NoError(t, err)

	second, err := Step(ctx, resumed, "expensive-step", body)
	require.NoError(t, err)

	assert.Equal(t, 1, executions, "checkpointed step must not re-run")
	assert.Equal(t, first, second)
}

func TestStep_CheckpointPreservesTypedResults(t *testing.T) {
	type intermediate struct {
		Chunks   []string `json:"chunks"`
		SourceID string   `json:"source_id"`
	}

	ctx := context.Background()
	engine := newTestEngine(t)

	run, err := engine.StartRun(ctx, "test-flow")
	require.NoError(t, err)

	want := intermediate{Chunks: []string{"a", "b", "c"}, SourceID: "doc1"}
	_, err = Step(ctx, run, "produce", func(ctx context.Context) (intermediate, error) {
		return want, nil
	})
	require.NoError(t, err)

	resumed, err := engine.ResumeRun(ctx, run.ID)
	require.NoError(t, err)

	got, err := Step(ctx, resumed, "produce", func(ctx context.Context) (intermediate, error) {
		t.Fatal("must not execute")
		return intermediate{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStep_RetriesTransientErrors(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	run, err := engine.StartRun(ctx, "test-flow")
	require.NoError(t, err)

	attempts := 0
	result, err := Step(ctx, run, "flaky-step", func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", fmt.Errorf("transient failure %d", attempts)
		}
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", result)
	assert.Equal(t, 3, attempts)
}

func TestStep_FatalErrorsAreNotRetried(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	run, err := engine.StartRun(ctx, "test-flow")
	require.NoError(t, err)

	configErr := errors.New("embedding dimension mismatch")
	attempts := 0
	_, err = Step(ctx, run, "bad-config-step", func(ctx context.Context) (string, error) {
		attempts++
		return "", Fatal(configErr)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, configErr)
	assert.Equal(t, 1, attempts, "fatal errors must fail immediately")

	info, err := engine.RunInfo(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, info.Status)
	assert.Equal(t, "bad-config-step", info.CurrentStep)
	assert.Contains(t, info.Error, "dimension mismatch")
}

func TestResumeRun_RejectsCompletedRuns(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	run, err := engine.StartRun(ctx, "test-flow")
	require.NoError(t, err)
	require.NoError(t, run.Complete(ctx))

	_, err = engine.ResumeRun(ctx, run.ID)
	assert.Error(t, err)
}

func TestRunInfo_NotFound(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.RunInfo(context.Background(), "no-such-run")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestConcurrentRunsAreIndependent(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	runA, err := engine.StartRun(ctx, "flow-a")
	require.NoError(t, err)
	runB, err := engine.StartRun(ctx, "flow-b")
	require.NoError(t, err)

	resultA, err := Step(ctx, runA, "shared-step-name", func(ctx context.Context) (string, error) {
		return "from-a", nil
	})
	require.NoError(t, err)

	resultB, err := Step(ctx, runB, "shared-step-name", func(ctx context.Context) (string, error) {
		return "from-b", nil
	})
	require.NoError(t, err)

	assert.Equal(t, "from-a", resultA)
	assert.Equal(t, "from-b", resultB)
}
