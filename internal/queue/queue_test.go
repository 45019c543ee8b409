package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-recap/config"
	"movie-recap/internal/appcore"
)

type fakeBatch struct {
	calls  int
	ctxErr error
	err    error
}

func (f *fakeBatch) Run(ctx context.Context) (appcore.BatchResult, error) {
	f.calls++
	f.ctxErr = ctx.Err()
	return appcore.BatchResult{RunID: "run-1", Processed: 1}, f.err
}

func TestNewBatchTask(t *testing.T) {
	task, payload, err := NewBatchTask()
	require.NoError(t, err)

	assert.Equal(t, TypeBatchRun, task.Type())
	assert.NotEmpty(t, payload.RequestID)

	var decoded BatchPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, payload.RequestID, decoded.RequestID)
}

func TestConfigFromRunsOneBatchAtATime(t *testing.T) {
	cfg := ConfigFrom(config.Queue{RedisAddr: "redis:6379", RedisDB: 2})
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 1, cfg.Concurrency)
}

func TestHandleBatchRun(t *testing.T) {
	task, _, err := NewBatchTask()
	require.NoError(t, err)

	b := &fakeBatch{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, NewTaskHandlers(b).HandleBatchRun(ctx, task))
	assert.Equal(t, 1, b.calls)
	assert.NoError(t, b.ctxErr, "batch must not see the task cancellation")
}

func TestHandleBatchRunErrors(t *testing.T) {
	t.Run("batch setup failure", func(t *testing.T) {
		task, _, err := NewBatchTask()
		require.NoError(t, err)

		b := &fakeBatch{err: errors.New("movies dir missing")}
		err = NewTaskHandlers(b).HandleBatchRun(context.Background(), task)
		assert.EqualError(t, err, "movies dir missing")
	})

	t.Run("bad payload is not retried", func(t *testing.T) {
		b := &fakeBatch{}
		err := NewTaskHandlers(b).HandleBatchRun(context.Background(), asynq.NewTask(TypeBatchRun, []byte("{")))
		require.Error(t, err)
		assert.ErrorIs(t, err, asynq.SkipRetry)
		assert.Zero(t, b.calls)
	})
}
