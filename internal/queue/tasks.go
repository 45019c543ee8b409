package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"movie-recap/internal/appcore"
	"movie-recap/log"
)

// BatchRunner is satisfied by *batch.Driver.
type BatchRunner interface {
	Run(ctx context.Context) (appcore.BatchResult, error)
}

// TaskHandlers runs queued batches.
type TaskHandlers struct {
	batch BatchRunner
}

func NewTaskHandlers(batch BatchRunner) *TaskHandlers {
	return &TaskHandlers{batch: batch}
}

// HandleBatchRun runs one batch to completion. Per-movie failures are part of
// the result and do not fail the task.
func (h *TaskHandlers) HandleBatchRun(ctx context.Context, t *asynq.Task) error {
	var payload BatchPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	log.GetLogger().Info("[Queue] Processing batch", zap.String("request_id", payload.RequestID))

	// a batch is never interrupted halfway
	result, err := h.batch.Run(context.WithoutCancel(ctx))
	if err != nil {
		return err
	}

	log.GetLogger().Info("[Queue] Batch completed",
		zap.String("request_id", payload.RequestID),
		zap.String("run_id", result.RunID),
		zap.Int("processed", result.Processed),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped))
	return nil
}

func (h *TaskHandlers) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeBatchRun, h.HandleBatchRun)
}

// StartWorker blocks serving batch tasks until the process is signalled.
func StartWorker(cfg QueueConfig, batch BatchRunner) error {
	mux := asynq.NewServeMux()
	NewTaskHandlers(batch).RegisterHandlers(mux)

	log.GetLogger().Info("[Queue] Starting worker",
		zap.String("redis_addr", cfg.RedisAddr),
		zap.Int("concurrency", cfg.Concurrency))

	return NewServer(cfg).Run(mux)
}
