// Package queue runs batches through Asynq so a separate worker process can
// pick them up.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"movie-recap/config"
	"movie-recap/log"
)

// Task type names
const (
	TypeBatchRun = "batch:run"
)

// BatchPayload identifies one batch request.
type BatchPayload struct {
	RequestID   string    `json:"request_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// QueueConfig holds Redis configuration for Asynq
type QueueConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
}

// ConfigFrom maps the [queue] section. Batches share one working directory,
// so the worker runs one at a time.
func ConfigFrom(c config.Queue) QueueConfig {
	return QueueConfig{
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
		Concurrency:   1,
	}
}

func (c QueueConfig) redisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// NewBatchTask builds the task for one batch run.
func NewBatchTask() (*asynq.Task, BatchPayload, error) {
	payload := BatchPayload{RequestID: uuid.NewString(), RequestedAt: time.Now().UTC()}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, payload, fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(TypeBatchRun, data,
		asynq.MaxRetry(1),
		asynq.Timeout(24*time.Hour),
		asynq.Queue("default"),
	)
	return task, payload, nil
}

// Enqueue adds a batch task and returns its request id.
func Enqueue(ctx context.Context, cfg QueueConfig) (string, error) {
	client := asynq.NewClient(cfg.redisOpt())
	defer client.Close()

	task, payload, err := NewBatchTask()
	if err != nil {
		return "", err
	}

	info, err := client.EnqueueContext(ctx, task)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue task: %w", err)
	}

	log.GetLogger().Info("Batch enqueued",
		zap.String("request_id", payload.RequestID),
		zap.String("queue_id", info.ID),
		zap.String("queue", info.Queue))
	return payload.RequestID, nil
}

// NewServer builds the worker side.
func NewServer(cfg QueueConfig) *asynq.Server {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return asynq.NewServer(
		cfg.redisOpt(),
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				"default": 1,
			},
			RetryDelayFunc: func(n int, e error, t *asynq.Task) time.Duration {
				// 10s, 20s, 40s, ...
				return time.Duration(10<<uint(n)) * time.Second
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.GetLogger().Error("Task failed",
					zap.String("type", task.Type()),
					zap.ByteString("payload", task.Payload()),
					zap.Error(err))
			}),
		},
	)
}
