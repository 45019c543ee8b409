// Package taskrunner runs one batch at a time on a background goroutine and
// keeps its progress lines for whoever is watching.
package taskrunner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"movie-recap/internal/appcore"
	"movie-recap/internal/progress"
	"movie-recap/log"
)

// BatchRunner is satisfied by *batch.Driver.
type BatchRunner interface {
	Run(ctx context.Context) (appcore.BatchResult, error)
}

// Status is a snapshot of the runner.
type Status struct {
	Running   bool
	StartedAt time.Time
	Last      *appcore.BatchResult
	LastError string
}

var errPanic = errors.New("batch panicked")

// Runner executes batches in the background. A batch is never cancelled once
// started; Start while a batch is running does nothing.
type Runner struct {
	batch BatchRunner
	ring  *progress.Ring

	running atomic.Bool
	wg      sync.WaitGroup

	mu        sync.Mutex
	startedAt time.Time
	last      *appcore.BatchResult
	lastErr   error
}

// New creates a runner. The ring must be the sink the batch pushes into.
func New(batch BatchRunner, ring *progress.Ring) *Runner {
	if ring == nil {
		ring = progress.NewRing(progress.DefaultCapacity, progress.DefaultLineMax)
	}
	return &Runner{batch: batch, ring: ring}
}

// Start launches a batch and reports whether it did.
func (r *Runner) Start() bool {
	if !r.running.CompareAndSwap(false, true) {
		log.GetLogger().Info("[TaskRunner] batch already running")
		return false
	}

	r.mu.Lock()
	r.startedAt = time.Now()
	r.mu.Unlock()

	r.wg.Add(1)
	go r.run()
	return true
}

func (r *Runner) run() {
	defer r.wg.Done()
	defer r.running.Store(false)
	defer func() {
		if p := recover(); p != nil {
			log.GetLogger().Error("[TaskRunner] batch panicked", zap.Any("panic", p))
			r.ring.Push("[FATAL] batch: internal error")
			r.mu.Lock()
			r.lastErr = errPanic
			r.mu.Unlock()
		}
	}()

	result, err := r.batch.Run(context.Background())

	r.mu.Lock()
	r.last = &result
	r.lastErr = err
	r.mu.Unlock()

	if err != nil {
		log.GetLogger().Error("[TaskRunner] batch failed", zap.String("run_id", result.RunID), zap.Error(err))
		return
	}
	log.GetLogger().Info("[TaskRunner] batch completed",
		zap.String("run_id", result.RunID),
		zap.Int("processed", result.Processed),
		zap.Int("failed", result.Failed))
}

// Wait blocks until the current batch, if any, has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) Running() bool {
	return r.running.Load()
}

func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Status{Running: r.running.Load(), StartedAt: r.startedAt, Last: r.last}
	if r.lastErr != nil {
		s.LastError = r.lastErr.Error()
	}
	return s
}

func (r *Runner) Progress() *progress.Ring {
	return r.ring
}

