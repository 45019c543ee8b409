package handler

import (
	"context"

	"movie-recap/internal/progress"
	"movie-recap/internal/taskrunner"
	"movie-recap/internal/types"
)

// BatchControl is satisfied by *taskrunner.Runner.
type BatchControl interface {
	Start() bool
	Status() taskrunner.Status
	Progress() *progress.Ring
}

// HistoryReader is satisfied by *storage.Ledger.
type HistoryReader interface {
	History(ctx context.Context, limit int) ([]types.MovieRun, error)
}

type Handler struct {
	Batch BatchControl
	// History may be nil when the ledger is disabled.
	History HistoryReader
}

func NewHandler(batch BatchControl, history HistoryReader) Handler {
	return Handler{Batch: batch, History: history}
}
