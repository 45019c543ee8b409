package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"movie-recap/internal/appcore"
	"movie-recap/internal/types"
	apperrors "movie-recap/pkg/errors"
)

const staleReason = "process exited while the movie was running"

// Ledger records movie runs. It implements batch.Recorder.
type Ledger struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db, now: time.Now}
}

func (l *Ledger) conn(ctx context.Context) (*gorm.DB, error) {
	if l == nil || l.db == nil {
		return nil, apperrors.New(apperrors.CodeDBError, "database not initialized")
	}
	return l.db.WithContext(ctx), nil
}

// Begin inserts a running row for job.
func (l *Ledger) Begin(ctx context.Context, runID string, job types.MovieJob, clipCount int) error {
	db, err := l.conn(ctx)
	if err != nil {
		return err
	}
	row := types.MovieRun{
		RunID:      runID,
		Title:      job.Title,
		SourcePath: job.SourcePath,
		Status:     string(appcore.JobStatusRunning),
		Stage:      appcore.StageNone.String(),
		ClipCount:  clipCount,
		StartedAt:  l.now(),
	}
	if err = db.Create(&row).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeDBError, "insert movie run failed", err)
	}
	return nil
}

// Finish stores the outcome of a movie, creating the row when Begin did not.
func (l *Ledger) Finish(ctx context.Context, runID string, result appcore.JobResult) error {
	db, err := l.conn(ctx)
	if err != nil {
		return err
	}

	var row types.MovieRun
	err = db.Where("run_id = ? AND title = ?", runID, result.Title).Order("id desc").First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = types.MovieRun{RunID: runID, Title: result.Title, StartedAt: result.StartedAt}
	case err != nil:
		return apperrors.Wrap(apperrors.CodeDBError, "load movie run failed", err)
	}

	finished := result.FinishedAt
	if finished.IsZero() {
		finished = l.now()
	}
	row.Status = string(result.Status)
	row.Stage = result.Stage.String()
	row.Planned = result.Planned
	row.Produced = result.Produced
	row.BgmMixed = result.BgmMixed
	row.Vertical = result.Vertical
	row.Retired = result.Retired
	row.Warnings = len(result.Warnings)
	row.FinishedAt = &finished
	row.FailReason = ""
	if result.Err != nil {
		row.FailReason = result.Err.Error()
	}

	if err = db.Save(&row).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeDBError, "save movie run failed", err)
	}
	return nil
}

// History returns the most recent rows, newest first.
func (l *Ledger) History(ctx context.Context, limit int) ([]types.MovieRun, error) {
	db, err := l.conn(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	var rows []types.MovieRun
	if err = db.Order("id desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "load history failed", err)
	}
	return rows, nil
}

// MarkStaleRuns turns rows left running by a previous process into failures.
// Call it on startup, before any batch runs.
func (l *Ledger) MarkStaleRuns(ctx context.Context) (int64, error) {
	db, err := l.conn(ctx)
	if err != nil {
		return 0, err
	}
	result := db.Model(&types.MovieRun{}).
		Where("status = ?", string(appcore.JobStatusRunning)).
		Updates(map[string]interface{}{
			"status":      string(appcore.JobStatusFailed),
			"fail_reason": staleReason,
		})
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.CodeDBError, "mark stale runs failed", result.Error)
	}
	return result.RowsAffected, nil
}
