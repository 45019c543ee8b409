package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-recap/internal/appcore"
	"movie-recap/internal/appdirs"
	"movie-recap/internal/types"
	apperrors "movie-recap/pkg/errors"
)

func TestResolveDBPathUsesCacheDir(t *testing.T) {
	originalResolver := appDirsResolver
	t.Cleanup(func() {
		appDirsResolver = originalResolver
	})

	cacheDir := filepath.Join(t.TempDir(), "cache-root")
	appDirsResolver = func() (appdirs.Paths, error) {
		return appdirs.Paths{CacheDir: cacheDir}, nil
	}

	got, err := resolveDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cacheDir, "runs.db"), got)
}

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	l := NewLedger(db)
	l.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return l
}

func TestLedgerBeginFinish(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)

	job := types.MovieJob{Title: "Heat", SourcePath: "movies/Heat.mp4"}
	require.NoError(t, l.Begin(ctx, "run-1", job, 24))

	rows, err := l.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "running", rows[0].Status)
	assert.Equal(t, 24, rows[0].ClipCount)
	assert.Nil(t, rows[0].FinishedAt)

	require.NoError(t, l.Finish(ctx, "run-1", appcore.JobResult{
		Title:    "Heat",
		Status:   appcore.JobStatusSucceeded,
		Stage:    appcore.StageSourceRetired,
		Planned:  24,
		Produced: 22,
		BgmMixed: true,
		Retired:  true,
		Warnings: []string{"clip 3 skipped", "clip 9 skipped"},
	}))

	rows, err = l.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "succeeded", row.Status)
	assert.Equal(t, "source_retired", row.Stage)
	assert.Equal(t, 22, row.Produced)
	assert.Equal(t, 2, row.Warnings)
	assert.True(t, row.BgmMixed)
	assert.False(t, row.Vertical)
	require.NotNil(t, row.FinishedAt)
	assert.Equal(t, 24, row.ClipCount)
}

func TestLedgerFinishWithoutBegin(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)

	require.NoError(t, l.Finish(ctx, "run-2", appcore.JobResult{
		Title:  "Alien",
		Status: appcore.JobStatusFailed,
		Stage:  appcore.StagePlanGenerated,
		Err:    errors.New("no clips synthesized"),
	}))

	rows, err := l.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "failed", rows[0].Status)
	assert.Equal(t, "no clips synthesized", rows[0].FailReason)
}

func TestLedgerHistoryOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	for _, title := range []string{"A", "B", "C"} {
		require.NoError(t, l.Begin(ctx, "run-1", types.MovieJob{Title: title}, 20))
	}

	rows, err := l.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "C", rows[0].Title)
	assert.Equal(t, "B", rows[1].Title)
}

func TestMarkStaleRuns(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	require.NoError(t, l.Begin(ctx, "run-1", types.MovieJob{Title: "A"}, 20))
	require.NoError(t, l.Begin(ctx, "run-1", types.MovieJob{Title: "B"}, 20))
	require.NoError(t, l.Finish(ctx, "run-1", appcore.JobResult{Title: "B", Status: appcore.JobStatusSucceeded}))

	n, err := l.MarkStaleRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rows, err := l.History(ctx, 10)
	require.NoError(t, err)
	statuses := map[string]string{}
	for _, r := range rows {
		statuses[r.Title] = r.Status
	}
	assert.Equal(t, map[string]string{"A": "failed", "B": "succeeded"}, statuses)
}

func TestLedgerWithoutDatabase(t *testing.T) {
	var l *Ledger
	_, err := l.History(context.Background(), 5)
	assert.True(t, apperrors.Is(err, apperrors.CodeDBError))
}
