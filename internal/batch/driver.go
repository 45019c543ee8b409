// Package batch processes every pending movie in the movies directory.
package batch

import (
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"movie-recap/internal/appcore"
	"movie-recap/internal/artifact"
	"movie-recap/internal/progress"
	"movie-recap/internal/types"
	apperrors "movie-recap/pkg/errors"
)

// Processor runs the pipeline for one movie.
type Processor interface {
	Process(ctx context.Context, job types.MovieJob, clipCount int) appcore.JobResult
}

// Recorder persists per-movie outcomes. Failures to record never stop a
// batch.
type Recorder interface {
	Begin(ctx context.Context, runID string, job types.MovieJob, clipCount int) error
	Finish(ctx context.Context, runID string, result appcore.JobResult) error
}

type Deps struct {
	Store     artifact.Store
	Layout    artifact.Layout
	Processor Processor
	// Recorder may be nil.
	Recorder Recorder
	// ClearScratch empties the scratch directories; nil disables it.
	ClearScratch func() error
	Rand         *rand.Rand
	Logger       *zap.Logger
	Sink         progress.Sink
}

type Options struct {
	MinClips int
	MaxClips int
}

type Driver struct {
	deps     Deps
	opts     Options
	newRunID func() string
}

func NewDriver(deps Deps, opts Options) *Driver {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Sink == nil {
		deps.Sink = progress.Discard
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if opts.MinClips <= 0 {
		opts.MinClips = 20
	}
	if opts.MaxClips < opts.MinClips {
		opts.MaxClips = opts.MinClips
	}
	return &Driver{deps: deps, opts: opts, newRunID: uuid.NewString}
}

// Discover lists the .mp4 files of the movies directory, sorted by name.
// Hidden files are ignored and the extension match is case-insensitive.
func (d *Driver) Discover() ([]types.MovieJob, error) {
	files, err := d.deps.Store.List(d.deps.Layout.MoviesDir())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeMoviesDirUnreadable, "cannot list movies directory", err)
	}

	jobs := lo.FilterMap(files, func(path string, _ int) (types.MovieJob, bool) {
		name := filepath.Base(path)
		ext := filepath.Ext(name)
		if strings.HasPrefix(name, ".") || !strings.EqualFold(ext, ".mp4") {
			return types.MovieJob{}, false
		}
		return types.MovieJob{Title: strings.TrimSuffix(name, ext), SourcePath: path}, true
	})
	return jobs, nil
}

// DrawClipCount picks the clip count used for every movie of a batch.
func (d *Driver) DrawClipCount() int {
	return d.opts.MinClips + d.deps.Rand.IntN(d.opts.MaxClips-d.opts.MinClips+1)
}

func (d *Driver) push(tag, format string, args ...any) {
	d.deps.Sink.Push(fmt.Sprintf("[%s] batch: %s", tag, fmt.Sprintf(format, args...)))
}

// Run processes every pending movie once. The returned error is set only for
// setup failures and cancellation; per-movie failures live in the result.
func (d *Driver) Run(ctx context.Context) (appcore.BatchResult, error) {
	result := appcore.BatchResult{RunID: d.newRunID(), StartedAt: time.Now()}
	logger := d.deps.Logger.With(zap.String("run_id", result.RunID))

	jobs, err := d.Discover()
	if err != nil {
		d.push("FATAL", "%v", err)
		return result, err
	}

	if d.deps.ClearScratch != nil {
		if err = d.deps.ClearScratch(); err != nil {
			logger.Warn("clear scratch failed", zap.Error(err))
			d.push("WARN", "clear scratch failed: %v", err)
		}
	}

	result.ClipCount = d.DrawClipCount()
	logger.Info("batch started", zap.Int("movies", len(jobs)), zap.Int("clips", result.ClipCount))
	d.push("INFO", "%d movies found, %d clips each", len(jobs), result.ClipCount)

	for _, job := range jobs {
		if err = ctx.Err(); err != nil {
			break
		}
		if artifact.Exists(d.deps.Store, d.deps.Layout.Final(job.Title)) {
			d.push("INFO", "%s already done, skipping", job.Title)
			result.Add(appcore.JobResult{Title: job.Title, Status: appcore.JobStatusSkipped, OutputPath: d.deps.Layout.Final(job.Title)})
			continue
		}

		d.record(logger, func() error { return d.deps.Recorder.Begin(ctx, result.RunID, job, result.ClipCount) })
		jr := d.deps.Processor.Process(ctx, job, result.ClipCount)
		d.record(logger, func() error { return d.deps.Recorder.Finish(ctx, result.RunID, jr) })
		result.Add(jr)

		if jr.Status == appcore.JobStatusFailed {
			logger.Warn("movie failed", zap.String("title", job.Title), zap.Error(jr.Err))
		}
	}

	result.FinishedAt = time.Now()
	logger.Info("batch finished",
		zap.Int("processed", result.Processed),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped))
	d.push("OK", "processed %d, failed %d, skipped %d", result.Processed, result.Failed, result.Skipped)
	return result, err
}

func (d *Driver) record(logger *zap.Logger, fn func() error) {
	if d.deps.Recorder == nil {
		return
	}
	if err := fn(); err != nil {
		logger.Warn("run ledger write failed", zap.Error(err))
	}
}
