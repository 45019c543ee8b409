// Package pipeline turns one movie into a narrated recap.
//
// A run walks a fixed sequence of stages. Stages whose artifact is already
// present are skipped, so an interrupted movie resumes where it stopped. A
// stage-fatal failure ends the movie; optional stages only log warnings.
package pipeline

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"movie-recap/internal/appcore"
	"movie-recap/internal/artifact"
	"movie-recap/internal/bgm"
	"movie-recap/internal/normalizer"
	"movie-recap/internal/planner"
	"movie-recap/internal/progress"
	"movie-recap/internal/types"
)

// Deps are the collaborators of a pipeline. Scripts may be nil.
type Deps struct {
	Store     artifact.Store
	Layout    artifact.Layout
	Subtitles types.SubtitleSource
	Scripts   types.ScriptSource
	Planner   types.PlanGenerator
	Tts       types.Ttser
	Media     types.MediaTool
	Rand      *rand.Rand
	Logger    *zap.Logger
	Sink      progress.Sink
}

type Options struct {
	MaxSpeedup     float64
	ScriptMinBytes int64
	Voice          string
	Vertical       bool
	NarrationGain  float64
	BgmGain        float64
	Bgm            bgm.Options
	// ShouldRetryWithoutScript decides whether a failed plan request is
	// repeated once without the script.
	ShouldRetryWithoutScript planner.RetryPredicate
}

func DefaultOptions() Options {
	return Options{
		MaxSpeedup:               normalizer.DefaultMaxSpeedup,
		ScriptMinBytes:           200,
		Vertical:                 true,
		NarrationGain:            2.5,
		BgmGain:                  0.1,
		Bgm:                      bgm.DefaultOptions(),
		ShouldRetryWithoutScript: planner.ShouldRetryWithoutScript,
	}
}

var musicExts = []string{".mp3", ".m4a", ".wav", ".aac"}

type Pipeline struct {
	deps  Deps
	opts  Options
	bgm   *bgm.Scheduler
	clock func() time.Time
}

func New(deps Deps, opts Options) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Sink == nil {
		deps.Sink = progress.Discard
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if opts.MaxSpeedup <= 0 {
		opts.MaxSpeedup = normalizer.DefaultMaxSpeedup
	}
	if opts.ShouldRetryWithoutScript == nil {
		opts.ShouldRetryWithoutScript = planner.ShouldRetryWithoutScript
	}
	return &Pipeline{
		deps:  deps,
		opts:  opts,
		bgm:   bgm.NewScheduler(deps.Media, deps.Rand, opts.Bgm, deps.Logger),
		clock: time.Now,
	}
}

// run is the state carried between the stages of one movie.
type run struct {
	job       types.MovieJob
	clipCount int
	log       *journal
	result    *appcore.JobResult

	subtitles  string
	script     string
	plan       types.ClipPlan
	clipNames  []string
	concatSecs float64
}

type stage struct {
	id appcore.Stage
	fn func(ctx context.Context, r *run) error
}

func (p *Pipeline) stages() []stage {
	return []stage{
		{appcore.StageSubtitlesAcquired, p.acquireSubtitles},
		{appcore.StageTimestampsNormalized, p.normalizeTimestamps},
		{appcore.StageScriptAcquired, p.acquireScript},
		{appcore.StagePlanGenerated, p.generatePlan},
		{appcore.StageClipsSynthesized, p.synthesizeClips},
		{appcore.StageConcatenated, p.concatenate},
		{appcore.StageBgmMixed, p.mixBgm},
		{appcore.StageVerticalRendered, p.renderVertical},
		{appcore.StageSourceRetired, p.retireSource},
	}
}

// Process runs every stage for job. clipCount is the number of clips asked
// from the planner. A movie whose final output already exists is skipped
// without calling any collaborator.
func (p *Pipeline) Process(ctx context.Context, job types.MovieJob, clipCount int) appcore.JobResult {
	result := appcore.JobResult{
		Title:      job.Title,
		Status:     appcore.JobStatusRunning,
		OutputPath: p.deps.Layout.Final(job.Title),
		StartedAt:  p.clock(),
	}
	j := newJournal(p.deps.Logger, p.deps.Sink, job.Title)

	if artifact.Exists(p.deps.Store, result.OutputPath) {
		j.info("final output exists, skipping")
		result.Status = appcore.JobStatusSkipped
		result.FinishedAt = p.clock()
		return result
	}

	j.info("processing %s", job.SourcePath)
	r := &run{job: job, clipCount: clipCount, log: j, result: &result}

	for _, st := range p.stages() {
		if err := st.fn(ctx, r); err != nil {
			j.fatal(err, "%s failed", st.id)
			result.Status = appcore.JobStatusFailed
			result.Err = err
			break
		}
		result.Stage = st.id
	}

	result.Warnings = j.warnings
	result.FinishedAt = p.clock()
	if result.Status == appcore.JobStatusRunning {
		result.Status = appcore.JobStatusSucceeded
		j.ok("done: %d/%d clips in %s", result.Produced, result.Planned, result.Duration().Round(time.Second))
	} else {
		j.info("failed after %s", result.Stage)
	}
	return result
}
