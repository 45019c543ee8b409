package pipeline

import (
	"context"
	"strings"

	"movie-recap/internal/artifact"
	"movie-recap/internal/srt"
	"movie-recap/internal/types"
	apperrors "movie-recap/pkg/errors"
)

func (p *Pipeline) acquireSubtitles(ctx context.Context, r *run) error {
	path := p.deps.Layout.Subtitles(r.job.Title)
	if artifact.IsStageComplete(p.deps.Store, path, 1) {
		r.log.info("subtitles cached")
		return nil
	}

	data, err := p.deps.Subtitles.FetchSubtitles(ctx, r.job.Title)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeSubtitleNotFound, "subtitle download failed", err)
	}
	if len(data) == 0 {
		return apperrors.ErrSubtitleNotFound
	}
	if err = p.deps.Store.Write(path, data); err != nil {
		return apperrors.Wrap(apperrors.CodeFileWriteError, "save subtitles failed", err)
	}
	r.log.ok("subtitles downloaded (%d bytes)", len(data))
	return nil
}

func (p *Pipeline) normalizeTimestamps(_ context.Context, r *run) error {
	path := p.deps.Layout.ConvertedSubtitles(r.job.Title)
	if artifact.IsStageComplete(p.deps.Store, path, 1) {
		data, err := p.deps.Store.Read(path)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeTimestampConvert, "read converted subtitles failed", err)
		}
		r.subtitles = string(data)
		r.log.info("converted subtitles cached")
		return nil
	}

	raw, err := p.deps.Store.Read(p.deps.Layout.Subtitles(r.job.Title))
	if err != nil {
		return apperrors.Wrap(apperrors.CodeTimestampConvert, "read subtitles failed", err)
	}
	converted, err := srt.ConvertTimestamps(raw)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeTimestampConvert, "timestamp conversion failed", err)
	}
	if err = p.deps.Store.Write(path, converted); err != nil {
		return apperrors.Wrap(apperrors.CodeTimestampConvert, "save converted subtitles failed", err)
	}
	r.subtitles = string(converted)
	r.log.ok("timestamps converted")
	return nil
}

// acquireScript never fails the movie: without a script the plan is built
// from subtitles alone.
func (p *Pipeline) acquireScript(ctx context.Context, r *run) error {
	path := p.deps.Layout.Script(r.job.Title)
	fresh, err := artifact.EnsureFresh(p.deps.Store, path, p.opts.ScriptMinBytes)
	if err != nil {
		r.log.warn(err, "could not drop stale script")
	}
	if fresh {
		data, err := p.deps.Store.Read(path)
		if err == nil {
			r.script = string(data)
			r.log.info("script cached")
			return nil
		}
		r.log.warn(err, "read cached script failed")
	}

	if p.deps.Scripts == nil {
		r.log.info("no script source, planning from subtitles only")
		return nil
	}

	text, err := p.deps.Scripts.FetchScript(ctx, r.job.Title)
	if err != nil {
		r.log.warn(err, "script unavailable, planning from subtitles only")
		return nil
	}
	if int64(len(text)) < p.opts.ScriptMinBytes {
		r.log.warn(nil, "script too short (%d bytes), planning from subtitles only", len(text))
		return nil
	}
	if err = p.deps.Store.Write(path, []byte(text)); err != nil {
		r.log.warn(err, "save script failed")
	}
	r.script = text
	r.log.ok("script downloaded (%d bytes)", len(text))
	return nil
}

func (p *Pipeline) generatePlan(ctx context.Context, r *run) error {
	req := types.PlanRequest{
		Title:     r.job.Title,
		Subtitles: r.subtitles,
		Script:    r.script,
		ClipCount: r.clipCount,
	}

	plan, err := p.deps.Planner.Generate(ctx, req)
	if err != nil && strings.TrimSpace(req.Script) != "" && p.opts.ShouldRetryWithoutScript(err) {
		r.log.warn(err, "plan request rejected, retrying without script")
		req.Script = ""
		plan, err = p.deps.Planner.Generate(ctx, req)
	}
	if err != nil {
		return apperrors.Wrap(apperrors.CodePlanFailed, "plan generation failed", err)
	}
	if plan.Len() == 0 {
		return apperrors.ErrPlanEmpty
	}

	r.plan = plan
	r.result.Planned = plan.Len()
	r.log.ok("plan has %d clips (asked for %d)", plan.Len(), r.clipCount)
	return nil
}
