package pipeline

import (
	"context"
	"fmt"

	"movie-recap/internal/artifact"
	"movie-recap/internal/normalizer"
	"movie-recap/internal/types"
	apperrors "movie-recap/pkg/errors"
)

// synthesizeClips narrates and renders every clip of the plan. A clip that
// fails is left out of the manifest and the rest carry on.
func (p *Pipeline) synthesizeClips(ctx context.Context, r *run) error {
	r.clipNames = r.clipNames[:0]
	for _, clip := range r.plan.Clips {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.synthesizeClip(ctx, r, clip); err != nil {
			r.log.warn(err, "clip %d skipped", clip.ID)
			continue
		}
		r.clipNames = append(r.clipNames, artifact.ClipFileName(r.job.Title, clip.ID))
	}

	r.result.Produced = len(r.clipNames)
	if len(r.clipNames) == 0 {
		return apperrors.ErrNoClipsSynthesized
	}

	if err := p.deps.Store.Write(p.deps.Layout.Manifest(r.job.Title), artifact.ConcatManifest(r.clipNames)); err != nil {
		return apperrors.Wrap(apperrors.CodeFileWriteError, "write clip manifest failed", err)
	}
	r.log.ok("synthesized %d/%d clips", len(r.clipNames), r.plan.Len())
	return nil
}

func (p *Pipeline) synthesizeClip(ctx context.Context, r *run, clip types.ClipSpec) error {
	if !clip.Usable() {
		return fmt.Errorf("range %d-%d rejected", clip.Start, clip.End)
	}

	title := r.job.Title
	narration := p.deps.Layout.Narration(title, clip.ID)
	if err := p.deps.Tts.Text2Speech(ctx, clip.Narration, p.opts.Voice, narration); err != nil {
		return apperrors.Wrap(apperrors.CodeTTSFailed, "narration failed", err)
	}

	narrDur, err := p.deps.Media.ProbeDuration(ctx, narration)
	if err != nil {
		return err
	}

	window, err := normalizer.Normalize(clip, narrDur, p.opts.MaxSpeedup)
	if err != nil {
		return err
	}
	if window.Shrunk {
		r.log.info("clip %d speed-capped: %d-%d -> %d-%d at %.2fx",
			clip.ID, clip.Start, clip.End, window.Start, window.End, window.Speed)
	}

	out := p.deps.Layout.Clip(title, clip.ID)
	err = p.deps.Media.RenderClip(ctx, types.RenderRequest{
		Source:    r.job.SourcePath,
		Window:    window,
		Narration: narration,
		Output:    out,
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeRenderFailed, "render failed", err)
	}
	if !artifact.IsStageComplete(p.deps.Store, out, 1) {
		return apperrors.New(apperrors.CodeRenderFailed, "render produced no output")
	}
	return nil
}
