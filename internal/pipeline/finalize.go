package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/samber/lo"

	"movie-recap/internal/artifact"
	apperrors "movie-recap/pkg/errors"
)

const minConcatSeconds = 0.1

func (p *Pipeline) concatenate(ctx context.Context, r *run) error {
	title := r.job.Title
	out := p.deps.Layout.Concatenated(title)
	if err := p.deps.Media.ConcatVideos(ctx, p.deps.Layout.Manifest(title), out); err != nil {
		return apperrors.Wrap(apperrors.CodeConcatFailed, "concat failed", err)
	}

	dur, err := p.deps.Media.ProbeDuration(ctx, out)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeConcatFailed, "probe concatenated video failed", err)
	}
	if dur <= minConcatSeconds {
		return apperrors.New(apperrors.CodeConcatFailed, fmt.Sprintf("concatenated video too short (%.2fs)", dur))
	}
	r.concatSecs = dur
	r.log.ok("concatenated %d clips (%.1fs)", len(r.clipNames), dur)
	return nil
}

// mixBgm lays background music under the concatenated video. When no music
// can be produced the concatenated video itself becomes the final output.
func (p *Pipeline) mixBgm(ctx context.Context, r *run) error {
	title := r.job.Title
	concat := p.deps.Layout.Concatenated(title)
	final := p.deps.Layout.Final(title)

	tracks, err := artifact.ListWithExt(p.deps.Store, p.deps.Layout.MusicDir(), musicExts...)
	if err != nil {
		r.log.warn(err, "list background music failed")
	}
	if len(tracks) == 0 {
		r.log.info("no background music, publishing without it")
		return p.publishWithoutBgm(r, concat, final)
	}

	plan := p.bgm.Build(ctx, tracks, r.concatSecs, func(part int) string {
		return p.deps.Layout.BgmPart(title, part)
	})
	if len(plan.Segments) == 0 {
		r.log.warn(nil, "no usable background track among %d", len(tracks))
		return p.publishWithoutBgm(r, concat, final)
	}

	names := lo.Map(plan.Paths(), func(path string, _ int) string { return filepath.Base(path) })
	manifest := p.deps.Layout.BgmManifest(title)
	if err = p.deps.Store.Write(manifest, artifact.ConcatManifest(names)); err != nil {
		r.log.warn(err, "write bgm manifest failed")
		return p.publishWithoutBgm(r, concat, final)
	}

	bgmTrack := p.deps.Layout.Bgm(title)
	if err = p.deps.Media.ConcatAudio(ctx, manifest, bgmTrack); err != nil {
		r.log.warn(err, "bgm concat failed")
		return p.publishWithoutBgm(r, concat, final)
	}

	err = p.deps.Media.MixBgm(ctx, concat, bgmTrack, final, p.opts.NarrationGain, p.opts.BgmGain)
	if err == nil && !artifact.IsStageComplete(p.deps.Store, final, 1) {
		err = fmt.Errorf("mix produced no output")
	}
	if err != nil {
		r.log.warn(err, "bgm mix failed")
		return p.publishWithoutBgm(r, concat, final)
	}

	r.result.BgmMixed = true
	if err = p.deps.Store.Invalidate(concat); err != nil {
		r.log.warn(err, "could not remove concatenated video")
	}
	r.log.ok("background music mixed (%d parts, %.1fs of %.1fs)", len(plan.Segments), plan.Covered(), r.concatSecs)
	return nil
}

func (p *Pipeline) publishWithoutBgm(r *run, concat, final string) error {
	if err := p.deps.Store.Rename(concat, final); err != nil {
		return apperrors.Wrap(apperrors.CodeFinalizeFailed, "publish final output failed", err)
	}
	r.log.ok("final output written without background music")
	return nil
}

func (p *Pipeline) renderVertical(ctx context.Context, r *run) error {
	if !p.opts.Vertical {
		return nil
	}
	out := p.deps.Layout.Vertical(r.job.Title)
	if err := p.deps.Media.MakeVertical(ctx, p.deps.Layout.Final(r.job.Title), out); err != nil {
		r.log.warn(err, "vertical render failed")
		return nil
	}
	r.result.Vertical = true
	r.log.ok("vertical version rendered")
	return nil
}

// retireSource moves the source movie out of the queue. A failure leaves the
// movie in place; the next batch skips it because its output exists.
func (p *Pipeline) retireSource(_ context.Context, r *run) error {
	to := p.deps.Layout.Retired(r.job.Title)
	if err := p.deps.Store.Rename(r.job.SourcePath, to); err != nil {
		r.log.warn(err, "could not retire source")
		return nil
	}
	r.result.Retired = true
	r.log.ok("source moved to %s", to)
	return nil
}
