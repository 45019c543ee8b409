// Package bgm assembles background music long enough to cover a video from a
// pool of tracks.
package bgm

import (
	"context"
	"math/rand/v2"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"movie-recap/internal/types"
)

// Media is the subset of the media tool the scheduler needs.
type Media interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
	TrimAudio(ctx context.Context, input string, offset, duration float64, output string) error
}

type Options struct {
	// StartOffset skips track intros.
	StartOffset float64
	// MinTrackSeconds: tracks at or below this length are never used.
	MinTrackSeconds float64
	// MinAvailable: tracks with at most this much audio after the offset are never used.
	MinAvailable float64
	Epsilon      float64
	// MaxParts bounds the number of iterations, successful or not.
	MaxParts int
}

func DefaultOptions() Options {
	return Options{
		StartOffset:     40,
		MinTrackSeconds: 60,
		MinAvailable:    1,
		Epsilon:         0.01,
		MaxParts:        200,
	}
}

type Scheduler struct {
	media  Media
	rnd    *rand.Rand
	opts   Options
	logger *zap.Logger
}

func NewScheduler(media Media, rnd *rand.Rand, opts Options, logger *zap.Logger) *Scheduler {
	def := DefaultOptions()
	if opts.MaxParts <= 0 {
		opts.MaxParts = def.MaxParts
	}
	if opts.Epsilon <= 0 {
		opts.Epsilon = def.Epsilon
	}
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{media: media, rnd: rnd, opts: opts, logger: logger}
}

// Build trims random tracks into partPath(k) files until target seconds are
// covered, the pool runs out of usable tracks or MaxParts iterations pass.
// It never fails: an empty plan means no background music.
func (s *Scheduler) Build(ctx context.Context, tracks []string, target float64, partPath func(part int) string) types.BgmPlan {
	plan := types.BgmPlan{Target: target}
	pool := lo.Uniq(tracks)
	durations := make(map[string]float64, len(pool))
	covered := 0.0

	for part := 1; covered+s.opts.Epsilon < target; part++ {
		if part > s.opts.MaxParts {
			s.logger.Warn("bgm part limit reached",
				zap.Int("max_parts", s.opts.MaxParts),
				zap.Float64("covered", covered),
				zap.Float64("target", target))
			break
		}
		if len(pool) == 0 {
			s.logger.Warn("no usable background tracks left", zap.Float64("covered", covered))
			break
		}
		if ctx.Err() != nil {
			break
		}

		track := pool[s.rnd.IntN(len(pool))]
		sd, probed := durations[track]
		if !probed {
			d, err := s.media.ProbeDuration(ctx, track)
			if err != nil {
				s.logger.Warn("bgm probe failed", zap.String("track", track), zap.Error(err))
				d = 0
			}
			durations[track] = d
			sd = d
		}

		if sd <= s.opts.MinTrackSeconds {
			pool = lo.Without(pool, track)
			continue
		}
		avail := sd - s.opts.StartOffset
		if avail <= s.opts.MinAvailable {
			pool = lo.Without(pool, track)
			continue
		}

		take := min(avail, target-covered)
		out := partPath(part)
		if err := s.media.TrimAudio(ctx, track, s.opts.StartOffset, take, out); err != nil {
			s.logger.Warn("bgm trim failed", zap.String("track", track), zap.Int("part", part), zap.Error(err))
			continue
		}

		plan.Segments = append(plan.Segments, types.BgmSegment{
			Track:    track,
			Offset:   s.opts.StartOffset,
			Duration: take,
			Path:     out,
		})
		covered += take
	}

	return plan
}
