// Package normalizer fits a planned source segment to the length of its
// synthesized narration under a playback speed cap.
package normalizer

import (
	"fmt"
	"math"

	"movie-recap/internal/types"
	apperrors "movie-recap/pkg/errors"
)

const (
	DefaultMaxSpeedup = 1.75

	MinSpeed = 0.05
	MaxSpeed = 20.0

	// durations at or below this are treated as degenerate
	minDuration = 0.1
	// the shrunk window never gets shorter than one second of source
	minWindow = 1.0
)

// Normalize returns the window and speed that make the clip last exactly
// narrationDur seconds. When keeping the whole segment would need a speed
// above maxSpeedup, the window is shrunk around its midpoint instead; the
// window never leaves [clip.Start, clip.End].
//
// After rounding the shrunk bounds to whole seconds the recomputed speed can
// land slightly above maxSpeedup; it is clamped to maxSpeedup without moving
// the window again, so the reported speed may differ from the literal
// (End-Start)/narrationDur by up to one second's worth.
func Normalize(clip types.ClipSpec, narrationDur, maxSpeedup float64) (types.RenderWindow, error) {
	if maxSpeedup <= 0 {
		maxSpeedup = DefaultMaxSpeedup
	}

	origDur := float64(clip.End - clip.Start)
	if origDur <= minDuration || narrationDur <= minDuration || math.IsNaN(narrationDur) {
		return types.RenderWindow{}, fmt.Errorf("clip %d [%d,%d) narration %.3fs: %w",
			clip.ID, clip.Start, clip.End, narrationDur, apperrors.ErrInvalidSegment)
	}

	win := types.RenderWindow{
		ClipID: clip.ID,
		Start:  clip.Start,
		End:    clip.End,
		Speed:  origDur / narrationDur,
	}

	if win.Speed > maxSpeedup {
		win.Start, win.End = shrink(clip.Start, clip.End, narrationDur*maxSpeedup)
		win.Shrunk = true
		win.Speed = float64(win.End-win.Start) / narrationDur
		if win.Speed > maxSpeedup {
			win.Speed = maxSpeedup
		}
	}

	win.Speed = clamp(win.Speed, MinSpeed, MaxSpeed)
	return win, nil
}

// shrink centers a window of the desired length on [start, end), slides it
// back inside the bounds when one side overflows and rounds to whole seconds.
func shrink(start, end int, desired float64) (int, int) {
	lo, hi := float64(start), float64(end)
	desired = clamp(desired, minWindow, hi-lo)

	center := (lo + hi) / 2
	ns, ne := center-desired/2, center+desired/2
	if ns < lo {
		ne += lo - ns
		ns = lo
	}
	if ne > hi {
		ns -= ne - hi
		ne = hi
	}
	if ns < lo {
		ns = lo
	}

	useStart, useEnd := int(math.Round(ns)), int(math.Round(ne))
	if useEnd <= useStart {
		useEnd = useStart + 1
	}
	if useEnd > end {
		useEnd = end
		useStart = end - 1
	}
	return useStart, useEnd
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
