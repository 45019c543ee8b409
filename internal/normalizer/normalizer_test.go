package normalizer

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-recap/internal/types"
	apperrors "movie-recap/pkg/errors"
)

func TestNormalizeShrinksLongWindow(t *testing.T) {
	clip := types.ClipSpec{ID: 4, Start: 120, End: 140, Narration: "x"}

	win, err := Normalize(clip, 10, 1.75)
	require.NoError(t, err)

	assert.Equal(t, 4, win.ClipID)
	assert.Equal(t, 121, win.Start)
	assert.Equal(t, 139, win.End)
	assert.True(t, win.Shrunk)
	// 18/10 = 1.8 is soft-clamped to the cap
	assert.Equal(t, 1.75, win.Speed)
}

func TestNormalizeKeepsWindowWithinCap(t *testing.T) {
	testCases := []struct {
		name      string
		start     int
		end       int
		narration float64
		wantSpeed float64
	}{
		{name: "exact fit", start: 10, end: 20, narration: 10, wantSpeed: 1},
		{name: "slow down", start: 10, end: 18, narration: 16, wantSpeed: 0.5},
		{name: "at cap", start: 100, end: 107, narration: 4, wantSpeed: 1.75},
		{name: "slight speed up", start: 50, end: 62, narration: 10, wantSpeed: 1.2},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			win, err := Normalize(types.ClipSpec{ID: 1, Start: tc.start, End: tc.end}, tc.narration, 1.75)
			require.NoError(t, err)
			assert.Equal(t, tc.start, win.Start)
			assert.Equal(t, tc.end, win.End)
			assert.False(t, win.Shrunk)
			assert.InDelta(t, tc.wantSpeed, win.Speed, 1e-12)
		})
	}
}

func TestNormalizeRejectsDegenerateInput(t *testing.T) {
	testCases := []struct {
		name      string
		start     int
		end       int
		narration float64
	}{
		{name: "empty window", start: 30, end: 30, narration: 5},
		{name: "inverted window", start: 40, end: 30, narration: 5},
		{name: "zero narration", start: 10, end: 20, narration: 0},
		{name: "tiny narration", start: 10, end: 20, narration: 0.1},
		{name: "negative narration", start: 10, end: 20, narration: -2},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(types.ClipSpec{ID: 2, Start: tc.start, End: tc.end}, tc.narration, 1.75)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.CodeInvalidSegment))
		})
	}
}

func TestNormalizeShortNarrationUsesOneSecondFloor(t *testing.T) {
	// desired = 0.2*1.75 = 0.35s, floored to one second
	win, err := Normalize(types.ClipSpec{ID: 1, Start: 10, End: 30}, 0.2, 1.75)
	require.NoError(t, err)

	assert.Equal(t, 1, win.Duration())
	assert.GreaterOrEqual(t, win.Start, 10)
	assert.LessOrEqual(t, win.End, 30)
	assert.Equal(t, 1.75, win.Speed)
}

func TestNormalizeDefaultsCapWhenUnset(t *testing.T) {
	win, err := Normalize(types.ClipSpec{ID: 1, Start: 120, End: 140}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxSpeedup, win.Speed)
}

func TestNormalizeProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for i := 0; i < 5000; i++ {
		start := 1 + rng.IntN(7200)
		end := start + 1 + rng.IntN(60)
		narration := 0.11 + rng.Float64()*40
		clip := types.ClipSpec{ID: i, Start: start, End: end}

		win, err := Normalize(clip, narration, 1.75)
		require.NoError(t, err)

		ratio := float64(end-start) / narration
		assert.GreaterOrEqual(t, win.Speed, MinSpeed)
		assert.LessOrEqual(t, win.Speed, MaxSpeed)

		if ratio <= 1.75 {
			assert.Equal(t, start, win.Start)
			assert.Equal(t, end, win.End)
			if ratio >= MinSpeed {
				assert.Equal(t, ratio, win.Speed)
			}
			continue
		}

		assert.LessOrEqual(t, start, win.Start, "clip %+v narration %v", clip, narration)
		assert.Less(t, win.Start, win.End, "clip %+v narration %v", clip, narration)
		assert.LessOrEqual(t, win.End, end, "clip %+v narration %v", clip, narration)
		assert.LessOrEqual(t, win.Speed, 1.75)
		// the literal speed of the rounded window stays within one second of the cap
		literal := float64(win.Duration()) / narration
		assert.LessOrEqual(t, literal, 1.75+1/narration+1e-9, "clip %+v narration %v", clip, narration)
	}
}
