package types

import "github.com/samber/lo"

// ClipSpec is one planned narrated excerpt. Start and End are whole seconds
// relative to the source, End exclusive. ID is the 1-based ordinal within the
// plan and names the narration, clip and manifest entry of this excerpt.
type ClipSpec struct {
	ID        int    `json:"id"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Narration string `json:"narration"`
}

// Usable reports whether the clip passes the synthesis policy: a start of zero
// and empty ranges are rejected.
func (c ClipSpec) Usable() bool {
	return c.Start > 0 && c.End > c.Start
}

type ClipPlan struct {
	Clips []ClipSpec `json:"clips"`
}

func (p ClipPlan) Len() int { return len(p.Clips) }

// RenderWindow is the source range and playback speed actually used for one
// clip.
type RenderWindow struct {
	ClipID int
	Start  int
	End    int
	Speed  float64
	// Shrunk is set when the window was narrowed to respect the speed cap.
	Shrunk bool
}

func (w RenderWindow) Duration() int { return w.End - w.Start }

type MovieJob struct {
	Title      string
	SourcePath string
}

type BgmSegment struct {
	Track    string
	Offset   float64
	Duration float64
	Path     string
}

type BgmPlan struct {
	Target   float64
	Segments []BgmSegment
}

func (p BgmPlan) Covered() float64 {
	return lo.SumBy(p.Segments, func(s BgmSegment) float64 { return s.Duration })
}

func (p BgmPlan) Paths() []string {
	return lo.Map(p.Segments, func(s BgmSegment, _ int) string { return s.Path })
}
