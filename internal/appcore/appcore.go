// Package appcore holds the stage, status and result types shared by the
// pipeline, the batch driver and the host surfaces.
package appcore

import (
	"time"
)

// Stage is a step of the per-movie state machine, in execution order.
type Stage uint8

const (
	StageNone Stage = iota
	StageSubtitlesAcquired
	StageTimestampsNormalized
	StageScriptAcquired
	StagePlanGenerated
	StageClipsSynthesized
	StageConcatenated
	StageBgmMixed
	StageVerticalRendered
	StageSourceRetired
)

func (s Stage) String() string {
	switch s {
	case StageNone:
		return "none"
	case StageSubtitlesAcquired:
		return "subtitles_acquired"
	case StageTimestampsNormalized:
		return "timestamps_normalized"
	case StageScriptAcquired:
		return "script_acquired"
	case StagePlanGenerated:
		return "plan_generated"
	case StageClipsSynthesized:
		return "clips_synthesized"
	case StageConcatenated:
		return "concatenated"
	case StageBgmMixed:
		return "bgm_mixed"
	case StageVerticalRendered:
		return "vertical_rendered"
	case StageSourceRetired:
		return "source_retired"
	default:
		return "unknown"
	}
}

func (s Stage) IsTerminal() bool {
	return s == StageSourceRetired
}

// JobStatus is the outcome of one movie.
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
	JobStatusSkipped   JobStatus = "skipped"
)

func (s JobStatus) IsTerminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed || s == JobStatusSkipped
}

// JobResult describes one pipeline run. Stage is the last stage reached.
type JobResult struct {
	Title      string
	Status     JobStatus
	Stage      Stage
	Planned    int
	Produced   int
	BgmMixed   bool
	Vertical   bool
	Retired    bool
	OutputPath string
	Warnings   []string
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r JobResult) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// BatchResult aggregates one pass over the movies directory.
type BatchResult struct {
	RunID      string
	ClipCount  int
	Results    []JobResult
	Processed  int
	Failed     int
	Skipped    int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Add records r and updates the counters.
func (b *BatchResult) Add(r JobResult) {
	b.Results = append(b.Results, r)
	switch r.Status {
	case JobStatusSucceeded:
		b.Processed++
	case JobStatusFailed:
		b.Failed++
	case JobStatusSkipped:
		b.Skipped++
	}
}
