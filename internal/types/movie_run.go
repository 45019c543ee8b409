package types

import "time"

// MovieRun is one movie's row in the run ledger.
type MovieRun struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	RunID      string `gorm:"index;size:36" json:"run_id"`
	Title      string `gorm:"index" json:"title"`
	SourcePath string `json:"source_path"`
	Status     string `gorm:"index;size:16" json:"status"`
	Stage      string `json:"stage"`
	ClipCount  int    `json:"clip_count"`
	Planned    int    `json:"planned"`
	Produced   int    `json:"produced"`
	BgmMixed   bool   `json:"bgm_mixed"`
	Vertical   bool   `json:"vertical"`
	Retired    bool   `json:"retired"`
	Warnings   int    `json:"warnings"`
	FailReason string `json:"fail_reason,omitempty"`

	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
