package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"movie-recap/internal/appcore"
	"movie-recap/internal/response"
	"movie-recap/log"
	apperrors "movie-recap/pkg/errors"
)

type StartBatchRes struct {
	Started bool `json:"started"`
}

type JobView struct {
	Title      string   `json:"title"`
	Status     string   `json:"status"`
	Stage      string   `json:"stage"`
	Planned    int      `json:"planned"`
	Produced   int      `json:"produced"`
	BgmMixed   bool     `json:"bgm_mixed"`
	Vertical   bool     `json:"vertical"`
	Retired    bool     `json:"retired"`
	OutputPath string   `json:"output_path,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
	Error      string   `json:"error,omitempty"`
	Seconds    float64  `json:"seconds"`
}

type BatchView struct {
	RunID      string    `json:"run_id"`
	ClipCount  int       `json:"clip_count"`
	Processed  int       `json:"processed"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Jobs       []JobView `json:"jobs"`
}

type StatusRes struct {
	Running   bool       `json:"running"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	Last      *BatchView `json:"last,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

type ProgressRes struct {
	Lines []string `json:"lines"`
	Seq   uint64   `json:"seq"`
}

func batchView(b appcore.BatchResult) *BatchView {
	v := &BatchView{
		RunID:      b.RunID,
		ClipCount:  b.ClipCount,
		Processed:  b.Processed,
		Failed:     b.Failed,
		Skipped:    b.Skipped,
		StartedAt:  b.StartedAt,
		FinishedAt: b.FinishedAt,
		Jobs:       make([]JobView, 0, len(b.Results)),
	}
	for _, r := range b.Results {
		j := JobView{
			Title:      r.Title,
			Status:     string(r.Status),
			Stage:      r.Stage.String(),
			Planned:    r.Planned,
			Produced:   r.Produced,
			BgmMixed:   r.BgmMixed,
			Vertical:   r.Vertical,
			Retired:    r.Retired,
			OutputPath: r.OutputPath,
			Warnings:   r.Warnings,
			Seconds:    r.Duration().Seconds(),
		}
		if r.Err != nil {
			j.Error = r.Err.Error()
		}
		v.Jobs = append(v.Jobs, j)
	}
	return v
}

// StartBatch is the start trigger. Starting while a batch runs is not an
// error; the response reports started=false.
func (h Handler) StartBatch(c *gin.Context) {
	started := h.Batch.Start()
	log.GetLogger().Info("StartBatch", zap.Bool("started", started))
	response.Success(c, StartBatchRes{Started: started})
}

func (h Handler) GetBatchStatus(c *gin.Context) {
	st := h.Batch.Status()
	res := StatusRes{Running: st.Running, LastError: st.LastError}
	if !st.StartedAt.IsZero() {
		res.StartedAt = &st.StartedAt
	}
	if st.Last != nil {
		res.Last = batchView(*st.Last)
	}
	response.Success(c, res)
}

// GetProgress returns the buffered lines newer than ?after=<seq>.
func (h Handler) GetProgress(c *gin.Context) {
	after, err := parseAfter(c)
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "invalid after", err))
		return
	}
	lines, seq := h.Batch.Progress().Since(after)
	if lines == nil {
		lines = []string{}
	}
	response.Success(c, ProgressRes{Lines: lines, Seq: seq})
}

func parseAfter(c *gin.Context) (uint64, error) {
	raw := c.Query("after")
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}
