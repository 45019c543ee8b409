package planner

import (
	"fmt"

	"movie-recap/internal/types"
	"movie-recap/pkg/util"
)

const (
	MaxSubtitleBytes = 320000
	MaxScriptBytes   = 80000
)

// BuildPrompt renders the clip planning prompt. Inputs are made valid UTF-8
// and cut to their byte budgets first.
func BuildPrompt(req types.PlanRequest) string {
	title := util.SanitizeUTF8(req.Title)
	subs := util.TruncateUTF8(util.SanitizeUTF8(req.Subtitles), MaxSubtitleBytes)
	script := util.TruncateUTF8(util.SanitizeUTF8(req.Script), MaxScriptBytes)
	return fmt.Sprintf(types.ClipPlanPrompt, title, subs, script, req.ClipCount, title)
}
