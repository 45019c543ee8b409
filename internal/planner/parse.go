package planner

import (
	"errors"
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"movie-recap/internal/types"
	"movie-recap/pkg/util"
)

var ErrMalformedPlan = errors.New("plan response is not a JSON object with a clips array")

// ParsePlan reads {"clips":[{"start","end","narration"}...]} from a model
// reply. Keys match case-insensitively. Entries that are not objects, or
// whose start/end are not numbers or narration is not a string, are skipped.
// Accepted entries get consecutive IDs starting at 1.
func ParsePlan(text string) (types.ClipPlan, error) {
	doc := util.ExtractJsonFromText(strings.TrimSpace(text))
	if !gjson.Valid(doc) {
		return types.ClipPlan{}, ErrMalformedPlan
	}

	root := gjson.Parse(doc)
	var clips gjson.Result
	switch {
	case root.IsObject():
		clips = field(root, "clips")
	case root.IsArray():
		clips = root
	}
	if !clips.IsArray() {
		return types.ClipPlan{}, ErrMalformedPlan
	}

	var plan types.ClipPlan
	clips.ForEach(func(_, entry gjson.Result) bool {
		if !entry.IsObject() {
			return true
		}
		start, end, narration := field(entry, "start"), field(entry, "end"), field(entry, "narration")
		if start.Type != gjson.Number || end.Type != gjson.Number || narration.Type != gjson.String {
			return true
		}
		plan.Clips = append(plan.Clips, types.ClipSpec{
			ID:        len(plan.Clips) + 1,
			Start:     int(math.Trunc(start.Float())),
			End:       int(math.Trunc(end.Float())),
			Narration: narration.String(),
		})
		return true
	})
	return plan, nil
}

// field looks up key in obj ignoring case. The first match wins.
func field(obj gjson.Result, key string) gjson.Result {
	var found gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if strings.EqualFold(k.String(), key) {
			found = v
			return false
		}
		return true
	})
	return found
}
