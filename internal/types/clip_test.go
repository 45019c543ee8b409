package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClipSpecUsable(t *testing.T) {
	testCases := []struct {
		clip ClipSpec
		want bool
	}{
		{ClipSpec{Start: 10, End: 20}, true},
		{ClipSpec{Start: 0, End: 20}, false},
		{ClipSpec{Start: -3, End: 20}, false},
		{ClipSpec{Start: 20, End: 20}, false},
		{ClipSpec{Start: 30, End: 20}, false},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, tc.clip.Usable(), "%+v", tc.clip)
	}
}

func TestBgmPlanCovered(t *testing.T) {
	plan := BgmPlan{Segments: []BgmSegment{
		{Path: "a.m4a", Duration: 120.5},
		{Path: "b.m4a", Duration: 60},
	}}

	assert.InDelta(t, 180.5, plan.Covered(), 1e-9)
	assert.Equal(t, []string{"a.m4a", "b.m4a"}, plan.Paths())
	assert.Zero(t, BgmPlan{}.Covered())
}

func TestPlanErrorMessage(t *testing.T) {
	err := &PlanError{Status: 400, Type: "invalid_request_error", Code: "context_length_exceeded", Message: "too long"}
	assert.Contains(t, err.Error(), "context_length_exceeded")
	assert.Contains(t, err.Error(), "too long")

	bare := &PlanError{Status: 500, Message: "boom"}
	assert.Equal(t, "plan request failed (status 500): boom", bare.Error())
}
