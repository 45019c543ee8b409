package planner

import (
	"errors"
	"strings"

	"movie-recap/internal/types"
)

// RetryPredicate decides whether a failed plan request should be repeated
// once without the script text.
type RetryPredicate func(err error) bool

var oversizedCodes = []string{"context_length_exceeded", "invalid_json"}

var oversizedPhrases = []string{
	"too large",
	"message is too long",
	"maximum context length",
	"context length",
	"reduce",
	"token",
	"request is too large",
	"unicode decode error",
	"invalid unicode",
	"invalid body",
}

// ShouldRetryWithoutScript matches error payloads that suggest the combined
// prompt was too large or could not be decoded. The backend does not document
// these shapes; the lists are best-effort.
func ShouldRetryWithoutScript(err error) bool {
	var planErr *types.PlanError
	if !errors.As(err, &planErr) {
		return false
	}

	code := strings.ToLower(planErr.Code)
	for _, c := range oversizedCodes {
		if code == c {
			return true
		}
	}
	if strings.Contains(code, "context") {
		return true
	}

	msg := strings.ToLower(planErr.Message)
	for _, phrase := range oversizedPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
