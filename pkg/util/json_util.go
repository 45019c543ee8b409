package util

import (
	"regexp"
	"strings"
)

var fencedJSON = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// ExtractJsonFromText returns the JSON document embedded in a model reply:
// the body of the first fenced code block, otherwise the span from the first
// '{' or '[' to the last '}' or ']'. Text without either is returned as is.
func ExtractJsonFromText(text string) string {
	if m := fencedJSON.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}

	start := firstIndex(text, "{", "[")
	if start == -1 {
		return text
	}
	end := max(strings.LastIndex(text, "}"), strings.LastIndex(text, "]"))
	if end > start {
		return text[start : end+1]
	}
	return text
}

func firstIndex(s string, subs ...string) int {
	best := -1
	for _, sub := range subs {
		if i := strings.Index(s, sub); i != -1 && (best == -1 || i < best) {
			best = i
		}
	}
	return best
}
