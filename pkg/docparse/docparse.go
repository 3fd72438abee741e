// Package docparse normalizes the loosely typed fields returned by the content
// generator. Every function degrades to an empty, non-nil slice instead of failing.
package docparse

import (
	"encoding/json"
	"regexp"
	"strings"
)

type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

var (
	challengeMarker = regexp.MustCompile(`(?i)Challenge Ended`)
	feedbackPattern = regexp.MustCompile(`['"]feedback['"]\s*:\s*['"]([\s\S]+?)['"],?\s*['"]?xp['"]?`)
)

// asString unwraps a JSON string value. ok is false for any other JSON kind.
func asString(raw json.RawMessage) (string, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, `"`) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func isArray(raw json.RawMessage) bool {
	return strings.HasPrefix(strings.TrimSpace(string(raw)), "[")
}

func splitLines(s string) []string {
	out := []string{}
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// stringArray decodes a JSON array keeping only string-like entries.
func stringArray(raw json.RawMessage) []string {
	var items []interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Steps accepts an array of strings or a newline separated string.
func Steps(raw json.RawMessage) []string {
	if s, ok := asString(raw); ok {
		return splitLines(s)
	}
	if isArray(raw) {
		return stringArray(raw)
	}
	return []string{}
}

// Flashcards accepts an array of cards or a string holding that array as JSON.
func Flashcards(raw json.RawMessage) []Flashcard {
	if s, ok := asString(raw); ok {
		if strings.TrimSpace(s) == "" {
			return []Flashcard{}
		}
		raw = json.RawMessage(s)
	}
	if !isArray(raw) {
		return []Flashcard{}
	}
	var cards []Flashcard
	if err := json.Unmarshal(raw, &cards); err != nil {
		return []Flashcard{}
	}
	if cards == nil {
		return []Flashcard{}
	}
	return cards
}

// Challenges splits a text blob on the "Challenge Ended" marker.
func Challenges(raw json.RawMessage) []string {
	if s, ok := asString(raw); ok {
		return SplitChallenges(s)
	}
	if isArray(raw) {
		return stringArray(raw)
	}
	return []string{}
}

func SplitChallenges(s string) []string {
	out := []string{}
	for _, part := range challengeMarker.Split(s, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// StringList accepts an array of strings or a comma separated string.
func StringList(raw json.RawMessage) []string {
	if s, ok := asString(raw); ok {
		out := []string{}
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	if isArray(raw) {
		return stringArray(raw)
	}
	return []string{}
}

// Text returns a plain string for string values, joins arrays with newlines,
// and returns "" for anything else.
func Text(raw json.RawMessage) string {
	if s, ok := asString(raw); ok {
		return s
	}
	if isArray(raw) {
		return strings.Join(stringArray(raw), "\n")
	}
	return ""
}

// Feedback extracts the feedback value when the grader leaked its raw JSON.
func Feedback(s string) string {
	if m := feedbackPattern.FindStringSubmatch(s); len(m) == 2 {
		return m[1]
	}
	return s
}
