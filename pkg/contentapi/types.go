package contentapi

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"fundocs-be/pkg/docparse"
)

// Doc is a generated document as stored by the content API. The generated
// fields arrive either as plain strings or as arrays depending on the writer.
type Doc struct {
	ID         string          `json:"$id"`
	Title      string          `json:"title"`
	Text       string          `json:"text"`
	Story      string          `json:"story"`
	Steps      json.RawMessage `json:"steps"`
	Challenges json.RawMessage `json:"challenges"`
	Flashcards json.RawMessage `json:"flashcards"`
	CreatedAt  string          `json:"createdAt"`
}

type Generated struct {
	Story      string          `json:"story"`
	Steps      json.RawMessage `json:"steps"`
	Challenges json.RawMessage `json:"challenges"`
	Flashcards json.RawMessage `json:"flashcards"`
}

type Activity struct {
	Message   string   `json:"message"`
	Badges    []string `json:"badges"`
	Timestamp int64    `json:"timestamp"`
}

type Progress struct {
	XP         int             `json:"xp"`
	Streak     int             `json:"streak"`
	Badges     json.RawMessage `json:"badges"`
	Activities json.RawMessage `json:"activities"`
}

// BadgeNames normalizes the badge field, dropping blanks and duplicates.
func (p Progress) BadgeNames() []string {
	seen := map[string]bool{}
	out := []string{}
	for _, b := range docparse.StringList(p.Badges) {
		if !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	return out
}

type rawActivity struct {
	Message   string          `json:"message"`
	Badges    json.RawMessage `json:"badges"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// ActivityList decodes activities newest first. Entries may be objects or
// JSON-encoded strings; undecodable entries are skipped.
func (p Progress) ActivityList() []Activity {
	var items []json.RawMessage
	if err := json.Unmarshal(p.Activities, &items); err != nil {
		var s string
		if json.Unmarshal(p.Activities, &s) != nil || json.Unmarshal([]byte(s), &items) != nil {
			return []Activity{}
		}
	}

	out := make([]Activity, 0, len(items))
	for _, item := range items {
		var s string
		if json.Unmarshal(item, &s) == nil {
			item = json.RawMessage(s)
		}
		var ra rawActivity
		if err := json.Unmarshal(item, &ra); err != nil {
			continue
		}
		out = append(out, Activity{
			Message:   ra.Message,
			Badges:    docparse.StringList(ra.Badges),
			Timestamp: parseTimestamp(ra.Timestamp),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out
}

func parseTimestamp(raw json.RawMessage) int64 {
	var n float64
	if json.Unmarshal(raw, &n) == nil {
		return int64(n)
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return v
		}
	}
	return 0
}

type LeaderboardEntry struct {
	ID     string          `json:"$id"`
	Name   string          `json:"name"`
	XP     int             `json:"xp"`
	Streak int             `json:"streak"`
	Badges json.RawMessage `json:"badges"`
	Avatar string          `json:"avatar"`
}

type Submission struct {
	Feedback  string `json:"feedback"`
	XPAwarded int    `json:"xp_awarded"`
	Success   bool   `json:"success"`
}
