package vote

import (
	"fmt"
	"strings"
)

// Direction is the side a voter picked on a tip.
type Direction string

const (
	None Direction = ""
	Up   Direction = "up"
	Down Direction = "down"
)

// Parse accepts "up"/"down" in any case.
func Parse(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	}
	return None, fmt.Errorf("invalid vote direction %q", s)
}

func (d Direction) weight() int {
	switch d {
	case Up:
		return 1
	case Down:
		return -1
	}
	return 0
}

// Apply computes the new tally and the voter's new state.
// Repeating the previous direction removes the vote, switching moves two units.
func Apply(count int, prev, dir Direction) (int, Direction) {
	if prev == dir {
		return count - dir.weight(), None
	}
	return count - prev.weight() + dir.weight(), dir
}

// Voters maps user id to the direction they voted.
type Voters map[string]Direction

// Cast applies a vote from userID against the current tally and mutates v.
func (v Voters) Cast(count int, userID string, dir Direction) int {
	next, state := Apply(count, v[userID], dir)
	if state == None {
		delete(v, userID)
	} else {
		v[userID] = state
	}
	return next
}

// Tally recomputes the count from scratch.
func (v Voters) Tally() int {
	total := 0
	for _, d := range v {
		total += d.weight()
	}
	return total
}
