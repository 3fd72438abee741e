package entity

import (
	"time"

	"fundocs-be/pkg/vote"

	"github.com/google/uuid"
)

type Tip struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	AuthorName   string
	AuthorAvatar string
	Text         string
	Votes        int
	Voters       vote.Voters
	Version      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// VoteOf returns the caller's current vote on the tip.
func (t *Tip) VoteOf(userID uuid.UUID) vote.Direction {
	if t.Voters == nil {
		return vote.None
	}
	return t.Voters[userID.String()]
}
