package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateTipRequest struct {
	Text string `json:"text" validate:"required,notblank,max=500"`
}

type VoteTipRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down UP DOWN Up Down"`
}

type ListTipsQuery struct {
	Page    int `query:"page"`
	PerPage int `query:"per_page" validate:"omitempty,min=1,max=100"`
}

type TipDTO struct {
	Id           uuid.UUID `json:"id"`
	AuthorId     uuid.UUID `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar"`
	Text         string    `json:"text"`
	Votes        int       `json:"votes"`
	MyVote       string    `json:"my_vote"`
	IsMine       bool      `json:"is_mine"`
	CreatedAt    time.Time `json:"created_at"`
}
