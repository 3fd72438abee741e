package dto

import "fundocs-be/pkg/docparse"

type CreateDocumentRequest struct {
	Source string `json:"source" validate:"required,notblank"`
}

type DocumentDTO struct {
	Id         string               `json:"doc_id"`
	Title      string               `json:"title"`
	Text       string               `json:"text"`
	Story      string               `json:"story"`
	Steps      []string             `json:"steps"`
	Challenges []string             `json:"challenges"`
	Flashcards []docparse.Flashcard `json:"flashcards"`
	CreatedAt  string               `json:"created_at,omitempty"`
}

type ListDocumentsQuery struct {
	Search  string `query:"search"`
	Sort    string `query:"sort" validate:"omitempty,oneof=newest oldest"`
	Page    int    `query:"page"`
	PerPage int    `query:"per_page" validate:"omitempty,min=1,max=100"`
}

type SubmitChallengeRequest struct {
	Solution       string `json:"solution" validate:"required,notblank"`
	ChallengeTitle string `json:"challenge_title"`
}

type SubmitChallengeResponse struct {
	Feedback  string `json:"feedback"`
	XPAwarded int    `json:"xp_awarded"`
	Success   bool   `json:"success"`
}
