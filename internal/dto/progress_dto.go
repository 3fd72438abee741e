package dto

import (
	"time"

	"fundocs-be/pkg/gamification"
)

type ActivityDTO struct {
	Message   string               `json:"message"`
	Badges    []gamification.Badge `json:"badges"`
	Timestamp time.Time            `json:"timestamp"`
}

type DashboardResponse struct {
	XP            int                   `json:"xp"`
	Streak        int                   `json:"streak"`
	Level         int                   `json:"level"`
	LevelProgress int                   `json:"level_progress"`
	LevelPercent  int                   `json:"level_percent"`
	Badges        []gamification.Badge  `json:"badges"`
	Activities    []ActivityDTO         `json:"activities"`
	NextBadges    []gamification.Locked `json:"next_badges"`
}

type BadgeCatalogResponse struct {
	Filter string               `json:"filter"`
	Badges []gamification.Badge `json:"badges"`
	Total  int                  `json:"total"`
}

type LeaderboardQuery struct {
	Search  string `query:"search"`
	Page    int    `query:"page"`
	PerPage int    `query:"per_page" validate:"omitempty,min=1,max=100"`
}

type LeaderboardEntryDTO struct {
	Rank   int                  `json:"rank"`
	UserId string               `json:"user_id"`
	Name   string               `json:"name"`
	Avatar string               `json:"avatar"`
	XP     int                  `json:"xp"`
	Streak int                  `json:"streak"`
	Level  int                  `json:"level"`
	Badges []gamification.Badge `json:"badges"`
	IsMe   bool                 `json:"is_me"`
}

type LeaderboardResponse struct {
	Podium     []LeaderboardEntryDTO `json:"podium"`
	Items      []LeaderboardEntryDTO `json:"items"`
	Me         *LeaderboardEntryDTO  `json:"me,omitempty"`
	Page       int                   `json:"page"`
	PerPage    int                   `json:"per_page"`
	Total      int                   `json:"total"`
	TotalPages int                   `json:"total_pages"`
}

type AwardXPRequest struct {
	XPEarned       int    `json:"xp_earned" validate:"required,min=1,max=1000"`
	ChallengeTitle string `json:"challenge_title" validate:"max=200"`
}
