package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id              uuid.UUID
	Name            string
	Email           string
	PasswordHash    *string // nil for OAuth-only accounts
	EmailVerified   bool
	EmailVerifiedAt *time.Time
	AvatarURL       *string
	AvatarKey       *string // storage key when the avatar is ours
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (u *User) Avatar() string {
	if u == nil || u.AvatarURL == nil {
		return ""
	}
	return *u.AvatarURL
}

type UserSession struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	ExpiresAt time.Time
	IpAddress string
	UserAgent string
	CreatedAt time.Time
}

func (s *UserSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type EmailVerificationToken struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type UserProvider struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	ProviderName   string
	ProviderUserId string
	AvatarURL      string
	CreatedAt      time.Time
}
