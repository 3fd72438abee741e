package dto

import (
	"time"

	"github.com/google/uuid"
)

type SignupRequest struct {
	Name     string `json:"name" form:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,strongpassword"`
}

// AvatarUpload is an optional image sent with signup.
type AvatarUpload struct {
	Data        []byte
	ContentType string
	Size        int64
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyEmailRequest struct {
	UserId string `json:"user_id" validate:"required,uuid"`
	Secret string `json:"secret" validate:"required"`
}

// AuthResponse is returned by signup, login and the OAuth callback.
type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Redirect    string    `json:"redirect"`
	User        UserDTO   `json:"user"`
}

type UserDTO struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Verified  bool      `json:"verified"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type MeResponse struct {
	User     UserDTO `json:"user"`
	Verified bool    `json:"verified"`
}
