package specification

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/google/uuid"
)

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(s.Email)))
}

type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type ByTokenHash struct {
	Hash string
}

func (s ByTokenHash) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("token_hash = ?", s.Hash)
}

type ByProvider struct {
	Name           string
	ProviderUserID string
}

func (s ByProvider) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("provider_name = ? AND provider_user_id = ?", s.Name, s.ProviderUserID)
}

// NotExpired keeps rows whose expires_at is still in the future.
type NotExpired struct {
	Now time.Time
}

func (s NotExpired) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("expires_at > ?", s.Now)
}

type NameLike struct {
	Query string
}

func (s NameLike) Apply(db *gorm.DB) *gorm.DB {
	q := strings.ToLower(strings.TrimSpace(s.Query))
	if q == "" {
		return db
	}
	return db.Where("LOWER(name) LIKE ?", "%"+q+"%")
}
