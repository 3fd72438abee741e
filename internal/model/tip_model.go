package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Tip struct {
	Id           uuid.UUID                             `gorm:"type:uuid;primaryKey"`
	UserId       uuid.UUID                             `gorm:"type:uuid;not null;index"`
	AuthorName   string                                `gorm:"type:varchar(255);not null"`
	AuthorAvatar string                                `gorm:"type:text"`
	Text         string                                `gorm:"type:varchar(500);not null"`
	Votes        int                                   `gorm:"not null;default:0"`
	Voters       datatypes.JSONType[map[string]string] `gorm:"not null"`
	Version      int                                   `gorm:"not null;default:1"`
	CreatedAt    time.Time                             `gorm:"autoCreateTime;index"`
	UpdatedAt    time.Time                             `gorm:"autoUpdateTime"`
}

func (Tip) TableName() string {
	return "tips"
}

func (m *Tip) BeforeCreate(*gorm.DB) error {
	ensureID(&m.Id)
	if m.Version == 0 {
		m.Version = 1
	}
	return nil
}

// All lists every model owned by this service, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&UserSession{},
		&EmailVerificationToken{},
		&UserProvider{},
		&Tip{},
	}
}
