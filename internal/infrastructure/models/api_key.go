package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApiKey struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(100);not null"`
	KeyPrefix  string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	KeyHash    string    `gorm:"type:varchar(64);uniqueIndex;not null"` // keyed HMAC-SHA256 of the full key
	KeyMasked  string    `gorm:"type:varchar(20);not null"`             // "****abcd"
	IsActive   bool      `gorm:"default:true;not null"`
	LastUsedAt *time.Time
	ExpiresAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
	User       User           `gorm:"foreignKey:UserID"`
}
