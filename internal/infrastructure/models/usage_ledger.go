package models

import (
	"time"

	"github.com/google/uuid"
)

type UsageLedger struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	DailyUsed    int       `gorm:"not null;default:0"`
	DailyLimit   int       `gorm:"not null"`
	MonthlyUsed  int       `gorm:"not null;default:0"`
	MonthlyLimit int       `gorm:"not null"` // -1 means unlimited
	LastReset    time.Time `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
