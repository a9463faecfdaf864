package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Race struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ExternalID         string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Track              string    `gorm:"type:varchar(100);not null"`
	PostTime           time.Time `gorm:"not null;index"`
	Status             string    `gorm:"type:varchar(20);not null;index"`
	TopPick            string    `gorm:"type:varchar(100)"`
	TopPickProbability float64
	EvaluatedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}
