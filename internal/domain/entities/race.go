package entities

import (
	"time"

	"github.com/google/uuid"
)

// RaceStatus tracks a scheduled race through the watcher's lifecycle.
type RaceStatus string

const (
	RaceScheduled RaceStatus = "SCHEDULED"
	RaceEvaluated RaceStatus = "EVALUATED"
	RaceClosed    RaceStatus = "CLOSED"
)

// Race is one scheduled race on the ingestion calendar. The continuous
// prediction agent evaluates races whose post time falls inside its
// lookahead window.
type Race struct {
	ID          uuid.UUID  `json:"id"`
	ExternalID  string     `json:"externalId"`
	Track       string     `json:"track"`
	PostTime    time.Time  `json:"postTime"`
	Status      RaceStatus `json:"status"`
	// TopPick and TopPickProbability record the model's selection once the
	// watcher has evaluated the race.
	TopPick            string     `json:"topPick,omitempty"`
	TopPickProbability float64    `json:"topPickProbability,omitempty"`
	EvaluatedAt        *time.Time `json:"evaluatedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}
