package engine

import (
	"context"
	"time"

	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/entities"
)

// StaticEngine is the fallback used when no scorer service is configured.
// It derives a baseline win probability from the morning-line odds feature
// and reports low confidence, so downstream consumers can tell it apart
// from ensemble output.
type StaticEngine struct {
	ModelVersion string
}

// NewStaticEngine creates the fallback engine.
func NewStaticEngine() *StaticEngine {
	return &StaticEngine{ModelVersion: "baseline-odds"}
}

// Predict implements Engine.
func (e *StaticEngine) Predict(_ context.Context, input *entities.PredictionInput) (*entities.Prediction, error) {
	prob := 0.1
	if odds, ok := input.Features["morning_line_odds"]; ok && odds > 0 {
		prob = 1 / (odds + 1)
	}
	return &entities.Prediction{
		RaceID:         input.RaceID,
		HorseID:        input.HorseID,
		WinProbability: clamp01(prob),
		Confidence:     0.25,
		ModelVersion:   e.ModelVersion,
		EvaluatedAt:    time.Now(),
	}, nil
}
