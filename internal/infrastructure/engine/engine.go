// Package engine wraps the ML ensemble behind an opaque prediction function.
package engine

import (
	"context"

	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/entities"
)

// Engine scores one feature vector. Implementations must return probability
// and confidence in [0,1].
type Engine interface {
	Predict(ctx context.Context, input *entities.PredictionInput) (*entities.Prediction, error)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
