package usecases

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/entities"
	domainerrors "github.com/low-k3YLTD/equine-oracle-backend/internal/domain/errors"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/repositories"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/infrastructure/engine"
	"github.com/low-k3YLTD/equine-oracle-backend/pkg/logger"
	"github.com/low-k3YLTD/equine-oracle-backend/pkg/utils"
)

const maxFeatureCount = 256

// PredictionUsecase scores feature vectors through the ensemble engine and
// serves the race calendar.
type PredictionUsecase struct {
	engine   engine.Engine
	raceRepo repositories.RaceRepository
}

// NewPredictionUsecase creates a new prediction usecase.
func NewPredictionUsecase(eng engine.Engine, raceRepo repositories.RaceRepository) *PredictionUsecase {
	return &PredictionUsecase{
		engine:   eng,
		raceRepo: raceRepo,
	}
}

// Predict scores one feature vector for an authenticated subscriber.
func (u *PredictionUsecase) Predict(ctx context.Context, input *entities.PredictionInput) (*entities.Prediction, error) {
	if len(input.Features) == 0 {
		return nil, domainerrors.BadRequest("features must not be empty")
	}
	if len(input.Features) > maxFeatureCount {
		return nil, domainerrors.BadRequest("too many features")
	}

	pred, err := u.engine.Predict(ctx, input)
	if err != nil {
		logger.Error(ctx, "prediction: engine call failed",
			zap.String("race", input.RaceID), zap.Error(err))
		return nil, domainerrors.BackingUnavailable(err)
	}
	return pred, nil
}

// Preview scores a vector for anonymous callers. The output is coarsened:
// probability only, no confidence or model identification.
func (u *PredictionUsecase) Preview(ctx context.Context, input *entities.PredictionInput) (*entities.Prediction, error) {
	pred, err := u.Predict(ctx, input)
	if err != nil {
		return nil, err
	}
	return &entities.Prediction{
		RaceID:         pred.RaceID,
		HorseID:        pred.HorseID,
		WinProbability: roundCoarse(pred.WinProbability),
		EvaluatedAt:    pred.EvaluatedAt,
	}, nil
}

// ListUpcomingRaces pages through the race calendar with the watcher's picks
// attached where evaluated.
func (u *PredictionUsecase) ListUpcomingRaces(ctx context.Context, page, limit int) ([]*entities.Race, *utils.PaginationMeta, error) {
	params := utils.GetPaginationParams(page, limit)

	races, total, err := u.raceRepo.ListUpcoming(ctx, time.Now(), params.CalculateOffset(), params.Limit)
	if err != nil {
		return nil, nil, err
	}

	meta := utils.CalculateMeta(total, params.Page, params.Limit)
	return races, &meta, nil
}

// roundCoarse quantizes a probability to two decimal places.
func roundCoarse(p float64) float64 {
	return float64(int(p*100+0.5)) / 100
}
