package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/entities"
	domainerrors "github.com/low-k3YLTD/equine-oracle-backend/internal/domain/errors"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/infrastructure/models"
	"github.com/low-k3YLTD/equine-oracle-backend/pkg/utils"
)

// RaceRepository implements race schedule storage
type RaceRepository struct {
	db *gorm.DB
}

// NewRaceRepository creates a new race repository
func NewRaceRepository(db *gorm.DB) *RaceRepository {
	return &RaceRepository{db: db}
}

// Create creates a new race
func (r *RaceRepository) Create(ctx context.Context, race *entities.Race) error {
	if race.ID == uuid.Nil {
		race.ID = utils.GenerateUUIDv7()
	}
	m := &models.Race{
		ID:         race.ID,
		ExternalID: race.ExternalID,
		Track:      race.Track,
		PostTime:   race.PostTime,
		Status:     string(race.Status),
		CreatedAt:  race.CreatedAt,
		UpdatedAt:  race.UpdatedAt,
	}
	return r.db.WithContext(ctx).Create(m).Error
}

// GetUnevaluatedBefore lists scheduled races posting before the cutoff.
func (r *RaceRepository) GetUnevaluatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entities.Race, error) {
	var raceModels []models.Race
	err := r.db.WithContext(ctx).
		Where("status = ? AND post_time <= ?", string(entities.RaceScheduled), cutoff).
		Order("post_time ASC").
		Limit(limit).
		Find(&raceModels).Error
	if err != nil {
		return nil, err
	}

	races := make([]*entities.Race, 0, len(raceModels))
	for i := range raceModels {
		races = append(races, toRaceEntity(&raceModels[i]))
	}
	return races, nil
}

// MarkEvaluated records the watcher's pick for a race.
func (r *RaceRepository) MarkEvaluated(ctx context.Context, race *entities.Race) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.Race{}).
		Where("id = ? AND status = ?", race.ID, string(entities.RaceScheduled)).
		Updates(map[string]interface{}{
			"status":               string(entities.RaceEvaluated),
			"top_pick":             race.TopPick,
			"top_pick_probability": race.TopPickProbability,
			"evaluated_at":         now,
			"updated_at":           now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ListUpcoming pages through races posting after the given time.
func (r *RaceRepository) ListUpcoming(ctx context.Context, after time.Time, offset, limit int) ([]*entities.Race, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Race{}).Where("post_time > ?", after)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var raceModels []models.Race
	q := query.Order("post_time ASC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&raceModels).Error; err != nil {
		return nil, 0, err
	}

	races := make([]*entities.Race, 0, len(raceModels))
	for i := range raceModels {
		races = append(races, toRaceEntity(&raceModels[i]))
	}
	return races, total, nil
}

func toRaceEntity(m *models.Race) *entities.Race {
	return &entities.Race{
		ID:                 m.ID,
		ExternalID:         m.ExternalID,
		Track:              m.Track,
		PostTime:           m.PostTime,
		Status:             entities.RaceStatus(m.Status),
		TopPick:            m.TopPick,
		TopPickProbability: m.TopPickProbability,
		EvaluatedAt:        m.EvaluatedAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
