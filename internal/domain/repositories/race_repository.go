package repositories

import (
	"context"
	"time"

	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/entities"
)

type RaceRepository interface {
	Create(ctx context.Context, race *entities.Race) error
	// GetUnevaluatedBefore lists scheduled races with a post time before the
	// cutoff, oldest first.
	GetUnevaluatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entities.Race, error)
	MarkEvaluated(ctx context.Context, race *entities.Race) error
	ListUpcoming(ctx context.Context, after time.Time, offset, limit int) ([]*entities.Race, int64, error)
}
