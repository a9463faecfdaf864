package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/entities"
)

type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	UpdateTier(ctx context.Context, id uuid.UUID, tier entities.TierName) error
}
