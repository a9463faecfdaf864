package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/entities"
)

type ApiKeyRepository interface {
	Create(ctx context.Context, apiKey *entities.ApiKey) error
	// FindByPrefix resolves a lookup prefix to the credential, its owning
	// user, and the user's usage ledger (nil if not yet initialized) in one
	// logical lookup. Returns domainerrors.ErrNotFound when no credential
	// carries the prefix; any other error is a transient storage failure.
	FindByPrefix(ctx context.Context, prefix string) (*entities.CredentialRecord, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.ApiKey, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entities.ApiKey, error)
	// TouchLastUsed updates the last-used timestamp. Best effort: callers
	// must not block a request on its failure.
	TouchLastUsed(ctx context.Context, id uuid.UUID) error
	// Deactivate soft-disables a credential. Keys are never physically
	// deleted.
	Deactivate(ctx context.Context, id, userID uuid.UUID) error
}
