package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/entities"
)

type UsageRepository interface {
	// CheckAndIncrement applies calendar rollover, then atomically admits
	// the increment only if both the daily and monthly bounds hold after
	// it. Concurrent calls for the same user must never over-admit: with K
	// units of quota remaining, at most K of N simultaneous calls succeed.
	// The ledger row is lazily created from the given tier limits on the
	// user's first request. A non-nil seed is a recently read ledger row the
	// implementation may use in place of its own initial read; the rollover
	// guard on last_reset keeps a stale seed harmless.
	CheckAndIncrement(ctx context.Context, userID uuid.UUID, amount int, tier entities.SubscriptionTier, now time.Time, seed *entities.UsageLedger) (*entities.QuotaDecision, error)
	Get(ctx context.Context, userID uuid.UUID) (*entities.UsageLedger, error)
}
