package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/entities"
	domainerrors "github.com/low-k3YLTD/equine-oracle-backend/internal/domain/errors"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/repositories"
)

// UsageUsecase serves subscriber-facing usage and tier reference data.
type UsageUsecase struct {
	usageRepo repositories.UsageRepository
	userRepo  repositories.UserRepository
	tiers     entities.TierCatalog
}

// NewUsageUsecase creates a new usage usecase.
func NewUsageUsecase(usageRepo repositories.UsageRepository, userRepo repositories.UserRepository, tiers entities.TierCatalog) *UsageUsecase {
	return &UsageUsecase{
		usageRepo: usageRepo,
		userRepo:  userRepo,
		tiers:     tiers,
	}
}

// Snapshot reports the user's current consumption against their tier limits.
// A user who has made no requests yet gets a zeroed view of their tier.
func (u *UsageUsecase) Snapshot(ctx context.Context, userID uuid.UUID) (*entities.UsageSnapshot, error) {
	ledger, err := u.usageRepo.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrNotFound) {
			return nil, err
		}
		user, err := u.userRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		tier := u.tiers.Resolve(user.Tier)
		return &entities.UsageSnapshot{
			DailyLimit:   tier.MaxPredictionsPerDay,
			MonthlyLimit: tier.MaxPredictionsPerMonth,
			ResetsAt:     nextMidnight(time.Now()),
		}, nil
	}

	return &entities.UsageSnapshot{
		DailyUsed:    ledger.DailyUsed,
		DailyLimit:   ledger.DailyLimit,
		MonthlyUsed:  ledger.MonthlyUsed,
		MonthlyLimit: ledger.MonthlyLimit,
		ResetsAt:     nextMidnight(time.Now()),
	}, nil
}

// Tiers lists the subscription catalog in ascending price order.
func (u *UsageUsecase) Tiers() []entities.SubscriptionTier {
	ordered := []entities.TierName{entities.TierFree, entities.TierBasic, entities.TierPremium, entities.TierElite}
	out := make([]entities.SubscriptionTier, 0, len(ordered))
	for _, name := range ordered {
		if tier, ok := u.tiers[name]; ok {
			out = append(out, tier)
		}
	}
	return out
}

func nextMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
}
