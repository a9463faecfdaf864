package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/entities"
	domainerrors "github.com/low-k3YLTD/equine-oracle-backend/internal/domain/errors"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/infrastructure/models"
)

// UsageRepository implements the quota ledger on GORM. Admission is a single
// conditional UPDATE so two concurrent requests can never both take the last
// unit of quota.
type UsageRepository struct {
	db *gorm.DB
}

// NewUsageRepository creates a new usage repository
func NewUsageRepository(db *gorm.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// Get returns a user's ledger row.
func (r *UsageRepository) Get(ctx context.Context, userID uuid.UUID) (*entities.UsageLedger, error) {
	var m models.UsageLedger
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toLedgerEntity(&m), nil
}

// CheckAndIncrement rolls the counters over across calendar boundaries, then
// admits the increment only if both bounds hold after it. A non-nil seed
// replaces the initial read; the last_reset guard in rollover keeps a stale
// seed from double-resetting.
func (r *UsageRepository) CheckAndIncrement(ctx context.Context, userID uuid.UUID, amount int, tier entities.SubscriptionTier, now time.Time, seed *entities.UsageLedger) (*entities.QuotaDecision, error) {
	ledger := seed
	if ledger == nil {
		var err error
		ledger, err = r.ensureLedger(ctx, userID, tier, now)
		if err != nil {
			return nil, err
		}
	}

	if err := r.rollover(ctx, ledger, now); err != nil {
		return nil, err
	}

	// Atomic admit: both counters advance together or not at all. A
	// negative monthly limit disables the monthly bound.
	result := r.db.WithContext(ctx).Model(&models.UsageLedger{}).
		Where("user_id = ? AND daily_used + ? <= daily_limit AND (monthly_limit < 0 OR monthly_used + ? <= monthly_limit)",
			userID, amount, amount).
		Updates(map[string]interface{}{
			"daily_used":   gorm.Expr("daily_used + ?", amount),
			"monthly_used": gorm.Expr("monthly_used + ?", amount),
			"updated_at":   now,
		})
	if result.Error != nil {
		return nil, result.Error
	}

	current, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	decision := &entities.QuotaDecision{
		Allowed:          result.RowsAffected > 0,
		DailyRemaining:   current.DailyLimit - current.DailyUsed,
		MonthlyRemaining: entities.UnlimitedMonthly,
	}
	if current.MonthlyLimit >= 0 {
		decision.MonthlyRemaining = current.MonthlyLimit - current.MonthlyUsed
	}
	if !decision.Allowed {
		decision.RetryAfter = quotaRetryAfter(current, amount, now)
	}
	return decision, nil
}

// ensureLedger lazily creates the ledger row from tier limits on the user's
// first request.
func (r *UsageRepository) ensureLedger(ctx context.Context, userID uuid.UUID, tier entities.SubscriptionTier, now time.Time) (*entities.UsageLedger, error) {
	ledger, err := r.Get(ctx, userID)
	if err == nil {
		return ledger, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	m := &models.UsageLedger{
		ID:           uuid.New(),
		UserID:       userID,
		DailyLimit:   tier.MaxPredictionsPerDay,
		MonthlyLimit: tier.MaxPredictionsPerMonth,
		LastReset:    now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		// A concurrent first request may have won the insert; re-read.
		if existing, getErr := r.Get(ctx, userID); getErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return toLedgerEntity(m), nil
}

// rollover zeroes the daily counter on a new calendar day and the monthly
// counter on a new month, and advances last_reset to now either way. The
// update is guarded on the previously read last_reset so a racing check
// resets each counter exactly once.
func (r *UsageRepository) rollover(ctx context.Context, ledger *entities.UsageLedger, now time.Time) error {
	dayChanged := !sameDay(ledger.LastReset, now)
	monthChanged := !sameMonth(ledger.LastReset, now)

	updates := map[string]interface{}{
		"last_reset": now,
		"updated_at": now,
	}
	if dayChanged {
		updates["daily_used"] = 0
	}
	if monthChanged {
		updates["monthly_used"] = 0
	}

	result := r.db.WithContext(ctx).Model(&models.UsageLedger{}).
		Where("user_id = ? AND last_reset = ?", ledger.UserID, ledger.LastReset).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	// RowsAffected == 0 means a concurrent check already advanced
	// last_reset (and applied any reset); nothing left to do.
	return nil
}

func quotaRetryAfter(ledger *entities.UsageLedger, amount int, now time.Time) time.Duration {
	// Monthly exhaustion dominates: a daily reset would not help.
	if ledger.MonthlyLimit >= 0 && ledger.MonthlyUsed+amount > ledger.MonthlyLimit {
		nextMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
		return nextMonth.Sub(now)
	}
	nextDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return nextDay.Sub(now)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sameMonth(a, b time.Time) bool {
	ay, am, _ := a.Date()
	by, bm, _ := b.Date()
	return ay == by && am == bm
}

func toLedgerEntity(m *models.UsageLedger) *entities.UsageLedger {
	return &entities.UsageLedger{
		ID:           m.ID,
		UserID:       m.UserID,
		DailyUsed:    m.DailyUsed,
		DailyLimit:   m.DailyLimit,
		MonthlyUsed:  m.MonthlyUsed,
		MonthlyLimit: m.MonthlyLimit,
		LastReset:    m.LastReset,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
