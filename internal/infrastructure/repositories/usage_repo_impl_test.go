package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/entities"
	domainerrors "github.com/low-k3YLTD/equine-oracle-backend/internal/domain/errors"
)

var testTier = entities.SubscriptionTier{
	Name:                   entities.TierFree,
	MaxPredictionsPerDay:   10,
	MaxPredictionsPerMonth: 100,
	RequestsPerMinute:      10,
}

func seedLedger(t *testing.T, db *gorm.DB, userID uuid.UUID, dailyUsed, dailyLimit, monthlyUsed, monthlyLimit int, lastReset time.Time) {
	t.Helper()
	mustExec(t, db, `INSERT INTO usage_ledgers (id, user_id, daily_used, daily_limit, monthly_used, monthly_limit, last_reset, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New(), userID, dailyUsed, dailyLimit, monthlyUsed, monthlyLimit, lastReset, time.Now(), time.Now())
}

func TestUsageRepository_LazyInit(t *testing.T) {
	db := newTestDB(t)
	createUsageLedgerTable(t, db)
	repo := NewUsageRepository(db)

	userID := uuid.New()
	now := time.Now()

	decision, err := repo.CheckAndIncrement(context.Background(), userID, 1, testTier, now, nil)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 9, decision.DailyRemaining)
	assert.Equal(t, 99, decision.MonthlyRemaining)

	ledger, err := repo.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, ledger.DailyUsed)
	assert.Equal(t, 1, ledger.MonthlyUsed)
	assert.Equal(t, testTier.MaxPredictionsPerDay, ledger.DailyLimit)
	assert.Equal(t, testTier.MaxPredictionsPerMonth, ledger.MonthlyLimit)
}

func TestUsageRepository_DailyBoundary(t *testing.T) {
	db := newTestDB(t)
	createUsageLedgerTable(t, db)
	repo := NewUsageRepository(db)

	userID := uuid.New()
	now := time.Now()
	seedLedger(t, db, userID, 9, 10, 50, 100, now)

	// One unit of daily quota left: this increment lands exactly on the
	// limit.
	decision, err := repo.CheckAndIncrement(context.Background(), userID, 1, testTier, now, nil)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Zero(t, decision.DailyRemaining)

	// The next one in the same day is rejected without mutating counters.
	decision, err = repo.CheckAndIncrement(context.Background(), userID, 1, testTier, now, nil)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Positive(t, decision.RetryAfter)

	ledger, err := repo.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 10, ledger.DailyUsed)
	assert.Equal(t, 51, ledger.MonthlyUsed)
}

func TestUsageRepository_MonthlyBound(t *testing.T) {
	db := newTestDB(t)
	createUsageLedgerTable(t, db)
	repo := NewUsageRepository(db)

	userID := uuid.New()
	now := time.Now()
	seedLedger(t, db, userID, 0, 10, 100, 100, now)

	decision, err := repo.CheckAndIncrement(context.Background(), userID, 1, testTier, now, nil)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)

	ledger, err := repo.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Zero(t, ledger.DailyUsed, "rejected increment must not partially apply")
	assert.Equal(t, 100, ledger.MonthlyUsed)
}

func TestUsageRepository_UnlimitedMonthly(t *testing.T) {
	db := newTestDB(t)
	createUsageLedgerTable(t, db)
	repo := NewUsageRepository(db)

	userID := uuid.New()
	now := time.Now()
	seedLedger(t, db, userID, 0, 5, 1000000, entities.UnlimitedMonthly, now)

	decision, err := repo.CheckAndIncrement(context.Background(), userID, 1, testTier, now, nil)
	require.NoError(t, err)
	assert.True(t, decision.Allowed, "sentinel monthly limit disables the monthly check")
	assert.Equal(t, entities.UnlimitedMonthly, decision.MonthlyRemaining)

	// The daily bound still applies.
	for i := 0; i < 4; i++ {
		decision, err = repo.CheckAndIncrement(context.Background(), userID, 1, testTier, now, nil)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	}
	decision, err = repo.CheckAndIncrement(context.Background(), userID, 1, testTier, now, nil)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}

func TestUsageRepository_DailyRollover(t *testing.T) {
	db := newTestDB(t)
	createUsageLedgerTable(t, db)
	repo := NewUsageRepository(db)

	userID := uuid.New()
	yesterday := time.Now().AddDate(0, 0, -1)
	seedLedger(t, db, userID, 10, 10, 40, 100, yesterday)

	now := time.Now()
	decision, err := repo.CheckAndIncrement(context.Background(), userID, 1, testTier, now, nil)
	require.NoError(t, err)
	assert.True(t, decision.Allowed, "daily counter resets on a new day")

	ledger, err := repo.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, ledger.DailyUsed)
	assert.Equal(t, 41, ledger.MonthlyUsed, "monthly counter survives a daily rollover")
	assert.WithinDuration(t, now, ledger.LastReset, time.Second)
}

func TestUsageRepository_MonthlyRollover(t *testing.T) {
	db := newTestDB(t)
	createUsageLedgerTable(t, db)
	repo := NewUsageRepository(db)

	userID := uuid.New()
	lastMonth := time.Now().AddDate(0, -1, 0)
	seedLedger(t, db, userID, 10, 10, 100, 100, lastMonth)

	decision, err := repo.CheckAndIncrement(context.Background(), userID, 1, testTier, time.Now(), nil)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	ledger, err := repo.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, ledger.DailyUsed)
	assert.Equal(t, 1, ledger.MonthlyUsed)
}

func TestUsageRepository_RolloverIdempotence(t *testing.T) {
	db := newTestDB(t)
	createUsageLedgerTable(t, db)
	repo := NewUsageRepository(db)

	userID := uuid.New()
	yesterday := time.Now().AddDate(0, 0, -1)
	seedLedger(t, db, userID, 7, 10, 40, 100, yesterday)

	now := time.Now()
	// Two checks in rapid succession after the day boundary: the daily
	// counter must be reset exactly once, so both increments survive.
	for i := 0; i < 2; i++ {
		decision, err := repo.CheckAndIncrement(context.Background(), userID, 1, testTier, now, nil)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	}

	ledger, err := repo.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 2, ledger.DailyUsed)
}

func TestUsageRepository_SeededLedgerSkipsRead(t *testing.T) {
	db := newTestDB(t)
	createUsageLedgerTable(t, db)
	repo := NewUsageRepository(db)

	userID := uuid.New()
	now := time.Now()
	seedLedger(t, db, userID, 9, 10, 50, 100, now)

	seed, err := repo.Get(context.Background(), userID)
	require.NoError(t, err)

	decision, err := repo.CheckAndIncrement(context.Background(), userID, 1, testTier, now, seed)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Zero(t, decision.DailyRemaining)

	ledger, err := repo.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 10, ledger.DailyUsed)
}

func TestUsageRepository_StaleSeedStillRollsOver(t *testing.T) {
	db := newTestDB(t)
	createUsageLedgerTable(t, db)
	repo := NewUsageRepository(db)

	userID := uuid.New()
	yesterday := time.Now().AddDate(0, 0, -1)
	seedLedger(t, db, userID, 10, 10, 40, 100, yesterday)

	seed, err := repo.Get(context.Background(), userID)
	require.NoError(t, err)

	now := time.Now()
	// A concurrent check advances last_reset between the seed read and the
	// charge; the guarded rollover must not reset the counters twice.
	_, err = repo.CheckAndIncrement(context.Background(), userID, 1, testTier, now, nil)
	require.NoError(t, err)

	decision, err := repo.CheckAndIncrement(context.Background(), userID, 1, testTier, now, seed)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	ledger, err := repo.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 2, ledger.DailyUsed, "both post-rollover increments survive")
}

func TestUsageRepository_ConcurrentIncrements(t *testing.T) {
	db := newTestDB(t)
	createUsageLedgerTable(t, db)
	// A single connection keeps sqlite from throwing lock errors under
	// concurrent writers; admission is still decided by the conditional
	// UPDATE, not by the pool.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	repo := NewUsageRepository(db)

	userID := uuid.New()
	now := time.Now()
	// Exactly 3 units of daily quota remain.
	seedLedger(t, db, userID, 7, 10, 0, 100, now)

	const n = 8
	var wg sync.WaitGroup
	allowed := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := repo.CheckAndIncrement(context.Background(), userID, 1, testTier, now, nil)
			if err != nil {
				allowed <- false
				return
			}
			allowed <- decision.Allowed
		}()
	}
	wg.Wait()
	close(allowed)

	accepted := 0
	for ok := range allowed {
		if ok {
			accepted++
		}
	}
	assert.Equal(t, 3, accepted, "exactly the remaining quota is admitted")

	ledger, err := repo.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 10, ledger.DailyUsed)
}

func TestUsageRepository_GetNotFound(t *testing.T) {
	db := newTestDB(t)
	createUsageLedgerTable(t, db)
	repo := NewUsageRepository(db)

	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
