package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/entities"
	domainerrors "github.com/low-k3YLTD/equine-oracle-backend/internal/domain/errors"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/repositories"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/infrastructure/ratelimit"
	"github.com/low-k3YLTD/equine-oracle-backend/pkg/crypto"
	"github.com/low-k3YLTD/equine-oracle-backend/pkg/logger"
)

const touchTimeout = 5 * time.Second

// GatewayUsecase authorizes prediction requests carried by an API key. A
// request passes through credential parsing, digest verification, active and
// expiry checks, the quota ledger, and finally the per-minute rate window,
// strictly in that order. Quota is charged before the rate window is
// consulted, and both are always enforced.
type GatewayUsecase struct {
	keyRepo   repositories.ApiKeyRepository
	usageRepo repositories.UsageRepository
	limiter   ratelimit.Limiter
	hasher    *crypto.KeyHasher
	tiers     entities.TierCatalog
	window    time.Duration

	now func() time.Time
	// touchAsync runs the last-used update off the request path.
	touchAsync func(func())
}

// NewGatewayUsecase creates a new gateway usecase.
func NewGatewayUsecase(
	keyRepo repositories.ApiKeyRepository,
	usageRepo repositories.UsageRepository,
	limiter ratelimit.Limiter,
	hasher *crypto.KeyHasher,
	tiers entities.TierCatalog,
	window time.Duration,
) *GatewayUsecase {
	if window <= 0 {
		window = time.Minute
	}
	return &GatewayUsecase{
		keyRepo:    keyRepo,
		usageRepo:  usageRepo,
		limiter:    limiter,
		hasher:     hasher,
		tiers:      tiers,
		window:     window,
		now:        time.Now,
		touchAsync: func(fn func()) { go fn() },
	}
}

// Authorize validates the plaintext credential and charges one unit of quota
// plus one rate-window slot. On success it returns the resolved identity; on
// rejection it returns an *domainerrors.AppError describing why, without
// revealing whether an unknown prefix or a digest mismatch occurred.
func (u *GatewayUsecase) Authorize(ctx context.Context, plaintext string) (*entities.AuthContext, error) {
	auth, err := u.Validate(ctx, plaintext)
	if err != nil {
		return nil, err
	}
	if err := u.Charge(ctx, auth); err != nil {
		return nil, err
	}
	return auth, nil
}

// Validate resolves the credential to an identity without charging anything:
// parsing, digest verification, and the active and expiry checks. Callers
// that admit the request must follow up with Charge; read-only callers (a
// usage lookup, an idempotent replay) stop here.
func (u *GatewayUsecase) Validate(ctx context.Context, plaintext string) (*entities.AuthContext, error) {
	if plaintext == "" {
		return nil, domainerrors.MissingCredential()
	}

	prefix, ok := crypto.ExtractPrefix(plaintext)
	if !ok {
		// Malformed credentials never reach storage.
		return nil, domainerrors.MissingCredential()
	}

	record, err := u.keyRepo.FindByPrefix(ctx, prefix)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			logger.Warn(ctx, "gateway: unknown key prefix", zap.String("prefix", prefix))
			return nil, domainerrors.InvalidCredential()
		}
		logger.Error(ctx, "gateway: key store lookup failed", zap.String("prefix", prefix), zap.Error(err))
		return nil, domainerrors.BackingUnavailable(err)
	}

	key := record.Key
	if !u.hasher.VerifyKey(plaintext, key.KeyHash) {
		logger.Warn(ctx, "gateway: digest mismatch", zap.String("prefix", prefix))
		return nil, domainerrors.InvalidCredential()
	}

	if !key.IsActive {
		return nil, domainerrors.CredentialInactive()
	}

	now := u.now()
	if key.Expired(now) {
		return nil, domainerrors.CredentialExpired()
	}

	tier := u.tiers.Resolve(record.User.Tier)

	return &entities.AuthContext{
		UserID:    record.User.ID,
		Email:     record.User.Email,
		Tier:      tier,
		Flags:     tier.Flags(),
		KeyID:     key.ID,
		KeyPrefix: key.KeyPrefix,
		Ledger:    record.Ledger,
	}, nil
}

// Charge takes one unit of quota and one rate-window slot for a validated
// identity, quota first, and schedules the last-used touch once both admit.
func (u *GatewayUsecase) Charge(ctx context.Context, auth *entities.AuthContext) error {
	now := u.now()

	quota, err := u.usageRepo.CheckAndIncrement(ctx, auth.UserID, 1, auth.Tier, now, auth.Ledger)
	if err != nil {
		logger.Error(ctx, "gateway: usage ledger check failed", zap.String("userId", auth.UserID.String()), zap.Error(err))
		return domainerrors.BackingUnavailable(err)
	}
	if !quota.Allowed {
		return domainerrors.QuotaExceeded(quota.RetryAfter)
	}

	decision, err := u.limiter.Allow(ctx, "user:"+auth.UserID.String(), auth.Tier.RequestsPerMinute, u.window)
	if err != nil {
		logger.Error(ctx, "gateway: rate limiter failed", zap.String("userId", auth.UserID.String()), zap.Error(err))
		return domainerrors.BackingUnavailable(err)
	}
	if !decision.Allowed {
		return domainerrors.RateLimited(decision.RetryAfter)
	}

	u.scheduleTouch(auth.KeyID)
	return nil
}

// scheduleTouch updates the key's last-used timestamp off the request path.
// Failures are logged, never surfaced.
func (u *GatewayUsecase) scheduleTouch(keyID uuid.UUID) {
	u.touchAsync(func() {
		ctx, cancel := context.WithTimeout(context.Background(), touchTimeout)
		defer cancel()
		if err := u.keyRepo.TouchLastUsed(ctx, keyID); err != nil {
			logger.Warn(ctx, "gateway: last-used touch failed", zap.String("keyId", keyID.String()), zap.Error(err))
		}
	})
}

// AllowAnonymous rate limits an unauthenticated caller by client address.
func (u *GatewayUsecase) AllowAnonymous(ctx context.Context, clientIP string, limit int) error {
	decision, err := u.limiter.Allow(ctx, "ip:"+clientIP, limit, u.window)
	if err != nil {
		logger.Error(ctx, "gateway: anonymous rate limiter failed", zap.String("ip", clientIP), zap.Error(err))
		return domainerrors.BackingUnavailable(err)
	}
	if !decision.Allowed {
		return domainerrors.RateLimited(decision.RetryAfter)
	}
	return nil
}
