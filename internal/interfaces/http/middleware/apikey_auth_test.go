package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/entities"
	domainerrors "github.com/low-k3YLTD/equine-oracle-backend/internal/domain/errors"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/infrastructure/ratelimit"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/usecases"
	"github.com/low-k3YLTD/equine-oracle-backend/pkg/crypto"
)

type gatewayKeyRepoStub struct {
	record *entities.CredentialRecord
}

func (s *gatewayKeyRepoStub) Create(_ context.Context, _ *entities.ApiKey) error { return nil }

func (s *gatewayKeyRepoStub) FindByPrefix(_ context.Context, prefix string) (*entities.CredentialRecord, error) {
	if s.record == nil || s.record.Key.KeyPrefix != prefix {
		return nil, domainerrors.ErrNotFound
	}
	return s.record, nil
}

func (s *gatewayKeyRepoStub) FindByUserID(_ context.Context, _ uuid.UUID) ([]*entities.ApiKey, error) {
	return nil, nil
}

func (s *gatewayKeyRepoStub) FindByID(_ context.Context, _ uuid.UUID) (*entities.ApiKey, error) {
	return nil, domainerrors.ErrNotFound
}

func (s *gatewayKeyRepoStub) TouchLastUsed(_ context.Context, _ uuid.UUID) error { return nil }

func (s *gatewayKeyRepoStub) Deactivate(_ context.Context, _, _ uuid.UUID) error { return nil }

type gatewayUsageRepoStub struct {
	remaining int
	charged   int
}

func (s *gatewayUsageRepoStub) CheckAndIncrement(_ context.Context, _ uuid.UUID, amount int, _ entities.SubscriptionTier, _ time.Time, _ *entities.UsageLedger) (*entities.QuotaDecision, error) {
	if s.remaining < amount {
		return &entities.QuotaDecision{Allowed: false, RetryAfter: 2 * time.Hour}, nil
	}
	s.remaining -= amount
	s.charged += amount
	return &entities.QuotaDecision{Allowed: true, DailyRemaining: s.remaining}, nil
}

func (s *gatewayUsageRepoStub) Get(_ context.Context, _ uuid.UUID) (*entities.UsageLedger, error) {
	return nil, domainerrors.ErrNotFound
}

var gatewayTestTiers = entities.TierCatalog{
	entities.TierFree: {
		Name:                 entities.TierFree,
		MaxPredictionsPerDay: 10, MaxPredictionsPerMonth: 100,
		RequestsPerMinute: 5,
	},
}

type gatewayHarness struct {
	router  *gin.Engine
	key     string
	keys    *gatewayKeyRepoStub
	usage   *gatewayUsageRepoStub
	gateway *usecases.GatewayUsecase
}

func newGatewayHarness(t *testing.T) *gatewayHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hasher, err := crypto.NewKeyHasher("middleware-test-secret")
	require.NoError(t, err)

	plaintext, prefix, err := crypto.GenerateKey()
	require.NoError(t, err)

	userID := uuid.New()
	keys := &gatewayKeyRepoStub{record: &entities.CredentialRecord{
		Key: &entities.ApiKey{
			ID:        uuid.New(),
			UserID:    userID,
			KeyPrefix: prefix,
			KeyHash:   hasher.HashKey(plaintext),
			IsActive:  true,
		},
		User: &entities.User{ID: userID, Email: "punter@example.com", Tier: entities.TierFree},
	}}
	usage := &gatewayUsageRepoStub{remaining: 100}

	limiter := ratelimit.NewMemoryLimiter()
	t.Cleanup(limiter.Stop)

	gateway := usecases.NewGatewayUsecase(keys, usage, limiter, hasher, gatewayTestTiers, time.Minute)

	r := gin.New()
	r.POST("/predict", APIKeyValidate(gateway), APIKeyCharge(gateway), func(c *gin.Context) {
		auth, ok := GetAuthContext(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"tier": auth.Tier.Name, "userId": auth.UserID})
	})
	r.GET("/preview", AnonymousRateLimit(gateway, 10), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return &gatewayHarness{router: r, key: plaintext, keys: keys, usage: usage, gateway: gateway}
}

func (h *gatewayHarness) predict(key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/predict", nil)
	if key != "" {
		req.Header.Set(APIKeyHeader, key)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	code, _ := body["error"].(string)
	return code
}

func TestAPIKeyAuth_Admitted(t *testing.T) {
	h := newGatewayHarness(t)

	w := h.predict(h.key)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "FREE")
}

func TestAPIKeyAuth_MissingKey(t *testing.T) {
	h := newGatewayHarness(t)

	w := h.predict("")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "MISSING_CREDENTIAL", errCode(t, w))
}

func TestAPIKeyAuth_UnknownKey(t *testing.T) {
	h := newGatewayHarness(t)
	other, _, err := crypto.GenerateKey()
	require.NoError(t, err)

	w := h.predict(other)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "INVALID_CREDENTIAL", errCode(t, w))
}

func TestAPIKeyAuth_InactiveKey(t *testing.T) {
	h := newGatewayHarness(t)
	h.keys.record.Key.IsActive = false

	w := h.predict(h.key)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "CREDENTIAL_INACTIVE", errCode(t, w))
}

func TestAPIKeyAuth_QuotaExhausted(t *testing.T) {
	h := newGatewayHarness(t)
	h.usage.remaining = 0

	w := h.predict(h.key)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "QUOTA_EXCEEDED", errCode(t, w))
	require.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestAPIKeyAuth_RateWindowExhausted(t *testing.T) {
	h := newGatewayHarness(t)

	// The FREE tier allows 5 requests per minute; the 6th must be rejected
	// even though quota remains.
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, h.predict(h.key).Code)
	}
	w := h.predict(h.key)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "RATE_LIMITED", errCode(t, w))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Greater(t, body["retryAfter"].(float64), float64(0))
}

func TestAPIKeyValidate_DoesNotCharge(t *testing.T) {
	h := newGatewayHarness(t)

	r := gin.New()
	r.POST("/validate", APIKeyValidate(h.gateway), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/validate", nil)
	req.Header.Set(APIKeyHeader, h.key)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 0, h.usage.charged)
}

func TestAPIKeyCharge_RequiresValidatedIdentity(t *testing.T) {
	h := newGatewayHarness(t)

	r := gin.New()
	r.POST("/charge", APIKeyCharge(h.gateway), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/charge", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, 0, h.usage.charged)
}

func TestAPIKeyCharge_ReplayChargesOnce(t *testing.T) {
	startMiniRedis(t)
	h := newGatewayHarness(t)

	// The production chain: validation resolves the identity, the
	// idempotency check replays a cached response, and the charge runs only
	// for requests that reach the handler.
	r := gin.New()
	r.POST("/predictions", APIKeyValidate(h.gateway), IdempotencyMiddleware(), APIKeyCharge(h.gateway), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"topPick": "h-4"})
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/predictions", nil)
		req.Header.Set(APIKeyHeader, h.key)
		req.Header.Set(IdempotencyHeader, "retry-7f3a")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w1 := send()
	require.Equal(t, http.StatusOK, w1.Code)

	w2 := send()
	require.Equal(t, http.StatusOK, w2.Code)
	require.Equal(t, "true", w2.Header().Get("X-Idempotency-Hit"))
	require.Equal(t, w1.Body.String(), w2.Body.String())

	require.Equal(t, 1, h.usage.charged, "a retried request is charged a single unit")
}

func TestAnonymousRateLimit(t *testing.T) {
	h := newGatewayHarness(t)

	// Cap of 10 per minute per client address: the 11th request inside the
	// window is rejected.
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/preview", nil)
		w := httptest.NewRecorder()
		h.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/preview", nil)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "RATE_LIMITED", errCode(t, w))
	require.NotEmpty(t, w.Header().Get("Retry-After"))
}
