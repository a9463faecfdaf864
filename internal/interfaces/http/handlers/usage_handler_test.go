package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/entities"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/usecases"
)

func newUsageRouter(userID uuid.UUID, usage *usageRepoStub, users *userRepoStub) *gin.Engine {
	handler := NewUsageHandler(usecases.NewUsageUsecase(usage, users, handlerTestTiers))

	r := gin.New()
	r.GET("/usage", injectUser(userID), handler.GetUsage)
	r.GET("/tiers", handler.ListTiers)
	return r
}

func TestGetUsageEndpoint(t *testing.T) {
	userID := uuid.New()
	usage := newUsageRepoStub()
	usage.ledgers[userID] = &entities.UsageLedger{
		UserID:    userID,
		DailyUsed: 3, DailyLimit: 50,
		MonthlyUsed: 40, MonthlyLimit: 1000,
	}
	r := newUsageRouter(userID, usage, newUserRepoStub())

	req := httptest.NewRequest(http.MethodGet, "/usage", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var snap entities.UsageSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, 3, snap.DailyUsed)
	assert.Equal(t, 1000, snap.MonthlyLimit)
	assert.False(t, snap.ResetsAt.IsZero())
}

func TestGetUsageEndpoint_FreshUser(t *testing.T) {
	users := newUserRepoStub()
	user := &entities.User{ID: uuid.New(), Email: "fresh@example.com", Tier: entities.TierBasic}
	users.byID[user.ID] = user
	r := newUsageRouter(user.ID, newUsageRepoStub(), users)

	req := httptest.NewRequest(http.MethodGet, "/usage", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var snap entities.UsageSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Zero(t, snap.DailyUsed)
	assert.Equal(t, 50, snap.DailyLimit)
}

func TestGetUsageEndpoint_APIKeyIdentity(t *testing.T) {
	userID := uuid.New()
	usage := newUsageRepoStub()
	usage.ledgers[userID] = &entities.UsageLedger{
		UserID:    userID,
		DailyUsed: 7, DailyLimit: 50,
		MonthlyUsed: 12, MonthlyLimit: 1000,
	}
	handler := NewUsageHandler(usecases.NewUsageUsecase(usage, newUserRepoStub(), handlerTestTiers))

	// Gateway-resolved identity only, as set by the dual-credential
	// middleware for API key callers.
	r := gin.New()
	r.GET("/usage", injectAuthContext(&entities.AuthContext{UserID: userID}), handler.GetUsage)

	req := httptest.NewRequest(http.MethodGet, "/usage", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var snap entities.UsageSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, 7, snap.DailyUsed)
}

func TestListTiersEndpoint(t *testing.T) {
	r := newUsageRouter(uuid.New(), newUsageRepoStub(), newUserRepoStub())

	req := httptest.NewRequest(http.MethodGet, "/tiers", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "FREE")
	assert.Contains(t, w.Body.String(), "BASIC")
}
