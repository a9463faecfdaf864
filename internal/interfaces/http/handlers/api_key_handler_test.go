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
	"github.com/low-k3YLTD/equine-oracle-backend/internal/interfaces/http/middleware"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/usecases"
	"github.com/low-k3YLTD/equine-oracle-backend/pkg/crypto"
)

// injectUser stands in for AuthMiddleware in handler tests.
func injectUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func newKeyRouter(t *testing.T, userID uuid.UUID) (*gin.Engine, *keyRepoStub) {
	t.Helper()
	repo := newKeyRepoStub()
	hasher, err := crypto.NewKeyHasher("handler-test-secret")
	require.NoError(t, err)
	handler := NewApiKeyHandler(usecases.NewApiKeyUsecase(repo, hasher))

	r := gin.New()
	keys := r.Group("/keys", injectUser(userID))
	keys.POST("", handler.CreateApiKey)
	keys.GET("", handler.ListApiKeys)
	keys.DELETE("/:id", handler.RevokeApiKey)
	return r, repo
}

func TestCreateApiKeyEndpoint(t *testing.T) {
	userID := uuid.New()
	r, repo := newKeyRouter(t, userID)

	w := postJSON(t, r, "/keys", gin.H{"name": "ci pipeline"})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp entities.CreateApiKeyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.ApiKey, "eo_")
	assert.Equal(t, "ci pipeline", resp.Name)

	stored := repo.keys[resp.ID]
	require.NotNil(t, stored)
	assert.Equal(t, userID, stored.UserID)
	assert.NotContains(t, stored.KeyHash, resp.ApiKey)
}

func TestCreateApiKeyEndpoint_NameRequired(t *testing.T) {
	r, _ := newKeyRouter(t, uuid.New())

	w := postJSON(t, r, "/keys", gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListApiKeysEndpoint_MasksSecrets(t *testing.T) {
	userID := uuid.New()
	r, _ := newKeyRouter(t, userID)

	w := postJSON(t, r, "/keys", gin.H{"name": "dashboard"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created entities.CreateApiKeyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	req := httptest.NewRequest(http.MethodGet, "/keys", nil)
	lw := httptest.NewRecorder()
	r.ServeHTTP(lw, req)

	require.Equal(t, http.StatusOK, lw.Code)
	// Neither the plaintext nor the digest appears in a listing.
	assert.NotContains(t, lw.Body.String(), created.ApiKey)
	assert.NotContains(t, lw.Body.String(), "keyHash")
	assert.Contains(t, lw.Body.String(), created.KeyPrefix)
}

func TestRevokeApiKeyEndpoint(t *testing.T) {
	userID := uuid.New()
	r, repo := newKeyRouter(t, userID)

	w := postJSON(t, r, "/keys", gin.H{"name": "doomed"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created entities.CreateApiKeyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	req := httptest.NewRequest(http.MethodDelete, "/keys/"+created.ID.String(), nil)
	dw := httptest.NewRecorder()
	r.ServeHTTP(dw, req)

	require.Equal(t, http.StatusOK, dw.Code)
	assert.False(t, repo.keys[created.ID].IsActive)
}

func TestRevokeApiKeyEndpoint_OtherUsersKey(t *testing.T) {
	owner := uuid.New()
	r, repo := newKeyRouter(t, owner)

	// A key owned by someone else.
	foreign := &entities.ApiKey{ID: uuid.New(), UserID: uuid.New(), IsActive: true}
	repo.keys[foreign.ID] = foreign

	req := httptest.NewRequest(http.MethodDelete, "/keys/"+foreign.ID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, repo.keys[foreign.ID].IsActive)
}

func TestRevokeApiKeyEndpoint_BadID(t *testing.T) {
	r, _ := newKeyRouter(t, uuid.New())

	req := httptest.NewRequest(http.MethodDelete, "/keys/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
