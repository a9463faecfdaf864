package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "github.com/low-k3YLTD/equine-oracle-backend/internal/domain/errors"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/interfaces/http/middleware"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/interfaces/http/response"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/usecases"
)

type UsageHandler struct {
	usageUsecase *usecases.UsageUsecase
}

func NewUsageHandler(usageUsecase *usecases.UsageUsecase) *UsageHandler {
	return &UsageHandler{
		usageUsecase: usageUsecase,
	}
}

// GetUsage reports the caller's consumption against their tier limits. It
// accepts either dashboard (JWT) or API key identity.
func (h *UsageHandler) GetUsage(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		if auth, ok := middleware.GetAuthContext(c); ok {
			userID = auth.UserID
			exists = true
		}
	}
	if !exists {
		response.Error(c, domainerrors.Unauthorized("user not authenticated"))
		return
	}

	snapshot, err := h.usageUsecase.Snapshot(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, snapshot)
}

// ListTiers serves the public subscription catalog
func (h *UsageHandler) ListTiers(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"tiers": h.usageUsecase.Tiers()})
}
