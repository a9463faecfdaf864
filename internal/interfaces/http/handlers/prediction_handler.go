package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/entities"
	domainerrors "github.com/low-k3YLTD/equine-oracle-backend/internal/domain/errors"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/interfaces/http/middleware"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/interfaces/http/response"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/usecases"
	"github.com/low-k3YLTD/equine-oracle-backend/pkg/metrics"
)

type PredictionHandler struct {
	predictionUsecase *usecases.PredictionUsecase
}

func NewPredictionHandler(predictionUsecase *usecases.PredictionUsecase) *PredictionHandler {
	return &PredictionHandler{
		predictionUsecase: predictionUsecase,
	}
}

// Predict scores one feature vector for an API-key authenticated caller.
// Quota and rate accounting already happened in the gateway middleware.
func (h *PredictionHandler) Predict(c *gin.Context) {
	auth, ok := middleware.GetAuthContext(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("api key required"))
		return
	}

	var input entities.PredictionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	pred, err := h.predictionUsecase.Predict(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.RecordPrediction(string(auth.Tier.Name))
	response.Success(c, http.StatusOK, pred)
}

// Preview scores a vector for anonymous callers with a coarsened result.
// Traffic is capped per client address by the anonymous rate limiter.
func (h *PredictionHandler) Preview(c *gin.Context) {
	var input entities.PredictionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	pred, err := h.predictionUsecase.Preview(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, pred)
}

// ListRaces pages through the upcoming race calendar
func (h *PredictionHandler) ListRaces(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	races, meta, err := h.predictionUsecase.ListUpcomingRaces(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"races":      races,
		"pagination": meta,
	})
}
