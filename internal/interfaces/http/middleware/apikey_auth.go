package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/entities"
	domainerrors "github.com/low-k3YLTD/equine-oracle-backend/internal/domain/errors"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/interfaces/http/response"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/usecases"
	"github.com/low-k3YLTD/equine-oracle-backend/pkg/metrics"
)

const (
	// APIKeyHeader carries the plaintext credential.
	APIKeyHeader = "X-API-Key"
	// AuthContextKey is the context key for the resolved identity.
	AuthContextKey = "authContext"
)

// APIKeyValidate resolves the credential carried by X-API-Key without
// charging quota or a rate slot. It runs before the idempotency check so a
// replayed request is authenticated but never re-charged; APIKeyCharge
// completes the admission for requests that reach the handler.
func APIKeyValidate(gateway *usecases.GatewayUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth, err := gateway.Validate(c.Request.Context(), c.GetHeader(APIKeyHeader))
		if err != nil {
			metrics.RecordDecision(decisionOutcome(err))
			response.Abort(c, err)
			return
		}

		c.Set(AuthContextKey, auth)
		c.Next()
	}
}

// APIKeyCharge takes one unit of quota and one rate-window slot for the
// identity resolved by APIKeyValidate. Every request that passes it has been
// fully admitted.
func APIKeyCharge(gateway *usecases.GatewayUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth, ok := GetAuthContext(c)
		if !ok {
			response.Abort(c, domainerrors.MissingCredential())
			return
		}

		if err := gateway.Charge(c.Request.Context(), auth); err != nil {
			metrics.RecordDecision(decisionOutcome(err))
			response.Abort(c, err)
			return
		}

		metrics.RecordDecision("ALLOWED")
		c.Next()
	}
}

func decisionOutcome(err error) string {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "INTERNAL_ERROR"
}

// GetAuthContext gets the gateway-resolved identity from context.
func GetAuthContext(c *gin.Context) (*entities.AuthContext, bool) {
	v, exists := c.Get(AuthContextKey)
	if !exists {
		return nil, false
	}
	auth, ok := v.(*entities.AuthContext)
	return auth, ok
}

// AnonymousRateLimit caps unauthenticated traffic by client address.
func AnonymousRateLimit(gateway *usecases.GatewayUsecase, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := gateway.AllowAnonymous(c.Request.Context(), c.ClientIP(), limit); err != nil {
			response.Abort(c, err)
			return
		}
		c.Next()
	}
}
