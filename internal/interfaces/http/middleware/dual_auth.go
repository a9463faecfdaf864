package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/low-k3YLTD/equine-oracle-backend/internal/interfaces/http/response"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/usecases"
	"github.com/low-k3YLTD/equine-oracle-backend/pkg/jwt"
	"github.com/low-k3YLTD/equine-oracle-backend/pkg/metrics"
)

// DualAuthMiddleware admits either credential on read endpoints such as the
// usage view. An API key is validated without charging quota or a rate slot;
// anything else falls through to the JWT/session path.
func DualAuthMiddleware(jwtService *jwt.JWTService, sessions SessionResolver, gateway *usecases.GatewayUsecase) gin.HandlerFunc {
	jwtAuth := AuthMiddleware(jwtService, sessions)

	return func(c *gin.Context) {
		// Path A: API key.
		if plaintext := c.GetHeader(APIKeyHeader); plaintext != "" {
			auth, err := gateway.Validate(c.Request.Context(), plaintext)
			if err != nil {
				metrics.RecordDecision(decisionOutcome(err))
				response.Abort(c, err)
				return
			}

			c.Set(AuthContextKey, auth)
			c.Next()
			return
		}

		// Path B: JWT, either as a bearer token or via a session id.
		jwtAuth(c)
	}
}
