package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/low-k3YLTD/equine-oracle-backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	authHandler       *handlers.AuthHandler
	apiKeyHandler     *handlers.ApiKeyHandler
	predictionHandler *handlers.PredictionHandler
	usageHandler      *handlers.UsageHandler

	jwtAuth        gin.HandlerFunc
	dualAuth       gin.HandlerFunc
	apiKeyValidate gin.HandlerFunc
	apiKeyCharge   gin.HandlerFunc
	anonRateLimit  gin.HandlerFunc
	idempotency    gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.Refresh)
			auth.POST("/logout", d.authHandler.Logout)
		}

		// Key management (dashboard JWT)
		keys := v1.Group("/keys")
		keys.Use(d.jwtAuth)
		{
			keys.POST("", d.apiKeyHandler.CreateApiKey)
			keys.GET("", d.apiKeyHandler.ListApiKeys)
			keys.DELETE("/:id", d.apiKeyHandler.RevokeApiKey)
		}

		// Prediction routes (API key gated). Validation runs before the
		// idempotency check so a replayed response never re-charges
		// quota; the charge runs only for requests that reach the
		// handler.
		predictions := v1.Group("/predictions")
		{
			predictions.POST("", d.apiKeyValidate, d.idempotency, d.apiKeyCharge, d.predictionHandler.Predict)
			predictions.GET("/preview", d.anonRateLimit, d.predictionHandler.Preview)
		}

		// Usage and reference data
		v1.GET("/usage", d.dualAuth, d.usageHandler.GetUsage)
		v1.GET("/tiers", d.usageHandler.ListTiers)

		// Race calendar (public, anonymous-capped)
		v1.GET("/races", d.anonRateLimit, d.predictionHandler.ListRaces)
	}
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Session-ID, Idempotency-Key, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}
