package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/low-k3YLTD/equine-oracle-backend/internal/config"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/infrastructure/engine"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/infrastructure/jobs"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/infrastructure/ratelimit"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/infrastructure/repositories"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/interfaces/http/handlers"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/interfaces/http/middleware"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/usecases"
	"github.com/low-k3YLTD/equine-oracle-backend/pkg/crypto"
	"github.com/low-k3YLTD/equine-oracle-backend/pkg/jwt"
	"github.com/low-k3YLTD/equine-oracle-backend/pkg/logger"
	"github.com/low-k3YLTD/equine-oracle-backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	newSessionStore = redis.NewSessionStore
	runServer       = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB        = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration. Fails fast when the key hashing secret is absent.
	cfg, err := loadCfg()
	if err != nil {
		return err
	}

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	hasher, err := crypto.NewKeyHasher(cfg.Security.APIKeyHashSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize key hasher: %w", err)
	}

	// Redis is optional; without it the server falls back to in-process
	// rate windows and token-only auth.
	redisAvailable := false
	if cfg.Redis.URL != "" {
		if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
			logger.Warn(context.Background(), "Redis unavailable, using in-process fallbacks", zap.Error(err))
		} else {
			redisAvailable = true
			logger.Info(context.Background(), "Redis initialized")
		}
	}

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		logger.Warn(context.Background(), "Database not available, endpoints will return errors", zap.Error(err))
	} else {
		logger.Info(context.Background(), "Connected to PostgreSQL")
	}

	// Initialize JWT service
	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	apiKeyRepo := repositories.NewApiKeyRepository(db)
	usageRepo := repositories.NewUsageRepository(db)
	raceRepo := repositories.NewRaceRepository(db)

	// Rate limiter: shared windows via redis when available, otherwise
	// per-process fixed windows.
	var limiter ratelimit.Limiter
	if redisAvailable {
		limiter = ratelimit.NewRedisLimiter(redis.GetClient())
	} else {
		memLimiter := ratelimit.NewMemoryLimiter()
		defer memLimiter.Stop()
		limiter = memLimiter
	}

	// Prediction engine: remote scorer when configured, baseline otherwise.
	var (
		scorer engine.Engine
		cards  engine.CardSource
	)
	if cfg.Engine.ScorerURL != "" {
		httpEngine := engine.NewHTTPEngine(cfg.Engine.ScorerURL, cfg.Engine.Timeout)
		scorer = httpEngine
		cards = httpEngine
	} else {
		logger.Warn(context.Background(), "No scorer configured, serving baseline predictions")
		scorer = engine.NewStaticEngine()
	}

	// Session store (redis-backed)
	var sessions *redis.SessionStore
	if redisAvailable {
		sessions, err = newSessionStore(cfg.Security.SessionEncryptionKey)
		if err != nil {
			return fmt.Errorf("failed to initialize session store: %w", err)
		}
	}

	// Initialize usecases
	gatewayUsecase := usecases.NewGatewayUsecase(apiKeyRepo, usageRepo, limiter, hasher, cfg.Tiers, cfg.RateLimit.Window)
	apiKeyUsecase := usecases.NewApiKeyUsecase(apiKeyRepo, hasher)
	predictionUsecase := usecases.NewPredictionUsecase(scorer, raceRepo)
	usageUsecase := usecases.NewUsageUsecase(usageRepo, userRepo, cfg.Tiers)

	var authUsecase *usecases.AuthUsecase
	if sessions != nil {
		authUsecase = usecases.NewAuthUsecase(userRepo, jwtService, sessions)
	} else {
		authUsecase = usecases.NewAuthUsecase(userRepo, jwtService, nil)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authUsecase)
	apiKeyHandler := handlers.NewApiKeyHandler(apiKeyUsecase)
	predictionHandler := handlers.NewPredictionHandler(predictionUsecase)
	usageHandler := handlers.NewUsageHandler(usageUsecase)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var watcher *jobs.RaceWatcher
	if cards != nil {
		watcher = jobs.NewRaceWatcher(raceRepo, scorer, cards)
		go watcher.Start(ctx)
	}

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)

	idempotency := middleware.IdempotencyMiddleware()
	if !redisAvailable {
		idempotency = func(c *gin.Context) { c.Next() }
	}

	registerAPIV1Routes(r, routeDeps{
		authHandler:       authHandler,
		apiKeyHandler:     apiKeyHandler,
		predictionHandler: predictionHandler,
		usageHandler:      usageHandler,
		jwtAuth:           middleware.AuthMiddleware(jwtService, authUsecase),
		dualAuth:          middleware.DualAuthMiddleware(jwtService, authUsecase, gatewayUsecase),
		apiKeyValidate:    middleware.APIKeyValidate(gatewayUsecase),
		apiKeyCharge:      middleware.APIKeyCharge(gatewayUsecase),
		anonRateLimit:     middleware.AnonymousRateLimit(gatewayUsecase, cfg.RateLimit.AnonymousCap),
		idempotency:       idempotency,
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info(context.Background(), "Shutting down server")
		if watcher != nil {
			watcher.Stop()
		}
		cancel()
	}()

	logger.Info(context.Background(), "Server starting", zap.String("port", cfg.Server.Port))

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
