package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"uniattend/internal/attendance"
	"uniattend/internal/auth"
	"uniattend/internal/config"
	"uniattend/internal/httpapi"
	"uniattend/internal/httpmiddleware"
	"uniattend/internal/logging"
	"uniattend/internal/metrics"
	"uniattend/internal/observability"
	"uniattend/internal/realtime"
	"uniattend/internal/roster"
	"uniattend/internal/session"
	"uniattend/internal/store"
	"uniattend/internal/subjects"
	"uniattend/internal/users"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found, using process environment")
	}
	cfg := config.Load()

	logger, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Closer()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, "uniattend")
	if err != nil {
		logger.Base.Warn("sentry init failed", zap.Error(err))
	}
	defer flush()

	if err := run(cfg, logger.Base); err != nil {
		logger.Base.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg config.App, logger *zap.Logger) error {
	var (
		db          *store.DB
		redisClient *store.Redis
	)

	var (
		userStore    users.Store
		subjStore    subjects.Store
		sessionStore session.Store
		tokenStore   auth.TokenStore
	)
	if cfg.StoreBackend == "memory" {
		logger.Info("using in-memory stores")
		userStore = users.NewMemory()
		subjStore = subjects.NewMemory()
		sessionStore = session.NewMemory()
		tokenStore = auth.NewMemoryTokens()
	} else {
		var err error
		started := time.Now()
		db, err = store.NewDB(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		metrics.ObserveDBPing(time.Since(started))
		userStore = users.NewRepository(db.Client)
		subjStore = subjects.NewRepository(db.Client)
		sessionStore = session.NewRepository(db.Client)
		tokenStore = auth.NewRepository(db.Client)
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	var hub realtime.Hub
	if cfg.RealtimeBackend == "memory" {
		hub = realtime.NewMemoryHub()
	} else {
		redisClient = store.NewRedis(cfg.RedisAddr)
		hub = realtime.NewRedisHub(redisClient.Client, "")
	}

	var limiter httpmiddleware.Limiter
	if cfg.RateLimitBackend == "redis" && redisClient != nil {
		limiter = httpmiddleware.NewRedisLimiter(redisClient.Client, "", cfg.RateLimitPerMin)
	} else {
		limiter = httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	}

	resolver := roster.NewResolver(userStore)
	authSvc := auth.NewService(userStore, tokenStore, auth.Config{
		Issuer:        cfg.JWTIssuer,
		SigningKey:    cfg.JWTSigningKey,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		ResetTokenTTL: cfg.ResetTokenTTL,
	}, logger)

	h := httpapi.New(httpapi.Deps{
		Cfg:        cfg,
		Log:        logger,
		Auth:       authSvc,
		Users:      userStore,
		Onboarding: users.NewService(userStore),
		Subjects:   subjects.NewService(subjStore, hub),
		SubjStore:  subjStore,
		Sessions:   session.NewService(sessionStore, resolver, hub),
		Aggregator: attendance.NewAggregator(sessionStore, resolver),
		Resolver:   resolver,
		Hub:        hub,
		DB:         db,
		Redis:      redisClient,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      h.Router(httpmiddleware.GinMiddleware(limiter)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("forced shutdown", zap.Error(err))
	}
	logger.Info("server exited")
	return nil
}
