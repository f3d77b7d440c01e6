package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/catatuang/catatuang-go/internal/config"
	"github.com/catatuang/catatuang-go/internal/domain"
	"github.com/catatuang/catatuang-go/internal/handler"
	"github.com/catatuang/catatuang-go/internal/infra/cache"
	"github.com/catatuang/catatuang-go/internal/infra/firestore"
	"github.com/catatuang/catatuang-go/internal/infra/identity"
	"github.com/catatuang/catatuang-go/internal/infra/observability"
	"github.com/catatuang/catatuang-go/internal/infra/resilience"
	"github.com/catatuang/catatuang-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("firestore_project", cfg.FirestoreProject),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Duration("watch_interval", cfg.WatchInterval),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "catatuang")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	stateCache := cache.New[domain.DerivedState](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("external-apis")

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	store := firestore.NewClient(
		httpClient,
		cfg.FirestoreBaseURL,
		cfg.FirestoreProject,
		cfg.FirestoreToken,
		cb,
		resilienceCfg,
		logger,
	)
	watcher := firestore.NewWatcher(store, cfg.WatchInterval, logger)

	provider := identity.NewClient(
		httpClient,
		cfg.IdentityBaseURL,
		cfg.IdentityTokenURL,
		cfg.IdentityAPIKey,
		cb,
		resilienceCfg,
		logger,
	)
	verifier := identity.NewVerifier(httpClient, cfg.IdentityCertsURL, cfg.FirestoreProject, cfg.CertCacheTTL, logger)

	if cfg.FirestoreProject == "" {
		logger.Warn("FIRESTORE_PROJECT_ID not set, document store calls will fail")
	}
	if cfg.IdentityAPIKey == "" {
		logger.Warn("IDENTITY_API_KEY not set, auth routes will fail")
	}

	// --- Services ---
	txSvc := service.NewTransactionService(store, metrics, logger)
	settingsSvc := service.NewSettingsService(store, metrics, logger)
	reportSvc := service.NewReportService(store, store, watcher, stateCache, metrics, logger)
	authSvc := service.NewAuthService(provider, store, store, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Transactions: txSvc,
		Settings:     settingsSvc,
		Reports:      reportSvc,
		Auth:         authSvc,
		Verifier:     verifier,
	}, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
