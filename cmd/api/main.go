package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zenthra/zenthra-api/internal/config"
	"github.com/zenthra/zenthra-api/internal/domain"
	"github.com/zenthra/zenthra-api/internal/handler"
	"github.com/zenthra/zenthra-api/internal/infra/cache"
	"github.com/zenthra/zenthra-api/internal/infra/mock"
	"github.com/zenthra/zenthra-api/internal/infra/observability"
	"github.com/zenthra/zenthra-api/internal/infra/resilience"
	"github.com/zenthra/zenthra-api/internal/infra/statefile"
	"github.com/zenthra/zenthra-api/internal/infra/supabase"
	"github.com/zenthra/zenthra-api/internal/port"
	"github.com/zenthra/zenthra-api/internal/store"

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
		zap.Bool("mock_mode", cfg.MockMode()),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("profile_cache_ttl", cfg.ProfileCacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("auth_init_timeout", cfg.AuthInitTimeout),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "zenthra-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	profileCache := cache.New[*domain.UserProfile](cfg.ProfileCacheTTL)

	// --- Local state (mock-mode session persistence) ---
	state, err := statefile.New(cfg.StatePath)
	if err != nil {
		logger.Fatal("failed to open state file", zap.Error(err))
	}

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("supabase")

	// --- Backends ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var authBackend port.AuthBackend
	var directory port.UserDirectory
	var leadRepo port.LeadRepository

	if cfg.MockMode() {
		logger.Warn("Supabase not configured, running with mock data backend")
		mockAuth, err := mock.NewAuthBackend(cfg.SessionSecret, logger)
		if err != nil {
			logger.Fatal("failed to seed mock auth backend", zap.Error(err))
		}
		authBackend = mockAuth
		directory = mock.NewDirectory(time.Now())
		leadRepo = mock.NewLeadStore(time.Now())
	} else {
		logger.Info("using Supabase as data backend",
			zap.String("supabase_url", cfg.SupabaseURL),
		)
		supabaseClient := supabase.NewClient(
			httpClient,
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			cb,
			resilienceCfg,
			logger,
		)
		authBackend = supabase.NewAuthClient(httpClient, cfg.SupabaseURL, cfg.SupabaseAnonKey, logger)
		directory = supabaseClient
		leadRepo = supabaseClient
	}

	// --- Stores ---
	authStore := store.NewAuthStore(
		authBackend,
		directory,
		state,
		profileCache,
		metrics,
		logger,
		cfg.MockMode(),
		cfg.AuthInitTimeout,
	)
	defer authStore.Close()

	authStore.Init(context.Background())

	leadStore := store.NewLeadStore(leadRepo, metrics, logger)

	// Warm the lead collection; a failure lands in the error field and
	// the first authenticated refresh retries.
	fetchCtx, cancelFetch := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
	leadStore.FetchLeads(fetchCtx)
	cancelFetch()

	// --- Router ---
	router := handler.NewRouter(authStore, leadStore, metrics, cfg.AllowedOrigins, logger)

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
