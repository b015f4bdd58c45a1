package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/estetavision/esteta-bff-go/internal/config"
	"github.com/estetavision/esteta-bff-go/internal/domain"
	"github.com/estetavision/esteta-bff-go/internal/handler"
	"github.com/estetavision/esteta-bff-go/internal/infra/cache"
	"github.com/estetavision/esteta-bff-go/internal/infra/observability"
	"github.com/estetavision/esteta-bff-go/internal/infra/resilience"
	"github.com/estetavision/esteta-bff-go/internal/infra/supabase"
	"github.com/estetavision/esteta-bff-go/internal/service"

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
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.String("signin_policy", cfg.SignInPolicy),
		zap.Bool("rollback_on_failure", cfg.RollbackOnFailure),
	)

	if cfg.SupabaseURL == "" || cfg.SupabaseAnonKey == "" {
		logger.Fatal("SUPABASE_URL and SUPABASE_ANON_KEY are required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "esteta-bff")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	feedCache := cache.New[[]domain.Evaluation](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("supabase")

	// --- Supabase client ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	supabaseClient := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cb,
		resilienceCfg,
		logger,
	)

	// --- Services ---
	provisioningSvc := service.NewProvisioningService(
		supabaseClient,
		supabaseClient,
		supabaseClient,
		service.PolicyFromConfig(cfg),
		metrics,
		logger,
	)
	sessionSvc := service.NewSessionService(supabaseClient, supabaseClient, cfg.SupabaseJWTSecret, logger)
	dashboardSvc := service.NewDashboardService(supabaseClient, supabaseClient, supabaseClient, feedCache, metrics, logger)
	leadSvc := service.NewLeadService(supabaseClient, supabaseClient, metrics, logger)
	diagnosticsSvc := service.NewDiagnosticsService(supabaseClient, supabaseClient, cfg.EvaluationBucket, metrics, logger)

	// --- Router ---
	var origins []string
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
	}
	router := handler.NewRouter(handler.Deps{
		Provisioning:   provisioningSvc,
		Sessions:       sessionSvc,
		Dashboards:     dashboardSvc,
		Leads:          leadSvc,
		Diagnostics:    diagnosticsSvc,
		Prober:         supabaseClient,
		Metrics:        metrics,
		Logger:         logger,
		AllowedOrigins: origins,
	})

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
