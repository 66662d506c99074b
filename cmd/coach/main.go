package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/boddenberg/campus-budget-coach/internal/budget"
	"github.com/boddenberg/campus-budget-coach/internal/config"
	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/goal"
	"github.com/boddenberg/campus-budget-coach/internal/handler"
	"github.com/boddenberg/campus-budget-coach/internal/infra/cache"
	"github.com/boddenberg/campus-budget-coach/internal/infra/client"
	"github.com/boddenberg/campus-budget-coach/internal/infra/events"
	"github.com/boddenberg/campus-budget-coach/internal/infra/llm"
	"github.com/boddenberg/campus-budget-coach/internal/infra/observability"
	"github.com/boddenberg/campus-budget-coach/internal/infra/resilience"
	"github.com/boddenberg/campus-budget-coach/internal/infra/sqlite"
	"github.com/boddenberg/campus-budget-coach/internal/infra/supabase"
	"github.com/boddenberg/campus-budget-coach/internal/port"
	"github.com/boddenberg/campus-budget-coach/internal/service"
	"github.com/boddenberg/campus-budget-coach/internal/spending"
)

func main() {
	// --- Load .env files (for local development) ---
	if err := config.LoadDotEnv(".env.local", ".env"); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("db_path", cfg.DBPath),
		zap.Bool("use_supabase", cfg.UseSupabase),
		zap.Bool("narrative_enabled", cfg.NarrativeEnabled),
		zap.Bool("auth_enabled", cfg.JWTSecret != ""),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	tuning, err := config.LoadTuning(cfg.TuningFile, cfg.RoundingPolicy)
	if err != nil {
		logger.Fatal("invalid tuning", zap.String("file", cfg.TuningFile), zap.Error(err))
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, observability.ServiceName)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Storage ---
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer store.Close()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var txs port.TransactionStore = store
	var catalog port.SupportCatalog = store
	deps := []handler.Dependency{
		{Name: "sqlite", Check: func(context.Context) error { return store.Ping() }},
	}

	if cfg.UseSupabase && cfg.SupabaseURL != "" {
		logger.Info("using Supabase for transactions and support catalog",
			zap.String("supabase_url", cfg.SupabaseURL),
		)
		supabaseClient := supabase.NewClient(
			httpClient,
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			resilience.NewCircuitBreaker("supabase"),
			resilienceCfg,
			logger,
		)
		txs = supabaseClient
		catalog = supabaseClient
		deps = append(deps, handler.Dependency{
			Name: "supabase",
			Check: func(ctx context.Context) error {
				_, err := supabaseClient.ListPrograms(ctx)
				return err
			},
		})
	} else {
		logger.Info("using local SQLite ledger")
	}

	// --- Narrator ---
	var narrator port.Narrator
	switch {
	case !cfg.NarrativeEnabled:
		logger.Info("narrative enrichment disabled")
	case cfg.NarratorURL != "":
		logger.Info("narrative agent enabled", zap.String("url", cfg.NarratorURL))
		narrator = client.NewNarratorClient(httpClient, cfg.NarratorURL, resilience.NewCircuitBreaker("narrator"), resilienceCfg)
	case cfg.GeminiAPIKey != "":
		gen, err := llm.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Fatal("failed to create Gemini client", zap.Error(err))
		}
		defer gen.Close()
		logger.Info("Gemini narrator enabled", zap.String("model", cfg.GeminiModel))
		narrator = llm.NewNarrator(gen, resilience.NewCircuitBreaker("gemini"), resilienceCfg)
	default:
		logger.Warn("no narrator configured, enrichment falls back to core messages")
	}

	// --- Events ---
	var publisher port.EventPublisher = events.Noop{}
	if cfg.AMQPURL != "" {
		p, err := events.Dial(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Fatal("failed to connect to RabbitMQ", zap.Error(err))
		}
		defer p.Close()
		publisher = p
		logger.Info("result events enabled",
			zap.String("exchange", cfg.AMQPExchange),
			zap.String("queue", cfg.AMQPQueue),
		)
	}

	// --- Cache ---
	supportCache := cache.New[[]domain.SupportProgram](cfg.CacheTTL)
	defer supportCache.Close()

	// --- Services ---
	narrativeSvc := service.NewNarrativeService(narrator, resilience.NewBulkhead(cfg.MaxConcurrency), metrics, logger)
	supportSvc := service.NewSupportService(catalog, supportCache, metrics, logger)

	svcs := handler.Services{
		Spending: service.NewSpendingService(txs, store, store, narrativeSvc, publisher, spending.DefaultOptions(), metrics, logger),
		Budget:   service.NewBudgetService(budget.NewAllocator(tuning.Budget), store, narrativeSvc, publisher, metrics, logger),
		Simulation: service.NewSimulationService(
			goal.NewPlanner(tuning.Goal),
			txs,
			store,
			supportSvc,
			narrativeSvc,
			metrics,
			logger,
		),
		Challenge: service.NewChallengeService(store, store, txs, publisher, metrics, logger),
		Support:   supportSvc,
	}

	// --- Router ---
	auth := handler.AuthConfig{JWTSecret: cfg.JWTSecret, DevUserID: cfg.DevUserID}
	router := handler.NewRouter(svcs, auth, deps, metrics, logger)

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
