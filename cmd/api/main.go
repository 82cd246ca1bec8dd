package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/reservable/booking-risk-engine/internal/api/rest"
	"github.com/reservable/booking-risk-engine/internal/infrastructure/ai"
	"github.com/reservable/booking-risk-engine/internal/infrastructure/cache"
	"github.com/reservable/booking-risk-engine/internal/infrastructure/config"
	"github.com/reservable/booking-risk-engine/internal/infrastructure/database"
	"github.com/reservable/booking-risk-engine/internal/infrastructure/telemetry"
	"github.com/reservable/booking-risk-engine/internal/metrics"
	riskservice "github.com/reservable/booking-risk-engine/internal/service/risk"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := telemetry.NewLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("starting booking risk engine",
		zap.String("version", cfg.Version),
		zap.String("environment", cfg.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry, err := metrics.New()
	if err != nil {
		return fmt.Errorf("creating metrics registry: %w", err)
	}

	redisClient, err := cache.NewRedisClient(&cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer redisClient.Close()

	tracker := cache.NewRedisVelocityStore(redisClient, cfg.Risk.Velocity.Retention, logger)

	pool, err := database.NewPool(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	assessments := database.NewAssessmentRepository(pool)
	whitelist := database.NewWhitelistRepository(pool, cache.NewRedisCache(redisClient, logger), logger)

	var aiClient riskservice.ReasoningClient
	if cfg.Risk.AI.Enabled {
		aiClient = ai.NewClient(cfg.Risk.AI, logger)
		logger.Info("ai evaluator enabled", zap.String("base_url", cfg.Risk.AI.BaseURL))
	}

	svc, err := riskservice.NewService(cfg.Risk, riskservice.Dependencies{
		Analyzers: []riskservice.Analyzer{
			riskservice.NewEmailAnalyzer(cfg.Risk.Lists.ExtraDisposableDomains),
			riskservice.NewPhoneAnalyzer(riskservice.NewNANPPlan()),
			riskservice.NewNameAnalyzer(cfg.Risk.Lists.ExtraPlaceholderNames),
			riskservice.NewIPAnalyzer(cfg.Risk.Lists.ExtraDatacenterCIDRs, cfg.Risk.Lists.ExtraTorExitIPs),
			riskservice.NewBehaviorAnalyzer(tracker, cfg.Risk.Velocity),
		},
		Scorer:    riskservice.NewScorer(cfg.Risk.Weights),
		Fallback:  riskservice.NewFallbackEvaluator(),
		AIClient:  aiClient,
		Repo:      assessments,
		Whitelist: whitelist,
		Tracker:   tracker,
		Metrics:   registry,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("building risk service: %w", err)
	}

	handler := rest.NewHandler(svc, assessments, whitelist, logger, cfg.Version)
	server := rest.NewServer(&cfg.Server, handler, metricsHandler(), logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
