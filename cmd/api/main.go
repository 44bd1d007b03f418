// Package main is the entry point for the match API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/marqueeapp/marquee/internal/api"
	"github.com/marqueeapp/marquee/internal/config"
	"github.com/marqueeapp/marquee/internal/db"
	"github.com/marqueeapp/marquee/internal/digest"
	"github.com/marqueeapp/marquee/internal/event"
	"github.com/marqueeapp/marquee/internal/health"
	"github.com/marqueeapp/marquee/internal/match"
	"github.com/marqueeapp/marquee/internal/matcher"
	"github.com/marqueeapp/marquee/internal/middleware"
	"github.com/marqueeapp/marquee/internal/notification"
	"github.com/marqueeapp/marquee/internal/preference"
	"github.com/marqueeapp/marquee/internal/tracing"
)

const serviceName = "marquee-match"

func main() {
	configPath := flag.String("config", "", "path to optional YAML config file")
	help := flag.Bool("help", false, "display help message")
	flag.Parse()

	if *help {
		fmt.Println("Marquee Match API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, cfgErrs := config.Load(*configPath)
	if len(cfgErrs) > 0 {
		for _, err := range cfgErrs {
			fmt.Fprintln(os.Stderr, "config error:", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	ctx := context.Background()

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Warn("failed to close database", "error", err)
		}
	}()

	// Tracing
	tracerProvider, err := tracing.NewProvider(tracing.Config{
		ServiceName:  serviceName,
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		ExporterType: cfg.TracingExporter,
		OTLPEndpoint: cfg.TracingEndpoint,
		SamplingRate: cfg.TracingSamplingRate,
		InsecureMode: cfg.TracingInsecure,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	engineMetrics := match.NewMetrics()
	if err := engineMetrics.Register(registry); err != nil {
		logger.Error("failed to register engine metrics", "error", err)
		os.Exit(1)
	}
	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		logger.Error("failed to register HTTP metrics", "error", err)
		os.Exit(1)
	}

	// Genre calibration: a bad file degrades to defaults, it does not
	// block startup.
	genres, err := matcher.LoadGenreCalibration(cfg.GenreCalibrationPath)
	if err != nil {
		logger.Warn("using default genre table", "error", err)
	}
	scorer := matcher.NewScorer(genres)

	// Repositories
	prefRepo := preference.NewPostgresRepository(conn, logger)
	eventRepo := event.NewPostgresRepository(conn, logger)
	notifRepo := notification.NewPostgresRepository(conn, logger)

	engine := match.NewEngine(scorer, prefRepo, eventRepo, notifRepo,
		match.WithPoolSize(cfg.RecommendationPoolSize),
		match.WithLogger(logger),
		match.WithMetrics(engineMetrics),
	)
	digestBuilder := digest.NewBuilder(scorer, prefRepo, eventRepo, cfg.RecommendationPoolSize, logger)

	// Redis is optional: rate limiting shares state across instances when
	// present and falls back to a per-instance window when not.
	checkers := map[string]health.Checker{
		"database": health.NewDBChecker(conn),
	}
	var rateLimitStore middleware.RateLimitStore = middleware.NewInMemoryRateLimitStore()
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(redisOpts)
		rateLimitStore = middleware.NewRedisRateLimitStore(redisClient, httpMetrics)
		checkers["redis"] = health.NewRedisChecker(redisClient)
	}

	mux := api.NewRouter(api.RouterDeps{
		Match:           api.NewMatchHandlers(engine, eventRepo, logger),
		Recommendations: api.NewRecommendationHandlers(engine, logger),
		Digests:         api.NewDigestHandlers(digestBuilder, logger),
		Health:          api.NewHealthHandlers(checkers, logger),
		Registry:        registry,
	})

	rateLimit := middleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimitPerMinute,
		WindowDuration:    time.Minute,
	}

	// Middleware chain: RequestID -> Tracing -> Logging -> Metrics -> RateLimiter
	var handler http.Handler = mux
	handler = middleware.RateLimiter(rateLimitStore, rateLimit, middleware.IPKeyFunc(), httpMetrics)(handler)
	handler = middleware.HTTPMetrics(httpMetrics)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Tracing(serviceName)(handler)
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		logger.Warn("failed to shutdown tracer provider", "error", err)
	}

	logger.Info("server stopped")
}
