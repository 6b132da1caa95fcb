package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"nba_stats/ingestion/internal/cache"
	"nba_stats/ingestion/internal/client"
	"nba_stats/ingestion/internal/config"
	"nba_stats/ingestion/internal/metrics"
	"nba_stats/ingestion/internal/pipeline"
	"nba_stats/ingestion/internal/repository"
	"nba_stats/ingestion/internal/scheduler"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logger
	setupLogger()

	log.Info().Msg("Starting NBA stats ingestion worker")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Initialize stats client
	statsClient := client.NewClient(cfg.NBAStatsBaseURL, cfg.NBAStatsTimeout, cfg.RequestInterval)
	log.Info().
		Str("base_url", cfg.NBAStatsBaseURL).
		Dur("request_interval", cfg.RequestInterval).
		Msg("Stats client initialized")

	// Initialize database connection
	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	// Redis only caches rosters; the worker runs without it
	var (
		rosters     pipeline.RosterCache
		cacheHealth pinger
	)
	if cfg.RedisEnabled {
		redisCache, err := cache.NewRedisCache(cache.Config{
			Host:     cfg.RedisHost,
			Port:     strconv.Itoa(cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		} else {
			defer redisCache.Close()
			rosters = redisCache
			cacheHealth = redisCache
			log.Info().Msg("Redis cache connected")
		}
	}

	syncPipeline := pipeline.New(statsClient, pipeline.StoresFrom(db), rosters, pipeline.OptionsFromConfig(cfg))
	log.Info().Str("season", syncPipeline.Season()).Msg("Sync pipeline ready")

	cronSpec := cfg.NightlySyncCron
	if !cfg.EnableScheduler {
		cronSpec = ""
	}
	status := &pipeline.Status{}
	sched := scheduler.NewScheduler(cronSpec, syncPipeline, status)
	sched.OnSyncComplete(func(ctx context.Context, report *pipeline.Report, err error) {
		refreshIngestionStats(ctx, db)
	})

	// Started even without a cron spec so manual triggers work
	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	// Start status and metrics HTTP server
	var server *http.Server
	if cfg.EnableMetrics {
		server = startServer(cfg.MetricsPort, newRouter(db, cacheHealth, status, sched))
	}

	// Update system uptime and pool metrics
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
				if stats, ok := db.PoolStats(); ok {
					metrics.UpdateDBConnectionStats(stats.Acquired, stats.Idle)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	refreshIngestionStats(ctx, db)

	// Run initial sync if enabled, or if the store was never populated
	if cfg.InitialSyncEnabled || needsSync(ctx, db) {
		log.Info().Msg("Running initial data sync...")
		if err := sched.Trigger(); err != nil {
			log.Error().Err(err).Msg("Initial sync not started")
		}
	}

	// Keep running until context is cancelled
	<-ctx.Done()

	// Graceful shutdown
	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
		}
		shutdownCancel()
	}

	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

func needsSync(ctx context.Context, db *repository.Database) bool {
	counts, err := db.Counts(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read table counts")
		return false
	}
	return counts.NeedsSync()
}

func refreshIngestionStats(ctx context.Context, db *repository.Database) {
	counts, err := db.Counts(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to refresh ingestion stats")
		return
	}
	metrics.UpdateIngestionStats(counts.Teams, counts.Players, counts.Games, counts.BoxScores)
}

// startServer serves the router in the background
func startServer(port int, handler http.Handler) *http.Server {
	server := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Int("port", port).Msg("Starting status server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Status server failed")
		}
	}()

	return server
}
