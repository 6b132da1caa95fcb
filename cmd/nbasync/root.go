package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"nba_stats/ingestion/internal/cache"
	"nba_stats/ingestion/internal/client"
	"nba_stats/ingestion/internal/config"
	"nba_stats/ingestion/internal/pipeline"
	"nba_stats/ingestion/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var seasonFlag int

var rootCmd = &cobra.Command{
	Use:   "nbasync",
	Short: "NBA stats ingestion operator tool",
	Long:  "Runs the stats sync pipeline or one of its stages against the configured database, and reports table status.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if seasonFlag != 0 {
			c.SeasonEndYear = seasonFlag
		}
		cfg = c

		setupLogger(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&seasonFlag, "season", 0, "season end year to sync, e.g. 2025 for 2024-25 (default: current season)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger(c *config.Config) {
	if c.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// env is the set of collaborators a command needs
type env struct {
	db       *repository.Database
	redis    *cache.RedisCache
	pipeline *pipeline.Pipeline
}

func (e *env) Close() {
	if e.redis != nil {
		_ = e.redis.Close()
	}
	e.db.Close()
}

func openDatabase(ctx context.Context) (*repository.Database, error) {
	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// initPipeline connects to the database and optional cache and builds the pipeline
func initPipeline(ctx context.Context) (*env, error) {
	db, err := openDatabase(ctx)
	if err != nil {
		return nil, err
	}
	e := &env{db: db}

	var rosters pipeline.RosterCache
	if cfg.RedisEnabled {
		rc, err := cache.NewRedisCache(cache.Config{
			Host:     cfg.RedisHost,
			Port:     strconv.Itoa(cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, rosters will not be cached")
		} else {
			e.redis = rc
			rosters = rc
		}
	}

	statsClient := client.NewClient(cfg.NBAStatsBaseURL, cfg.NBAStatsTimeout, cfg.RequestInterval)
	e.pipeline = pipeline.New(statsClient, pipeline.StoresFrom(db), rosters, pipeline.OptionsFromConfig(cfg))
	return e, nil
}
