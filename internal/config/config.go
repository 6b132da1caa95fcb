package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Stats API
	NBAStatsBaseURL   string        `envconfig:"NBA_STATS_BASE_URL" default:"https://stats.nba.com/stats"`
	NBAStatsTimeout   time.Duration `envconfig:"NBA_STATS_TIMEOUT" default:"120s"`
	RequestInterval   time.Duration `envconfig:"NBA_REQUEST_INTERVAL" default:"600ms"`
	LongPause         time.Duration `envconfig:"NBA_LONG_PAUSE" default:"2s"`
	LongPauseEvery    int           `envconfig:"NBA_LONG_PAUSE_EVERY" default:"10"`
	FetchMaxRetries   int           `envconfig:"FETCH_MAX_RETRIES" default:"3"`
	FetchBackoffBase  time.Duration `envconfig:"FETCH_BACKOFF_BASE" default:"2s"`
	SeasonEndYear     int           `envconfig:"NBA_SEASON_END_YEAR" default:"0"` // 0 = derive from clock
	BoxScoreResume    int           `envconfig:"BOX_SCORE_RESUME_FROM" default:"0"`
	SkipIngestedBoxes bool          `envconfig:"SKIP_INGESTED_BOX_SCORES" default:"true"`

	// Starter inference
	StarterSampleGames int     `envconfig:"STARTER_SAMPLE_GAMES" default:"50"`
	StarterMinGames    int     `envconfig:"STARTER_MIN_GAMES" default:"3"`
	StarterThreshold   float64 `envconfig:"STARTER_THRESHOLD" default:"0.70"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"nba_stats"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"nba_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" default:""`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisEnabled  bool   `envconfig:"REDIS_ENABLED" default:"true"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Caching TTL
	CacheTTLRosters time.Duration `envconfig:"CACHE_TTL_ROSTERS" default:"12h"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Scheduler
	EnableScheduler    bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	InitialSyncEnabled bool   `envconfig:"INITIAL_SYNC_ENABLED" default:"false"`
	NightlySyncCron    string `envconfig:"NIGHTLY_SYNC_CRON" default:"0 6 * * *"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" && c.IsProduction() {
		return fmt.Errorf("DATABASE_PASSWORD is required in production")
	}

	if c.StarterThreshold <= 0 || c.StarterThreshold > 1 {
		return fmt.Errorf("STARTER_THRESHOLD must be in (0, 1], got %v", c.StarterThreshold)
	}

	if c.StarterMinGames < 1 {
		return fmt.Errorf("STARTER_MIN_GAMES must be at least 1")
	}

	if c.StarterSampleGames < 1 {
		return fmt.Errorf("STARTER_SAMPLE_GAMES must be at least 1")
	}

	if c.FetchMaxRetries < 0 {
		return fmt.Errorf("FETCH_MAX_RETRIES must not be negative")
	}

	if c.LongPauseEvery < 0 || c.BoxScoreResume < 0 {
		return fmt.Errorf("NBA_LONG_PAUSE_EVERY and BOX_SCORE_RESUME_FROM must not be negative")
	}

	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
