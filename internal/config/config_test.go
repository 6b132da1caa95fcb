package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://stats.nba.com/stats", cfg.NBAStatsBaseURL)
	assert.Equal(t, 600*time.Millisecond, cfg.RequestInterval)
	assert.Equal(t, 2*time.Second, cfg.LongPause)
	assert.Equal(t, 10, cfg.LongPauseEvery)
	assert.Equal(t, 3, cfg.FetchMaxRetries)
	assert.Equal(t, 50, cfg.StarterSampleGames)
	assert.Equal(t, 3, cfg.StarterMinGames)
	assert.InDelta(t, 0.70, cfg.StarterThreshold, 1e-9)
	assert.True(t, cfg.SkipIngestedBoxes)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("STARTER_THRESHOLD", "0.8")
	t.Setenv("NBA_SEASON_END_YEAR", "2024")
	t.Setenv("DATABASE_PORT", "6543")

	cfg, err := Load()
	require.NoError(t, err)
	assert.InDelta(t, 0.8, cfg.StarterThreshold, 1e-9)
	assert.Equal(t, 2024, cfg.SeasonEndYear)
	assert.Contains(t, cfg.DatabaseDSN(), "port=6543")
}

func TestValidate(t *testing.T) {
	valid := Config{
		AppEnv:             "development",
		StarterThreshold:   0.7,
		StarterMinGames:    3,
		StarterSampleGames: 50,
		FetchMaxRetries:    3,
		LongPauseEvery:     10,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold above one", func(c *Config) { c.StarterThreshold = 1.5 }},
		{"threshold zero", func(c *Config) { c.StarterThreshold = 0 }},
		{"min games zero", func(c *Config) { c.StarterMinGames = 0 }},
		{"no sample games", func(c *Config) { c.StarterSampleGames = 0 }},
		{"negative retries", func(c *Config) { c.FetchMaxRetries = -1 }},
		{"production without password", func(c *Config) { c.AppEnv = "production" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
