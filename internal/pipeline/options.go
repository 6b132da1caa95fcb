package pipeline

import (
	"nba_stats/ingestion/internal/analytics"
	"nba_stats/ingestion/internal/config"
)

// OptionsFromConfig maps application configuration onto pipeline options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		SeasonEndYear:         cfg.SeasonEndYear,
		BoxScoreResumeFrom:    cfg.BoxScoreResume,
		SkipIngestedBoxScores: cfg.SkipIngestedBoxes,
		StarterSampleGames:    cfg.StarterSampleGames,
		StarterRule: analytics.StarterRule{
			MinGames:  cfg.StarterMinGames,
			Threshold: cfg.StarterThreshold,
		},
		RosterCacheTTL: cfg.CacheTTLRosters,
		Retry: RetryPolicy{
			MaxRetries: cfg.FetchMaxRetries,
			Base:       cfg.FetchBackoffBase,
		},
		Pacing: Pacing{
			Every: cfg.LongPauseEvery,
			Pause: cfg.LongPause,
		},
	}
}
