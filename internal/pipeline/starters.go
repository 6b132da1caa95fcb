package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"nba_stats/ingestion/internal/analytics"
	"nba_stats/ingestion/internal/metrics"
	"nba_stats/ingestion/internal/models"
	"nba_stats/ingestion/internal/repository"

	"github.com/rs/zerolog/log"
)

// ErrNoGamesAnalyzed is returned when no sampled box score could be read.
// Starter flags are left untouched in that case.
var ErrNoGamesAnalyzed = errors.New("no games analyzed")

// StarterReport summarizes one starter inference run
type StarterReport struct {
	GamesSampled  int `json:"games_sampled"`
	GamesAnalyzed int `json:"games_analyzed"`
	GamesFailed   int `json:"games_failed"`
	GamesEmpty    int `json:"games_empty"`
	Starters      int `json:"starters"`
	Bench         int `json:"bench"`
	Unknown       int `json:"unknown"`
	Marked        int `json:"marked"`
}

// StarterEngine infers season starters from start positions in recent box scores
type StarterEngine struct {
	provider   StatsProvider
	players    PlayerStore
	rule       analytics.StarterRule
	sampleSize int
}

// NewStarterEngine creates a StarterEngine sampling the sampleSize most recent completed games
func NewStarterEngine(provider StatsProvider, players PlayerStore, rule analytics.StarterRule, sampleSize int) *StarterEngine {
	return &StarterEngine{
		provider:   provider,
		players:    players,
		rule:       rule,
		sampleSize: sampleSize,
	}
}

type observation struct {
	ref   repository.StarterRef
	tally analytics.Tally
}

// Run samples recent games, tallies starts per player, classifies and
// persists the starter flags.
func (e *StarterEngine) Run(ctx context.Context, season string) (*StarterReport, error) {
	gameIDs, err := e.recentGameIDs(ctx, season)
	if err != nil {
		return nil, err
	}

	report := &StarterReport{GamesSampled: len(gameIDs)}
	observed := make(map[string]*observation)
	var order []string

	for _, gameID := range gameIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		rows, err := e.provider.FetchBoxScore(ctx, gameID)
		if err != nil {
			report.GamesFailed++
			log.Warn().Err(err).Str("game_id", gameID).Msg("Skipping game in starter sample")
			continue
		}

		var lines []*models.BoxScoreLine
		for _, row := range rows {
			if line, ok := models.BoxScoreLineFromRow(row); ok {
				lines = append(lines, line)
			}
		}
		if len(lines) == 0 {
			report.GamesEmpty++
			log.Debug().Str("game_id", gameID).Msg("Empty box score in starter sample")
			continue
		}
		report.GamesAnalyzed++

		for _, line := range lines {
			key := playerKey(line.PlayerExternalID, line.PlayerName)
			obs, seen := observed[key]
			if !seen {
				obs = &observation{ref: repository.StarterRef{
					ExternalID: int64(line.PlayerExternalID),
					Name:       line.PlayerName,
				}}
				observed[key] = obs
				order = append(order, key)
			}
			obs.tally.Observe(line.Started())
		}
	}

	if report.GamesAnalyzed == 0 {
		return report, fmt.Errorf("starter inference over %d sampled games: %w", report.GamesSampled, ErrNoGamesAnalyzed)
	}

	var starters []repository.StarterRef
	for _, key := range order {
		obs := observed[key]
		switch e.rule.Classify(obs.tally) {
		case analytics.RoleStarter:
			report.Starters++
			starters = append(starters, obs.ref)
		case analytics.RoleBench:
			report.Bench++
		default:
			report.Unknown++
		}
	}

	marked, err := e.players.ApplyStarterStatus(ctx, starters)
	if err != nil {
		return report, fmt.Errorf("failed to persist starter status: %w", err)
	}
	report.Marked = marked
	metrics.UpdateStarterClassifications(report.Starters, report.Bench, report.Unknown)

	log.Info().
		Int("games_analyzed", report.GamesAnalyzed).
		Int("games_failed", report.GamesFailed).
		Int("games_empty", report.GamesEmpty).
		Int("starters", report.Starters).
		Int("bench", report.Bench).
		Int("unknown", report.Unknown).
		Int("marked", report.Marked).
		Msg("Starter status updated")

	return report, nil
}

// recentGameIDs returns up to sampleSize completed game ids, most recent first
func (e *StarterEngine) recentGameIDs(ctx context.Context, season string) ([]string, error) {
	rows, err := e.provider.FetchSeasonGames(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch games for starter sample: %w", err)
	}

	var ids []string
	for _, g := range models.AssembleGames(rows) {
		if len(ids) >= e.sampleSize {
			break
		}
		if g.HomeScore.Valid && g.AwayScore.Valid {
			ids = append(ids, g.ExternalID)
		}
	}
	return ids, nil
}

func playerKey(externalID int, name string) string {
	if externalID > 0 {
		return "id:" + strconv.Itoa(externalID)
	}
	return "name:" + NormalizeName(name)
}
