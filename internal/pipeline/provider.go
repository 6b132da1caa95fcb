package pipeline

import (
	"context"
	"time"

	"nba_stats/ingestion/internal/client"
	"nba_stats/ingestion/internal/convert"
	"nba_stats/ingestion/internal/metrics"
	"nba_stats/ingestion/internal/models"
	"nba_stats/ingestion/internal/repository"

	"github.com/rs/zerolog/log"
)

// StatsProvider is the upstream stats feed. *client.Client implements it.
type StatsProvider interface {
	FetchStandings(ctx context.Context, season string) ([]convert.Row, error)
	FetchPlayerSeasonStats(ctx context.Context, season string) ([]convert.Row, error)
	FetchTeamRoster(ctx context.Context, teamID int, season string) ([]convert.Row, error)
	FetchPlayerInfo(ctx context.Context, playerID int) ([]convert.Row, error)
	FetchSeasonGames(ctx context.Context, season string) ([]convert.Row, error)
	FetchBoxScore(ctx context.Context, gameID string) ([]convert.Row, error)
}

// TeamStore persists teams
type TeamStore interface {
	UpsertBatch(ctx context.Context, teams []*models.Team) (int, error)
	AbbreviationIndex(ctx context.Context) (map[string]int, error)
}

// PlayerStore persists players and their starter flags
type PlayerStore interface {
	UpsertBatch(ctx context.Context, players []*models.Player) (int, error)
	Keys(ctx context.Context) ([]repository.PlayerKey, error)
	ApplyStarterStatus(ctx context.Context, starters []repository.StarterRef) (int, error)
}

// GameStore persists games
type GameStore interface {
	UpsertBatch(ctx context.Context, games []*models.Game) ([]models.GameRef, error)
}

// BoxScoreStore persists box score rows
type BoxScoreStore interface {
	UpsertBatch(ctx context.Context, rows []*models.BoxScore) (int, error)
	IngestedGameIDs(ctx context.Context) (map[int]bool, error)
}

// RosterCache stores decoded rosters between runs. *cache.RedisCache implements it.
type RosterCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Stores groups the repositories a sync writes to
type Stores struct {
	Teams     TeamStore
	Players   PlayerStore
	Games     GameStore
	BoxScores BoxScoreStore
}

// StoresFrom wires Stores to a database
func StoresFrom(db *repository.Database) Stores {
	return Stores{
		Teams:     db.Teams,
		Players:   db.Players,
		Games:     db.Games,
		BoxScores: db.BoxScores,
	}
}

// RetryPolicy retries transient provider failures with exponential backoff.
// Waits are Base, 2*Base, 4*Base, ... for up to MaxRetries retries.
type RetryPolicy struct {
	MaxRetries int
	Base       time.Duration
}

// DefaultRetryPolicy waits 2, 4 and 8 seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, Base: 2 * time.Second}
}

func (rp RetryPolicy) backoff(retry int) time.Duration {
	return rp.Base << (retry - 1)
}

// Pacing inserts a longer pause every Nth provider call, on top of the
// client's fixed spacing.
type Pacing struct {
	Every int
	Pause time.Duration
}

// resilientProvider wraps a StatsProvider with pacing and transient-error retries
type resilientProvider struct {
	next   StatsProvider
	retry  RetryPolicy
	pacing Pacing
	calls  int
	sleep  func(ctx context.Context, d time.Duration) error
}

func newResilientProvider(next StatsProvider, retry RetryPolicy, pacing Pacing) *resilientProvider {
	return &resilientProvider{next: next, retry: retry, pacing: pacing, sleep: sleepCtx}
}

func (rp *resilientProvider) call(ctx context.Context, op string, fn func(ctx context.Context) ([]convert.Row, error)) ([]convert.Row, error) {
	for attempt := 0; ; attempt++ {
		if err := rp.pace(ctx); err != nil {
			return nil, err
		}

		rows, err := fn(ctx)
		if err == nil {
			return rows, nil
		}
		if !client.IsTransient(err) || attempt >= rp.retry.MaxRetries {
			return nil, err
		}

		wait := rp.retry.backoff(attempt + 1)
		metrics.RecordRetry(op)
		log.Warn().
			Err(err).
			Str("operation", op).
			Int("retry", attempt+1).
			Dur("backoff", wait).
			Msg("Transient provider error, retrying")

		if err := rp.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

func (rp *resilientProvider) pace(ctx context.Context) error {
	rp.calls++
	if rp.pacing.Every <= 0 || rp.pacing.Pause <= 0 || rp.calls%rp.pacing.Every != 0 {
		return nil
	}
	return rp.sleep(ctx, rp.pacing.Pause)
}

func (rp *resilientProvider) FetchStandings(ctx context.Context, season string) ([]convert.Row, error) {
	return rp.call(ctx, "standings", func(ctx context.Context) ([]convert.Row, error) {
		return rp.next.FetchStandings(ctx, season)
	})
}

func (rp *resilientProvider) FetchPlayerSeasonStats(ctx context.Context, season string) ([]convert.Row, error) {
	return rp.call(ctx, "player_stats", func(ctx context.Context) ([]convert.Row, error) {
		return rp.next.FetchPlayerSeasonStats(ctx, season)
	})
}

func (rp *resilientProvider) FetchTeamRoster(ctx context.Context, teamID int, season string) ([]convert.Row, error) {
	return rp.call(ctx, "team_roster", func(ctx context.Context) ([]convert.Row, error) {
		return rp.next.FetchTeamRoster(ctx, teamID, season)
	})
}

func (rp *resilientProvider) FetchPlayerInfo(ctx context.Context, playerID int) ([]convert.Row, error) {
	return rp.call(ctx, "player_info", func(ctx context.Context) ([]convert.Row, error) {
		return rp.next.FetchPlayerInfo(ctx, playerID)
	})
}

func (rp *resilientProvider) FetchSeasonGames(ctx context.Context, season string) ([]convert.Row, error) {
	return rp.call(ctx, "season_games", func(ctx context.Context) ([]convert.Row, error) {
		return rp.next.FetchSeasonGames(ctx, season)
	})
}

func (rp *resilientProvider) FetchBoxScore(ctx context.Context, gameID string) ([]convert.Row, error) {
	return rp.call(ctx, "box_score", func(ctx context.Context) ([]convert.Row, error) {
		return rp.next.FetchBoxScore(ctx, gameID)
	})
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
