package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nba_stats/ingestion/internal/analytics"
	"nba_stats/ingestion/internal/client"
	"nba_stats/ingestion/internal/metrics"
	"nba_stats/ingestion/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Stage names, in execution order
const (
	StageTeams    = "teams"
	StagePlayers  = "players"
	StageGames    = "games"
	StageStarters = "starters"
)

// Options tune a sync run
type Options struct {
	// SeasonEndYear pins the season (2025 means 2024-25). Zero derives it from Now.
	SeasonEndYear         int
	BoxScoreResumeFrom    int
	SkipIngestedBoxScores bool
	StarterSampleGames    int
	StarterRule           analytics.StarterRule
	RosterCacheTTL        time.Duration
	Retry                 RetryPolicy
	Pacing                Pacing
	Now                   func() time.Time
}

// DefaultOptions returns the production defaults
func DefaultOptions() Options {
	return Options{
		SkipIngestedBoxScores: true,
		StarterSampleGames:    50,
		StarterRule:           analytics.DefaultStarterRule(),
		RosterCacheTTL:        12 * time.Hour,
		Retry:                 DefaultRetryPolicy(),
		Pacing:                Pacing{Every: 10, Pause: 2 * time.Second},
	}
}

// Report summarizes a sync run. Stage errors are advisory unless the
// teams stage failed, in which case Run also returns an error.
type Report struct {
	RunID       string            `json:"run_id"`
	Season      string            `json:"season"`
	StartedAt   time.Time         `json:"started_at"`
	Duration    time.Duration     `json:"duration"`
	Teams       int               `json:"teams"`
	Players     int               `json:"players"`
	Games       int               `json:"games"`
	BoxScores   BoxScoreReport    `json:"box_scores"`
	Starters    *StarterReport    `json:"starters,omitempty"`
	StageErrors map[string]string `json:"stage_errors,omitempty"`
}

// Pipeline runs the four-stage sync: teams, players, games with box
// scores, then starter status. It does not guard against concurrent runs;
// callers serialize through Status.
type Pipeline struct {
	provider StatsProvider
	stores   Stores
	mapper   *Mapper
	starters *StarterEngine
	opts     Options
}

// New creates a Pipeline. Provider calls are paced and transient failures
// retried according to opts. rosters may be nil.
func New(provider StatsProvider, stores Stores, rosters RosterCache, opts Options) *Pipeline {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	resilient := newResilientProvider(provider, opts.Retry, opts.Pacing)

	return &Pipeline{
		provider: resilient,
		stores:   stores,
		mapper:   NewMapper(resilient, stores.Teams, stores.Players, rosters, opts.RosterCacheTTL),
		starters: NewStarterEngine(resilient, stores.Players, opts.StarterRule, opts.StarterSampleGames),
		opts:     opts,
	}
}

// Season returns the season string the pipeline syncs, e.g. "2024-25"
func (p *Pipeline) Season() string {
	end := p.opts.SeasonEndYear
	if end == 0 {
		end = client.SeasonEndYear(p.opts.Now())
	}
	return client.SeasonString(end)
}

// Run executes every stage in order. Only a teams stage failure aborts the
// run; later stage failures are recorded in the report.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:       uuid.NewString(),
		Season:      p.Season(),
		StartedAt:   p.opts.Now(),
		StageErrors: make(map[string]string),
	}
	logger := log.With().Str("run_id", report.RunID).Str("season", report.Season).Logger()
	logger.Info().Msg("Sync started")

	start := time.Now()
	finish := func(status string) {
		report.Duration = time.Since(start)
		metrics.RecordSync(status, report.Duration.Seconds())
	}

	var teams *TeamIndex
	err := p.stage(ctx, logger, report, StageTeams, func(ctx context.Context) error {
		var err error
		teams, err = p.syncTeams(ctx, logger, report)
		return err
	})
	if err != nil {
		finish("error")
		logger.Error().Err(err).Msg("Sync aborted: teams stage failed")
		return report, fmt.Errorf("teams stage failed: %w", err)
	}

	_ = p.stage(ctx, logger, report, StagePlayers, func(ctx context.Context) error {
		return p.syncPlayers(ctx, logger, report, teams)
	})

	_ = p.stage(ctx, logger, report, StageGames, func(ctx context.Context) error {
		return p.syncGames(ctx, logger, report, teams)
	})

	_ = p.stage(ctx, logger, report, StageStarters, func(ctx context.Context) error {
		sr, err := p.starters.Run(ctx, report.Season)
		report.Starters = sr
		return err
	})

	if err := ctx.Err(); err != nil {
		finish("cancelled")
		return report, fmt.Errorf("sync cancelled: %w", err)
	}

	finish("success")
	logger.Info().
		Int("teams", report.Teams).
		Int("players", report.Players).
		Int("games", report.Games).
		Int("box_score_games", report.BoxScores.Ingested).
		Int("box_score_failures", report.BoxScores.Failed).
		Int("stage_errors", len(report.StageErrors)).
		Dur("duration", report.Duration).
		Msg("Sync complete")

	return report, nil
}

// RunStarters runs only the starter inference stage
func (p *Pipeline) RunStarters(ctx context.Context) (*StarterReport, error) {
	start := time.Now()
	report, err := p.starters.Run(ctx, p.Season())
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordStage(StageStarters, status, time.Since(start).Seconds())
	return report, err
}

func (p *Pipeline) stage(ctx context.Context, logger zerolog.Logger, report *Report, name string, fn func(ctx context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	if err != nil {
		report.StageErrors[name] = err.Error()
		metrics.RecordStage(name, "error", elapsed.Seconds())
		metrics.RecordError("pipeline", name)
		logger.Error().Err(err).Str("stage", name).Dur("duration", elapsed).Msg("Stage failed")
		return err
	}

	metrics.RecordStage(name, "success", elapsed.Seconds())
	logger.Info().Str("stage", name).Dur("duration", elapsed).Msg("Stage complete")
	return nil
}

func (p *Pipeline) syncTeams(ctx context.Context, logger zerolog.Logger, report *Report) (*TeamIndex, error) {
	rows, err := p.provider.FetchStandings(ctx, report.Season)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch standings: %w", err)
	}

	var (
		teams  []*models.Team
		linked = make(map[int]string)
		seen   = make(map[string]bool)
	)
	for _, row := range rows {
		standing, ok := models.StandingFromRow(row)
		if !ok {
			logger.Debug().Msg("Skipping standings row without team name")
			continue
		}
		team := standing.ToTeam()
		if standing.TeamID > 0 {
			linked[standing.TeamID] = team.Abbreviation
		}
		if seen[team.Abbreviation] {
			continue
		}
		seen[team.Abbreviation] = true
		teams = append(teams, team)
	}
	if len(teams) == 0 {
		return nil, errors.New("standings contained no teams")
	}

	n, err := p.stores.Teams.UpsertBatch(ctx, teams)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert teams: %w", err)
	}
	report.Teams = n

	index, err := p.mapper.BuildTeamMapping(ctx)
	if err != nil {
		return nil, err
	}
	for externalID, abbreviation := range linked {
		index.Link(externalID, abbreviation)
	}
	return index, nil
}

func (p *Pipeline) syncPlayers(ctx context.Context, logger zerolog.Logger, report *Report, teams *TeamIndex) error {
	rows, err := p.provider.FetchPlayerSeasonStats(ctx, report.Season)
	if err != nil {
		return fmt.Errorf("failed to fetch player stats: %w", err)
	}

	inputs := make([]*models.PlayerSeasonInput, 0, len(rows))
	for _, row := range rows {
		if in, ok := models.PlayerSeasonFromRow(row); ok {
			inputs = append(inputs, in)
		}
	}
	if dropped := len(rows) - len(inputs); dropped > 0 {
		logger.Warn().Int("dropped", dropped).Msg("Player rows without a name")
	}

	attributes := p.mapper.ResolvePhysicalAttributes(ctx, report.Season, teams.ExternalIDs(), inputs)

	players := make([]*models.Player, 0, len(inputs))
	withoutTeam, withoutAttributes := 0, 0
	for _, in := range inputs {
		player := in.ToPlayer()
		if teamID, ok := teams.Resolve(in.TeamExternalID); ok {
			player.TeamID.Int32, player.TeamID.Valid = int32(teamID), true
		} else {
			withoutTeam++
		}
		if attrs, ok := attributes.Lookup(in.ExternalID, in.Name); ok {
			player.ApplyAttributes(attrs)
		} else {
			withoutAttributes++
		}
		player.ApplyMetrics(analytics.Calculate(player.StatLine()))
		players = append(players, player)
	}

	n, err := p.stores.Players.UpsertBatch(ctx, players)
	if err != nil {
		return fmt.Errorf("failed to upsert players: %w", err)
	}
	report.Players = n

	logger.Info().
		Int("players", n).
		Int("without_team", withoutTeam).
		Int("without_attributes", withoutAttributes).
		Msg("Players synced")
	return nil
}

func (p *Pipeline) syncGames(ctx context.Context, logger zerolog.Logger, report *Report, teams *TeamIndex) error {
	rows, err := p.provider.FetchSeasonGames(ctx, report.Season)
	if err != nil {
		return fmt.Errorf("failed to fetch games: %w", err)
	}

	inputs := models.AssembleGames(rows)
	games := make([]*models.Game, 0, len(inputs))
	for _, in := range inputs {
		home, hok := teams.Resolve(in.HomeTeamExternalID)
		away, aok := teams.Resolve(in.AwayTeamExternalID)
		if !hok || !aok {
			logger.Debug().
				Str("game_id", in.ExternalID).
				Int("home", in.HomeTeamExternalID).
				Int("away", in.AwayTeamExternalID).
				Msg("Skipping game with unmapped team")
			continue
		}
		games = append(games, in.ToGame(home, away))
	}

	refs, err := p.stores.Games.UpsertBatch(ctx, games)
	if err != nil {
		return fmt.Errorf("failed to upsert games: %w", err)
	}
	report.Games = len(refs)

	players, err := p.mapper.BuildPlayerMapping(ctx)
	if err != nil {
		return err
	}

	boxScores, err := p.ingestBoxScores(ctx, logger, refs, teams, players)
	report.BoxScores = boxScores
	if err != nil {
		return fmt.Errorf("box score ingestion interrupted: %w", err)
	}

	logger.Info().
		Int("games", report.Games).
		Int("completed", boxScores.CompletedGames).
		Int("ingested", boxScores.Ingested).
		Int("already_loaded", boxScores.AlreadyLoaded).
		Int("empty", boxScores.Empty).
		Int("failed", boxScores.Failed).
		Int("rows", boxScores.Rows).
		Msg("Games and box scores synced")
	return nil
}
