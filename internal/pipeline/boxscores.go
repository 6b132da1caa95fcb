package pipeline

import (
	"context"

	"nba_stats/ingestion/internal/convert"
	"nba_stats/ingestion/internal/metrics"
	"nba_stats/ingestion/internal/models"

	"github.com/rs/zerolog"
)

// BoxScoreReport summarizes the per-game box score loop
type BoxScoreReport struct {
	CompletedGames int `json:"completed_games"`
	Resumed        int `json:"resumed"`
	AlreadyLoaded  int `json:"already_loaded"`
	Ingested       int `json:"ingested"`
	Empty          int `json:"empty"`
	Failed         int `json:"failed"`
	Rows           int `json:"rows"`
	UnmappedRows   int `json:"unmapped_rows"`
}

// ingestBoxScores loads box scores for every completed game. Each game is
// fetched and committed on its own; a failed game is counted and skipped.
func (p *Pipeline) ingestBoxScores(ctx context.Context, logger zerolog.Logger, refs []models.GameRef, teams *TeamIndex, players *PlayerIndex) (BoxScoreReport, error) {
	var report BoxScoreReport

	completed := make([]models.GameRef, 0, len(refs))
	for _, ref := range refs {
		if ref.Completed {
			completed = append(completed, ref)
		}
	}
	report.CompletedGames = len(completed)

	if resume := p.opts.BoxScoreResumeFrom; resume > 0 {
		if resume > len(completed) {
			resume = len(completed)
		}
		report.Resumed = resume
		completed = completed[resume:]
	}

	var loaded map[int]bool
	if p.opts.SkipIngestedBoxScores {
		ids, err := p.stores.BoxScores.IngestedGameIDs(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("Could not list ingested games, re-ingesting all")
		} else {
			loaded = ids
		}
	}

	for i, ref := range completed {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if loaded[ref.ID] {
			report.AlreadyLoaded++
			metrics.RecordBoxScoreGame("skipped")
			continue
		}

		rows, err := p.provider.FetchBoxScore(ctx, ref.ExternalGameID)
		if err != nil {
			report.Failed++
			metrics.RecordBoxScoreGame("failed")
			logger.Warn().Err(err).Str("game_id", ref.ExternalGameID).Msg("Box score fetch failed")
			continue
		}

		batch, unmapped := p.boxScoreBatch(ref.ID, rows, teams, players)
		report.UnmappedRows += unmapped
		if len(batch) == 0 {
			report.Empty++
			metrics.RecordBoxScoreGame("empty")
			logger.Debug().Str("game_id", ref.ExternalGameID).Int("unmapped", unmapped).Msg("No box score rows to store")
			continue
		}

		n, err := p.stores.BoxScores.UpsertBatch(ctx, batch)
		if err != nil {
			report.Failed++
			metrics.RecordBoxScoreGame("failed")
			logger.Error().Err(err).Str("game_id", ref.ExternalGameID).Msg("Box score upsert failed")
			continue
		}
		report.Ingested++
		report.Rows += n
		metrics.RecordBoxScoreGame("ingested")

		if (i+1)%50 == 0 {
			logger.Info().
				Int("processed", i+1).
				Int("total", len(completed)).
				Int("failed", report.Failed).
				Msg("Box score progress")
		}
	}

	return report, nil
}

func (p *Pipeline) boxScoreBatch(gameID int, rows []convert.Row, teams *TeamIndex, players *PlayerIndex) ([]*models.BoxScore, int) {
	batch := make([]*models.BoxScore, 0, len(rows))
	unmapped := 0
	for _, row := range rows {
		line, ok := models.BoxScoreLineFromRow(row)
		if !ok {
			continue
		}
		playerID, pok := players.Resolve(line.PlayerExternalID, line.PlayerName)
		teamID, tok := teams.Resolve(line.TeamExternalID)
		if !pok || !tok {
			unmapped++
			continue
		}
		batch = append(batch, line.ToBoxScore(gameID, playerID, teamID))
	}
	return batch, unmapped
}
