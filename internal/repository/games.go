package repository

import (
	"context"
	"fmt"
	"time"

	"nba_stats/ingestion/internal/metrics"
	"nba_stats/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// GameRepository handles game database operations
type GameRepository struct {
	db *Database
}

// UpsertBatch inserts or updates games keyed by (game_date, home_team_id,
// away_team_id) in one transaction. The returned refs follow input order
// (minus rejected games) and pair each local id with the provider game id.
func (r *GameRepository) UpsertBatch(ctx context.Context, games []*models.Game) ([]models.GameRef, error) {
	query := `
		INSERT INTO games (game_date, home_team_id, away_team_id, home_score, away_score)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_date, home_team_id, away_team_id) DO UPDATE SET
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score
		RETURNING id
	`

	valid := filterValid(ctx, "games", games, func(g *models.Game) string { return g.ExternalID })
	if len(valid) == 0 {
		return nil, nil
	}

	refs := make([]models.GameRef, 0, len(valid))
	start := time.Now()
	err := r.db.withTx(ctx, func(tx pgx.Tx) error {
		for _, g := range valid {
			err := tx.QueryRow(ctx, query,
				g.GameDate, g.HomeTeamID, g.AwayTeamID, g.HomeScore, g.AwayScore,
			).Scan(&g.ID)
			if err != nil {
				return fmt.Errorf("failed to upsert game %s: %w", g.ExternalID, err)
			}
			refs = append(refs, models.GameRef{
				ID:             g.ID,
				ExternalGameID: g.ExternalID,
				Completed:      g.IsCompleted(),
			})
		}
		return nil
	})
	if err != nil {
		metrics.RecordDBQuery("upsert", "games", "error", time.Since(start).Seconds())
		return nil, err
	}
	metrics.RecordDBQuery("upsert", "games", "success", time.Since(start).Seconds())

	log.Debug().Int("count", len(refs)).Msg("Games upserted")
	return refs, nil
}
