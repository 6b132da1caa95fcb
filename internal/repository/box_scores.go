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

var boxScoreColumns = []string{
	"game_id", "player_id", "team_id", "minutes_played", "points", "rebounds",
	"assists", "steals", "blocks", "turnovers", "field_goals_made",
	"field_goals_attempted", "three_pointers_made", "three_pointers_attempted",
	"free_throws_made", "free_throws_attempted", "plus_minus", "is_starter",
}

var upsertBoxScoreSQL = upsertSQL("box_scores", boxScoreColumns, []string{"game_id", "player_id"}, nil)

func boxScoreArgs(b *models.BoxScore) []any {
	return []any{
		b.GameID, b.PlayerID, b.TeamID, b.MinutesPlayed, b.Points, b.Rebounds,
		b.Assists, b.Steals, b.Blocks, b.Turnovers, b.FieldGoalsMade,
		b.FieldGoalsAttempted, b.ThreePointersMade, b.ThreePointersAttempted,
		b.FreeThrowsMade, b.FreeThrowsAttempted, b.PlusMinus, b.IsStarter,
	}
}

// BoxScoreRepository handles box score database operations
type BoxScoreRepository struct {
	db *Database
}

// UpsertBatch inserts or updates box score rows keyed by (game_id, player_id)
// in one transaction. Rows whose player or team did not resolve to a local
// id are skipped.
func (r *BoxScoreRepository) UpsertBatch(ctx context.Context, rows []*models.BoxScore) (int, error) {
	resolved := make([]*models.BoxScore, 0, len(rows))
	for _, b := range rows {
		if b == nil || b.PlayerID <= 0 || b.TeamID <= 0 {
			continue
		}
		resolved = append(resolved, b)
	}
	if skipped := len(rows) - len(resolved); skipped > 0 {
		log.Debug().Int("skipped", skipped).Msg("Box score rows without local player or team")
	}

	valid := filterValid(ctx, "box_scores", resolved, func(b *models.BoxScore) string {
		return fmt.Sprintf("game=%d player=%d", b.GameID, b.PlayerID)
	})
	if len(valid) == 0 {
		return 0, nil
	}

	start := time.Now()
	err := r.db.withTx(ctx, func(tx pgx.Tx) error {
		for _, b := range valid {
			if err := tx.QueryRow(ctx, upsertBoxScoreSQL, boxScoreArgs(b)...).Scan(&b.ID); err != nil {
				return fmt.Errorf("failed to upsert box score game=%d player=%d: %w", b.GameID, b.PlayerID, err)
			}
		}
		return nil
	})
	if err != nil {
		metrics.RecordDBQuery("upsert", "box_scores", "error", time.Since(start).Seconds())
		return 0, err
	}
	metrics.RecordDBQuery("upsert", "box_scores", "success", time.Since(start).Seconds())

	return len(valid), nil
}

// IngestedGameIDs returns the local ids of games that already have box score rows
func (r *BoxScoreRepository) IngestedGameIDs(ctx context.Context) (map[int]bool, error) {
	query := `SELECT DISTINCT game_id FROM box_scores`

	rows, err := r.db.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingested games: %w", err)
	}
	defer rows.Close()

	ids := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan game id: %w", err)
		}
		ids[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ingested games: %w", err)
	}

	return ids, nil
}
