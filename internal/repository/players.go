package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nba_stats/ingestion/internal/metrics"
	"nba_stats/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

var playerColumns = []string{
	"nba_player_id", "name", "position", "jersey_number", "team_id",
	"games_played", "minutes_per_game", "points", "rebounds", "assists",
	"steals", "blocks", "turnovers", "field_goal_percentage",
	"three_point_percentage", "free_throw_percentage", "offensive_rebounds",
	"defensive_rebounds", "field_goals_made", "field_goals_attempted",
	"three_pointers_made", "three_pointers_attempted", "free_throws_made",
	"free_throws_attempted", "plus_minus", "fantasy_points", "double_doubles",
	"triple_doubles", "personal_fouls", "age", "height", "weight",
	"efficiency_rating", "true_shooting_percentage",
	"effective_field_goal_percentage", "assist_to_turnover_ratio",
	"impact_score", "usage_rate", "player_efficiency_rating",
}

// is_starter is owned by starter inference and is left untouched here
var (
	upsertPlayerSQL     = upsertSQL("players", playerColumns, []string{"name"}, nil)
	updatePlayerByIDSQL = updateByKeySQL("players", playerColumns, "nba_player_id")
)

func playerArgs(p *models.Player) []any {
	return []any{
		p.ExternalID, p.Name, p.Position, p.JerseyNumber, p.TeamID,
		p.GamesPlayed, p.MinutesPerGame, p.Points, p.Rebounds, p.Assists,
		p.Steals, p.Blocks, p.Turnovers, p.FieldGoalPct,
		p.ThreePointPct, p.FreeThrowPct, p.OffensiveRebounds,
		p.DefensiveRebounds, p.FieldGoalsMade, p.FieldGoalsAttempted,
		p.ThreePointersMade, p.ThreePointersAttempted, p.FreeThrowsMade,
		p.FreeThrowsAttempted, p.PlusMinus, p.FantasyPoints, p.DoubleDoubles,
		p.TripleDoubles, p.PersonalFouls, p.Age, p.Height, p.Weight,
		p.EfficiencyRating, p.TrueShootingPercentage,
		p.EffectiveFieldGoalPercentage, p.AssistToTurnoverRatio,
		p.ImpactScore, p.UsageRate, p.PlayerEfficiencyRating,
	}
}

// PlayerKey identifies a stored player for cross-feed matching
type PlayerKey struct {
	ID         int
	Name       string
	ExternalID int64
}

// StarterRef names a player to mark as a starter
type StarterRef struct {
	ExternalID int64
	Name       string
}

// PlayerRepository handles player database operations
type PlayerRepository struct {
	db *Database
}

// UpsertBatch inserts or updates players in one transaction. A player
// with a provider id updates the row holding that id, renaming it if the
// provider did; otherwise the upsert is keyed by name. Records failing
// validation are dropped with a warning.
func (r *PlayerRepository) UpsertBatch(ctx context.Context, players []*models.Player) (int, error) {
	valid := filterValid(ctx, "players", players, func(p *models.Player) string { return p.Name })
	if len(valid) == 0 {
		return 0, nil
	}

	start := time.Now()
	err := r.db.withTx(ctx, func(tx pgx.Tx) error {
		for _, p := range valid {
			if err := upsertPlayer(ctx, tx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		metrics.RecordDBQuery("upsert", "players", "error", time.Since(start).Seconds())
		return 0, err
	}
	metrics.RecordDBQuery("upsert", "players", "success", time.Since(start).Seconds())

	log.Debug().
		Int("count", len(valid)).
		Int("rejected", len(players)-len(valid)).
		Msg("Players upserted")
	return len(valid), nil
}

func upsertPlayer(ctx context.Context, tx pgx.Tx, p *models.Player) error {
	args := playerArgs(p)
	if p.ExternalID.Valid {
		err := tx.QueryRow(ctx, updatePlayerByIDSQL, args...).Scan(&p.ID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to update player %q: %w", p.Name, err)
		}
	}

	if err := tx.QueryRow(ctx, upsertPlayerSQL, args...).Scan(&p.ID); err != nil {
		return fmt.Errorf("failed to upsert player %q: %w", p.Name, err)
	}
	return nil
}

// Keys lists id, name and provider id for every stored player
func (r *PlayerRepository) Keys(ctx context.Context) ([]PlayerKey, error) {
	query := `SELECT id, name, COALESCE(nba_player_id, 0) FROM players`

	rows, err := r.db.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var keys []PlayerKey
	for rows.Next() {
		var k PlayerKey
		if err := rows.Scan(&k.ID, &k.Name, &k.ExternalID); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		keys = append(keys, k)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}

	return keys, nil
}

// ApplyStarterStatus resets is_starter for every player, then sets it for
// the given starters, matching by provider id when known and by name
// otherwise. Both steps share one transaction. Returns the number of rows marked.
func (r *PlayerRepository) ApplyStarterStatus(ctx context.Context, starters []StarterRef) (int, error) {
	resetQuery := `UPDATE players SET is_starter = FALSE`
	markByIDQuery := `UPDATE players SET is_starter = TRUE WHERE nba_player_id = $1`
	markByNameQuery := `UPDATE players SET is_starter = TRUE WHERE name = $1`
	// rows stored before the provider id was known
	markLegacyQuery := `UPDATE players SET is_starter = TRUE WHERE name = $1 AND nba_player_id IS NULL`

	marked := 0
	start := time.Now()
	err := r.db.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, resetQuery); err != nil {
			return fmt.Errorf("failed to reset starter status: %w", err)
		}
		for _, s := range starters {
			query, arg := markByNameQuery, any(s.Name)
			if s.ExternalID > 0 {
				query, arg = markByIDQuery, s.ExternalID
			}
			tag, err := tx.Exec(ctx, query, arg)
			if err == nil && tag.RowsAffected() == 0 && s.ExternalID > 0 {
				tag, err = tx.Exec(ctx, markLegacyQuery, s.Name)
			}
			if err != nil {
				return fmt.Errorf("failed to mark starter %q: %w", s.Name, err)
			}
			marked += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		metrics.RecordDBQuery("update", "players", "error", time.Since(start).Seconds())
		return 0, err
	}
	metrics.RecordDBQuery("update", "players", "success", time.Since(start).Seconds())

	return marked, nil
}

// NormalizePositions rewrites every stored position into the canonical
// vocabulary; unrecognized values become NULL. Returns rows changed.
func (r *PlayerRepository) NormalizePositions(ctx context.Context) (int, error) {
	selectQuery := `SELECT id, position FROM players WHERE position IS NOT NULL`
	updateQuery := `UPDATE players SET position = $1 WHERE id = $2`

	type change struct {
		id       int
		position any
	}

	rows, err := r.db.conn.Query(ctx, selectQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to list positions: %w", err)
	}

	var changes []change
	for rows.Next() {
		var (
			id  int
			raw string
		)
		if err := rows.Scan(&id, &raw); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan position: %w", err)
		}
		canonical, ok := models.NormalizePosition(raw)
		switch {
		case !ok:
			changes = append(changes, change{id: id, position: nil})
		case canonical != raw:
			changes = append(changes, change{id: id, position: canonical})
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating positions: %w", err)
	}

	if len(changes) == 0 {
		return 0, nil
	}

	err = r.db.withTx(ctx, func(tx pgx.Tx) error {
		for _, c := range changes {
			if _, err := tx.Exec(ctx, updateQuery, c.position, c.id); err != nil {
				return fmt.Errorf("failed to update position for player %d: %w", c.id, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info().Int("updated", len(changes)).Msg("Player positions normalized")
	return len(changes), nil
}
