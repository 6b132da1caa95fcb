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

// TeamRepository handles team database operations
type TeamRepository struct {
	db *Database
}

// UpsertBatch inserts or updates teams keyed by abbreviation, in one
// transaction. Only name and city change on conflict. Surrogate ids are
// written back onto the input teams.
func (r *TeamRepository) UpsertBatch(ctx context.Context, teams []*models.Team) (int, error) {
	query := `
		INSERT INTO teams (name, city, abbreviation)
		VALUES ($1, $2, $3)
		ON CONFLICT (abbreviation) DO UPDATE SET
			name = EXCLUDED.name,
			city = EXCLUDED.city
		RETURNING id
	`

	valid := filterValid(ctx, "teams", teams, func(t *models.Team) string { return t.Abbreviation })
	if len(valid) == 0 {
		return 0, nil
	}

	start := time.Now()
	err := r.db.withTx(ctx, func(tx pgx.Tx) error {
		for _, team := range valid {
			if err := tx.QueryRow(ctx, query, team.Name, team.City, team.Abbreviation).Scan(&team.ID); err != nil {
				return fmt.Errorf("failed to upsert team %s: %w", team.Abbreviation, err)
			}
		}
		return nil
	})
	if err != nil {
		metrics.RecordDBQuery("upsert", "teams", "error", time.Since(start).Seconds())
		return 0, err
	}
	metrics.RecordDBQuery("upsert", "teams", "success", time.Since(start).Seconds())

	log.Debug().Int("count", len(valid)).Msg("Teams upserted")
	return len(valid), nil
}

// AbbreviationIndex returns abbreviation -> local team id for every stored team
func (r *TeamRepository) AbbreviationIndex(ctx context.Context) (map[string]int, error) {
	query := `SELECT id, abbreviation FROM teams`

	rows, err := r.db.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	index := make(map[string]int)
	for rows.Next() {
		var (
			id           int
			abbreviation string
		)
		if err := rows.Scan(&id, &abbreviation); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		index[abbreviation] = id
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return index, nil
}
