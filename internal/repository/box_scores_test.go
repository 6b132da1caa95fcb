package repository

import (
	"testing"

	"nba_stats/ingestion/internal/models"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxScoreRepository_UpsertSkipsUnresolved(t *testing.T) {
	db, mock, ctx := setupTestDB(t)

	rows := []*models.BoxScore{
		{GameID: 500, PlayerID: 1, TeamID: 2, IsStarter: true},
		{GameID: 500, PlayerID: 0, TeamID: 2},
		{GameID: 500, PlayerID: 3, TeamID: 0},
		{GameID: 500, PlayerID: 4, TeamID: 20},
	}

	mock.ExpectBegin()
	for i := 0; i < 2; i++ {
		mock.ExpectQuery("INSERT INTO box_scores").
			WithArgs(anyArgs(len(boxScoreColumns))...).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(9000 + i))
	}
	mock.ExpectCommit()

	n, err := db.BoxScores.UpsertBatch(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 9000, rows[0].ID)
	assert.Equal(t, 9001, rows[3].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoxScoreRepository_IngestedGameIDs(t *testing.T) {
	db, mock, ctx := setupTestDB(t)

	mock.ExpectQuery("SELECT DISTINCT game_id FROM box_scores").
		WillReturnRows(pgxmock.NewRows([]string{"game_id"}).AddRow(500).AddRow(501))

	ids, err := db.BoxScores.IngestedGameIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{500: true, 501: true}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
