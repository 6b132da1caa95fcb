package models

import (
	"testing"

	"nba_stats/ingestion/internal/convert"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finderRow(gameID, date string, teamID int, matchup string, pts any) convert.Row {
	return convert.Row{
		"GAME_ID":   gameID,
		"GAME_DATE": date,
		"TEAM_ID":   float64(teamID),
		"MATCHUP":   matchup,
		"PTS":       pts,
	}
}

func TestAssembleGames(t *testing.T) {
	rows := []convert.Row{
		finderRow("0022400001", "2024-10-22", 1610612752, "NYK @ BOS", 109.0),
		finderRow("0022400001", "2024-10-22", 1610612738, "BOS vs. NYK", 132.0),
		finderRow("0022400002", "2024-10-24", 1610612747, "LAL vs. PHX", nil),
		finderRow("0022400002", "2024-10-24", 1610612756, "PHX @ LAL", nil),
		// only one side reported
		finderRow("0022400003", "2024-10-25", 1610612744, "GSW @ POR", 140.0),
		// bad date
		finderRow("0022400004", "not-a-date", 1610612737, "ATL vs. CHA", 120.0),
		finderRow("0022400004", "not-a-date", 1610612766, "CHA @ ATL", 110.0),
	}

	games := AssembleGames(rows)
	require.Len(t, games, 2)

	assert.Equal(t, "0022400002", games[0].ExternalID, "most recent first")
	assert.False(t, games[0].HomeScore.Valid)
	assert.Equal(t, 1610612747, games[0].HomeTeamExternalID)
	assert.Equal(t, 1610612756, games[0].AwayTeamExternalID)

	assert.Equal(t, "0022400001", games[1].ExternalID)
	assert.Equal(t, 1610612738, games[1].HomeTeamExternalID)
	assert.Equal(t, int32(132), games[1].HomeScore.Int32)
	assert.Equal(t, int32(109), games[1].AwayScore.Int32)

	game := games[1].ToGame(2, 20)
	assert.True(t, game.IsCompleted())
	assert.Equal(t, 2, game.HomeTeamID)
	assert.Equal(t, 20, game.AwayTeamID)
	assert.False(t, games[0].ToGame(1, 3).IsCompleted())
}
