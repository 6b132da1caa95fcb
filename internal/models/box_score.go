package models

import (
	"database/sql"

	"nba_stats/ingestion/internal/convert"
)

// BoxScore represents one player's line in one game
type BoxScore struct {
	ID       int `db:"id"`
	GameID   int `db:"game_id" validate:"required,gt=0"`
	PlayerID int `db:"player_id" validate:"required,gt=0"`
	TeamID   int `db:"team_id" validate:"required,gt=0"`

	MinutesPlayed          sql.NullString `db:"minutes_played"`
	Points                 sql.NullInt32  `db:"points"`
	Rebounds               sql.NullInt32  `db:"rebounds"`
	Assists                sql.NullInt32  `db:"assists"`
	Steals                 sql.NullInt32  `db:"steals"`
	Blocks                 sql.NullInt32  `db:"blocks"`
	Turnovers              sql.NullInt32  `db:"turnovers"`
	FieldGoalsMade         sql.NullInt32  `db:"field_goals_made"`
	FieldGoalsAttempted    sql.NullInt32  `db:"field_goals_attempted"`
	ThreePointersMade      sql.NullInt32  `db:"three_pointers_made"`
	ThreePointersAttempted sql.NullInt32  `db:"three_pointers_attempted"`
	FreeThrowsMade         sql.NullInt32  `db:"free_throws_made"`
	FreeThrowsAttempted    sql.NullInt32  `db:"free_throws_attempted"`
	PlusMinus              sql.NullInt32  `db:"plus_minus"`

	// Observed for this game only
	IsStarter bool `db:"is_starter"`
}

// BoxScoreLine is one player row of a traditional box score
type BoxScoreLine struct {
	PlayerExternalID int
	PlayerName       string
	TeamExternalID   int
	StartPosition    string
	Row              convert.Row
}

// BoxScoreLineFromRow reads a box score player row. Rows without a player name are rejected.
func BoxScoreLineFromRow(row convert.Row) (*BoxScoreLine, bool) {
	name, ok := row.String("PLAYER_NAME")
	if !ok {
		return nil, false
	}
	line := &BoxScoreLine{PlayerName: name, Row: row}
	if id, ok := row.Int("PLAYER_ID"); ok {
		line.PlayerExternalID = id
	}
	if id, ok := row.Int("TEAM_ID"); ok {
		line.TeamExternalID = id
	}
	if pos, ok := row.String("START_POSITION"); ok {
		line.StartPosition = pos
	}
	return line, true
}

// Started reports whether the player had a start position in this game
func (l *BoxScoreLine) Started() bool {
	return l.StartPosition != ""
}

// ToBoxScore converts the line using already-resolved local ids
func (l *BoxScoreLine) ToBoxScore(gameID, playerID, teamID int) *BoxScore {
	r := l.Row
	bs := &BoxScore{
		GameID:                 gameID,
		PlayerID:               playerID,
		TeamID:                 teamID,
		Points:                 r.NullInt("PTS"),
		Rebounds:               r.NullInt("REB"),
		Assists:                r.NullInt("AST"),
		Steals:                 r.NullInt("STL"),
		Blocks:                 r.NullInt("BLK"),
		Turnovers:              r.NullInt("TO"),
		FieldGoalsMade:         r.NullInt("FGM"),
		FieldGoalsAttempted:    r.NullInt("FGA"),
		ThreePointersMade:      r.NullInt("FG3M"),
		ThreePointersAttempted: r.NullInt("FG3A"),
		FreeThrowsMade:         r.NullInt("FTM"),
		FreeThrowsAttempted:    r.NullInt("FTA"),
		PlusMinus:              r.NullInt("PLUS_MINUS"),
		IsStarter:              l.Started(),
	}
	if min, ok := r.Text("MIN"); ok {
		bs.MinutesPlayed = sql.NullString{String: min, Valid: true}
	}
	return bs
}
