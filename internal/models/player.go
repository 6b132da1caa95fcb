package models

import (
	"database/sql"

	"nba_stats/ingestion/internal/analytics"
	"nba_stats/ingestion/internal/convert"
)

// Player represents a player's season line plus roster attributes and derived metrics
type Player struct {
	ID           int            `db:"id"`
	ExternalID   sql.NullInt64  `db:"nba_player_id"`
	Name         string         `db:"name" validate:"required"`
	Position     sql.NullString `db:"position" validate:"omitempty,oneof=C F G F-C G-F"`
	JerseyNumber sql.NullInt32  `db:"jersey_number" validate:"omitempty,gte=0,lte=99"`
	TeamID       sql.NullInt32  `db:"team_id"`
	IsStarter    bool           `db:"is_starter"`

	// Per-game season averages
	GamesPlayed            sql.NullInt32   `db:"games_played" validate:"omitempty,gte=0"`
	MinutesPerGame         sql.NullFloat64 `db:"minutes_per_game"`
	Points                 sql.NullFloat64 `db:"points"`
	Rebounds               sql.NullFloat64 `db:"rebounds"`
	Assists                sql.NullFloat64 `db:"assists"`
	Steals                 sql.NullFloat64 `db:"steals"`
	Blocks                 sql.NullFloat64 `db:"blocks"`
	Turnovers              sql.NullFloat64 `db:"turnovers"`
	FieldGoalPct           sql.NullFloat64 `db:"field_goal_percentage"`
	ThreePointPct          sql.NullFloat64 `db:"three_point_percentage"`
	FreeThrowPct           sql.NullFloat64 `db:"free_throw_percentage"`
	OffensiveRebounds      sql.NullFloat64 `db:"offensive_rebounds"`
	DefensiveRebounds      sql.NullFloat64 `db:"defensive_rebounds"`
	FieldGoalsMade         sql.NullFloat64 `db:"field_goals_made"`
	FieldGoalsAttempted    sql.NullFloat64 `db:"field_goals_attempted"`
	ThreePointersMade      sql.NullFloat64 `db:"three_pointers_made"`
	ThreePointersAttempted sql.NullFloat64 `db:"three_pointers_attempted"`
	FreeThrowsMade         sql.NullFloat64 `db:"free_throws_made"`
	FreeThrowsAttempted    sql.NullFloat64 `db:"free_throws_attempted"`
	PlusMinus              sql.NullFloat64 `db:"plus_minus"`
	FantasyPoints          sql.NullFloat64 `db:"fantasy_points"`
	DoubleDoubles          sql.NullInt32   `db:"double_doubles"`
	TripleDoubles          sql.NullInt32   `db:"triple_doubles"`
	PersonalFouls          sql.NullFloat64 `db:"personal_fouls"`

	// Physical attributes
	Age    sql.NullInt32  `db:"age"`
	Height sql.NullString `db:"height"`
	Weight sql.NullInt32  `db:"weight"`

	// Derived metrics
	EfficiencyRating             sql.NullFloat64 `db:"efficiency_rating"`
	TrueShootingPercentage       sql.NullFloat64 `db:"true_shooting_percentage"`
	EffectiveFieldGoalPercentage sql.NullFloat64 `db:"effective_field_goal_percentage"`
	AssistToTurnoverRatio        sql.NullFloat64 `db:"assist_to_turnover_ratio"`
	ImpactScore                  sql.NullFloat64 `db:"impact_score"`
	UsageRate                    sql.NullFloat64 `db:"usage_rate"`
	PlayerEfficiencyRating       sql.NullFloat64 `db:"player_efficiency_rating"`
}

// PhysicalAttributes are the roster-sourced fields merged onto a season line
type PhysicalAttributes struct {
	Position     sql.NullString `json:"position"`
	Height       sql.NullString `json:"height"`
	Weight       sql.NullInt32  `json:"weight"`
	Age          sql.NullInt32  `json:"age"`
	JerseyNumber sql.NullInt32  `json:"jersey_number"`
}

// RosterEntry is one player on a team roster (or a per-player info lookup)
type RosterEntry struct {
	ExternalID int                `json:"player_id"`
	Name       string             `json:"name"`
	Attributes PhysicalAttributes `json:"attributes"`
}

// RosterEntryFromRow reads a team roster row.
func RosterEntryFromRow(row convert.Row) (RosterEntry, bool) {
	name, ok := row.String("PLAYER")
	if !ok {
		return RosterEntry{}, false
	}
	entry := RosterEntry{
		Name: name,
		Attributes: PhysicalAttributes{
			Height:       row.NullString("HEIGHT"),
			Weight:       row.NullInt("WEIGHT"),
			Age:          row.NullInt("AGE"),
			JerseyNumber: row.NullInt("NUM"),
		},
	}
	if id, ok := row.Int("PLAYER_ID"); ok {
		entry.ExternalID = id
	}
	if pos, ok := row.String("POSITION"); ok {
		entry.Attributes.Position = NullPosition(pos)
	}
	return entry, true
}

// PlayerInfoFromRow reads a single-player info row. It carries no age.
func PlayerInfoFromRow(row convert.Row) (RosterEntry, bool) {
	name, ok := row.String("DISPLAY_FIRST_LAST")
	if !ok {
		return RosterEntry{}, false
	}
	entry := RosterEntry{
		Name: name,
		Attributes: PhysicalAttributes{
			Height:       row.NullString("HEIGHT"),
			Weight:       row.NullInt("WEIGHT"),
			JerseyNumber: row.NullInt("JERSEY"),
		},
	}
	if id, ok := row.Int("PERSON_ID"); ok {
		entry.ExternalID = id
	}
	if pos, ok := row.String("POSITION"); ok {
		entry.Attributes.Position = NullPosition(pos)
	}
	return entry, true
}

// PlayerSeasonInput is one row of the league-wide per-game player stats feed
type PlayerSeasonInput struct {
	ExternalID     int
	Name           string
	TeamExternalID int
	Row            convert.Row
}

// PlayerSeasonFromRow reads a season stats row. Rows without a name are rejected.
func PlayerSeasonFromRow(row convert.Row) (*PlayerSeasonInput, bool) {
	name, ok := row.String("PLAYER_NAME")
	if !ok {
		return nil, false
	}
	in := &PlayerSeasonInput{Name: name, Row: row}
	if id, ok := row.Int("PLAYER_ID"); ok {
		in.ExternalID = id
	}
	if id, ok := row.Int("TEAM_ID"); ok {
		in.TeamExternalID = id
	}
	return in, true
}

// ToPlayer converts the season row to a Player. Team, roster attributes and
// derived metrics are filled in by the caller.
func (in *PlayerSeasonInput) ToPlayer() *Player {
	r := in.Row
	p := &Player{
		Name:                   in.Name,
		GamesPlayed:            r.NullInt("GP"),
		MinutesPerGame:         r.NullFloat("MIN"),
		Points:                 r.NullFloat("PTS"),
		Rebounds:               r.NullFloat("REB"),
		Assists:                r.NullFloat("AST"),
		Steals:                 r.NullFloat("STL"),
		Blocks:                 r.NullFloat("BLK"),
		Turnovers:              r.NullFloat("TOV"),
		FieldGoalPct:           r.NullFloat("FG_PCT"),
		ThreePointPct:          r.NullFloat("FG3_PCT"),
		FreeThrowPct:           r.NullFloat("FT_PCT"),
		OffensiveRebounds:      r.NullFloat("OREB"),
		DefensiveRebounds:      r.NullFloat("DREB"),
		FieldGoalsMade:         r.NullFloat("FGM"),
		FieldGoalsAttempted:    r.NullFloat("FGA"),
		ThreePointersMade:      r.NullFloat("FG3M"),
		ThreePointersAttempted: r.NullFloat("FG3A"),
		FreeThrowsMade:         r.NullFloat("FTM"),
		FreeThrowsAttempted:    r.NullFloat("FTA"),
		PlusMinus:              r.NullFloat("PLUS_MINUS"),
		FantasyPoints:          r.NullFloat("NBA_FANTASY_PTS"),
		DoubleDoubles:          r.NullInt("DD2"),
		TripleDoubles:          r.NullInt("TD3"),
		PersonalFouls:          r.NullFloat("PF"),
		Age:                    r.NullInt("AGE"),
	}
	if in.ExternalID > 0 {
		p.ExternalID = sql.NullInt64{Int64: int64(in.ExternalID), Valid: true}
	}
	return p
}

// ApplyAttributes merges roster attributes. Season-feed age wins over roster age.
func (p *Player) ApplyAttributes(a PhysicalAttributes) {
	p.Position = a.Position
	p.Height = a.Height
	p.Weight = a.Weight
	p.JerseyNumber = a.JerseyNumber
	if !p.Age.Valid {
		p.Age = a.Age
	}
}

// StatLine extracts the calculator input from the season line
func (p *Player) StatLine() analytics.StatLine {
	gp := sql.NullFloat64{Float64: float64(p.GamesPlayed.Int32), Valid: p.GamesPlayed.Valid}
	return analytics.StatLine{
		GamesPlayed:            gp,
		Points:                 p.Points,
		Rebounds:               p.Rebounds,
		Assists:                p.Assists,
		Steals:                 p.Steals,
		Blocks:                 p.Blocks,
		Turnovers:              p.Turnovers,
		FieldGoalsMade:         p.FieldGoalsMade,
		FieldGoalsAttempted:    p.FieldGoalsAttempted,
		ThreePointersMade:      p.ThreePointersMade,
		ThreePointersAttempted: p.ThreePointersAttempted,
		FreeThrowsMade:         p.FreeThrowsMade,
		FreeThrowsAttempted:    p.FreeThrowsAttempted,
	}
}

// ApplyMetrics copies derived metrics onto the player
func (p *Player) ApplyMetrics(m analytics.Metrics) {
	p.EfficiencyRating = m.EfficiencyRating
	p.TrueShootingPercentage = m.TrueShootingPercentage
	p.EffectiveFieldGoalPercentage = m.EffectiveFieldGoalPercentage
	p.AssistToTurnoverRatio = m.AssistToTurnoverRatio
	p.ImpactScore = m.ImpactScore
	p.UsageRate = m.UsageRate
	p.PlayerEfficiencyRating = m.PlayerEfficiencyRating
}
