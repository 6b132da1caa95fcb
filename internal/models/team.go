package models

import (
	"database/sql"
	"strings"

	"nba_stats/ingestion/internal/convert"
)

// Team represents an NBA franchise as stored locally
type Team struct {
	ID           int            `db:"id"`
	Name         string         `db:"name" validate:"required"`
	City         sql.NullString `db:"city"`
	Abbreviation string         `db:"abbreviation" validate:"required,max=5"`
}

// StandingInput is one row of the league standings feed
type StandingInput struct {
	TeamID   int
	TeamName string
	TeamCity string
}

// StandingFromRow reads a standings row. Rows without a team name are rejected.
func StandingFromRow(row convert.Row) (*StandingInput, bool) {
	name, ok := row.String("TeamName")
	if !ok {
		return nil, false
	}
	si := &StandingInput{TeamName: name}
	if id, ok := row.Int("TeamID"); ok {
		si.TeamID = id
	}
	if city, ok := row.String("TeamCity"); ok {
		si.TeamCity = city
	}
	return si, true
}

// ToTeam resolves the standings row against the franchise table.
// Unknown teams keep their feed name and get a three letter abbreviation.
func (si *StandingInput) ToTeam() *Team {
	if fr, ok := FindFranchise(si.TeamID, si.TeamName); ok {
		return fr.ToTeam()
	}

	team := &Team{
		Name:         si.TeamName,
		Abbreviation: fallbackAbbreviation(si.TeamName),
	}
	if si.TeamCity != "" {
		team.City = sql.NullString{String: si.TeamCity, Valid: true}
	}
	return team
}

func fallbackAbbreviation(name string) string {
	letters := []rune(strings.ToUpper(strings.TrimSpace(name)))
	if len(letters) > 3 {
		letters = letters[:3]
	}
	return string(letters)
}
