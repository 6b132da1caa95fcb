package models

import (
	"database/sql"
	"strings"
)

// Franchise is a static NBA franchise record as published by the stats provider
type Franchise struct {
	ID           int
	Abbreviation string
	FullName     string
	Nickname     string
	City         string
}

// ToTeam converts the franchise to a Team without a surrogate id
func (f Franchise) ToTeam() *Team {
	return &Team{
		Name:         f.FullName,
		City:         sql.NullString{String: f.City, Valid: f.City != ""},
		Abbreviation: f.Abbreviation,
	}
}

var franchises = []Franchise{
	{1610612737, "ATL", "Atlanta Hawks", "Hawks", "Atlanta"},
	{1610612738, "BOS", "Boston Celtics", "Celtics", "Boston"},
	{1610612739, "CLE", "Cleveland Cavaliers", "Cavaliers", "Cleveland"},
	{1610612740, "NOP", "New Orleans Pelicans", "Pelicans", "New Orleans"},
	{1610612741, "CHI", "Chicago Bulls", "Bulls", "Chicago"},
	{1610612742, "DAL", "Dallas Mavericks", "Mavericks", "Dallas"},
	{1610612743, "DEN", "Denver Nuggets", "Nuggets", "Denver"},
	{1610612744, "GSW", "Golden State Warriors", "Warriors", "Golden State"},
	{1610612745, "HOU", "Houston Rockets", "Rockets", "Houston"},
	{1610612746, "LAC", "LA Clippers", "Clippers", "Los Angeles"},
	{1610612747, "LAL", "Los Angeles Lakers", "Lakers", "Los Angeles"},
	{1610612748, "MIA", "Miami Heat", "Heat", "Miami"},
	{1610612749, "MIL", "Milwaukee Bucks", "Bucks", "Milwaukee"},
	{1610612750, "MIN", "Minnesota Timberwolves", "Timberwolves", "Minnesota"},
	{1610612751, "BKN", "Brooklyn Nets", "Nets", "Brooklyn"},
	{1610612752, "NYK", "New York Knicks", "Knicks", "New York"},
	{1610612753, "ORL", "Orlando Magic", "Magic", "Orlando"},
	{1610612754, "IND", "Indiana Pacers", "Pacers", "Indiana"},
	{1610612755, "PHI", "Philadelphia 76ers", "76ers", "Philadelphia"},
	{1610612756, "PHX", "Phoenix Suns", "Suns", "Phoenix"},
	{1610612757, "POR", "Portland Trail Blazers", "Trail Blazers", "Portland"},
	{1610612758, "SAC", "Sacramento Kings", "Kings", "Sacramento"},
	{1610612759, "SAS", "San Antonio Spurs", "Spurs", "San Antonio"},
	{1610612760, "OKC", "Oklahoma City Thunder", "Thunder", "Oklahoma City"},
	{1610612761, "TOR", "Toronto Raptors", "Raptors", "Toronto"},
	{1610612762, "UTA", "Utah Jazz", "Jazz", "Utah"},
	{1610612763, "MEM", "Memphis Grizzlies", "Grizzlies", "Memphis"},
	{1610612764, "WAS", "Washington Wizards", "Wizards", "Washington"},
	{1610612765, "DET", "Detroit Pistons", "Pistons", "Detroit"},
	{1610612766, "CHA", "Charlotte Hornets", "Hornets", "Charlotte"},
}

// Franchises returns a copy of the static franchise table
func Franchises() []Franchise {
	out := make([]Franchise, len(franchises))
	copy(out, franchises)
	return out
}

// FranchiseByID looks up a franchise by provider team id
func FranchiseByID(id int) (Franchise, bool) {
	for _, f := range franchises {
		if f.ID == id {
			return f, true
		}
	}
	return Franchise{}, false
}

// FindFranchise matches by id first, then exact full name or nickname,
// then by substring in either direction.
func FindFranchise(id int, name string) (Franchise, bool) {
	if f, ok := FranchiseByID(id); ok {
		return f, true
	}

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Franchise{}, false
	}

	for _, f := range franchises {
		if strings.ToLower(f.FullName) == name || strings.ToLower(f.Nickname) == name {
			return f, true
		}
	}
	for _, f := range franchises {
		full := strings.ToLower(f.FullName)
		if strings.Contains(full, name) || strings.Contains(name, strings.ToLower(f.Nickname)) {
			return f, true
		}
	}
	return Franchise{}, false
}
