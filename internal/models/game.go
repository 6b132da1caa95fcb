package models

import (
	"database/sql"
	"sort"
	"strings"
	"time"

	"nba_stats/ingestion/internal/convert"
)

// Game represents a single NBA game between two local teams
type Game struct {
	ID         int           `db:"id"`
	GameDate   time.Time     `db:"game_date" validate:"required"`
	HomeTeamID int           `db:"home_team_id" validate:"required,gt=0"`
	AwayTeamID int           `db:"away_team_id" validate:"required,gt=0,nefield=HomeTeamID"`
	HomeScore  sql.NullInt32 `db:"home_score"`
	AwayScore  sql.NullInt32 `db:"away_score"`

	// Provider game id, carried for pairing with upsert results; not stored
	ExternalID string `db:"-"`
}

// IsCompleted reports whether both final scores are known
func (g *Game) IsCompleted() bool {
	return g.HomeScore.Valid && g.AwayScore.Valid
}

// GameRef pairs a local game id with the provider's game id
type GameRef struct {
	ID             int
	ExternalGameID string
	Completed      bool
}

// GameInput is a game assembled from the per-team game finder rows
type GameInput struct {
	ExternalID         string
	Date               time.Time
	HomeTeamExternalID int
	AwayTeamExternalID int
	HomeScore          sql.NullInt32
	AwayScore          sql.NullInt32
}

// ToGame converts GameInput to a Game.
// Note: home and away ids must already be resolved to local team ids
func (gi *GameInput) ToGame(homeTeamID, awayTeamID int) *Game {
	return &Game{
		ExternalID: gi.ExternalID,
		GameDate:   gi.Date,
		HomeTeamID: homeTeamID,
		AwayTeamID: awayTeamID,
		HomeScore:  gi.HomeScore,
		AwayScore:  gi.AwayScore,
	}
}

const gameDateLayout = "2006-01-02"

// AssembleGames folds game finder rows (one per team per game) into games.
// The row whose matchup contains "@" is the away side. Games missing a side
// or a parseable date are dropped. Output is ordered by date descending.
func AssembleGames(rows []convert.Row) []*GameInput {
	type sides struct {
		home, away convert.Row
		order      int
	}
	byID := make(map[string]*sides)
	for i, row := range rows {
		id, ok := row.Text("GAME_ID")
		if !ok {
			continue
		}
		s, seen := byID[id]
		if !seen {
			s = &sides{order: i}
			byID[id] = s
		}
		matchup, _ := row.String("MATCHUP")
		if strings.Contains(matchup, "@") {
			s.away = row
		} else {
			s.home = row
		}
	}

	games := make([]*GameInput, 0, len(byID))
	order := make(map[string]int, len(byID))
	for id, s := range byID {
		if s.home == nil || s.away == nil {
			continue
		}
		raw, _ := s.home.String("GAME_DATE")
		date, err := time.Parse(gameDateLayout, firstN(raw, len(gameDateLayout)))
		if err != nil {
			continue
		}
		home, hok := s.home.Int("TEAM_ID")
		away, aok := s.away.Int("TEAM_ID")
		if !hok || !aok {
			continue
		}
		games = append(games, &GameInput{
			ExternalID:         id,
			Date:               date,
			HomeTeamExternalID: home,
			AwayTeamExternalID: away,
			HomeScore:          s.home.NullInt("PTS"),
			AwayScore:          s.away.NullInt("PTS"),
		})
		order[id] = s.order
	}

	sort.SliceStable(games, func(i, j int) bool {
		if !games[i].Date.Equal(games[j].Date) {
			return games[i].Date.After(games[j].Date)
		}
		return order[games[i].ExternalID] < order[games[j].ExternalID]
	})
	return games
}

func firstN(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
