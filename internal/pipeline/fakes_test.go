package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"nba_stats/ingestion/internal/client"
	"nba_stats/ingestion/internal/convert"
	"nba_stats/ingestion/internal/models"
	"nba_stats/ingestion/internal/repository"
)

const (
	knicksID = 1610612752
	bucksID  = 1610612749
)

var errTransient = &client.APIError{Endpoint: "test", StatusCode: 503, Transient: true, Err: errors.New("service unavailable")}
var errPermanent = &client.APIError{Endpoint: "test", StatusCode: 400, Err: errors.New("bad request")}

type fakeProvider struct {
	mu sync.Mutex

	standings      []convert.Row
	standingsErr   error
	playerStats    []convert.Row
	playerStatsErr error
	rosters        map[int][]convert.Row
	rosterErr      map[int]error
	playerInfo     map[int][]convert.Row
	games          []convert.Row
	gamesErr       error
	boxScores      map[string][]convert.Row
	boxScoreErr    map[string]error

	calls map[string]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		rosters:     make(map[int][]convert.Row),
		rosterErr:   make(map[int]error),
		playerInfo:  make(map[int][]convert.Row),
		boxScores:   make(map[string][]convert.Row),
		boxScoreErr: make(map[string]error),
		calls:       make(map[string]int),
	}
}

func (f *fakeProvider) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeProvider) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeProvider) FetchStandings(ctx context.Context, season string) ([]convert.Row, error) {
	f.record("standings")
	return f.standings, f.standingsErr
}

func (f *fakeProvider) FetchPlayerSeasonStats(ctx context.Context, season string) ([]convert.Row, error) {
	f.record("player_stats")
	return f.playerStats, f.playerStatsErr
}

func (f *fakeProvider) FetchTeamRoster(ctx context.Context, teamID int, season string) ([]convert.Row, error) {
	f.record("roster")
	if err := f.rosterErr[teamID]; err != nil {
		return nil, err
	}
	return f.rosters[teamID], nil
}

func (f *fakeProvider) FetchPlayerInfo(ctx context.Context, playerID int) ([]convert.Row, error) {
	f.record("player_info")
	rows, ok := f.playerInfo[playerID]
	if !ok {
		return nil, errPermanent
	}
	return rows, nil
}

func (f *fakeProvider) FetchSeasonGames(ctx context.Context, season string) ([]convert.Row, error) {
	f.record("games")
	return f.games, f.gamesErr
}

func (f *fakeProvider) FetchBoxScore(ctx context.Context, gameID string) ([]convert.Row, error) {
	f.record("box_score")
	if err := f.boxScoreErr[gameID]; err != nil {
		return nil, err
	}
	return f.boxScores[gameID], nil
}

type fakeTeamStore struct {
	ids    map[string]int
	nextID int
	err    error
}

func newFakeTeamStore() *fakeTeamStore {
	return &fakeTeamStore{ids: make(map[string]int), nextID: 1}
}

func (s *fakeTeamStore) UpsertBatch(ctx context.Context, teams []*models.Team) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	for _, t := range teams {
		id, ok := s.ids[t.Abbreviation]
		if !ok {
			id = s.nextID
			s.nextID++
			s.ids[t.Abbreviation] = id
		}
		t.ID = id
	}
	return len(teams), nil
}

func (s *fakeTeamStore) AbbreviationIndex(ctx context.Context) (map[string]int, error) {
	out := make(map[string]int, len(s.ids))
	for k, v := range s.ids {
		out[k] = v
	}
	return out, nil
}

type fakePlayerStore struct {
	byName   map[string]*models.Player
	keys     []repository.PlayerKey
	upserted []*models.Player
	err      error

	starters   []repository.StarterRef
	applyCalls int
	applyErr   error
}

func newFakePlayerStore() *fakePlayerStore {
	return &fakePlayerStore{byName: make(map[string]*models.Player)}
}

func (s *fakePlayerStore) UpsertBatch(ctx context.Context, players []*models.Player) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	for _, p := range players {
		if existing, ok := s.byName[p.Name]; ok {
			p.ID = existing.ID
		} else {
			p.ID = len(s.keys) + 1
			s.keys = append(s.keys, repository.PlayerKey{ID: p.ID, Name: p.Name, ExternalID: p.ExternalID.Int64})
		}
		s.byName[p.Name] = p
		s.upserted = append(s.upserted, p)
	}
	return len(players), nil
}

func (s *fakePlayerStore) Keys(ctx context.Context) ([]repository.PlayerKey, error) {
	return s.keys, nil
}

func (s *fakePlayerStore) ApplyStarterStatus(ctx context.Context, starters []repository.StarterRef) (int, error) {
	s.applyCalls++
	if s.applyErr != nil {
		return 0, s.applyErr
	}
	s.starters = starters
	return len(starters), nil
}

type fakeGameStore struct {
	ids   map[string]int
	games []*models.Game
	err   error
}

func newFakeGameStore() *fakeGameStore {
	return &fakeGameStore{ids: make(map[string]int)}
}

func (s *fakeGameStore) UpsertBatch(ctx context.Context, games []*models.Game) ([]models.GameRef, error) {
	if s.err != nil {
		return nil, s.err
	}
	refs := make([]models.GameRef, 0, len(games))
	for _, g := range games {
		key := fmt.Sprintf("%s/%d/%d", g.GameDate.Format("2006-01-02"), g.HomeTeamID, g.AwayTeamID)
		id, ok := s.ids[key]
		if !ok {
			id = len(s.ids) + 1000
			s.ids[key] = id
		}
		g.ID = id
		s.games = append(s.games, g)
		refs = append(refs, models.GameRef{ID: id, ExternalGameID: g.ExternalID, Completed: g.IsCompleted()})
	}
	return refs, nil
}

type fakeBoxScoreStore struct {
	batches  map[int][]*models.BoxScore
	failGame map[int]bool
	ingested map[int]bool
}

func newFakeBoxScoreStore() *fakeBoxScoreStore {
	return &fakeBoxScoreStore{
		batches:  make(map[int][]*models.BoxScore),
		failGame: make(map[int]bool),
		ingested: make(map[int]bool),
	}
}

func (s *fakeBoxScoreStore) UpsertBatch(ctx context.Context, rows []*models.BoxScore) (int, error) {
	if len(rows) > 0 && s.failGame[rows[0].GameID] {
		return 0, errors.New("foreign key violation")
	}
	for _, r := range rows {
		s.batches[r.GameID] = append(s.batches[r.GameID], r)
	}
	return len(rows), nil
}

func (s *fakeBoxScoreStore) IngestedGameIDs(ctx context.Context) (map[int]bool, error) {
	return s.ingested, nil
}

type fakeCache struct {
	entries map[string][]models.RosterEntry
	sets    int
}

func (c *fakeCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	entries, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	*dest.(*[]models.RosterEntry) = entries
	return true, nil
}

func (c *fakeCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.entries[key] = value.([]models.RosterEntry)
	c.sets++
	return nil
}

type fixture struct {
	provider  *fakeProvider
	teams     *fakeTeamStore
	players   *fakePlayerStore
	games     *fakeGameStore
	boxScores *fakeBoxScoreStore
}

func newFixture() *fixture {
	return &fixture{
		provider:  newFakeProvider(),
		teams:     newFakeTeamStore(),
		players:   newFakePlayerStore(),
		games:     newFakeGameStore(),
		boxScores: newFakeBoxScoreStore(),
	}
}

func (fx *fixture) stores() Stores {
	return Stores{Teams: fx.teams, Players: fx.players, Games: fx.games, BoxScores: fx.boxScores}
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.SeasonEndYear = 2025
	opts.Retry = RetryPolicy{MaxRetries: 3, Base: 0}
	opts.Pacing = Pacing{}
	return opts
}

func standingRow(teamID int, city, name string) convert.Row {
	return convert.Row{"TeamID": float64(teamID), "TeamCity": city, "TeamName": name}
}

func seasonRow(playerID int, name string, teamID int) convert.Row {
	return convert.Row{
		"PLAYER_ID": float64(playerID), "PLAYER_NAME": name, "TEAM_ID": float64(teamID),
		"GP": float64(60), "PTS": 20.5, "REB": 4.0, "AST": 6.5, "STL": 1.0, "BLK": 0.2, "TOV": 2.5,
		"FGM": 7.5, "FGA": 16.0, "FG3M": 2.5, "FG3A": 6.5, "FTM": 3.0, "FTA": 3.5,
	}
}

func rosterRow(name, position, height string, weight, age, jersey int) convert.Row {
	return convert.Row{
		"PLAYER": name, "POSITION": position, "HEIGHT": height,
		"WEIGHT": fmt.Sprint(weight), "AGE": float64(age), "NUM": fmt.Sprint(jersey),
	}
}

// gameRows returns the two game finder rows for one game
func gameRows(gameID, date string, home, away, homePts, awayPts int) []convert.Row {
	h := convert.Row{"GAME_ID": gameID, "GAME_DATE": date, "TEAM_ID": float64(home), "MATCHUP": "HOM vs. AWY"}
	a := convert.Row{"GAME_ID": gameID, "GAME_DATE": date, "TEAM_ID": float64(away), "MATCHUP": "AWY @ HOM"}
	if homePts > 0 {
		h["PTS"] = float64(homePts)
		a["PTS"] = float64(awayPts)
	}
	return []convert.Row{h, a}
}

func boxRow(playerID int, name string, teamID int, startPosition string) convert.Row {
	return convert.Row{
		"PLAYER_ID": float64(playerID), "PLAYER_NAME": name, "TEAM_ID": float64(teamID),
		"START_POSITION": startPosition, "MIN": "32:10", "PTS": float64(18), "TO": float64(2),
	}
}
