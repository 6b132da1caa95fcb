package pipeline

import (
	"context"
	"testing"
	"time"

	"nba_stats/ingestion/internal/cache"
	"nba_stats/ingestion/internal/convert"
	"nba_stats/ingestion/internal/models"
	"nba_stats/ingestion/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapper_ResolvesExactAndNormalizedRosterNames(t *testing.T) {
	fx := newFixture()
	fx.provider.rosters[knicksID] = []convert.Row{rosterRow("Jalen Brunson", "G", "6-2", 190, 28, 11)}
	fx.provider.rosters[bucksID] = []convert.Row{rosterRow("A.J. Green", "Guard", "6-4", 190, 25, 20)}

	mapper := NewMapper(fx.provider, fx.teams, fx.players, nil, time.Hour)
	players := []*models.PlayerSeasonInput{
		{Name: "Jalen Brunson", TeamExternalID: knicksID},
		{Name: "AJ Green", TeamExternalID: bucksID},
	}

	index := mapper.ResolvePhysicalAttributes(context.Background(), "2024-25", []int{knicksID, bucksID}, players)

	brunson, ok := index.Lookup(0, "Jalen Brunson")
	require.True(t, ok, "exact name should match")
	assert.Equal(t, "6-2", brunson.Height.String)
	assert.Equal(t, int32(11), brunson.JerseyNumber.Int32)

	green, ok := index.Lookup(0, "AJ Green")
	require.True(t, ok, "normalized name should match")
	assert.Equal(t, "G", green.Position.String, "position is normalized")
	assert.Equal(t, int32(20), green.JerseyNumber.Int32)
	assert.Equal(t, int32(190), green.Weight.Int32)

	assert.Equal(t, 0, fx.provider.callCount("player_info"), "no fallback needed")
}

func TestMapper_FallsBackToPlayerInfo(t *testing.T) {
	fx := newFixture()
	fx.provider.rosters[knicksID] = []convert.Row{rosterRow("Jalen Brunson", "G", "6-2", 190, 28, 11)}
	fx.provider.playerInfo[203999] = []convert.Row{{
		"PERSON_ID": float64(203999), "DISPLAY_FIRST_LAST": "Nikola Jokic",
		"POSITION": "Center", "HEIGHT": "6-11", "WEIGHT": "284", "JERSEY": "15",
	}}

	mapper := NewMapper(fx.provider, fx.teams, fx.players, nil, time.Hour)
	players := []*models.PlayerSeasonInput{
		{Name: "Jalen Brunson"},
		{ExternalID: 203999, Name: "Nikola Jokić"},
		{ExternalID: 1, Name: "Unknown Player"},
		{Name: "No Provider Id"},
	}

	index := mapper.ResolvePhysicalAttributes(context.Background(), "2024-25", []int{knicksID}, players)

	jokic, ok := index.Lookup(203999, "Nikola Jokić")
	require.True(t, ok)
	assert.Equal(t, "C", jokic.Position.String)
	assert.Equal(t, "6-11", jokic.Height.String)
	assert.False(t, jokic.Age.Valid, "player info carries no age")

	_, ok = index.Lookup(0, "Nikola Jokić")
	assert.True(t, ok, "stats-feed spelling is indexed too")

	_, ok = index.Lookup(1, "Unknown Player")
	assert.False(t, ok)

	assert.Equal(t, 2, fx.provider.callCount("player_info"), "only residual players with provider ids are looked up")
}

func TestMapper_SkipsFailedRoster(t *testing.T) {
	fx := newFixture()
	fx.provider.rosterErr[knicksID] = errPermanent
	fx.provider.rosters[bucksID] = []convert.Row{rosterRow("Giannis Antetokounmpo", "F", "6-11", 243, 30, 34)}

	mapper := NewMapper(fx.provider, fx.teams, fx.players, nil, time.Hour)
	index := mapper.ResolvePhysicalAttributes(context.Background(), "2024-25", []int{knicksID, bucksID}, nil)

	_, ok := index.Lookup(0, "Giannis Antetokounmpo")
	assert.True(t, ok)
	assert.Equal(t, 1, index.Len())
	assert.Equal(t, 2, fx.provider.callCount("roster"))
}

func TestMapper_UsesRosterCache(t *testing.T) {
	fx := newFixture()
	fx.provider.rosters[bucksID] = []convert.Row{rosterRow("Damian Lillard", "G", "6-2", 195, 34, 0)}
	rc := &fakeCache{entries: map[string][]models.RosterEntry{
		cache.RosterKey("2024-25", knicksID): {{Name: "Josh Hart"}},
	}}

	mapper := NewMapper(fx.provider, fx.teams, fx.players, rc, time.Hour)
	index := mapper.ResolvePhysicalAttributes(context.Background(), "2024-25", []int{knicksID, bucksID}, nil)

	_, ok := index.Lookup(0, "Josh Hart")
	assert.True(t, ok, "cached roster used")
	_, ok = index.Lookup(0, "Damian Lillard")
	assert.True(t, ok, "fetched roster used")

	assert.Equal(t, 1, fx.provider.callCount("roster"), "cached team not fetched")
	assert.Equal(t, 1, rc.sets)
	assert.Contains(t, rc.entries, cache.RosterKey("2024-25", bucksID))
}

func TestMapper_BuildTeamMapping(t *testing.T) {
	fx := newFixture()
	fx.teams.ids = map[string]int{"NYK": 7, "MIL": 9, "XYZ": 31}

	mapper := NewMapper(fx.provider, fx.teams, fx.players, nil, time.Hour)
	index, err := mapper.BuildTeamMapping(context.Background())
	require.NoError(t, err)

	id, ok := index.Resolve(knicksID)
	assert.True(t, ok)
	assert.Equal(t, 7, id)

	id, ok = index.Resolve(bucksID)
	assert.True(t, ok)
	assert.Equal(t, 9, id)

	_, ok = index.Resolve(1610612738)
	assert.False(t, ok, "Boston is not stored")

	assert.True(t, index.Link(99, "XYZ"))
	assert.False(t, index.Link(100, "ABC"))
	assert.Equal(t, []int{99, bucksID, knicksID}, index.ExternalIDs())
}

func TestPlayerIndex_Resolve(t *testing.T) {
	fx := newFixture()
	fx.players.keys = []repository.PlayerKey{
		{ID: 1, Name: "Jalen Williams", ExternalID: 1631114},
		{ID: 2, Name: "Jaylin Williams", ExternalID: 1631119},
		{ID: 3, Name: "A.J. Green"},
		{ID: 4, Name: "Kevin Knox"},
		{ID: 5, Name: "Kevin Knox II"},
		{ID: 6, Name: "KevinKnox"},
	}

	mapper := NewMapper(fx.provider, fx.teams, fx.players, nil, time.Hour)
	index, err := mapper.BuildPlayerMapping(context.Background())
	require.NoError(t, err)

	tests := []struct {
		name       string
		externalID int
		player     string
		expectID   int
		expectOK   bool
	}{
		{"provider id wins over name", 1631119, "Jalen Williams", 2, true},
		{"exact name", 0, "Jalen Williams", 1, true},
		{"normalized name", 0, "AJ Green", 3, true},
		{"unknown provider id falls back to name", 42, "A.J. Green", 3, true},
		{"ambiguous normalized name", 0, "kevin knox", 0, false},
		{"exact name beats ambiguity", 0, "Kevin Knox", 4, true},
		{"unknown", 0, "Nobody", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := index.Resolve(tt.externalID, tt.player)
			assert.Equal(t, tt.expectOK, ok)
			assert.Equal(t, tt.expectID, id)
		})
	}
}
