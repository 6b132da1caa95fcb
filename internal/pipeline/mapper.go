package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"nba_stats/ingestion/internal/cache"
	"nba_stats/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// TeamIndex resolves provider team ids to local team ids through the
// team abbreviation.
type TeamIndex struct {
	abbreviations map[string]int
	byExternalID  map[int]int
}

// Link maps a provider team id to whichever local team holds abbreviation.
func (ti *TeamIndex) Link(externalID int, abbreviation string) bool {
	local, ok := ti.abbreviations[abbreviation]
	if !ok || externalID <= 0 {
		return false
	}
	ti.byExternalID[externalID] = local
	return true
}

// Resolve returns the local id for a provider team id
func (ti *TeamIndex) Resolve(externalID int) (int, bool) {
	id, ok := ti.byExternalID[externalID]
	return id, ok
}

// ExternalIDs lists every linked provider team id in ascending order
func (ti *TeamIndex) ExternalIDs() []int {
	ids := make([]int, 0, len(ti.byExternalID))
	for id := range ti.byExternalID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Len returns the number of linked teams
func (ti *TeamIndex) Len() int {
	return len(ti.byExternalID)
}

// PlayerIndex resolves upstream player identity to local player ids.
// Provider ids win, then the exact display name, then the normalized name.
type PlayerIndex struct {
	byExternalID map[int64]int
	byName       map[string]int
	byNormalized map[string]int
}

func newPlayerIndex() *PlayerIndex {
	return &PlayerIndex{
		byExternalID: make(map[int64]int),
		byName:       make(map[string]int),
		byNormalized: make(map[string]int),
	}
}

// ambiguous marks a normalized key shared by more than one local player
const ambiguous = -1

func (pi *PlayerIndex) add(id int, name string, externalID int64) {
	if externalID > 0 {
		pi.byExternalID[externalID] = id
	}
	pi.byName[name] = id

	key := NormalizeName(name)
	if key == "" {
		return
	}
	if existing, ok := pi.byNormalized[key]; ok && existing != id {
		pi.byNormalized[key] = ambiguous
		return
	}
	pi.byNormalized[key] = id
}

// Resolve finds the local player id
func (pi *PlayerIndex) Resolve(externalID int, name string) (int, bool) {
	if externalID > 0 {
		if id, ok := pi.byExternalID[int64(externalID)]; ok {
			return id, true
		}
	}
	if id, ok := pi.byName[name]; ok {
		return id, true
	}
	if id, ok := pi.byNormalized[NormalizeName(name)]; ok && id != ambiguous {
		return id, true
	}
	return 0, false
}

// Len returns the number of indexed players
func (pi *PlayerIndex) Len() int {
	return len(pi.byName)
}

// AttributeIndex holds roster physical attributes keyed by provider id,
// exact name and normalized name.
type AttributeIndex struct {
	byExternalID map[int]models.PhysicalAttributes
	byName       map[string]models.PhysicalAttributes
	byNormalized map[string]models.PhysicalAttributes
}

func newAttributeIndex() *AttributeIndex {
	return &AttributeIndex{
		byExternalID: make(map[int]models.PhysicalAttributes),
		byName:       make(map[string]models.PhysicalAttributes),
		byNormalized: make(map[string]models.PhysicalAttributes),
	}
}

func (ai *AttributeIndex) add(entry models.RosterEntry) {
	if entry.ExternalID > 0 {
		ai.byExternalID[entry.ExternalID] = entry.Attributes
	}
	ai.addName(entry.Name, entry.Attributes)
}

func (ai *AttributeIndex) addName(name string, attrs models.PhysicalAttributes) {
	if name == "" {
		return
	}
	ai.byName[name] = attrs
	if key := NormalizeName(name); key != "" {
		ai.byNormalized[key] = attrs
	}
}

// Lookup finds attributes by provider id, then exact name, then normalized name
func (ai *AttributeIndex) Lookup(externalID int, name string) (models.PhysicalAttributes, bool) {
	if externalID > 0 {
		if a, ok := ai.byExternalID[externalID]; ok {
			return a, true
		}
	}
	if a, ok := ai.byName[name]; ok {
		return a, true
	}
	a, ok := ai.byNormalized[NormalizeName(name)]
	return a, ok
}

// Len returns the number of distinct names indexed
func (ai *AttributeIndex) Len() int {
	return len(ai.byName)
}

// Mapper reconciles the provider's team and player identities with local ids
type Mapper struct {
	provider StatsProvider
	teams    TeamStore
	players  PlayerStore
	cache    RosterCache
	cacheTTL time.Duration
}

// NewMapper creates a Mapper. rosters may be nil to disable roster caching.
func NewMapper(provider StatsProvider, teams TeamStore, players PlayerStore, rosters RosterCache, ttl time.Duration) *Mapper {
	return &Mapper{
		provider: provider,
		teams:    teams,
		players:  players,
		cache:    rosters,
		cacheTTL: ttl,
	}
}

// BuildTeamMapping links every known franchise to its stored team.
// Franchises with no stored team are left unmapped.
func (m *Mapper) BuildTeamMapping(ctx context.Context) (*TeamIndex, error) {
	abbreviations, err := m.teams.AbbreviationIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build team mapping: %w", err)
	}

	index := &TeamIndex{
		abbreviations: abbreviations,
		byExternalID:  make(map[int]int),
	}
	for _, fr := range models.Franchises() {
		if !index.Link(fr.ID, fr.Abbreviation) {
			log.Debug().Str("abbreviation", fr.Abbreviation).Msg("Franchise has no stored team")
		}
	}

	log.Info().Int("teams", index.Len()).Msg("Team mapping built")
	return index, nil
}

// BuildPlayerMapping indexes every stored player
func (m *Mapper) BuildPlayerMapping(ctx context.Context) (*PlayerIndex, error) {
	keys, err := m.players.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build player mapping: %w", err)
	}

	index := newPlayerIndex()
	for _, k := range keys {
		index.add(k.ID, k.Name, k.ExternalID)
	}

	log.Info().Int("players", index.Len()).Msg("Player mapping built")
	return index, nil
}

// ResolvePhysicalAttributes collects roster attributes for the season's
// players. Every team roster is fetched once; players missing from all of
// them are looked up one by one. A failed fetch skips that team or player.
func (m *Mapper) ResolvePhysicalAttributes(ctx context.Context, season string, teamIDs []int, players []*models.PlayerSeasonInput) *AttributeIndex {
	index := newAttributeIndex()

	rostersLoaded := 0
	for _, teamID := range teamIDs {
		if ctx.Err() != nil {
			return index
		}

		entries, err := m.roster(ctx, season, teamID)
		if err != nil {
			log.Warn().Err(err).Int("team_id", teamID).Msg("Roster fetch failed, skipping team")
			continue
		}
		for _, e := range entries {
			index.add(e)
		}
		rostersLoaded++
	}

	fallbacks, resolved := 0, 0
	for _, p := range players {
		if _, ok := index.Lookup(p.ExternalID, p.Name); ok {
			continue
		}
		if p.ExternalID <= 0 {
			log.Debug().Str("player", p.Name).Msg("No roster entry and no provider id")
			continue
		}
		if ctx.Err() != nil {
			return index
		}

		fallbacks++
		entry, ok := m.playerInfo(ctx, p.ExternalID)
		if !ok {
			continue
		}
		index.add(entry)
		// The info endpoint may spell the name differently than the stats feed
		index.addName(p.Name, entry.Attributes)
		resolved++
	}

	log.Info().
		Str("season", season).
		Int("rosters", rostersLoaded).
		Int("teams", len(teamIDs)).
		Int("fallback_lookups", fallbacks).
		Int("fallback_resolved", resolved).
		Int("players_indexed", index.Len()).
		Msg("Physical attributes resolved")

	return index
}

func (m *Mapper) roster(ctx context.Context, season string, teamID int) ([]models.RosterEntry, error) {
	key := cache.RosterKey(season, teamID)
	if m.cache != nil {
		var cached []models.RosterEntry
		hit, err := m.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Roster cache read failed")
		} else if hit {
			return cached, nil
		}
	}

	rows, err := m.provider.FetchTeamRoster(ctx, teamID, season)
	if err != nil {
		return nil, err
	}

	entries := make([]models.RosterEntry, 0, len(rows))
	for _, row := range rows {
		if e, ok := models.RosterEntryFromRow(row); ok {
			entries = append(entries, e)
		}
	}

	if m.cache != nil && len(entries) > 0 {
		if err := m.cache.SetJSON(ctx, key, entries, m.cacheTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Roster cache write failed")
		}
	}
	return entries, nil
}

func (m *Mapper) playerInfo(ctx context.Context, playerID int) (models.RosterEntry, bool) {
	rows, err := m.provider.FetchPlayerInfo(ctx, playerID)
	if err != nil {
		log.Warn().Err(err).Int("player_id", playerID).Msg("Player info fetch failed")
		return models.RosterEntry{}, false
	}
	for _, row := range rows {
		if e, ok := models.PlayerInfoFromRow(row); ok {
			return e, true
		}
	}
	log.Debug().Int("player_id", playerID).Msg("Player info returned no usable row")
	return models.RosterEntry{}, false
}
