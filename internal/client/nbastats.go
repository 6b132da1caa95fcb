package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"nba_stats/ingestion/internal/convert"
	"nba_stats/ingestion/internal/metrics"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	leagueID          = "00"
	seasonTypeRegular = "Regular Season"
	browserUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Client is the stats.nba.com API client. Calls are serialized through a
// limiter that spaces successive requests by the configured interval.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a stats client. A zero interval disables throttling.
func NewClient(baseURL string, timeout, interval time.Duration) *Client {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	return &Client{
		baseURL: baseURL,
		limiter: rate.NewLimiter(limit, 1),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// get performs one throttled GET against an endpoint. It does not retry;
// failures come back as *APIError tagged transient or permanent.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &APIError{Endpoint: endpoint, Err: err}
	}

	reqURL := fmt.Sprintf("%s/%s", c.baseURL, endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &APIError{Endpoint: endpoint, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", "https://www.nba.com/")
	req.Header.Set("Origin", "https://www.nba.com")
	req.Header.Set("User-Agent", browserUserAgent)
	req.URL.RawQuery = params.Encode()

	log.Debug().
		Str("endpoint", endpoint).
		Str("query", req.URL.RawQuery).
		Msg("Making API request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPICall(endpoint, "error", time.Since(start).Seconds())
		// Transport failures are timeouts or connection errors unless we were cancelled
		transient := !errors.Is(err, context.Canceled) && ctx.Err() == nil
		return nil, &APIError{Endpoint: endpoint, Transient: transient, Err: fmt.Errorf("API request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordAPICall(endpoint, "error", time.Since(start).Seconds())
		return nil, &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Transient: true, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	metrics.RecordAPICall(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	switch resp.StatusCode {
	case http.StatusOK:
		log.Debug().
			Str("endpoint", endpoint).
			Int("size", len(body)).
			Msg("API request successful")
		return body, nil

	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return nil, &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Transient: true, Err: fmt.Errorf("retryable status: %s", truncate(body))}

	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("access denied: %s", truncate(body))}

	default:
		return nil, &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status: %s", truncate(body))}
	}
}

// fetch gets an endpoint and decodes the named result set.
func (c *Client) fetch(ctx context.Context, endpoint, resultSet string, params url.Values) ([]convert.Row, error) {
	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	rows, err := decodeResultSet(body, resultSet)
	if err != nil {
		return nil, &APIError{Endpoint: endpoint, StatusCode: http.StatusOK, Err: err}
	}
	return rows, nil
}

// FetchStandings fetches the league standings for a season ("2024-25").
func (c *Client) FetchStandings(ctx context.Context, season string) ([]convert.Row, error) {
	params := url.Values{
		"LeagueID":   {leagueID},
		"Season":     {season},
		"SeasonType": {seasonTypeRegular},
	}
	return c.fetch(ctx, "leaguestandingsv3", "Standings", params)
}

// FetchPlayerSeasonStats fetches per-game season averages for every player.
func (c *Client) FetchPlayerSeasonStats(ctx context.Context, season string) ([]convert.Row, error) {
	params := url.Values{
		"LeagueID":         {leagueID},
		"Season":           {season},
		"SeasonType":       {seasonTypeRegular},
		"MeasureType":      {"Base"},
		"PerMode":          {"PerGame"},
		"PlusMinus":        {"N"},
		"PaceAdjust":       {"N"},
		"Rank":             {"N"},
		"LastNGames":       {"0"},
		"Month":            {"0"},
		"OpponentTeamID":   {"0"},
		"Period":           {"0"},
		"TeamID":           {"0"},
		"DateFrom":         {""},
		"DateTo":           {""},
		"GameSegment":      {""},
		"Location":         {""},
		"Outcome":          {""},
		"PORound":          {"0"},
		"SeasonSegment":    {""},
		"ShotClockRange":   {""},
		"VsConference":     {""},
		"VsDivision":       {""},
		"Conference":       {""},
		"Division":         {""},
		"GameScope":        {""},
		"PlayerExperience": {""},
		"PlayerPosition":   {""},
		"StarterBench":     {""},
		"TwoWay":           {"0"},
	}
	return c.fetch(ctx, "leaguedashplayerstats", "LeagueDashPlayerStats", params)
}

// FetchTeamRoster fetches one team's roster for a season.
func (c *Client) FetchTeamRoster(ctx context.Context, teamID int, season string) ([]convert.Row, error) {
	params := url.Values{
		"LeagueID": {leagueID},
		"TeamID":   {strconv.Itoa(teamID)},
		"Season":   {season},
	}
	return c.fetch(ctx, "commonteamroster", "CommonTeamRoster", params)
}

// FetchPlayerInfo fetches a single player's biographical row.
func (c *Client) FetchPlayerInfo(ctx context.Context, playerID int) ([]convert.Row, error) {
	params := url.Values{
		"LeagueID": {leagueID},
		"PlayerID": {strconv.Itoa(playerID)},
	}
	return c.fetch(ctx, "commonplayerinfo", "CommonPlayerInfo", params)
}

// FetchSeasonGames fetches every regular season game row (one per team per game).
func (c *Client) FetchSeasonGames(ctx context.Context, season string) ([]convert.Row, error) {
	params := url.Values{
		"LeagueID":           {leagueID},
		"PlayerOrTeam":       {"T"},
		"SeasonNullable":     {season},
		"SeasonTypeNullable": {seasonTypeRegular},
	}
	return c.fetch(ctx, "leaguegamefinder", "LeagueGameFinderResults", params)
}

// FetchBoxScore fetches the traditional player box score for a game.
func (c *Client) FetchBoxScore(ctx context.Context, gameID string) ([]convert.Row, error) {
	params := url.Values{
		"GameID":      {gameID},
		"StartPeriod": {"0"},
		"EndPeriod":   {"10"},
		"StartRange":  {"0"},
		"EndRange":    {"28800"},
		"RangeType":   {"0"},
	}
	return c.fetch(ctx, "boxscoretraditionalv2", "PlayerStats", params)
}

func truncate(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
