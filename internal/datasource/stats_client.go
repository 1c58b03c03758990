package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rustam-sa/nba-01/internal/history"
	"github.com/rustam-sa/nba-01/internal/models"
)

const statsSourceName = "stats_api"

// gameDateLayout is the GAME_DATE format of the player game log endpoint
const gameDateLayout = "Jan 02, 2006"

// PlayerIDResolver maps a player name to the stats API identifier
type PlayerIDResolver interface {
	ExternalID(ctx context.Context, name string) (int64, error)
}

// StaticPlayerIDs resolves names from a fixed, case-insensitive table
type StaticPlayerIDs map[string]string

// ExternalID implements PlayerIDResolver
func (s StaticPlayerIDs) ExternalID(_ context.Context, name string) (int64, error) {
	raw, ok := s[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%w: no stats id configured for %s", models.ErrNotFound, name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid stats id %q for %s: %w", raw, name, err)
	}
	return id, nil
}

// ResolverChain asks each resolver in turn and returns the first match.
// Only ErrNotFound moves on to the next resolver.
type ResolverChain []PlayerIDResolver

// ExternalID implements PlayerIDResolver
func (c ResolverChain) ExternalID(ctx context.Context, name string) (int64, error) {
	err := fmt.Errorf("%w: no resolver knows %s", models.ErrNotFound, name)
	for _, r := range c {
		var id int64
		id, err = r.ExternalID(ctx, name)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return 0, err
		}
	}
	return 0, err
}

// StatsClientConfig holds the endpoint settings of the stats API
type StatsClientConfig struct {
	BaseURL    string
	APIKey     string
	Season     string
	SeasonType string
}

// StatsClient fetches player game logs from the stats API
type StatsClient struct {
	httpClient *RateLimitedHTTPClient
	cfg        StatsClientConfig
	ids        PlayerIDResolver
	logger     *logrus.Entry
}

// NewStatsClient creates a new stats API client
func NewStatsClient(httpClient *RateLimitedHTTPClient, cfg StatsClientConfig, ids PlayerIDResolver, logger *logrus.Logger) *StatsClient {
	if cfg.Season == "" {
		cfg.Season = "ALL"
	}
	if cfg.SeasonType == "" {
		cfg.SeasonType = "Regular Season"
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &StatsClient{
		httpClient: httpClient,
		cfg:        cfg,
		ids:        ids,
		logger:     logger.WithField("component", statsSourceName),
	}
}

// resultSetsResponse is the envelope shared by the stats endpoints
type resultSetsResponse struct {
	ResultSets []ResultSet `json:"resultSets"`
}

// ResultSet is one named table of a stats API response
type ResultSet struct {
	Name    string          `json:"name"`
	Headers []string        `json:"headers"`
	RowSet  [][]interface{} `json:"rowSet"`
}

// FetchGameLogs retrieves every game log of one player, newest first
func (c *StatsClient) FetchGameLogs(ctx context.Context, playerID int64) ([]*models.GameLog, error) {
	q := url.Values{}
	q.Set("PlayerID", strconv.FormatInt(playerID, 10))
	q.Set("Season", c.cfg.Season)
	q.Set("SeasonType", c.cfg.SeasonType)
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/playergamelog?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewDataSourceError(statsSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; nba-props)")
	req.Header.Set("Referer", "https://www.nba.com/")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(statsSourceName, ErrCodeNetworkError, "failed to fetch game logs", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, NewDataSourceError(statsSourceName, ErrCodeAuthenticationFailed, "request rejected", nil)
	case http.StatusNotFound:
		return nil, NewDataSourceError(statsSourceName, ErrCodeNotFound, fmt.Sprintf("player %d not found", playerID), models.ErrNotFound)
	case http.StatusTooManyRequests:
		return nil, NewDataSourceError(statsSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, NewDataSourceError(statsSourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var payload resultSetsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewDataSourceError(statsSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}

	logs, err := ParseGameLogs(payload.ResultSets, playerID)
	if err != nil {
		return nil, NewDataSourceError(statsSourceName, ErrCodeInvalidData, "failed to read game log rows", err)
	}

	c.logger.WithFields(logrus.Fields{
		"player_id": playerID,
		"games":     len(logs),
	}).Debug("Fetched game logs")
	return logs, nil
}

// FetchPlayerGameLogs resolves a player by name and fetches their game logs
func (c *StatsClient) FetchPlayerGameLogs(ctx context.Context, player string) (int64, []*models.GameLog, error) {
	if c.ids == nil {
		return 0, nil, fmt.Errorf("no player id resolver configured")
	}
	id, err := c.ids.ExternalID(ctx, player)
	if err != nil {
		return 0, nil, err
	}
	logs, err := c.FetchGameLogs(ctx, id)
	return id, logs, err
}

// Samples implements history.Source against the live API
func (c *StatsClient) Samples(ctx context.Context, player, stat string, limit int) ([]float64, error) {
	_, logs, err := c.FetchPlayerGameLogs(ctx, player)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, fmt.Errorf("%w: no games returned for %s", models.ErrInsufficientData, player)
	}
	return history.FromGameLogs(logs, stat, limit)
}

// ParseGameLogs converts the first result set into game logs ordered newest
// first. Columns are located by header name.
func ParseGameLogs(sets []ResultSet, playerID int64) ([]*models.GameLog, error) {
	if len(sets) == 0 {
		return nil, fmt.Errorf("response has no result sets")
	}
	set := sets[0]

	col := make(map[string]int, len(set.Headers))
	for i, h := range set.Headers {
		col[strings.ToUpper(h)] = i
	}
	for _, required := range []string{"GAME_ID", "GAME_DATE", "PTS"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("result set %q lacks column %s", set.Name, required)
		}
	}

	logs := make([]*models.GameLog, 0, len(set.RowSet))
	for i, row := range set.RowSet {
		r := rowReader{row: row, col: col}
		date, err := time.Parse(gameDateLayout, r.str("GAME_DATE"))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		logs = append(logs, &models.GameLog{
			PlayerExternalID: playerID,
			GameExternalID:   r.str("GAME_ID"),
			GameDate:         date,
			Matchup:          r.str("MATCHUP"),
			Minutes:          r.num("MIN"),
			Points:           r.integer("PTS"),
			Rebounds:         r.integer("REB"),
			Assists:          r.integer("AST"),
			Steals:           r.integer("STL"),
			Blocks:           r.integer("BLK"),
			Turnovers:        r.integer("TOV"),
			FGM:              r.integer("FGM"),
			FGA:              r.integer("FGA"),
			FG3M:             r.integer("FG3M"),
			FG3A:             r.integer("FG3A"),
			FTM:              r.integer("FTM"),
			FTA:              r.integer("FTA"),
		})
	}

	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].GameDate.After(logs[j].GameDate)
	})
	return logs, nil
}

// rowReader reads loosely typed rowSet cells by column name. Missing or
// null cells read as zero values.
type rowReader struct {
	row []interface{}
	col map[string]int
}

func (r rowReader) cell(name string) interface{} {
	i, ok := r.col[name]
	if !ok || i >= len(r.row) {
		return nil
	}
	return r.row[i]
}

func (r rowReader) str(name string) string {
	switch v := r.cell(name).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func (r rowReader) num(name string) float64 {
	switch v := r.cell(name).(type) {
	case float64:
		return v
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

func (r rowReader) integer(name string) int {
	return int(r.num(name))
}
