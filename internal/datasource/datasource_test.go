package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustam-sa/nba-01/internal/models"
)

const gameLogFixture = `{
  "resource": "playergamelog",
  "resultSets": [{
    "name": "PlayerGameLog",
    "headers": ["SEASON_ID","Player_ID","Game_ID","GAME_DATE","MATCHUP","WL","MIN","FGM","FGA","FG3M","FG3A","FTM","FTA","REB","AST","STL","BLK","TOV","PTS"],
    "rowSet": [
      ["22023", 1628973, "0022300002", "JAN 03, 2024", "NYK @ BOS", "L", 38, 11, 22, 3, 8, 5, 6, 4, 7, 1, 0, 3, 30],
      ["22023", 1628973, "0022300003", "JAN 05, 2024", "NYK vs. MIA", "W", 35, 9, 19, 2, 6, 4, 4, 3, 9, 2, 1, 2, 24],
      ["22023", 1628973, "0022300001", "JAN 01, 2024", "NYK vs. CHI", "W", 40, 8, 18, 1, 5, 3, 3, 5, 6, 0, 0, 4, 20]
    ]
  }]
}`

func testHTTPClient() *RateLimitedHTTPClient {
	return NewRateLimitedHTTPClient(HTTPClientConfig{
		Timeout:           2 * time.Second,
		MaxRetries:        1,
		RetryWaitMin:      time.Millisecond,
		RetryWaitMax:      2 * time.Millisecond,
		RateLimit:         1000,
		CircuitBreakerMax: 2,
	}, nil)
}

func newTestStatsClient(t *testing.T, handler http.HandlerFunc) *StatsClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewStatsClient(testHTTPClient(), StatsClientConfig{BaseURL: srv.URL, Season: "2023-24"},
		StaticPlayerIDs{"jalen brunson": "1628973"}, nil)
}

func TestFetchGameLogsParsesResultSets(t *testing.T) {
	client := newTestStatsClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/playergamelog", r.URL.Path)
		assert.Equal(t, "1628973", r.URL.Query().Get("PlayerID"))
		assert.Equal(t, "2023-24", r.URL.Query().Get("Season"))
		assert.Equal(t, "Regular Season", r.URL.Query().Get("SeasonType"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(gameLogFixture))
	})

	logs, err := client.FetchGameLogs(context.Background(), 1628973)
	require.NoError(t, err)
	require.Len(t, logs, 3)

	// newest first regardless of row order
	assert.Equal(t, "0022300003", logs[0].GameExternalID)
	assert.Equal(t, "0022300002", logs[1].GameExternalID)
	assert.Equal(t, "0022300001", logs[2].GameExternalID)

	assert.Equal(t, 24, logs[0].Points)
	assert.Equal(t, 9, logs[0].Assists)
	assert.Equal(t, 2, logs[0].FG3M)
	assert.Equal(t, 35.0, logs[0].Minutes)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), logs[0].GameDate)
	assert.Equal(t, int64(1628973), logs[0].PlayerExternalID)
}

func TestStatsClientSamples(t *testing.T) {
	client := newTestStatsClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(gameLogFixture))
	})

	samples, err := client.Samples(context.Background(), "Jalen Brunson", models.StatPoints, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{24, 30}, samples)

	_, err = client.Samples(context.Background(), "Unknown Player", models.StatPoints, 2)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFetchGameLogsStatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode string
	}{
		{"unauthorized", http.StatusUnauthorized, ErrCodeAuthenticationFailed},
		{"not found", http.StatusNotFound, ErrCodeNotFound},
		{"bad request", http.StatusBadRequest, ErrCodeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestStatsClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := client.FetchGameLogs(context.Background(), 1)
			var dsErr DataSourceError
			require.True(t, errors.As(err, &dsErr), "got %v", err)
			assert.Equal(t, tt.wantCode, dsErr.Code)
		})
	}
}

func TestFetchGameLogsInvalidPayload(t *testing.T) {
	client := newTestStatsClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"resultSets":[{"name":"PlayerGameLog","headers":["Game_ID"],"rowSet":[]}]}`))
	})

	_, err := client.FetchGameLogs(context.Background(), 1)
	var dsErr DataSourceError
	require.True(t, errors.As(err, &dsErr))
	assert.Equal(t, ErrCodeInvalidData, dsErr.Code)
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := testHTTPClient()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := client.Get(ctx, srv.URL)
		require.Error(t, err)
	}
	before := calls.Load()

	_, err := client.Get(ctx, srv.URL)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, before, calls.Load(), "open breaker must not reach the server")

	client.Reset()
	_, err = client.Get(ctx, srv.URL)
	assert.NotErrorIs(t, err, ErrCircuitOpen)
}

func TestStaticPlayerIDs(t *testing.T) {
	ids := StaticPlayerIDs{"jalen brunson": "1628973", "broken": "abc"}

	id, err := ids.ExternalID(context.Background(), "Jalen Brunson")
	require.NoError(t, err)
	assert.Equal(t, int64(1628973), id)

	_, err = ids.ExternalID(context.Background(), "broken")
	assert.Error(t, err)

	_, err = ids.ExternalID(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

type failingResolver struct{ err error }

func (f failingResolver) ExternalID(context.Context, string) (int64, error) { return 0, f.err }

func TestResolverChain(t *testing.T) {
	ctx := context.Background()
	chain := ResolverChain{
		StaticPlayerIDs{"jalen brunson": "1628973"},
		StaticPlayerIDs{"josh hart": "1628404"},
	}

	id, err := chain.ExternalID(ctx, "Josh Hart")
	require.NoError(t, err)
	assert.Equal(t, int64(1628404), id)

	_, err = chain.ExternalID(ctx, "Mikal Bridges")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = ResolverChain{}.ExternalID(ctx, "Mikal Bridges")
	assert.ErrorIs(t, err, models.ErrNotFound)

	boom := errors.New("db down")
	_, err = ResolverChain{failingResolver{err: boom}, StaticPlayerIDs{"josh hart": "1"}}.ExternalID(ctx, "Josh Hart")
	assert.ErrorIs(t, err, boom)
}
