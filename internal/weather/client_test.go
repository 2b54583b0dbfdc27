package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCurrentWithoutAPIKeyEstimates(t *testing.T) {
	client := NewClient("", nil, zap.NewNop())

	w, err := client.Current(context.Background(), 17.45, 78.35)
	require.NoError(t, err)
	assert.Contains(t, w.Description, "Estimated")
	assert.InDelta(t, 25-17.45*0.5+5, w.Temperature, 0.01)
}

func TestForecastWithoutAPIKeyEstimates(t *testing.T) {
	client := NewClient("", nil, zap.NewNop())

	forecast, err := client.Forecast(context.Background(), 10, 76, 7)
	require.NoError(t, err)
	require.Len(t, forecast, 7)
	assert.Equal(t, time.Now().Format("2006-01-02"), forecast[0].Date)
}

func TestCurrentParsesUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/weather", r.URL.Path)
		require.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Write([]byte(`{
			"main": {"temp": 31.2, "humidity": 48, "pressure": 1008},
			"wind": {"speed": 4.2},
			"rain": {"1h": 1.5},
			"weather": [{"description": "scattered clouds"}]
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", nil, zap.NewNop()).WithBaseURL(srv.URL)

	w, err := client.Current(context.Background(), 17.45, 78.35)
	require.NoError(t, err)
	assert.Equal(t, 31.2, w.Temperature)
	assert.Equal(t, 48.0, w.Humidity)
	assert.Equal(t, 1.5, w.Rainfall)
	assert.Equal(t, "scattered clouds", w.Description)
}

func TestCurrentUpstreamErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient("bad-key", nil, zap.NewNop()).WithBaseURL(srv.URL)

	_, err := client.Current(context.Background(), 17.45, 78.35)
	assert.Error(t, err)
}

func TestForecastAggregatesHourlyFeed(t *testing.T) {
	now := time.Now()
	day1 := time.Date(now.Year(), now.Month(), now.Day()+1, 6, 0, 0, 0, time.Local)
	day2 := day1.Add(24 * time.Hour)
	dt := func(ts time.Time) string { return strconv.FormatInt(ts.Unix(), 10) }

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/forecast", r.URL.Path)
		body := `{"list": [
			{"dt": ` + dt(day1) + `, "main": {"temp": 20, "humidity": 50}, "rain": {"3h": 0}, "weather": [{"description": "clear sky"}]},
			{"dt": ` + dt(day1.Add(3*time.Hour)) + `, "main": {"temp": 30, "humidity": 40}, "rain": {"3h": 2}, "weather": [{"description": "clear sky"}]},
			{"dt": ` + dt(day2) + `, "main": {"temp": 25, "humidity": 60}, "rain": {"3h": 0}, "weather": [{"description": "light rain"}]}
		]}`
		w.Write([]byte(body))
	}))
	defer srv.Close()

	client := NewClient("test-key", nil, zap.NewNop()).WithBaseURL(srv.URL)

	forecast, err := client.Forecast(context.Background(), 17.45, 78.35, 7)
	require.NoError(t, err)
	require.Len(t, forecast, 2)

	first := forecast[0]
	assert.Equal(t, 20.0, first.TempMin)
	assert.Equal(t, 30.0, first.TempMax)
	assert.Equal(t, 45.0, first.Humidity)
	assert.Equal(t, 2.0, first.RainfallAmount)
	assert.Equal(t, 50.0, first.RainfallProb)
	assert.Equal(t, "clear sky", first.Description)

	assert.Equal(t, 20.0, forecast[1].RainfallProb)
	assert.Equal(t, "light rain", forecast[1].Description)
}

func TestCurrentCacheHitSkipsUpstream(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"main": {"temp": 22, "humidity": 55, "pressure": 1010}, "wind": {"speed": 2}, "weather": [{"description": "clear"}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", newMapCache(), zap.NewNop()).WithBaseURL(srv.URL)

	first, err := client.Current(context.Background(), 1, 2)
	require.NoError(t, err)
	second, err := client.Current(context.Background(), 1, 2)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first.Temperature, second.Temperature)
}

// mapCache is an in-process Cache for tests.
type mapCache struct {
	entries map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

func (c *mapCache) Get(ctx context.Context, key string, dest any) bool {
	raw, ok := c.entries[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (c *mapCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if raw, err := json.Marshal(value); err == nil {
		c.entries[key] = raw
	}
}
