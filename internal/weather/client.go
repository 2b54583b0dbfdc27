package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/agrovision/backend/internal/models"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Service provides weather context for a farm location. Implementations
// return an error when conditions genuinely cannot be determined; the
// context builder degrades that section on error.
type Service interface {
	Current(ctx context.Context, lat, lon float64) (*models.Weather, error)
	Forecast(ctx context.Context, lat, lon float64, days int) ([]models.ForecastDay, error)
}

// Client fetches conditions from OpenWeatherMap. Responses are cached for
// an hour. Without an API key it serves latitude-based estimates so chat
// turns still get a weather section in development setups.
type Client struct {
	apiKey   string
	baseURL  string
	http     *http.Client
	cache    Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewClient(apiKey string, cache Cache, logger *zap.Logger) *Client {
	if cache == nil {
		cache = NoopCache{}
	}
	return &Client{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		http:     &http.Client{Timeout: 10 * time.Second},
		cache:    cache,
		cacheTTL: time.Hour,
		logger:   logger,
	}
}

// WithBaseURL overrides the upstream endpoint, used in tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

type currentResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
		Pressure float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

func (c *Client) Current(ctx context.Context, lat, lon float64) (*models.Weather, error) {
	cacheKey := fmt.Sprintf("weather:current:%.4f:%.4f", lat, lon)
	var cached models.Weather
	if c.cache.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	if c.apiKey == "" {
		w := c.estimateCurrent(lat)
		return w, nil
	}

	var payload currentResponse
	if err := c.get(ctx, "/weather", lat, lon, nil, &payload); err != nil {
		c.logger.Error("Failed to fetch current weather", zap.Error(err))
		return nil, err
	}

	description := ""
	if len(payload.Weather) > 0 {
		description = payload.Weather[0].Description
	}

	w := &models.Weather{
		Timestamp:   time.Now(),
		Temperature: payload.Main.Temp,
		Humidity:    payload.Main.Humidity,
		Rainfall:    payload.Rain.OneHour,
		WindSpeed:   payload.Wind.Speed,
		Pressure:    payload.Main.Pressure,
		Description: description,
	}
	c.cache.Set(ctx, cacheKey, w, c.cacheTTL)
	return w, nil
}

type hourlyResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Rain struct {
			ThreeHour float64 `json:"3h"`
		} `json:"rain"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"list"`
}

// Forecast aggregates the 5-day/3-hour feed into daily summaries. The
// daily endpoint is not available on the free tier, so the hourly feed is
// the primary source here rather than a fallback.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, days int) ([]models.ForecastDay, error) {
	if days <= 0 || days > 7 {
		days = 7
	}

	cacheKey := fmt.Sprintf("weather:forecast:%.4f:%.4f:%d", lat, lon, days)
	var cached []models.ForecastDay
	if c.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	if c.apiKey == "" {
		return c.estimateForecast(lat, days), nil
	}

	// 8 three-hour slots per day
	var payload hourlyResponse
	extra := url.Values{"cnt": []string{fmt.Sprintf("%d", days*8)}}
	if err := c.get(ctx, "/forecast", lat, lon, extra, &payload); err != nil {
		c.logger.Error("Failed to fetch forecast", zap.Error(err))
		return nil, err
	}

	type bucket struct {
		temps       []float64
		humidity    []float64
		rain        float64
		description map[string]int
	}
	daily := make(map[string]*bucket)
	for _, item := range payload.List {
		date := time.Unix(item.Dt, 0).Format("2006-01-02")
		b, ok := daily[date]
		if !ok {
			b = &bucket{description: make(map[string]int)}
			daily[date] = b
		}
		b.temps = append(b.temps, item.Main.Temp)
		b.humidity = append(b.humidity, item.Main.Humidity)
		b.rain += item.Rain.ThreeHour
		if len(item.Weather) > 0 {
			b.description[item.Weather[0].Description]++
		}
	}

	dates := make([]string, 0, len(daily))
	for date := range daily {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	if len(dates) > days {
		dates = dates[:days]
	}

	forecast := make([]models.ForecastDay, 0, len(dates))
	for _, date := range dates {
		b := daily[date]
		rainProb := 20.0
		if b.rain > 0 {
			rainProb = 50.0
		}
		forecast = append(forecast, models.ForecastDay{
			Date:           date,
			TempMin:        minOf(b.temps),
			TempMax:        maxOf(b.temps),
			Humidity:       avgOf(b.humidity),
			RainfallProb:   rainProb,
			RainfallAmount: b.rain,
			Description:    mostFrequent(b.description),
		})
	}

	c.cache.Set(ctx, cacheKey, forecast, c.cacheTTL)
	return forecast, nil
}

func (c *Client) get(ctx context.Context, path string, lat, lon float64, extra url.Values, dest any) error {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lon))
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	for k, vs := range extra {
		for _, v := range vs {
			params.Add(k, v)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("error building weather request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error calling weather API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("error decoding weather response: %w", err)
	}
	return nil
}

// estimateCurrent produces a rough location-based estimate: cooler at
// higher latitudes. Used only when no API key is configured.
func (c *Client) estimateCurrent(lat float64) *models.Weather {
	baseTemp := 25 - math.Abs(lat)*0.5
	return &models.Weather{
		Timestamp:   time.Now(),
		Temperature: baseTemp + 5,
		Humidity:    60,
		Rainfall:    0,
		WindSpeed:   3.5,
		Pressure:    1013,
		Description: "Estimated conditions (API unavailable)",
	}
}

func (c *Client) estimateForecast(lat float64, days int) []models.ForecastDay {
	baseTemp := 25 - math.Abs(lat)*0.5
	forecast := make([]models.ForecastDay, 0, days)
	for i := 0; i < days; i++ {
		forecast = append(forecast, models.ForecastDay{
			Date:           time.Now().AddDate(0, 0, i).Format("2006-01-02"),
			TempMin:        baseTemp - 3,
			TempMax:        baseTemp + 5,
			Humidity:       60,
			RainfallProb:   30,
			RainfallAmount: 0,
			Description:    "Estimated forecast (API unavailable)",
		})
	}
	return forecast
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func avgOf(vals []float64) float64 {
	total := 0.0
	for _, v := range vals {
		total += v
	}
	return total / float64(len(vals))
}

func mostFrequent(counts map[string]int) string {
	best, bestCount := "", 0
	for desc, count := range counts {
		if count > bestCount {
			best, bestCount = desc, count
		}
	}
	return best
}
