package advisor

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agrovision/backend/internal/models"
	"github.com/agrovision/backend/internal/storage"
	"github.com/agrovision/backend/internal/weather"
)

const forecastDays = 7

// FarmReader is the slice of the farm store the builder needs.
type FarmReader interface {
	GetFarm(ctx context.Context, id string) (*models.Farm, error)
}

// AnalysisReader is the slice of the analysis store the builder needs.
type AnalysisReader interface {
	LatestAnalysis(ctx context.Context, farmID string) (*models.SatelliteAnalysis, error)
	Trend(ctx context.Context, farmID string, limit int) ([]models.TrendPoint, error)
}

// ContextBuilder assembles the per-turn context bundle from the farm
// store, the satellite-analysis store and the weather service. Each fetch
// is independently fault-tolerant: a failing source degrades its own
// section to nil and the build proceeds. Build never returns an error.
type ContextBuilder struct {
	farms        FarmReader
	analyses     AnalysisReader
	weather      weather.Service
	fetchTimeout time.Duration
	buildTimeout time.Duration
	trendDepth   int
	logger       *zap.Logger
}

func NewContextBuilder(farms FarmReader, analyses AnalysisReader, ws weather.Service, fetchTimeout, buildTimeout time.Duration, logger *zap.Logger) *ContextBuilder {
	if fetchTimeout <= 0 {
		fetchTimeout = 3 * time.Second
	}
	if buildTimeout <= 0 {
		buildTimeout = 5 * time.Second
	}
	return &ContextBuilder{
		farms:        farms,
		analyses:     analyses,
		weather:      ws,
		fetchTimeout: fetchTimeout,
		buildTimeout: buildTimeout,
		trendDepth:   10,
		logger:       logger,
	}
}

// Build fans out the context fetches concurrently. Weather needs the farm
// coordinates, so the farm lookup happens first; the remaining sources
// are fetched in parallel under the aggregate timeout. For the weather
// intent the 7-day forecast is fetched eagerly alongside the current
// conditions.
func (b *ContextBuilder) Build(ctx context.Context, farmID string, intent models.Intent) *models.ChatContext {
	bundle := &models.ChatContext{FarmID: farmID}
	if farmID == "" {
		return bundle
	}

	ctx, cancel := context.WithTimeout(ctx, b.buildTimeout)
	defer cancel()

	farm, err := b.fetchFarm(ctx, farmID)
	if err != nil {
		b.logger.Warn("Farm lookup failed, proceeding with raw farm_id",
			zap.Error(err),
			zap.String("farm_id", farmID))
	} else {
		bundle.Farm = farm
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fctx, fcancel := context.WithTimeout(gctx, b.fetchTimeout)
		defer fcancel()
		analysis, err := b.analyses.LatestAnalysis(fctx, farmID)
		if err != nil {
			if err != storage.ErrNotFound {
				b.logger.Warn("Satellite analysis fetch failed", zap.Error(err), zap.String("farm_id", farmID))
			}
			return nil
		}
		bundle.Analysis = analysis
		return nil
	})

	g.Go(func() error {
		fctx, fcancel := context.WithTimeout(gctx, b.fetchTimeout)
		defer fcancel()
		trend, err := b.analyses.Trend(fctx, farmID, b.trendDepth)
		if err != nil {
			b.logger.Warn("Trend fetch failed", zap.Error(err), zap.String("farm_id", farmID))
			return nil
		}
		bundle.Trend = trend
		return nil
	})

	if bundle.Farm != nil {
		lat, lon := bundle.Farm.Latitude, bundle.Farm.Longitude

		g.Go(func() error {
			fctx, fcancel := context.WithTimeout(gctx, b.fetchTimeout)
			defer fcancel()
			current, err := b.weather.Current(fctx, lat, lon)
			if err != nil {
				b.logger.Warn("Weather fetch failed", zap.Error(err), zap.String("farm_id", farmID))
				return nil
			}
			bundle.Weather = current
			return nil
		})

		if intent == models.IntentWeather {
			g.Go(func() error {
				fctx, fcancel := context.WithTimeout(gctx, b.fetchTimeout)
				defer fcancel()
				forecast, err := b.weather.Forecast(fctx, lat, lon, forecastDays)
				if err != nil {
					b.logger.Warn("Forecast fetch failed", zap.Error(err), zap.String("farm_id", farmID))
					return nil
				}
				bundle.Forecast = forecast
				return nil
			})
		}
	}

	// Workers swallow their own errors, so this only reflects the timeout
	_ = g.Wait()

	return bundle
}

func (b *ContextBuilder) fetchFarm(ctx context.Context, farmID string) (*models.Farm, error) {
	fctx, cancel := context.WithTimeout(ctx, b.fetchTimeout)
	defer cancel()
	return b.farms.GetFarm(fctx, farmID)
}
