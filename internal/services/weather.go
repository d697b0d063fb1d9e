package services

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-storefront/internal/models"
	"github.com/bobby-s-dev/weather-storefront/internal/observability"
)

// WeatherProvider fetches current conditions from an external service.
type WeatherProvider interface {
	Name() string
	CurrentWeather(ctx context.Context, lat, lon float64) (*models.WeatherSnapshot, error)
}

// WeatherService looks up weather on every call. It never returns an error:
// any failure yields a nil snapshot and callers carry on without weather.
type WeatherService struct {
	provider WeatherProvider
	logger   *zap.Logger
	metrics  *observability.Metrics
}

func NewWeatherService(provider WeatherProvider, logger *zap.Logger, metrics *observability.Metrics) *WeatherService {
	return &WeatherService{
		provider: provider,
		logger:   logger,
		metrics:  metrics,
	}
}

func (s *WeatherService) Provider() WeatherProvider {
	return s.provider
}

// Lookup returns the weather at (lat, lon), or nil when coordinates are not
// finite or the provider fails.
func (s *WeatherService) Lookup(ctx context.Context, lat, lon float64) *models.WeatherSnapshot {
	name := s.provider.Name()
	if !finite(lat) || !finite(lon) {
		s.metrics.WeatherLookups.WithLabelValues(name, "invalid").Inc()
		return nil
	}

	start := time.Now()
	snapshot, err := s.provider.CurrentWeather(ctx, lat, lon)
	s.metrics.WeatherLookupDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		s.metrics.WeatherLookups.WithLabelValues(name, "error").Inc()
		s.logger.Warn("Weather lookup failed",
			zap.String("provider", name),
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(err))
		return nil
	}

	s.metrics.WeatherLookups.WithLabelValues(name, "success").Inc()
	return snapshot
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
