package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bobby-s-dev/weather-storefront/internal/api"
	"github.com/bobby-s-dev/weather-storefront/internal/config"
	"github.com/bobby-s-dev/weather-storefront/internal/events"
	"github.com/bobby-s-dev/weather-storefront/internal/models"
	"github.com/bobby-s-dev/weather-storefront/internal/observability"
	"github.com/bobby-s-dev/weather-storefront/internal/scheduler"
	"github.com/bobby-s-dev/weather-storefront/internal/services"
	"github.com/bobby-s-dev/weather-storefront/internal/store"
	"github.com/bobby-s-dev/weather-storefront/pkg/client"
)

func main() {
	// Bootstrap logger until the configured level is known
	logger, _ := zap.NewProduction()
	zap.ReplaceGlobals(logger)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger, err = newLogger(cfg.Server.LogLevel)
	if err != nil {
		zap.L().Fatal("Failed to build logger", zap.Error(err))
	}
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	logger.Info("Starting Weather Storefront Service",
		zap.String("store", cfg.Store.Driver),
		zap.String("weather_provider", cfg.Weather.Provider))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	docs, err := openStore(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.KafkaEnabled() {
		kp, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.ActivityTopic)
		if err != nil {
			logger.Fatal("Failed to create activity publisher", zap.Error(err))
		}
		publisher = kp
		logger.Info("Publishing activity to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.ActivityTopic))
	}

	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Initialize services
	products := store.NewProductRepository(docs)
	catalog := services.NewCatalogService(products, clock, logger, metrics)
	tracker := services.NewPreferenceTracker(
		store.NewCollection[models.UserHistory](docs, store.Histories),
		products, publisher, clock, logger, metrics)
	carts := services.NewCartService(store.NewCollection[models.Cart](docs, store.Carts), products, clock, logger, metrics)
	orders := services.NewOrderService(store.NewCollection[models.Order](docs, store.Orders),
		products, carts, tracker, clock, logger, metrics)
	recommender := services.NewRecommender(products, tracker, services.RecommenderConfig{
		DefaultLimit:          cfg.Recommendation.DefaultLimit,
		SimilarLimit:          cfg.Recommendation.SimilarLimit,
		BackfillExcludeRecent: cfg.Recommendation.BackfillExcludeRecent,
	}, logger, metrics)
	weather := services.NewWeatherService(newProvider(cfg, logger), logger, metrics)

	// Initialize scheduler
	maintenance, err := scheduler.NewScheduler(docs, cfg.Scheduler.MaintenanceSchedule, metrics, logger)
	if err != nil {
		logger.Fatal("Failed to initialize scheduler", zap.Error(err))
	}

	// Create Fiber app
	appCfg := api.AppConfig{
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	app := api.NewApp(appCfg, logger)

	// Setup handlers and routes
	handler := api.NewHandler(api.Services{
		Catalog:     catalog,
		Carts:       carts,
		Orders:      orders,
		Tracker:     tracker,
		Recommender: recommender,
		Weather:     weather,
		Maintenance: maintenance,
	}, cfg.Store.Driver, logger)
	api.SetupRoutes(app, handler, appCfg, logger)

	maintenance.Start()

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Starting server", zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	maintenance.Stop()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	if err := publisher.Close(); err != nil {
		logger.Error("Failed to close activity publisher", zap.Error(err))
	}
	if err := docs.Close(); err != nil {
		logger.Error("Failed to close store", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.DocumentStore, error) {
	switch cfg.Store.Driver {
	case config.StoreBadger:
		return store.NewBadgerStore(cfg.Store.BadgerPath, logger)
	case config.StoreMongo:
		return store.NewMongoStore(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase, logger)
	default:
		return store.NewMemoryStore(), nil
	}
}

func newProvider(cfg *config.Config, logger *zap.Logger) services.WeatherProvider {
	clientCfg := client.ClientConfig{
		Timeout:        cfg.Weather.Timeout,
		Threshold:      cfg.CircuitBreaker.Threshold,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
	}
	if cfg.Weather.Provider == config.ProviderOpenWeather {
		return client.NewOpenWeatherClient(cfg.Weather.OpenWeatherAPIKey, cfg.Weather.OpenWeatherURL, clientCfg, logger)
	}
	return client.NewOpenMeteoClient(cfg.Weather.OpenMeteoURL, clientCfg, logger)
}
