package api

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bobby-s-dev/weather-storefront/internal/events"
	"github.com/bobby-s-dev/weather-storefront/internal/models"
	"github.com/bobby-s-dev/weather-storefront/internal/observability"
	"github.com/bobby-s-dev/weather-storefront/internal/services"
	"github.com/bobby-s-dev/weather-storefront/internal/store"
)

type stubProvider struct {
	snapshot *models.WeatherSnapshot
	err      error
	calls    int
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) CurrentWeather(context.Context, float64, float64) (*models.WeatherSnapshot, error) {
	p.calls++
	return p.snapshot, p.err
}

type testServer struct {
	app      *fiber.App
	products *store.ProductRepository
	provider *stubProvider
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)
	metrics := observability.NewMetricsForTesting()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s := store.NewMemoryStore()
	t.Cleanup(func() { _ = s.Close() })

	products := store.NewProductRepository(s)
	provider := &stubProvider{snapshot: &models.WeatherSnapshot{
		Temperature: 18,
		Condition:   models.ConditionRain,
		Location:    "Pune",
		Description: "light rain",
		Icon:        "10d",
	}}

	catalog := services.NewCatalogService(products, clock, logger, metrics)
	tracker := services.NewPreferenceTracker(store.NewCollection[models.UserHistory](s, store.Histories),
		products, events.NopPublisher{}, clock, logger, metrics)
	carts := services.NewCartService(store.NewCollection[models.Cart](s, store.Carts), products, clock, logger, metrics)
	orders := services.NewOrderService(store.NewCollection[models.Order](s, store.Orders),
		products, carts, tracker, clock, logger, metrics)

	handler := NewHandler(Services{
		Catalog:     catalog,
		Carts:       carts,
		Orders:      orders,
		Tracker:     tracker,
		Recommender: services.NewRecommender(products, tracker, services.RecommenderConfig{}, logger, metrics),
		Weather:     services.NewWeatherService(provider, logger, metrics),
	}, "memory", logger)

	app := NewApp(AppConfig{}, logger)
	SetupRoutes(app, handler, AppConfig{}, logger)

	return &testServer{app: app, products: products, provider: provider}
}

func (s *testServer) put(t *testing.T, p models.Product) {
	t.Helper()
	require.NoError(t, s.products.Save(context.Background(), &p))
}

// do sends a request and decodes the JSON response body.
func (s *testServer) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func dataList(t *testing.T, body map[string]any) []map[string]any {
	t.Helper()
	items, ok := body["data"].([]any)
	require.True(t, ok, "data is not a list: %v", body["data"])
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, it.(map[string]any))
	}
	return out
}

func dataMap(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	m, ok := body["data"].(map[string]any)
	require.True(t, ok, "data is not an object: %v", body["data"])
	return m
}
