package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bobby-s-dev/weather-storefront/internal/events"
	"github.com/bobby-s-dev/weather-storefront/internal/models"
	"github.com/bobby-s-dev/weather-storefront/internal/observability"
	"github.com/bobby-s-dev/weather-storefront/internal/store"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu         sync.Mutex
	activities []events.Activity
	err        error
}

func (p *recordingPublisher) Publish(_ context.Context, activities ...events.Activity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.activities = append(p.activities, activities...)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// blockingPublisher never completes a publish on its own.
type blockingPublisher struct{}

func (blockingPublisher) Publish(ctx context.Context, _ ...events.Activity) error {
	<-ctx.Done()
	return ctx.Err()
}

func (blockingPublisher) Close() error { return nil }

// failingStore fails every Update to one collection, or to a single
// document of it when id is set.
type failingStore struct {
	store.DocumentStore
	collection string
	id         string
}

func (f failingStore) Update(ctx context.Context, collection, id string, fn store.UpdateFunc) error {
	if collection == f.collection && (f.id == "" || f.id == id) {
		return errors.New("disk full")
	}
	return f.DocumentStore.Update(ctx, collection, id, fn)
}

type fakeClock interface {
	clockwork.Clock
	Advance(d time.Duration)
}

type testEnv struct {
	store       store.DocumentStore
	products    *store.ProductRepository
	histories   *store.Collection[models.UserHistory]
	clock       fakeClock
	publisher   *recordingPublisher
	metrics     *observability.Metrics
	catalog     *CatalogService
	tracker     *PreferenceTracker
	recommender *Recommender
	carts       *CartService
	orders      *OrderService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithStore(t, store.NewMemoryStore(), RecommenderConfig{})
}

func newTestEnvWithStore(t *testing.T, s store.DocumentStore, rc RecommenderConfig) *testEnv {
	t.Helper()
	logger := zaptest.NewLogger(t)
	env := &testEnv{
		store:     s,
		products:  store.NewProductRepository(s),
		histories: store.NewCollection[models.UserHistory](s, store.Histories),
		clock:     clockwork.NewFakeClockAt(testNow),
		publisher: &recordingPublisher{},
		metrics:   observability.NewMetricsForTesting(),
	}
	env.catalog = NewCatalogService(env.products, env.clock, logger, env.metrics)
	env.tracker = NewPreferenceTracker(env.histories, env.products, env.publisher, env.clock, logger, env.metrics)
	env.recommender = NewRecommender(env.products, env.tracker, rc, logger, env.metrics)
	env.carts = NewCartService(store.NewCollection[models.Cart](s, store.Carts), env.products, env.clock, logger, env.metrics)
	env.orders = NewOrderService(store.NewCollection[models.Order](s, store.Orders), env.products, env.carts, env.tracker, env.clock, logger, env.metrics)
	return env
}

// put stores a product as-is, bypassing admin normalisation.
func (e *testEnv) put(t *testing.T, p models.Product) models.Product {
	t.Helper()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = testNow
	}
	require.NoError(t, e.products.Save(context.Background(), &p))
	return p
}

func idsOf(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func decoratedIDs(products []models.DecoratedProduct) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func weather(temp float64, c models.Condition) *models.WeatherSnapshot {
	return &models.WeatherSnapshot{Temperature: temp, Condition: c, Location: "Pune", Description: string(c)}
}
