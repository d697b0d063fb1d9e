package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobby-s-dev/weather-storefront/internal/events"
	"github.com/bobby-s-dev/weather-storefront/internal/models"
	"github.com/bobby-s-dev/weather-storefront/internal/store"
)

func TestTracker_ViewThenPurchaseWeights(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.put(t, models.Product{ID: "shirt", Category: "men", Seasonal: models.SeasonSummer})

	require.NoError(t, env.tracker.TrackView(ctx, "u1", "shirt"))
	require.NoError(t, env.tracker.TrackPurchase(ctx, "u1", []PurchaseItem{{ProductID: "shirt", Quantity: 2}}))

	h, err := env.tracker.History(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, 7, h.CategoryPreferences["men"])
	assert.Equal(t, 7, h.SeasonalPreferences[models.SeasonSummer])
	assert.Equal(t, 0, h.CategoryPreferences["women"])
	assert.Equal(t, []string{"shirt"}, h.PurchasedIDs())
	assert.Equal(t, testNow, h.CreatedAt)

	require.Len(t, env.publisher.activities, 2)
	assert.Equal(t, events.ProductViewed, env.publisher.activities[0].Type)
	assert.Equal(t, events.ProductPurchased, env.publisher.activities[1].Type)
	assert.Equal(t, 2, env.publisher.activities[1].Quantity)
}

func TestTracker_ViewOfUnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.tracker.TrackView(ctx, "u1", "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)

	h, err := env.tracker.History(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, h, "no record is created for a failed view")
}

func TestTracker_SearchHistoryBounded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 1; i <= 25; i++ {
		env.clock.Advance(time.Second)
		require.NoError(t, env.tracker.TrackSearch(ctx, "u1", fmt.Sprintf("query %d", i)))
	}

	h, err := env.tracker.History(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, h.SearchQueries, 20)
	for i, q := range h.SearchQueries {
		assert.Equal(t, fmt.Sprintf("query %d", i+6), q.Query)
	}
}

func TestTracker_InvalidInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.ErrorIs(t, env.tracker.TrackView(ctx, "", "p"), ErrInvalidInput)
	assert.ErrorIs(t, env.tracker.TrackSearch(ctx, "u1", "   "), ErrInvalidInput)
	assert.ErrorIs(t, env.tracker.TrackPurchase(ctx, "", nil), ErrInvalidInput)
}

func TestTracker_PurchaseSkipsMissingProducts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.put(t, models.Product{ID: "cap", Category: "accessories", Seasonal: models.SeasonAll})

	err := env.tracker.TrackPurchase(ctx, "u1", []PurchaseItem{{ProductID: "gone", Quantity: 1}, {ProductID: "cap", Quantity: 1}})
	require.NoError(t, err)

	h, err := env.tracker.History(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, h.CategoryPreferences["accessories"])
	assert.Equal(t, []string{"cap"}, h.PurchasedIDs())
}

func TestTracker_PublishFailureIsNotFatal(t *testing.T) {
	env := newTestEnv(t)
	env.publisher.err = errors.New("broker down")
	env.put(t, models.Product{ID: "p", Category: "kids", Seasonal: models.SeasonWinter})

	require.NoError(t, env.tracker.TrackView(context.Background(), "u1", "p"))

	h, err := env.tracker.History(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, h.CategoryPreferences["kids"])
}

func TestTracker_PersistenceFailureIsNotFatal(t *testing.T) {
	env := newTestEnvWithStore(t, failingStore{DocumentStore: store.NewMemoryStore(), collection: store.Histories}, RecommenderConfig{})
	env.put(t, models.Product{ID: "p", Category: "kids"})

	assert.NoError(t, env.tracker.TrackView(context.Background(), "u1", "p"))
	assert.NoError(t, env.tracker.TrackSearch(context.Background(), "u1", "boots"))
	assert.Empty(t, env.publisher.activities, "nothing is published for an unrecorded event")
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.PreferenceFailures.WithLabelValues("view")))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.PreferenceFailures.WithLabelValues("search")))

	// Purchases still report the failure to their caller.
	assert.Error(t, env.tracker.TrackPurchase(context.Background(), "u1", []PurchaseItem{{ProductID: "p", Quantity: 1}}))
}

func TestTracker_PublishIsBounded(t *testing.T) {
	env := newTestEnv(t)
	env.tracker.publisher = blockingPublisher{}
	env.tracker.publishTimeout = 20 * time.Millisecond
	env.put(t, models.Product{ID: "p", Category: "kids"})

	start := time.Now()
	require.NoError(t, env.tracker.TrackView(context.Background(), "u1", "p"))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.ActivityPublished.WithLabelValues("error")))
}
