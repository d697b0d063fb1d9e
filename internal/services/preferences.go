package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-storefront/internal/events"
	"github.com/bobby-s-dev/weather-storefront/internal/models"
	"github.com/bobby-s-dev/weather-storefront/internal/observability"
	"github.com/bobby-s-dev/weather-storefront/internal/store"
)

// DefaultPublishTimeout bounds how long an activity publish may hold up the
// request that produced it.
const DefaultPublishTimeout = 2 * time.Second

// PurchaseItem is one settled order line fed into preference tracking.
type PurchaseItem struct {
	ProductID string
	Quantity  int
}

// PreferenceTracker accumulates per-user behaviour. Records are created on
// first use.
type PreferenceTracker struct {
	histories *store.Collection[models.UserHistory]
	products  *store.ProductRepository
	publisher events.Publisher
	clock     clockwork.Clock
	logger    *zap.Logger
	metrics   *observability.Metrics

	publishTimeout time.Duration
}

func NewPreferenceTracker(
	histories *store.Collection[models.UserHistory],
	products *store.ProductRepository,
	publisher events.Publisher,
	clock clockwork.Clock,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *PreferenceTracker {
	return &PreferenceTracker{
		histories: histories,
		products:  products,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,

		publishTimeout: DefaultPublishTimeout,
	}
}

// History returns the user's record, or nil when none exists yet.
func (t *PreferenceTracker) History(ctx context.Context, userID string) (*models.UserHistory, error) {
	h, err := t.histories.Get(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return h, nil
}

// TrackView records a product view. Unknown products yield store.ErrNotFound.
// A failure to persist the view is logged and not returned.
func (t *PreferenceTracker) TrackView(ctx context.Context, userID, productID string) error {
	if userID == "" || productID == "" {
		return fmt.Errorf("%w: userId and productId are required", ErrInvalidInput)
	}
	p, err := t.products.Get(ctx, productID)
	if err != nil {
		return fmt.Errorf("track view: %w", err)
	}

	now := t.clock.Now()
	err = t.update(ctx, userID, func(h *models.UserHistory) {
		h.RecordView(*p, now)
	})
	if err != nil {
		t.persistFailed("view", userID, err)
		return nil
	}
	t.metrics.PreferenceEvents.WithLabelValues("view").Inc()

	t.publish(ctx, events.Activity{
		Type:       events.ProductViewed,
		UserID:     userID,
		ProductID:  p.ID,
		Category:   p.Category,
		Seasonal:   string(p.Seasonal),
		OccurredAt: now,
	})
	return nil
}

// TrackSearch appends a query to the user's bounded search history. Like
// views, persistence failures are logged and not returned.
func (t *PreferenceTracker) TrackSearch(ctx context.Context, userID, query string) error {
	query = strings.TrimSpace(query)
	if userID == "" || query == "" {
		return fmt.Errorf("%w: userId and query are required", ErrInvalidInput)
	}

	now := t.clock.Now()
	err := t.update(ctx, userID, func(h *models.UserHistory) {
		h.RecordSearch(query, now)
	})
	if err != nil {
		t.persistFailed("search", userID, err)
		return nil
	}
	t.metrics.PreferenceEvents.WithLabelValues("search").Inc()

	t.publish(ctx, events.Activity{
		Type:       events.SearchPerformed,
		UserID:     userID,
		Query:      query,
		OccurredAt: now,
	})
	return nil
}

// TrackPurchase credits every purchased item. Items whose product no longer
// exists are skipped.
func (t *PreferenceTracker) TrackPurchase(ctx context.Context, userID string, items []PurchaseItem) error {
	if userID == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}

	type line struct {
		product models.Product
		qty     int
	}
	lines := make([]line, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		p, err := t.products.Get(ctx, item.ProductID)
		if err != nil {
			if isNotFound(err) {
				t.logger.Debug("Skipping purchase of missing product", zap.String("product_id", item.ProductID))
				continue
			}
			return fmt.Errorf("track purchase: %w", err)
		}
		lines = append(lines, line{product: *p, qty: item.Quantity})
	}
	if len(lines) == 0 {
		return nil
	}

	now := t.clock.Now()
	err := t.update(ctx, userID, func(h *models.UserHistory) {
		for _, l := range lines {
			h.RecordPurchase(l.product, l.qty, now)
		}
	})
	if err != nil {
		t.metrics.PreferenceFailures.WithLabelValues("purchase").Inc()
		return fmt.Errorf("track purchase: %w", err)
	}
	t.metrics.PreferenceEvents.WithLabelValues("purchase").Add(float64(len(lines)))

	activities := make([]events.Activity, 0, len(lines))
	for _, l := range lines {
		activities = append(activities, events.Activity{
			Type:       events.ProductPurchased,
			UserID:     userID,
			ProductID:  l.product.ID,
			Category:   l.product.Category,
			Seasonal:   string(l.product.Seasonal),
			Quantity:   l.qty,
			OccurredAt: now,
		})
	}
	t.publish(ctx, activities...)
	return nil
}

func (t *PreferenceTracker) update(ctx context.Context, userID string, fn func(h *models.UserHistory)) error {
	_, err := t.histories.Update(ctx, userID, func(h *models.UserHistory, exists bool) error {
		if !exists {
			*h = *models.NewUserHistory(userID, t.clock.Now())
		}
		fn(h)
		return nil
	})
	return err
}

func (t *PreferenceTracker) persistFailed(event, userID string, err error) {
	t.metrics.PreferenceFailures.WithLabelValues(event).Inc()
	t.logger.Warn("Failed to record preference event",
		zap.String("event", event),
		zap.String("user_id", userID),
		zap.Error(err))
}

// publish is best-effort and bounded by publishTimeout; the history write
// has already succeeded.
func (t *PreferenceTracker) publish(ctx context.Context, activities ...events.Activity) {
	ctx, cancel := context.WithTimeout(ctx, t.publishTimeout)
	defer cancel()

	if err := t.publisher.Publish(ctx, activities...); err != nil {
		t.metrics.ActivityPublished.WithLabelValues("error").Inc()
		t.logger.Warn("Failed to publish activity",
			zap.String("user_id", activities[0].UserID),
			zap.String("type", string(activities[0].Type)),
			zap.Error(err))
		return
	}
	t.metrics.ActivityPublished.WithLabelValues("success").Add(float64(len(activities)))
}
