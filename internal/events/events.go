// Package events publishes shopper activity for downstream consumers.
package events

import (
	"context"
	"time"
)

type Type string

const (
	ProductViewed    Type = "product_viewed"
	SearchPerformed  Type = "search_performed"
	ProductPurchased Type = "product_purchased"
)

// Activity is one behavioural event, emitted after it has been recorded in
// the user's history.
type Activity struct {
	Type       Type      `json:"type"`
	UserID     string    `json:"userId"`
	ProductID  string    `json:"productId,omitempty"`
	Category   string    `json:"category,omitempty"`
	Seasonal   string    `json:"seasonal,omitempty"`
	Query      string    `json:"query,omitempty"`
	Quantity   int       `json:"quantity,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, activities ...Activity) error
	Close() error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ...Activity) error { return nil }
func (NopPublisher) Close() error                               { return nil }
