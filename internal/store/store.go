// Package store persists storefront documents. Backends hold opaque JSON
// documents per collection; typed access and product queries live on top.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock is returned when a stock decrement would go below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Collection names.
const (
	Products  = "products"
	Histories = "user_histories"
	Carts     = "carts"
	Orders    = "orders"
)

// UpdateFunc receives the current document, or nil when absent, and returns
// the document to store.
type UpdateFunc func(current []byte) ([]byte, error)

// DocumentStore is implemented by the memory, badger and mongo backends.
// Scan visits documents in ascending id order.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) ([]byte, error)
	Put(ctx context.Context, collection, id string, doc []byte) error
	Delete(ctx context.Context, collection, id string) error
	Scan(ctx context.Context, collection string, fn func(id string, doc []byte) error) error
	Update(ctx context.Context, collection, id string, fn UpdateFunc) error
	// Maintain runs backend housekeeping. It is invoked by the scheduler.
	Maintain(ctx context.Context) error
	Close() error
}
