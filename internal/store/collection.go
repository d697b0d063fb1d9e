package store

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

// Collection gives typed access to one collection of a DocumentStore.
type Collection[T any] struct {
	store DocumentStore
	name  string
}

func NewCollection[T any](s DocumentStore, name string) *Collection[T] {
	return &Collection[T]{store: s, name: name}
}

func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	raw, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", c.name, id, err)
	}
	return &v, nil
}

func (c *Collection[T]) Put(ctx context.Context, id string, v *T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", c.name, id, err)
	}
	return c.store.Put(ctx, c.name, id, raw)
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.store.Delete(ctx, c.name, id)
}

// List returns every document for which match returns true, in id order.
// A nil match returns all documents.
func (c *Collection[T]) List(ctx context.Context, match func(*T) bool) ([]T, error) {
	out := []T{}
	err := c.store.Scan(ctx, c.name, func(id string, raw []byte) error {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("decode %s/%s: %w", c.name, id, err)
		}
		if match == nil || match(&v) {
			out = append(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies fn to the stored document, or to a zero value when absent
// (exists is false), and writes the result back.
func (c *Collection[T]) Update(ctx context.Context, id string, fn func(v *T, exists bool) error) (*T, error) {
	var result T
	err := c.store.Update(ctx, c.name, id, func(current []byte) ([]byte, error) {
		var v T
		exists := current != nil
		if exists {
			if err := json.Unmarshal(current, &v); err != nil {
				return nil, fmt.Errorf("decode %s/%s: %w", c.name, id, err)
			}
		}
		if err := fn(&v, exists); err != nil {
			return nil, err
		}
		result = v
		return json.Marshal(&v)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
