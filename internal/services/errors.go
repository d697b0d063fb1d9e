package services

import (
	"errors"

	"github.com/bobby-s-dev/weather-storefront/internal/store"
)

var (
	// ErrInvalidInput marks requests rejected before touching the store.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyCart is returned when an operation needs cart items and there are none.
	ErrEmptyCart = errors.New("cart is empty")
)

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
