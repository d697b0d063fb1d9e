package models

import "time"

type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart is keyed by user id; each user has at most one.
type Cart struct {
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartLine is a cart item enriched with current product data.
type CartLine struct {
	ProductID              string            `json:"productId"`
	Image                  string            `json:"image,omitempty"`
	Title                  string            `json:"title"`
	Price                  float64           `json:"price"`
	SalePrice              float64           `json:"salePrice"`
	Seasonal               Season            `json:"seasonal"`
	Tags                   []string          `json:"tags"`
	Quantity               int               `json:"quantity"`
	WeatherDiscount        *DiscountDecision `json:"weatherDiscount,omitempty"`
	WeatherDiscountedPrice *float64          `json:"weatherDiscountedPrice,omitempty"`
}

type CartView struct {
	UserID string     `json:"userId"`
	Items  []CartLine `json:"items"`
}
