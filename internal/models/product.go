package models

import "time"

// Season is a product's seasonal affinity.
type Season string

const (
	SeasonSummer Season = "summer"
	SeasonRainy  Season = "rainy"
	SeasonWinter Season = "winter"
	SeasonAll    Season = "all"
)

// Valid reports whether s is one of the known seasonal values.
func (s Season) Valid() bool {
	switch s {
	case SeasonSummer, SeasonRainy, SeasonWinter, SeasonAll:
		return true
	}
	return false
}

type Product struct {
	ID                      string    `json:"id"`
	Image                   string    `json:"image,omitempty"`
	Title                   string    `json:"title"`
	Description             string    `json:"description"`
	Category                string    `json:"category"`
	Brand                   string    `json:"brand"`
	Price                   float64   `json:"price"`
	SalePrice               float64   `json:"salePrice"`
	TotalStock              int       `json:"totalStock"`
	AverageReview           float64   `json:"averageReview"`
	Seasonal                Season    `json:"seasonal"`
	Tags                    []string  `json:"tags"`
	WeatherDiscountEligible bool      `json:"weatherDiscountEligible"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

// HasTag reports whether any of tags is present on the product.
func (p Product) HasTag(tags ...string) bool {
	for _, have := range p.Tags {
		for _, want := range tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// DecoratedProduct is a product as returned to shoppers, with the weather
// discount attached when one applies.
type DecoratedProduct struct {
	Product
	WeatherDiscount        *DiscountDecision `json:"weatherDiscount,omitempty"`
	WeatherDiscountedPrice *float64          `json:"weatherDiscountedPrice,omitempty"`
}
