package services

import (
	"github.com/bobby-s-dev/weather-storefront/internal/discount"
	"github.com/bobby-s-dev/weather-storefront/internal/models"
	"github.com/bobby-s-dev/weather-storefront/internal/observability"
)

// decorate is the one path from stored products to shopper-facing products.
func decorate(m *observability.Metrics, products []models.Product, w *models.WeatherSnapshot) []models.DecoratedProduct {
	out := discount.Decorate(products, w)
	m.ProductsDecorated.Add(float64(len(out)))
	for _, d := range out {
		if d.WeatherDiscount != nil {
			m.DiscountsApplied.Inc()
		}
	}
	return out
}
