package discount

import (
	"math"

	"github.com/bobby-s-dev/weather-storefront/internal/models"
)

// Offer is a weather discount attached to one product.
type Offer struct {
	Discount        models.DiscountDecision
	DiscountedPrice float64
}

// OfferFor computes the product's weather discount. It returns false when
// the product gets none.
func OfferFor(p models.Product, w *models.WeatherSnapshot) (Offer, bool) {
	if !Eligible(p, w) {
		return Offer{}, false
	}
	base := Evaluate(w)
	bonus := Bonus(p, w)

	total := base.Percentage + bonus
	if total > MaxPercentage {
		total = MaxPercentage
	}
	if total <= 0 {
		return Offer{}, false
	}

	reason := base.Reason
	if bonus > 0 {
		reason += ReasonBonusSuffix
	}
	return Offer{
		Discount:        models.DiscountDecision{Percentage: total, Reason: reason},
		DiscountedPrice: round2(p.Price * (1 - float64(total)/100)),
	}, true
}

// DecorateOne attaches the weather discount to a single product.
func DecorateOne(p models.Product, w *models.WeatherSnapshot) models.DecoratedProduct {
	out := models.DecoratedProduct{Product: p}
	if offer, ok := OfferFor(p, w); ok {
		d := offer.Discount
		price := offer.DiscountedPrice
		out.WeatherDiscount = &d
		out.WeatherDiscountedPrice = &price
	}
	return out
}

// Decorate attaches weather discounts to every product. Decorating the same
// products twice with the same snapshot yields the same result.
func Decorate(products []models.Product, w *models.WeatherSnapshot) []models.DecoratedProduct {
	out := make([]models.DecoratedProduct, 0, len(products))
	for _, p := range products {
		out = append(out, DecorateOne(p, w))
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
