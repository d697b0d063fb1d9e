// Package discount turns a weather snapshot into per-product discounts.
package discount

import (
	"github.com/bobby-s-dev/weather-storefront/internal/models"
)

const (
	// MaxPercentage caps base plus seasonal bonus.
	MaxPercentage = 50
	// SeasonalBonus is added when a product's season matches the weather.
	SeasonalBonus = 10

	hotThreshold  = 25.0
	coldThreshold = 15.0

	ReasonNoWeather   = "No weather data available"
	ReasonNoDiscount  = "No weather-based discount available"
	ReasonBonusSuffix = " + seasonal match bonus"
)

type rule struct {
	match      func(w *models.WeatherSnapshot) bool
	percentage int
	reason     string
}

// Rules are applied in order and a later match overwrites an earlier one.
// Extreme weather sits last so no temperature rule can override it.
var rules = []rule{
	{
		match:      func(w *models.WeatherSnapshot) bool { return w.Is(models.ConditionRain, models.ConditionDrizzle) },
		percentage: 10,
		reason:     "Rainy day discount!",
	},
	{
		match:      func(w *models.WeatherSnapshot) bool { return w.Temperature >= hotThreshold },
		percentage: 12,
		reason:     "Hot day discount!",
	},
	{
		match:      func(w *models.WeatherSnapshot) bool { return w.Temperature <= coldThreshold },
		percentage: 12,
		reason:     "Cold weather discount!",
	},
	{
		match:      func(w *models.WeatherSnapshot) bool { return w.Is(models.ConditionMist, models.ConditionFog) },
		percentage: 8,
		reason:     "Foggy day discount!",
	},
	{
		match:      func(w *models.WeatherSnapshot) bool { return w.Is(models.ConditionThunderstorm, models.ConditionSnow) },
		percentage: 15,
		reason:     "Extreme weather discount!",
	},
}

// Evaluate returns the base discount for the current weather.
func Evaluate(w *models.WeatherSnapshot) models.DiscountDecision {
	if w == nil {
		return models.DiscountDecision{Percentage: 0, Reason: ReasonNoWeather}
	}
	d := models.DiscountDecision{Percentage: 0, Reason: ReasonNoDiscount}
	for _, r := range rules {
		if r.match(w) {
			d = models.DiscountDecision{Percentage: r.percentage, Reason: r.reason}
		}
	}
	return d
}

// Eligible reports whether a product may receive a weather discount.
// Seasonal goods are suppressed when the weather contradicts their season.
func Eligible(p models.Product, w *models.WeatherSnapshot) bool {
	if !p.WeatherDiscountEligible || w == nil {
		return false
	}
	switch p.Seasonal {
	case models.SeasonWinter:
		return w.Temperature < hotThreshold
	case models.SeasonSummer:
		return w.Temperature > coldThreshold
	case models.SeasonRainy:
		return w.Is(models.ConditionRain, models.ConditionDrizzle, models.ConditionThunderstorm,
			models.ConditionMist, models.ConditionFog)
	}
	return true
}

// Bonus returns the seasonal match bonus for the product, or zero.
func Bonus(p models.Product, w *models.WeatherSnapshot) int {
	if w == nil {
		return 0
	}
	switch {
	case p.Seasonal == models.SeasonSummer && w.Temperature >= hotThreshold,
		p.Seasonal == models.SeasonWinter && w.Temperature <= coldThreshold,
		p.Seasonal == models.SeasonRainy && w.Is(models.ConditionRain, models.ConditionDrizzle, models.ConditionThunderstorm):
		return SeasonalBonus
	}
	return 0
}
