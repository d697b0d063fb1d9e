package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/bobby-s-dev/weather-storefront/internal/discount"
	"github.com/bobby-s-dev/weather-storefront/internal/models"
)

const reasonWeatherUnavailable = "Weather data unavailable"

// discountRequest accepts coordinates as JSON numbers or numeric strings.
type discountRequest struct {
	Latitude   any      `json:"latitude"`
	Longitude  any      `json:"longitude"`
	ProductIDs []string `json:"productIds"`
}

type discountResponse struct {
	Discount models.DiscountDecision   `json:"discount"`
	Weather  *models.WeatherSnapshot   `json:"weather"`
	Products []models.DecoratedProduct `json:"products,omitempty"`
}

// GetWeatherDiscount handles POST /api/shop/discount/weather
func (h *Handler) GetWeatherDiscount(c *fiber.Ctx) error {
	var req discountRequest
	if err := bind(c, &req); err != nil {
		return h.fail(c, err, "")
	}
	lat, lon, ok, err := parseCoordinates(coordinateString(req.Latitude), coordinateString(req.Longitude))
	if err != nil || !ok {
		return h.fail(c, errInvalidCoordinates, "")
	}

	weather := h.svc.Weather.Lookup(c.Context(), lat, lon)
	resp := discountResponse{
		Discount: models.DiscountDecision{Percentage: 0, Reason: reasonWeatherUnavailable},
		Weather:  weather,
	}
	if weather != nil {
		resp.Discount = discount.Evaluate(weather)
	}
	if len(req.ProductIDs) > 0 {
		products, err := h.svc.Catalog.Offers(c.Context(), req.ProductIDs, weather)
		if err != nil {
			return h.fail(c, err, "")
		}
		resp.Products = products
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    resp,
		"weather": weather,
	})
}

func coordinateString(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return strings.TrimSpace(x)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
