package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bobby-s-dev/weather-storefront/internal/services"
)

type trackViewRequest struct {
	UserID    string `json:"userId" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
}

type trackSearchRequest struct {
	UserID string `json:"userId" validate:"required"`
	Query  string `json:"query" validate:"required"`
}

// TrackProductView handles POST /api/shop/recommendation/track-view
func (h *Handler) TrackProductView(c *fiber.Ctx) error {
	var req trackViewRequest
	if err := bind(c, &req); err != nil {
		return h.fail(c, err, "")
	}
	if services.IsAnonymous(req.UserID) {
		return h.fail(c, services.ErrInvalidInput, "")
	}

	if err := h.svc.Tracker.TrackView(c.Context(), req.UserID, req.ProductID); err != nil {
		return h.fail(c, err, "Product not found")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product view tracked successfully",
	})
}

// TrackSearchQuery handles POST /api/shop/recommendation/track-search
func (h *Handler) TrackSearchQuery(c *fiber.Ctx) error {
	var req trackSearchRequest
	if err := bind(c, &req); err != nil {
		return h.fail(c, err, "")
	}
	if services.IsAnonymous(req.UserID) {
		return h.fail(c, services.ErrInvalidInput, "")
	}

	if err := h.svc.Tracker.TrackSearch(c.Context(), req.UserID, req.Query); err != nil {
		return h.fail(c, err, "")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Search query tracked successfully",
	})
}

// GetRecommendations handles GET /api/shop/recommendation/user/:userId
func (h *Handler) GetRecommendations(c *fiber.Ctx) error {
	limit, err := parseLimit(c, h.svc.Recommender.DefaultLimit())
	if err != nil {
		return h.fail(c, err, "")
	}
	weather, err := h.weatherFor(c)
	if err != nil {
		return h.fail(c, err, "")
	}

	rec, err := h.svc.Recommender.Recommend(c.Context(), c.Params("userId"), limit, weather)
	if err != nil {
		return h.fail(c, err, "")
	}

	resp := fiber.Map{
		"success":            true,
		"data":               h.svc.Catalog.Decorate(rec.Products, weather),
		"weather":            weather,
		"recommendationType": rec.Type,
	}
	if rec.Preferences != nil {
		resp["preferences"] = rec.Preferences
	}
	return c.JSON(resp)
}

// GetTrendingProducts handles GET /api/shop/recommendation/trending
func (h *Handler) GetTrendingProducts(c *fiber.Ctx) error {
	limit, err := parseLimit(c, h.svc.Recommender.DefaultLimit())
	if err != nil {
		return h.fail(c, err, "")
	}
	weather, err := h.weatherFor(c)
	if err != nil {
		return h.fail(c, err, "")
	}

	products, err := h.svc.Recommender.Trending(c.Context(), limit)
	if err != nil {
		return h.fail(c, err, "")
	}
	return c.JSON(fiber.Map{
		"success":            true,
		"data":               h.svc.Catalog.Decorate(products, weather),
		"weather":            weather,
		"recommendationType": services.RecommendationTrending,
	})
}

// GetSimilarProducts handles GET /api/shop/recommendation/similar/:productId
func (h *Handler) GetSimilarProducts(c *fiber.Ctx) error {
	limit, err := parseLimit(c, h.svc.Recommender.SimilarLimit())
	if err != nil {
		return h.fail(c, err, "")
	}
	weather, err := h.weatherFor(c)
	if err != nil {
		return h.fail(c, err, "")
	}

	products, err := h.svc.Recommender.Similar(c.Context(), c.Params("productId"), limit)
	if err != nil {
		return h.fail(c, err, "Product not found")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.svc.Catalog.Decorate(products, weather),
		"weather": weather,
	})
}
