package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-storefront/internal/models"
	"github.com/bobby-s-dev/weather-storefront/internal/services"
	"github.com/bobby-s-dev/weather-storefront/internal/store"
)

// AddProduct handles POST /api/admin/products/add
func (h *Handler) AddProduct(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := bind(c, &in); err != nil {
		return h.fail(c, err, "")
	}

	product, err := h.svc.Catalog.AddProduct(c.Context(), in)
	if err != nil {
		return h.fail(c, err, "")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    product,
	})
}

// FetchAllProducts handles GET /api/admin/products/get
func (h *Handler) FetchAllProducts(c *fiber.Ctx) error {
	products, err := h.svc.Catalog.ListAll(c.Context())
	if err != nil {
		return h.fail(c, err, "")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
	})
}

// EditProduct handles PUT /api/admin/products/edit/:id
func (h *Handler) EditProduct(c *fiber.Ctx) error {
	var patch services.ProductPatch
	if err := bind(c, &patch); err != nil {
		return h.fail(c, err, "")
	}

	product, err := h.svc.Catalog.EditProduct(c.Context(), c.Params("id"), patch)
	if err != nil {
		return h.fail(c, err, "Product not found")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    product,
	})
}

// DeleteProduct handles DELETE /api/admin/products/delete/:id
func (h *Handler) DeleteProduct(c *fiber.Ctx) error {
	if err := h.svc.Catalog.DeleteProduct(c.Context(), c.Params("id")); err != nil {
		return h.fail(c, err, "Product not found")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product deleted successfully",
	})
}

// GetFilteredProducts handles GET /api/shop/products/get
func (h *Handler) GetFilteredProducts(c *fiber.Ctx) error {
	order, ok := store.ParseSortOrder(c.Query("sortBy"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Unknown sortBy value",
		})
	}
	filter := services.ListFilter{
		Categories: splitQuery(c, "category"),
		Brands:     splitQuery(c, "brand"),
		Tags:       splitQuery(c, "tags"),
		Sort:       order,
	}
	for _, s := range splitQuery(c, "seasonal") {
		filter.Seasons = append(filter.Seasons, models.Season(s))
	}

	weather, err := h.weatherFor(c)
	if err != nil {
		return h.fail(c, err, "")
	}

	products, err := h.svc.Catalog.List(c.Context(), filter, weather)
	if err != nil {
		return h.fail(c, err, "")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"weather": weather,
	})
}

// GetProductDetails handles GET /api/shop/products/get/:id
func (h *Handler) GetProductDetails(c *fiber.Ctx) error {
	weather, err := h.weatherFor(c)
	if err != nil {
		return h.fail(c, err, "")
	}

	product, err := h.svc.Catalog.Details(c.Context(), c.Params("id"), weather)
	if err != nil {
		return h.fail(c, err, "Product not found")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    product,
		"weather": weather,
	})
}

// SearchProducts handles GET /api/shop/search/:keyword
func (h *Handler) SearchProducts(c *fiber.Ctx) error {
	return h.search(c, c.Params("keyword"), h.svc.Catalog.Search)
}

// SearchByCategory handles GET /api/shop/search/category/:category
func (h *Handler) SearchByCategory(c *fiber.Ctx) error {
	return h.search(c, c.Params("category"), h.svc.Catalog.SearchByCategory)
}

// SearchByBrand handles GET /api/shop/search/brand/:brand
func (h *Handler) SearchByBrand(c *fiber.Ctx) error {
	return h.search(c, c.Params("brand"), h.svc.Catalog.SearchByBrand)
}

type searchFunc func(ctx context.Context, term string, w *models.WeatherSnapshot) ([]models.DecoratedProduct, error)

func (h *Handler) search(c *fiber.Ctx, term string, fn searchFunc) error {
	weather, err := h.weatherFor(c)
	if err != nil {
		return h.fail(c, err, "")
	}

	h.logger.Debug("Searching products", zap.String("term", term))
	products, err := fn(c.Context(), term, weather)
	if err != nil {
		return h.fail(c, err, "")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"weather": weather,
	})
}
