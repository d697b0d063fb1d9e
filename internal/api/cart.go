package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bobby-s-dev/weather-storefront/internal/services"
)

type cartItemRequest struct {
	UserID    string `json:"userId" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// AddToCart handles POST /api/shop/cart/add
func (h *Handler) AddToCart(c *fiber.Ctx) error {
	var req cartItemRequest
	if err := bind(c, &req); err != nil {
		return h.fail(c, err, "")
	}

	cart, err := h.svc.Carts.AddItem(c.Context(), req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		return h.fail(c, err, "Product not found")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    cart,
	})
}

// FetchCartItems handles GET /api/shop/cart/get/:userId
func (h *Handler) FetchCartItems(c *fiber.Ctx) error {
	weather, err := h.weatherFor(c)
	if err != nil {
		return h.fail(c, err, "")
	}

	view, err := h.svc.Carts.View(c.Context(), c.Params("userId"), weather)
	if err != nil {
		return h.fail(c, err, "Cart not found")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    view,
		"weather": weather,
	})
}

// UpdateCartItemQty handles PUT /api/shop/cart/update-cart
func (h *Handler) UpdateCartItemQty(c *fiber.Ctx) error {
	var req cartItemRequest
	if err := bind(c, &req); err != nil {
		return h.fail(c, err, "")
	}

	cart, err := h.svc.Carts.UpdateQuantity(c.Context(), req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		return h.fail(c, err, "Cart item not found")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    cart,
	})
}

// DeleteCartItem handles DELETE /api/shop/cart/:userId/:productId
func (h *Handler) DeleteCartItem(c *fiber.Ctx) error {
	cart, err := h.svc.Carts.RemoveItem(c.Context(), c.Params("userId"), c.Params("productId"))
	if err != nil {
		return h.fail(c, err, "Cart item not found")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    cart,
	})
}

// ClearCart handles DELETE /api/shop/cart/clear/:userId
func (h *Handler) ClearCart(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if services.IsAnonymous(userID) {
		return h.fail(c, services.ErrInvalidInput, "")
	}
	if err := h.svc.Carts.Clear(c.Context(), userID); err != nil {
		return h.fail(c, err, "")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Cart cleared",
	})
}
