package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-storefront/internal/services"
)

type captureRequest struct {
	OrderID   string `json:"orderId" validate:"required"`
	PaymentID string `json:"paymentId"`
	PayerID   string `json:"payerId"`
}

// CreateOrder handles POST /api/shop/order/create
func (h *Handler) CreateOrder(c *fiber.Ctx) error {
	var in services.OrderInput
	if err := bind(c, &in); err != nil {
		return h.fail(c, err, "")
	}

	order, err := h.svc.Orders.Create(c.Context(), in)
	if err != nil {
		return h.fail(c, err, "Product not found")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    order,
		"orderId": order.ID,
	})
}

// CapturePayment handles POST /api/shop/order/capture
func (h *Handler) CapturePayment(c *fiber.Ctx) error {
	var req captureRequest
	if err := bind(c, &req); err != nil {
		return h.fail(c, err, "")
	}

	order, err := h.svc.Orders.Capture(c.Context(), req.OrderID, req.PaymentID, req.PayerID)
	if err != nil {
		h.logger.Info("Order capture rejected",
			zap.String("order_id", req.OrderID),
			zap.Error(err))
		return h.fail(c, err, "Order not found")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order confirmed",
		"data":    order,
	})
}

// GetAllOrdersByUser handles GET /api/shop/order/list/:userId
func (h *Handler) GetAllOrdersByUser(c *fiber.Ctx) error {
	orders, err := h.svc.Orders.ListByUser(c.Context(), c.Params("userId"))
	if err != nil {
		return h.fail(c, err, "No orders found")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
	})
}

// GetOrderDetails handles GET /api/shop/order/details/:id
func (h *Handler) GetOrderDetails(c *fiber.Ctx) error {
	order, err := h.svc.Orders.Details(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, "Order not found")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    order,
	})
}
