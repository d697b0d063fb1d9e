package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-storefront/internal/models"
	"github.com/bobby-s-dev/weather-storefront/internal/observability"
	"github.com/bobby-s-dev/weather-storefront/internal/store"
)

type OrderItemInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

type OrderInput struct {
	UserID        string             `json:"userId" validate:"required"`
	Items         []OrderItemInput   `json:"cartItems" validate:"omitempty,dive"`
	AddressInfo   models.AddressInfo `json:"addressInfo"`
	PaymentMethod string             `json:"paymentMethod"`
}

type OrderService struct {
	orders   *store.Collection[models.Order]
	products *store.ProductRepository
	carts    *CartService
	tracker  *PreferenceTracker
	clock    clockwork.Clock
	logger   *zap.Logger
	metrics  *observability.Metrics
}

func NewOrderService(
	orders *store.Collection[models.Order],
	products *store.ProductRepository,
	carts *CartService,
	tracker *PreferenceTracker,
	clock clockwork.Clock,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		carts:    carts,
		tracker:  tracker,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// Create stores a pending order priced from the current catalog. A sale
// price, when set, takes precedence over the list price. Without explicit
// items the user's cart is ordered.
func (s *OrderService) Create(ctx context.Context, in OrderInput) (*models.Order, error) {
	if IsAnonymous(in.UserID) {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		cartItems, err := s.carts.Items(ctx, in.UserID)
		if err != nil {
			return nil, fmt.Errorf("load cart: %w", err)
		}
		for _, ci := range cartItems {
			in.Items = append(in.Items, OrderItemInput{ProductID: ci.ProductID, Quantity: ci.Quantity})
		}
	}
	if len(in.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]models.OrderItem, 0, len(in.Items))
	total := 0.0
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
		}
		p, err := s.products.Get(ctx, it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("order product %s: %w", it.ProductID, err)
		}
		unit := p.Price
		if p.SalePrice > 0 {
			unit = p.SalePrice
		}
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			Title:     p.Title,
			Image:     p.Image,
			Price:     unit,
			Quantity:  it.Quantity,
		})
		total += unit * float64(it.Quantity)
	}

	now := s.clock.Now()
	paymentMethod := in.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "paypal"
	}
	order := &models.Order{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		Items:           items,
		AddressInfo:     in.AddressInfo,
		OrderStatus:     models.OrderPending,
		PaymentMethod:   paymentMethod,
		PaymentStatus:   models.PaymentPending,
		TotalAmount:     math.Round(total*100) / 100,
		OrderDate:       now,
		OrderUpdateDate: now,
	}
	if err := s.orders.Put(ctx, order.ID, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.Float64("total", order.TotalAmount))
	return order, nil
}

// Capture settles a pending order: the order is claimed as paid, stock is
// decremented, purchase preferences are recorded and the user's cart is
// cleared. Capturing a paid order returns it unchanged. If any line cannot be
// decremented the stock already taken is returned and the order goes back to
// pending. Preference tracking and cart clearing failures are logged, not
// returned.
func (s *OrderService) Capture(ctx context.Context, orderID, paymentID, payerID string) (*models.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("capture order %s: %w", orderID, err)
	}
	if order.PaymentStatus == models.PaymentPaid {
		return order, nil
	}

	for _, item := range order.Items {
		p, err := s.products.Get(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("capture order %s: product %s: %w", orderID, item.ProductID, err)
		}
		if p.TotalStock < item.Quantity {
			return nil, fmt.Errorf("capture order %s: product %s: %w", orderID, p.Title, store.ErrInsufficientStock)
		}
	}

	// Claim the order inside the store update so only one capture proceeds.
	claimed := false
	order, err = s.orders.Update(ctx, orderID, func(o *models.Order, exists bool) error {
		if !exists {
			return store.ErrNotFound
		}
		if o.PaymentStatus == models.PaymentPaid {
			return nil
		}
		claimed = true
		o.PaymentStatus = models.PaymentPaid
		o.OrderStatus = models.OrderConfirmed
		o.PaymentID = paymentID
		o.PayerID = payerID
		o.OrderUpdateDate = s.clock.Now()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("capture order %s: %w", orderID, err)
	}
	if !claimed {
		return order, nil
	}

	for i, item := range order.Items {
		if _, err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.rollback(ctx, orderID, order.Items[:i])
			return nil, fmt.Errorf("capture order %s: product %s: %w", orderID, item.ProductID, err)
		}
	}

	s.metrics.OrdersCaptured.Inc()

	purchases := make([]PurchaseItem, 0, len(order.Items))
	for _, item := range order.Items {
		purchases = append(purchases, PurchaseItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	if err := s.tracker.TrackPurchase(ctx, order.UserID, purchases); err != nil {
		s.logger.Warn("Failed to track purchase",
			zap.String("order_id", order.ID),
			zap.String("user_id", order.UserID),
			zap.Error(err))
	}

	if err := s.carts.Clear(ctx, order.UserID); err != nil {
		s.logger.Warn("Failed to clear cart after capture",
			zap.String("order_id", order.ID),
			zap.String("user_id", order.UserID),
			zap.Error(err))
	}

	s.logger.Info("Order captured",
		zap.String("order_id", order.ID),
		zap.String("payment_id", paymentID))
	return order, nil
}

// rollback undoes a partially applied capture.
func (s *OrderService) rollback(ctx context.Context, orderID string, taken []models.OrderItem) {
	for _, item := range taken {
		if _, err := s.products.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("Failed to restore stock",
				zap.String("order_id", orderID),
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
		}
	}
	_, err := s.orders.Update(ctx, orderID, func(o *models.Order, exists bool) error {
		if !exists {
			return store.ErrNotFound
		}
		o.PaymentStatus = models.PaymentPending
		o.OrderStatus = models.OrderPending
		o.PaymentID = ""
		o.PayerID = ""
		o.OrderUpdateDate = s.clock.Now()
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to reopen order", zap.String("order_id", orderID), zap.Error(err))
	}
}

// ListByUser returns the user's orders, newest first. No orders is
// store.ErrNotFound.
func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orders.List(ctx, func(o *models.Order) bool { return o.UserID == userID })
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("orders for %s: %w", userID, store.ErrNotFound)
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].OrderDate.After(orders[j].OrderDate)
	})
	return orders, nil
}

func (s *OrderService) Details(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", orderID, err)
	}
	return order, nil
}
