package services

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-storefront/internal/models"
	"github.com/bobby-s-dev/weather-storefront/internal/observability"
	"github.com/bobby-s-dev/weather-storefront/internal/store"
)

type CartService struct {
	carts    *store.Collection[models.Cart]
	products *store.ProductRepository
	clock    clockwork.Clock
	logger   *zap.Logger
	metrics  *observability.Metrics
}

func NewCartService(carts *store.Collection[models.Cart], products *store.ProductRepository, clock clockwork.Clock, logger *zap.Logger, metrics *observability.Metrics) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// AddItem adds qty of a product, merging with an existing line.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, qty int) (*models.Cart, error) {
	if IsAnonymous(userID) || productID == "" || qty <= 0 {
		return nil, fmt.Errorf("%w: userId, productId and a positive quantity are required", ErrInvalidInput)
	}
	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}

	now := s.clock.Now()
	cart, err := s.carts.Update(ctx, userID, func(c *models.Cart, exists bool) error {
		if !exists {
			*c = models.Cart{UserID: userID, Items: []models.CartItem{}, CreatedAt: now}
		}
		merged := false
		for i := range c.Items {
			if c.Items[i].ProductID == productID {
				c.Items[i].Quantity += qty
				merged = true
				break
			}
		}
		if !merged {
			c.Items = append(c.Items, models.CartItem{ProductID: productID, Quantity: qty})
		}
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	return cart, nil
}

// UpdateQuantity sets the quantity of an existing line.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID string, qty int) (*models.Cart, error) {
	if IsAnonymous(userID) || productID == "" || qty <= 0 {
		return nil, fmt.Errorf("%w: userId, productId and a positive quantity are required", ErrInvalidInput)
	}
	return s.modify(ctx, userID, func(c *models.Cart) error {
		for i := range c.Items {
			if c.Items[i].ProductID == productID {
				c.Items[i].Quantity = qty
				return nil
			}
		}
		return fmt.Errorf("cart item %s: %w", productID, store.ErrNotFound)
	})
}

// RemoveItem drops a line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error) {
	if IsAnonymous(userID) || productID == "" {
		return nil, fmt.Errorf("%w: userId and productId are required", ErrInvalidInput)
	}
	return s.modify(ctx, userID, func(c *models.Cart) error {
		for i := range c.Items {
			if c.Items[i].ProductID == productID {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("cart item %s: %w", productID, store.ErrNotFound)
	})
}

// Clear deletes the user's cart. Clearing a missing cart is not an error.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if IsAnonymous(userID) {
		return fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if err := s.carts.Delete(ctx, userID); err != nil && !isNotFound(err) {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Items returns the raw cart lines, or nil when the user has no cart.
func (s *CartService) Items(ctx context.Context, userID string) ([]models.CartItem, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return c.Items, nil
}

// View returns the cart enriched with product data and weather discounts.
// Lines whose product has been deleted are dropped from the stored cart.
func (s *CartService) View(ctx context.Context, userID string, w *models.WeatherSnapshot) (*models.CartView, error) {
	view := &models.CartView{UserID: userID, Items: []models.CartLine{}}
	if IsAnonymous(userID) {
		return view, nil
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return view, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}

	products := make([]models.Product, 0, len(cart.Items))
	quantities := make([]int, 0, len(cart.Items))
	var dangling []string
	for _, item := range cart.Items {
		p, err := s.products.Get(ctx, item.ProductID)
		if err != nil {
			if isNotFound(err) {
				dangling = append(dangling, item.ProductID)
				continue
			}
			return nil, fmt.Errorf("load cart product: %w", err)
		}
		products = append(products, *p)
		quantities = append(quantities, item.Quantity)
	}

	if len(dangling) > 0 {
		s.prune(ctx, userID, dangling)
	}

	for i, d := range decorate(s.metrics, products, w) {
		view.Items = append(view.Items, models.CartLine{
			ProductID:              d.ID,
			Image:                  d.Image,
			Title:                  d.Title,
			Price:                  d.Price,
			SalePrice:              d.SalePrice,
			Seasonal:               d.Seasonal,
			Tags:                   d.Tags,
			Quantity:               quantities[i],
			WeatherDiscount:        d.WeatherDiscount,
			WeatherDiscountedPrice: d.WeatherDiscountedPrice,
		})
	}
	return view, nil
}

func (s *CartService) prune(ctx context.Context, userID string, productIDs []string) {
	gone := make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		gone[id] = struct{}{}
	}
	_, err := s.modify(ctx, userID, func(c *models.Cart) error {
		kept := c.Items[:0]
		for _, item := range c.Items {
			if _, ok := gone[item.ProductID]; !ok {
				kept = append(kept, item)
			}
		}
		c.Items = kept
		return nil
	})
	if err != nil {
		s.logger.Warn("Failed to prune cart", zap.String("user_id", userID), zap.Error(err))
		return
	}
	s.logger.Info("Pruned deleted products from cart",
		zap.String("user_id", userID),
		zap.Strings("product_ids", productIDs))
}

func (s *CartService) modify(ctx context.Context, userID string, fn func(c *models.Cart) error) (*models.Cart, error) {
	cart, err := s.carts.Update(ctx, userID, func(c *models.Cart, exists bool) error {
		if !exists {
			return fmt.Errorf("cart for %s: %w", userID, store.ErrNotFound)
		}
		if err := fn(c); err != nil {
			return err
		}
		c.UpdatedAt = s.clock.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}
