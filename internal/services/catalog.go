package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-storefront/internal/models"
	"github.com/bobby-s-dev/weather-storefront/internal/observability"
	"github.com/bobby-s-dev/weather-storefront/internal/store"
)

// ProductInput is the admin payload for a new product.
type ProductInput struct {
	Image                   string   `json:"image"`
	Title                   string   `json:"title" validate:"required"`
	Description             string   `json:"description"`
	Category                string   `json:"category" validate:"required"`
	Brand                   string   `json:"brand" validate:"required"`
	Price                   float64  `json:"price" validate:"gte=0"`
	SalePrice               float64  `json:"salePrice" validate:"gte=0"`
	TotalStock              int      `json:"totalStock" validate:"gte=0"`
	AverageReview           float64  `json:"averageReview" validate:"gte=0,lte=5"`
	Seasonal                string   `json:"seasonal" validate:"omitempty,oneof=summer rainy winter all"`
	Tags                    []string `json:"tags"`
	WeatherDiscountEligible *bool    `json:"weatherDiscountEligible"`
}

// ProductPatch is a partial admin update; nil fields are left unchanged.
type ProductPatch struct {
	Image                   *string   `json:"image"`
	Title                   *string   `json:"title" validate:"omitempty,min=1"`
	Description             *string   `json:"description"`
	Category                *string   `json:"category" validate:"omitempty,min=1"`
	Brand                   *string   `json:"brand" validate:"omitempty,min=1"`
	Price                   *float64  `json:"price" validate:"omitempty,gte=0"`
	SalePrice               *float64  `json:"salePrice" validate:"omitempty,gte=0"`
	TotalStock              *int      `json:"totalStock" validate:"omitempty,gte=0"`
	AverageReview           *float64  `json:"averageReview" validate:"omitempty,gte=0,lte=5"`
	Seasonal                *string   `json:"seasonal" validate:"omitempty,oneof=summer rainy winter all"`
	Tags                    *[]string `json:"tags"`
	WeatherDiscountEligible *bool     `json:"weatherDiscountEligible"`
}

// ListFilter narrows the shop listing. Empty slices do not filter.
type ListFilter struct {
	Categories []string
	Brands     []string
	Seasons    []models.Season
	Tags       []string
	Sort       store.SortOrder
}

type CatalogService struct {
	products *store.ProductRepository
	clock    clockwork.Clock
	logger   *zap.Logger
	metrics  *observability.Metrics
}

func NewCatalogService(products *store.ProductRepository, clock clockwork.Clock, logger *zap.Logger, metrics *observability.Metrics) *CatalogService {
	return &CatalogService{
		products: products,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// NormalizeTags lower-cases, trims and de-duplicates tags, then makes sure
// the category, brand and a non-"all" season are present.
func NormalizeTags(tags []string, category, brand string, seasonal models.Season) []string {
	out := make([]string, 0, len(tags)+3)
	seen := make(map[string]struct{}, len(tags)+3)
	add := func(t string) {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, t := range tags {
		add(t)
	}
	add(category)
	add(brand)
	if seasonal != models.SeasonAll {
		add(string(seasonal))
	}
	return out
}

func normalizeSeason(s string) models.Season {
	season := models.Season(strings.ToLower(strings.TrimSpace(s)))
	if season == "" {
		return models.SeasonAll
	}
	return season
}

func (s *CatalogService) AddProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	seasonal := normalizeSeason(in.Seasonal)
	if !seasonal.Valid() {
		return nil, fmt.Errorf("%w: unknown seasonal value %q", ErrInvalidInput, in.Seasonal)
	}

	now := s.clock.Now()
	p := &models.Product{
		ID:                      uuid.NewString(),
		Image:                   in.Image,
		Title:                   strings.TrimSpace(in.Title),
		Description:             in.Description,
		Category:                strings.ToLower(strings.TrimSpace(in.Category)),
		Brand:                   strings.ToLower(strings.TrimSpace(in.Brand)),
		Price:                   in.Price,
		SalePrice:               in.SalePrice,
		TotalStock:              in.TotalStock,
		AverageReview:           in.AverageReview,
		Seasonal:                seasonal,
		WeatherDiscountEligible: true,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if in.WeatherDiscountEligible != nil {
		p.WeatherDiscountEligible = *in.WeatherDiscountEligible
	}
	p.Tags = NormalizeTags(in.Tags, p.Category, p.Brand, p.Seasonal)

	if err := s.products.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}

	s.logger.Info("Product added",
		zap.String("product_id", p.ID),
		zap.String("category", p.Category),
		zap.String("seasonal", string(p.Seasonal)))
	return p, nil
}

func (s *CatalogService) ListAll(ctx context.Context) ([]models.Product, error) {
	return s.products.Find(ctx, store.ProductQuery{Sort: store.SortTitleAsc})
}

// EditProduct applies patch. Tags are re-normalised on every edit so the
// derived tags follow category, brand and season changes.
func (s *CatalogService) EditProduct(ctx context.Context, id string, patch ProductPatch) (*models.Product, error) {
	var seasonal models.Season
	if patch.Seasonal != nil {
		seasonal = normalizeSeason(*patch.Seasonal)
		if !seasonal.Valid() {
			return nil, fmt.Errorf("%w: unknown seasonal value %q", ErrInvalidInput, *patch.Seasonal)
		}
	}

	p, err := s.products.Update(ctx, id, func(p *models.Product) error {
		if patch.Image != nil {
			p.Image = *patch.Image
		}
		if patch.Title != nil {
			p.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.Category != nil {
			p.Category = strings.ToLower(strings.TrimSpace(*patch.Category))
		}
		if patch.Brand != nil {
			p.Brand = strings.ToLower(strings.TrimSpace(*patch.Brand))
		}
		if patch.Price != nil {
			p.Price = *patch.Price
		}
		if patch.SalePrice != nil {
			p.SalePrice = *patch.SalePrice
		}
		if patch.TotalStock != nil {
			p.TotalStock = *patch.TotalStock
		}
		if patch.AverageReview != nil {
			p.AverageReview = *patch.AverageReview
		}
		if patch.Seasonal != nil {
			p.Seasonal = seasonal
		}
		if patch.WeatherDiscountEligible != nil {
			p.WeatherDiscountEligible = *patch.WeatherDiscountEligible
		}
		tags := p.Tags
		if patch.Tags != nil {
			tags = *patch.Tags
		}
		p.Tags = NormalizeTags(tags, p.Category, p.Brand, p.Seasonal)
		p.UpdatedAt = s.clock.Now()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("edit product %s: %w", id, err)
	}
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	s.logger.Info("Product deleted", zap.String("product_id", id))
	return nil
}

// List returns the filtered shop listing with weather discounts attached.
func (s *CatalogService) List(ctx context.Context, f ListFilter, w *models.WeatherSnapshot) ([]models.DecoratedProduct, error) {
	var preds []store.Predicate
	if len(f.Categories) > 0 {
		preds = append(preds, store.InCategories(f.Categories...))
	}
	if len(f.Brands) > 0 {
		preds = append(preds, store.InBrands(f.Brands...))
	}
	if len(f.Seasons) > 0 {
		preds = append(preds, store.InSeasons(f.Seasons...))
	}
	if len(f.Tags) > 0 {
		preds = append(preds, store.HasAnyTag(f.Tags...))
	}
	order := f.Sort
	if order == "" {
		order = store.SortPriceAsc
	}

	products, err := s.products.Find(ctx, store.ProductQuery{Match: store.AllOf(preds...), Sort: order})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return decorate(s.metrics, products, w), nil
}

func (s *CatalogService) Details(ctx context.Context, id string, w *models.WeatherSnapshot) (*models.DecoratedProduct, error) {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	d := decorate(s.metrics, []models.Product{*p}, w)[0]
	return &d, nil
}

// Search matches keyword against title, description, category, brand,
// seasonal and tags, case-insensitively.
func (s *CatalogService) Search(ctx context.Context, keyword string, w *models.WeatherSnapshot) ([]models.DecoratedProduct, error) {
	return s.search(ctx, keyword, store.MatchesKeyword(keyword), w)
}

func (s *CatalogService) SearchByCategory(ctx context.Context, category string, w *models.WeatherSnapshot) ([]models.DecoratedProduct, error) {
	return s.search(ctx, category, store.FieldContains(func(p *models.Product) string { return p.Category }, category), w)
}

func (s *CatalogService) SearchByBrand(ctx context.Context, brand string, w *models.WeatherSnapshot) ([]models.DecoratedProduct, error) {
	return s.search(ctx, brand, store.FieldContains(func(p *models.Product) string { return p.Brand }, brand), w)
}

func (s *CatalogService) search(ctx context.Context, term string, match store.Predicate, w *models.WeatherSnapshot) ([]models.DecoratedProduct, error) {
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("%w: search term is required", ErrInvalidInput)
	}
	products, err := s.products.Find(ctx, store.ProductQuery{Match: match, Sort: store.SortReviewDesc})
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return decorate(s.metrics, products, w), nil
}

// Decorate attaches weather discounts to products loaded elsewhere, such as
// recommendation results.
func (s *CatalogService) Decorate(products []models.Product, w *models.WeatherSnapshot) []models.DecoratedProduct {
	return decorate(s.metrics, products, w)
}

// Offers decorates the named products. Unknown ids are skipped.
func (s *CatalogService) Offers(ctx context.Context, ids []string, w *models.WeatherSnapshot) ([]models.DecoratedProduct, error) {
	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		p, err := s.products.Get(ctx, id)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("get product %s: %w", id, err)
		}
		products = append(products, *p)
	}
	return decorate(s.metrics, products, w), nil
}
