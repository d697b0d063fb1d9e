package store

import (
	"context"
	"sort"
	"strings"

	"github.com/bobby-s-dev/weather-storefront/internal/models"
)

// Predicate selects products.
type Predicate func(p *models.Product) bool

// InCategories matches products whose category is one of cs.
func InCategories(cs ...string) Predicate {
	set := toSet(cs)
	return func(p *models.Product) bool {
		_, ok := set[p.Category]
		return ok
	}
}

// InBrands matches products whose brand is one of bs.
func InBrands(bs ...string) Predicate {
	set := toSet(bs)
	return func(p *models.Product) bool {
		_, ok := set[p.Brand]
		return ok
	}
}

// InSeasons matches products whose seasonal value is one of ss.
func InSeasons(ss ...models.Season) Predicate {
	set := make(map[models.Season]struct{}, len(ss))
	for _, s := range ss {
		set[s] = struct{}{}
	}
	return func(p *models.Product) bool {
		_, ok := set[p.Seasonal]
		return ok
	}
}

// HasAnyTag matches products carrying at least one of tags.
func HasAnyTag(tags ...string) Predicate {
	return func(p *models.Product) bool {
		return p.HasTag(tags...)
	}
}

// ExcludeIDs matches products whose id is not in ids.
func ExcludeIDs(ids ...string) Predicate {
	set := toSet(ids)
	return func(p *models.Product) bool {
		_, ok := set[p.ID]
		return !ok
	}
}

// MatchesKeyword is a case-insensitive substring match over the
// searchable text fields and tags.
func MatchesKeyword(keyword string) Predicate {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	return func(p *models.Product) bool {
		fields := []string{p.Title, p.Description, p.Category, p.Brand, string(p.Seasonal)}
		fields = append(fields, p.Tags...)
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), kw) {
				return true
			}
		}
		return false
	}
}

// FieldContains is a case-insensitive substring match on a single field.
func FieldContains(field func(*models.Product) string, value string) Predicate {
	v := strings.ToLower(strings.TrimSpace(value))
	return func(p *models.Product) bool {
		return strings.Contains(strings.ToLower(field(p)), v)
	}
}

// AnyOf matches when at least one predicate matches.
func AnyOf(ps ...Predicate) Predicate {
	return func(p *models.Product) bool {
		for _, pred := range ps {
			if pred(p) {
				return true
			}
		}
		return false
	}
}

// AllOf matches when every predicate matches. AllOf() matches everything.
func AllOf(ps ...Predicate) Predicate {
	return func(p *models.Product) bool {
		for _, pred := range ps {
			if !pred(p) {
				return false
			}
		}
		return true
	}
}

// SortOrder names a product ordering.
type SortOrder string

const (
	SortPriceAsc   SortOrder = "price-lowtohigh"
	SortPriceDesc  SortOrder = "price-hightolow"
	SortTitleAsc   SortOrder = "title-atoz"
	SortTitleDesc  SortOrder = "title-ztoa"
	SortReviewDesc SortOrder = "rating-hightolow"
)

// ParseSortOrder accepts the shopper-facing sort keys. Empty means price ascending.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch o := SortOrder(s); o {
	case "":
		return SortPriceAsc, true
	case SortPriceAsc, SortPriceDesc, SortTitleAsc, SortTitleDesc, SortReviewDesc:
		return o, true
	}
	return "", false
}

func (o SortOrder) less(a, b *models.Product) (less, equal bool) {
	switch o {
	case SortPriceAsc:
		return a.Price < b.Price, a.Price == b.Price
	case SortPriceDesc:
		return a.Price > b.Price, a.Price == b.Price
	case SortTitleAsc, SortTitleDesc:
		ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title)
		if o == SortTitleDesc {
			return ta > tb, ta == tb
		}
		return ta < tb, ta == tb
	case SortReviewDesc:
		return a.AverageReview > b.AverageReview, a.AverageReview == b.AverageReview
	}
	return false, true
}

// ProductQuery filters, orders and truncates a product listing.
type ProductQuery struct {
	Match Predicate
	Sort  SortOrder
	// Limit of zero means no limit.
	Limit int
}

type ProductRepository struct {
	col *Collection[models.Product]
}

func NewProductRepository(s DocumentStore) *ProductRepository {
	return &ProductRepository{col: NewCollection[models.Product](s, Products)}
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*models.Product, error) {
	return r.col.Get(ctx, id)
}

func (r *ProductRepository) Save(ctx context.Context, p *models.Product) error {
	return r.col.Put(ctx, p.ID, p)
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return r.col.Delete(ctx, id)
}

func (r *ProductRepository) Update(ctx context.Context, id string, fn func(p *models.Product) error) (*models.Product, error) {
	return r.col.Update(ctx, id, func(p *models.Product, exists bool) error {
		if !exists {
			return ErrNotFound
		}
		return fn(p)
	})
}

// DecrementStock removes qty units from the product's stock.
func (r *ProductRepository) DecrementStock(ctx context.Context, id string, qty int) (*models.Product, error) {
	return r.Update(ctx, id, func(p *models.Product) error {
		if p.TotalStock < qty {
			return ErrInsufficientStock
		}
		p.TotalStock -= qty
		return nil
	})
}

// RestoreStock returns qty units to the product's stock.
func (r *ProductRepository) RestoreStock(ctx context.Context, id string, qty int) (*models.Product, error) {
	return r.Update(ctx, id, func(p *models.Product) error {
		p.TotalStock += qty
		return nil
	})
}

// Find runs q. Ties in the sort key fall back to creation time, then id.
func (r *ProductRepository) Find(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	products, err := r.col.List(ctx, func(p *models.Product) bool {
		return q.Match == nil || q.Match(p)
	})
	if err != nil {
		return nil, err
	}

	if q.Sort != "" {
		sort.SliceStable(products, func(i, j int) bool {
			a, b := &products[i], &products[j]
			if less, equal := q.Sort.less(a, b); !equal {
				return less
			}
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		})
	}

	if q.Limit > 0 && len(products) > q.Limit {
		products = products[:q.Limit]
	}
	return products, nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
