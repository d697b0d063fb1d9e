package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-storefront/internal/models"
	"github.com/bobby-s-dev/weather-storefront/internal/observability"
	"github.com/bobby-s-dev/weather-storefront/internal/store"
)

const (
	RecommendationPersonalized = "personalized"
	RecommendationTrending     = "trending"

	// TrendingUserID requests trending products explicitly.
	TrendingUserID = "trending"

	preferenceDepth    = 2
	recentViewExcluded = 5
)

type RecommenderConfig struct {
	DefaultLimit int
	SimilarLimit int
	// BackfillExcludeRecent also keeps recently viewed products out of the
	// rating-ordered backfill.
	BackfillExcludeRecent bool
}

// Preferences are the ranked categories and seasons used for a
// personalized result, before any weather adjustment.
type Preferences struct {
	Categories []string        `json:"categories"`
	Seasons    []models.Season `json:"seasons"`
}

type Recommendation struct {
	Type        string
	Products    []models.Product
	Preferences *Preferences
}

type Recommender struct {
	products *store.ProductRepository
	tracker  *PreferenceTracker
	cfg      RecommenderConfig
	logger   *zap.Logger
	metrics  *observability.Metrics
}

func NewRecommender(products *store.ProductRepository, tracker *PreferenceTracker, cfg RecommenderConfig, logger *zap.Logger, metrics *observability.Metrics) *Recommender {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 8
	}
	if cfg.SimilarLimit <= 0 {
		cfg.SimilarLimit = 4
	}
	return &Recommender{
		products: products,
		tracker:  tracker,
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
	}
}

func (r *Recommender) DefaultLimit() int { return r.cfg.DefaultLimit }
func (r *Recommender) SimilarLimit() int { return r.cfg.SimilarLimit }

// Trending returns the top rated products.
func (r *Recommender) Trending(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = r.cfg.DefaultLimit
	}
	products, err := r.products.Find(ctx, store.ProductQuery{Sort: store.SortReviewDesc, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("trending products: %w", err)
	}
	r.metrics.Recommendations.WithLabelValues(RecommendationTrending).Inc()
	return products, nil
}

func (r *Recommender) trending(ctx context.Context, limit int) (*Recommendation, error) {
	products, err := r.Trending(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &Recommendation{Type: RecommendationTrending, Products: products}, nil
}

// Recommend picks products for userID. Anonymous users and users without
// history get trending products.
func (r *Recommender) Recommend(ctx context.Context, userID string, limit int, w *models.WeatherSnapshot) (*Recommendation, error) {
	if limit <= 0 {
		limit = r.cfg.DefaultLimit
	}
	if IsAnonymous(userID) || userID == TrendingUserID {
		return r.trending(ctx, limit)
	}

	history, err := r.tracker.History(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load history for %s: %w", userID, err)
	}
	if history == nil {
		return r.trending(ctx, limit)
	}

	categories := history.CategoryPreferences.Top(preferenceDepth)
	seasons := history.SeasonalPreferences.Top(preferenceDepth)
	prefs := &Preferences{Categories: categories, Seasons: seasons}

	querySeasons := append([]models.Season(nil), seasons...)
	if w != nil {
		querySeasons = append(querySeasons, seasonForWeather(w))
	}
	seasonTags := make([]string, 0, len(querySeasons))
	for _, s := range querySeasons {
		seasonTags = append(seasonTags, string(s))
	}

	branches := []store.Predicate{
		store.InCategories(categories...),
		store.InSeasons(querySeasons...),
		store.HasAnyTag(seasonTags...),
	}
	if history.CategoryPreferences["footwear"] > 0 {
		branches = append(branches, store.InCategories("footwear"))
	}

	recent := history.RecentlyViewed(recentViewExcluded)
	purchased := history.PurchasedIDs()

	candidates, err := r.products.Find(ctx, store.ProductQuery{
		Match: store.AllOf(store.AnyOf(branches...), store.ExcludeIDs(recent...)),
		Sort:  store.SortReviewDesc,
		Limit: limit + len(purchased),
	})
	if err != nil {
		return nil, fmt.Errorf("personalized products: %w", err)
	}

	notPurchased := store.ExcludeIDs(purchased...)
	chosen := make([]models.Product, 0, limit)
	for i := range candidates {
		if len(chosen) == limit {
			break
		}
		if notPurchased(&candidates[i]) {
			chosen = append(chosen, candidates[i])
		}
	}

	if missing := limit - len(chosen); missing > 0 {
		exclude := append([]string(nil), purchased...)
		for _, p := range chosen {
			exclude = append(exclude, p.ID)
		}
		if r.cfg.BackfillExcludeRecent {
			exclude = append(exclude, recent...)
		}
		extra, err := r.products.Find(ctx, store.ProductQuery{
			Match: store.ExcludeIDs(exclude...),
			Sort:  store.SortReviewDesc,
			Limit: missing,
		})
		if err != nil {
			return nil, fmt.Errorf("backfill products: %w", err)
		}
		chosen = append(chosen, extra...)
	}

	r.metrics.Recommendations.WithLabelValues(RecommendationPersonalized).Inc()
	r.logger.Debug("Personalized recommendations",
		zap.String("user_id", userID),
		zap.Strings("categories", categories),
		zap.Int("count", len(chosen)))

	return &Recommendation{Type: RecommendationPersonalized, Products: chosen, Preferences: prefs}, nil
}

// Similar returns products sharing the category, a non-"all" season, a tag
// or the brand of productID, best rated first.
func (r *Recommender) Similar(ctx context.Context, productID string, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = r.cfg.SimilarLimit
	}
	p, err := r.products.Get(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("similar to %s: %w", productID, err)
	}

	var branches []store.Predicate
	if p.Category != "" {
		branches = append(branches, store.InCategories(p.Category))
	}
	if p.Brand != "" {
		branches = append(branches, store.InBrands(p.Brand))
	}
	if p.Seasonal != models.SeasonAll && p.Seasonal != "" {
		branches = append(branches, store.InSeasons(p.Seasonal))
	}
	if len(p.Tags) > 0 {
		branches = append(branches, store.HasAnyTag(p.Tags...))
	}

	similar, err := r.products.Find(ctx, store.ProductQuery{
		Match: store.AllOf(store.ExcludeIDs(p.ID), store.AnyOf(branches...)),
		Sort:  store.SortReviewDesc,
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("similar to %s: %w", productID, err)
	}
	return similar, nil
}

// seasonForWeather maps current temperature onto a season.
func seasonForWeather(w *models.WeatherSnapshot) models.Season {
	switch {
	case w.Temperature >= 25:
		return models.SeasonSummer
	case w.Temperature <= 15:
		return models.SeasonWinter
	}
	return models.SeasonRainy
}

// IsAnonymous reports whether userID is missing or a client placeholder.
func IsAnonymous(userID string) bool {
	switch userID {
	case "", "undefined", "null":
		return true
	}
	return false
}
