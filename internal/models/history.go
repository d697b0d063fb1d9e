package models

import (
	"sort"
	"time"
)

const (
	// MaxSearchQueries bounds the search history kept per user.
	MaxSearchQueries = 20

	viewWeight     = 1
	purchaseWeight = 3
)

// Preference categories in declaration order. Ranking ties keep this order.
var PreferenceCategories = []string{"men", "women", "kids", "accessories", "footwear"}

// Preference seasons in declaration order.
var PreferenceSeasons = []Season{SeasonSummer, SeasonRainy, SeasonWinter}

// CategoryPreferences counts weighted interactions per known category.
type CategoryPreferences map[string]int

// SeasonalPreferences counts weighted interactions per known season.
type SeasonalPreferences map[Season]int

func NewCategoryPreferences() CategoryPreferences {
	c := make(CategoryPreferences, len(PreferenceCategories))
	for _, k := range PreferenceCategories {
		c[k] = 0
	}
	return c
}

func NewSeasonalPreferences() SeasonalPreferences {
	s := make(SeasonalPreferences, len(PreferenceSeasons))
	for _, k := range PreferenceSeasons {
		s[k] = 0
	}
	return s
}

// Top returns the n highest ranked categories.
func (c CategoryPreferences) Top(n int) []string {
	return topKeys(c, PreferenceCategories, n)
}

// Top returns the n highest ranked seasons.
func (s SeasonalPreferences) Top(n int) []Season {
	return topKeys(s, PreferenceSeasons, n)
}

func topKeys[K comparable](counts map[K]int, order []K, n int) []K {
	keys := make([]K, len(order))
	copy(keys, order)
	sort.SliceStable(keys, func(i, j int) bool {
		return counts[keys[i]] > counts[keys[j]]
	})
	if n > len(keys) {
		n = len(keys)
	}
	return keys[:n]
}

type ViewedProduct struct {
	ProductID    string    `json:"productId"`
	ViewCount    int       `json:"viewCount"`
	LastViewedAt time.Time `json:"lastViewedAt"`
}

type PurchasedProduct struct {
	ProductID       string    `json:"productId"`
	PurchaseCount   int       `json:"purchaseCount"`
	LastPurchasedAt time.Time `json:"lastPurchasedAt"`
}

type SearchQuery struct {
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
}

// UserHistory is the behavioural record of one user.
type UserHistory struct {
	UserID              string              `json:"userId"`
	ViewedProducts      []ViewedProduct     `json:"viewedProducts"`
	PurchasedProducts   []PurchasedProduct  `json:"purchasedProducts"`
	SearchQueries       []SearchQuery       `json:"searchQueries"`
	CategoryPreferences CategoryPreferences `json:"categoryPreferences"`
	SeasonalPreferences SeasonalPreferences `json:"seasonalPreferences"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}

func NewUserHistory(userID string, now time.Time) *UserHistory {
	return &UserHistory{
		UserID:              userID,
		ViewedProducts:      []ViewedProduct{},
		PurchasedProducts:   []PurchasedProduct{},
		SearchQueries:       []SearchQuery{},
		CategoryPreferences: NewCategoryPreferences(),
		SeasonalPreferences: NewSeasonalPreferences(),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// ensure fills maps that a decoded document may lack.
func (h *UserHistory) ensure() {
	if h.CategoryPreferences == nil {
		h.CategoryPreferences = NewCategoryPreferences()
	}
	if h.SeasonalPreferences == nil {
		h.SeasonalPreferences = NewSeasonalPreferences()
	}
}

// addPreference credits the product's category and season. Values outside
// the known key sets are ignored.
func (h *UserHistory) addPreference(p Product, weight int) {
	h.ensure()
	if _, ok := h.CategoryPreferences[p.Category]; ok {
		h.CategoryPreferences[p.Category] += weight
	}
	if _, ok := h.SeasonalPreferences[p.Seasonal]; ok {
		h.SeasonalPreferences[p.Seasonal] += weight
	}
}

// RecordView notes a product view and credits its category and season by one.
func (h *UserHistory) RecordView(p Product, now time.Time) {
	found := false
	for i := range h.ViewedProducts {
		if h.ViewedProducts[i].ProductID == p.ID {
			h.ViewedProducts[i].ViewCount++
			h.ViewedProducts[i].LastViewedAt = now
			found = true
			break
		}
	}
	if !found {
		h.ViewedProducts = append(h.ViewedProducts, ViewedProduct{
			ProductID:    p.ID,
			ViewCount:    1,
			LastViewedAt: now,
		})
	}
	h.addPreference(p, viewWeight)
	h.UpdatedAt = now
}

// RecordSearch appends a query, keeping only the most recent MaxSearchQueries.
func (h *UserHistory) RecordSearch(query string, now time.Time) {
	h.SearchQueries = append(h.SearchQueries, SearchQuery{Query: query, Timestamp: now})
	if over := len(h.SearchQueries) - MaxSearchQueries; over > 0 {
		h.SearchQueries = append([]SearchQuery(nil), h.SearchQueries[over:]...)
	}
	h.UpdatedAt = now
}

// RecordPurchase notes a purchase of qty units and credits preferences by 3*qty.
func (h *UserHistory) RecordPurchase(p Product, qty int, now time.Time) {
	found := false
	for i := range h.PurchasedProducts {
		if h.PurchasedProducts[i].ProductID == p.ID {
			h.PurchasedProducts[i].PurchaseCount += qty
			h.PurchasedProducts[i].LastPurchasedAt = now
			found = true
			break
		}
	}
	if !found {
		h.PurchasedProducts = append(h.PurchasedProducts, PurchasedProduct{
			ProductID:       p.ID,
			PurchaseCount:   qty,
			LastPurchasedAt: now,
		})
	}
	h.addPreference(p, purchaseWeight*qty)
	h.UpdatedAt = now
}

// RecentlyViewed returns up to n product ids, most recently viewed first.
func (h *UserHistory) RecentlyViewed(n int) []string {
	viewed := make([]ViewedProduct, len(h.ViewedProducts))
	copy(viewed, h.ViewedProducts)
	sort.SliceStable(viewed, func(i, j int) bool {
		return viewed[i].LastViewedAt.After(viewed[j].LastViewedAt)
	})
	if n > len(viewed) {
		n = len(viewed)
	}
	ids := make([]string, 0, n)
	for _, v := range viewed[:n] {
		ids = append(ids, v.ProductID)
	}
	return ids
}

// PurchasedIDs returns every purchased product id.
func (h *UserHistory) PurchasedIDs() []string {
	ids := make([]string, 0, len(h.PurchasedProducts))
	for _, p := range h.PurchasedProducts {
		ids = append(ids, p.ProductID)
	}
	return ids
}
