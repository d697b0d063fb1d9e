package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestRecordViewAndPurchase_Weights(t *testing.T) {
	h := NewUserHistory("u1", t0)
	p := Product{ID: "p1", Category: "men", Seasonal: SeasonSummer}

	h.RecordView(p, t0)
	h.RecordPurchase(p, 2, t0.Add(time.Minute))

	assert.Equal(t, 7, h.CategoryPreferences["men"])
	assert.Equal(t, 7, h.SeasonalPreferences[SeasonSummer])
	require.Len(t, h.ViewedProducts, 1)
	assert.Equal(t, 1, h.ViewedProducts[0].ViewCount)
	require.Len(t, h.PurchasedProducts, 1)
	assert.Equal(t, 2, h.PurchasedProducts[0].PurchaseCount)
}

func TestRecordView_RepeatedIncrementsCount(t *testing.T) {
	h := NewUserHistory("u1", t0)
	p := Product{ID: "p1", Category: "women", Seasonal: SeasonAll}

	h.RecordView(p, t0)
	h.RecordView(p, t0.Add(time.Hour))

	require.Len(t, h.ViewedProducts, 1)
	assert.Equal(t, 2, h.ViewedProducts[0].ViewCount)
	assert.Equal(t, t0.Add(time.Hour), h.ViewedProducts[0].LastViewedAt)
	assert.Equal(t, 2, h.CategoryPreferences["women"])
	_, tracked := h.SeasonalPreferences[SeasonAll]
	assert.False(t, tracked, "all is not a preference season")
}

func TestRecordView_UnknownCategoryIgnored(t *testing.T) {
	h := NewUserHistory("u1", t0)
	h.RecordView(Product{ID: "p1", Category: "gadgets", Seasonal: SeasonWinter}, t0)

	_, ok := h.CategoryPreferences["gadgets"]
	assert.False(t, ok)
	assert.Len(t, h.CategoryPreferences, len(PreferenceCategories))
	assert.Equal(t, 1, h.SeasonalPreferences[SeasonWinter])
}

func TestRecordSearch_KeepsMostRecentTwenty(t *testing.T) {
	h := NewUserHistory("u1", t0)
	for i := 1; i <= 25; i++ {
		h.RecordSearch(fmt.Sprintf("q%d", i), t0.Add(time.Duration(i)*time.Second))
	}

	require.Len(t, h.SearchQueries, MaxSearchQueries)
	assert.Equal(t, "q6", h.SearchQueries[0].Query)
	assert.Equal(t, "q25", h.SearchQueries[19].Query)
}

func TestTop_TiesKeepDeclarationOrder(t *testing.T) {
	c := NewCategoryPreferences()
	assert.Equal(t, []string{"men", "women"}, c.Top(2))

	c["kids"] = 3
	c["footwear"] = 3
	c["women"] = 1
	assert.Equal(t, []string{"kids", "footwear"}, c.Top(2))

	s := NewSeasonalPreferences()
	s[SeasonWinter] = 2
	assert.Equal(t, []Season{SeasonWinter, SeasonSummer}, s.Top(2))
}

func TestRecentlyViewed_OrdersByLastView(t *testing.T) {
	h := NewUserHistory("u1", t0)
	for i, id := range []string{"a", "b", "c"} {
		h.RecordView(Product{ID: id}, t0.Add(time.Duration(i)*time.Minute))
	}
	h.RecordView(Product{ID: "a"}, t0.Add(time.Hour))

	assert.Equal(t, []string{"a", "c"}, h.RecentlyViewed(2))
	assert.Equal(t, []string{"a", "c", "b"}, h.RecentlyViewed(5))
}

func TestDecodedHistoryWithoutCounters(t *testing.T) {
	h := &UserHistory{UserID: "u1"}
	h.RecordView(Product{ID: "p", Category: "kids", Seasonal: SeasonRainy}, t0)

	assert.Equal(t, 1, h.CategoryPreferences["kids"])
	assert.Equal(t, 1, h.SeasonalPreferences[SeasonRainy])
}
