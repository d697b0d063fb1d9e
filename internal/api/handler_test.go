package api

import (
	"errors"
	"math"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobby-s-dev/weather-storefront/internal/models"
)

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon string
		ok       bool
		wantErr  bool
	}{
		{"both absent", "", "", false, false},
		{"valid", "18.52", "73.85", true, false},
		{"zero is a coordinate", "0", "0", true, false},
		{"latitude only", "18.52", "", false, true},
		{"longitude only", "", "73.85", false, true},
		{"not a number", "abc", "73.85", false, true},
		{"NaN", "NaN", "73.85", false, true},
		{"infinite", "18.52", "+Inf", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon, ok, err := parseCoordinates(tt.lat, tt.lon)
			assert.Equal(t, tt.ok, ok)
			if tt.wantErr {
				assert.ErrorIs(t, err, errInvalidCoordinates)
				return
			}
			require.NoError(t, err)
			if ok {
				assert.False(t, math.IsNaN(lat) || math.IsNaN(lon))
			}
		})
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, "GET", "/api/health", nil)
	require.Equal(t, 200, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "memory", body["store"])
	assert.Equal(t, "stub", body["weather"].(map[string]any)["provider"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, "GET", "/api/shop/nothing/here", nil)
	assert.Equal(t, 404, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Endpoint not found", body["message"])
}

func TestProductListing_Weather(t *testing.T) {
	srv := newTestServer(t)
	srv.put(t, models.Product{ID: "coat", Title: "Rain coat", Category: "women", Price: 100, Seasonal: models.SeasonRainy, WeatherDiscountEligible: true})
	srv.put(t, models.Product{ID: "tee", Title: "Tee", Category: "men", Price: 20, Seasonal: models.SeasonAll})

	t.Run("with coordinates", func(t *testing.T) {
		status, body := srv.do(t, "GET", "/api/shop/products/get?latitude=18.52&longitude=73.85", nil)
		require.Equal(t, 200, status)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Rain", body["weather"].(map[string]any)["conditions"])

		items := dataList(t, body)
		require.Len(t, items, 2)
		// Price ascending by default.
		assert.Equal(t, "tee", items[0]["id"])
		assert.NotContains(t, items[0], "weatherDiscount")
		assert.Equal(t, 20.0, items[1]["weatherDiscount"].(map[string]any)["percentage"])
		assert.Equal(t, 80.0, items[1]["weatherDiscountedPrice"])
		assert.Equal(t, 0.0, items[1]["salePrice"], "sale price untouched")
	})

	t.Run("without coordinates", func(t *testing.T) {
		calls := srv.provider.calls
		status, body := srv.do(t, "GET", "/api/shop/products/get?category=women", nil)
		require.Equal(t, 200, status)
		assert.Nil(t, body["weather"])
		items := dataList(t, body)
		require.Len(t, items, 1)
		assert.NotContains(t, items[0], "weatherDiscount")
		assert.Equal(t, calls, srv.provider.calls)
	})

	t.Run("half a coordinate", func(t *testing.T) {
		status, body := srv.do(t, "GET", "/api/shop/products/get?latitude=18.52", nil)
		assert.Equal(t, 400, status)
		assert.Equal(t, false, body["success"])
	})

	t.Run("unknown sort", func(t *testing.T) {
		status, _ := srv.do(t, "GET", "/api/shop/products/get?sortBy=random", nil)
		assert.Equal(t, 400, status)
	})
}

func TestProductListing_ProviderDown(t *testing.T) {
	srv := newTestServer(t)
	srv.provider.snapshot, srv.provider.err = nil, errors.New("timeout")
	srv.put(t, models.Product{ID: "coat", Price: 100, Seasonal: models.SeasonRainy, WeatherDiscountEligible: true})

	status, body := srv.do(t, "GET", "/api/shop/products/get/coat?latitude=18.52&longitude=73.85", nil)
	require.Equal(t, 200, status)
	assert.Nil(t, body["weather"])
	assert.NotContains(t, dataMap(t, body), "weatherDiscount")
}

func TestProductDetails_NotFound(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, "GET", "/api/shop/products/get/missing", nil)
	assert.Equal(t, 404, status)
	assert.Equal(t, "Product not found", body["message"])
}

func TestSearch(t *testing.T) {
	srv := newTestServer(t)
	srv.put(t, models.Product{ID: "coat", Title: "Rain coat", Category: "women", Brand: "puma", AverageReview: 4})
	srv.put(t, models.Product{ID: "boot", Title: "Rain boot", Category: "footwear", Brand: "ugg", AverageReview: 5})

	status, body := srv.do(t, "GET", "/api/shop/search/rain%20coat", nil)
	require.Equal(t, 200, status)
	items := dataList(t, body)
	require.Len(t, items, 1)
	assert.Equal(t, "coat", items[0]["id"])

	status, body = srv.do(t, "GET", "/api/shop/search/rain", nil)
	require.Equal(t, 200, status)
	items = dataList(t, body)
	require.Len(t, items, 2)
	assert.Equal(t, "boot", items[0]["id"], "best rated first")

	status, body = srv.do(t, "GET", "/api/shop/search/brand/UG", nil)
	require.Equal(t, 200, status)
	assert.Len(t, dataList(t, body), 1)

	status, body = srv.do(t, "GET", "/api/shop/search/category/wom", nil)
	require.Equal(t, 200, status)
	assert.Len(t, dataList(t, body), 1)
}

func TestAdminProducts(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, "POST", "/api/admin/products/add", map[string]any{
		"title":    "Rain Jacket",
		"category": "Women",
		"brand":    "Puma",
		"price":    100,
		"seasonal": "rainy",
		"tags":     []string{"Waterproof"},
	})
	require.Equal(t, 201, status, body)
	product := dataMap(t, body)
	id := product["id"].(string)
	assert.Equal(t, []any{"waterproof", "women", "puma", "rainy"}, product["tags"])
	assert.Equal(t, true, product["weatherDiscountEligible"])

	status, body = srv.do(t, "PUT", "/api/admin/products/edit/"+id, map[string]any{"price": 120})
	require.Equal(t, 200, status)
	assert.Equal(t, 120.0, dataMap(t, body)["price"])

	status, body = srv.do(t, "GET", "/api/admin/products/get", nil)
	require.Equal(t, 200, status)
	assert.Len(t, dataList(t, body), 1)

	status, _ = srv.do(t, "DELETE", "/api/admin/products/delete/"+id, nil)
	assert.Equal(t, 200, status)
	status, _ = srv.do(t, "DELETE", "/api/admin/products/delete/"+id, nil)
	assert.Equal(t, 404, status)

	status, body = srv.do(t, "POST", "/api/admin/products/add", map[string]any{"category": "men", "brand": "nike"})
	assert.Equal(t, 400, status)
	assert.Contains(t, body["message"], "Title")

	status, _ = srv.do(t, "POST", "/api/admin/products/add", map[string]any{
		"title": "X", "category": "men", "brand": "nike", "seasonal": "autumn",
	})
	assert.Equal(t, 400, status)
}

func TestAdminEditKeepsProductAddressable(t *testing.T) {
	srv := newTestServer(t)
	srv.put(t, models.Product{ID: "prod-aaaa", Title: "Rain Jacket", Category: "women", Brand: "puma", Price: 100, TotalStock: 5})
	srv.put(t, models.Product{ID: "prod-bbbb", Title: "Boots", Category: "men", Brand: "nike", Price: 80, TotalStock: 5})

	status, _ := srv.do(t, "PUT", "/api/admin/products/edit/prod-aaaa", map[string]any{"price": 120})
	require.Equal(t, 200, status)

	for i := 0; i < 40; i++ {
		status, _ = srv.do(t, "GET", "/api/shop/products/get/zzzz-zzzz", nil)
		require.Equal(t, 404, status)
		status, _ = srv.do(t, "PUT", "/api/admin/products/edit/prod-bbbb", map[string]any{"price": 80 + i})
		require.Equal(t, 200, status)
	}

	status, body := srv.do(t, "GET", "/api/shop/products/get/prod-aaaa", nil)
	require.Equal(t, 200, status, body)
	assert.Equal(t, 120.0, dataMap(t, body)["price"])

	status, body = srv.do(t, "GET", "/api/admin/products/get", nil)
	require.Equal(t, 200, status)
	var ids []any
	for _, p := range dataList(t, body) {
		ids = append(ids, p["id"])
	}
	assert.ElementsMatch(t, []any{"prod-aaaa", "prod-bbbb"}, ids)
}
