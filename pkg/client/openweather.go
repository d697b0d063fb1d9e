package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-storefront/internal/models"
)

// ErrMalformedResponse is returned when the provider omits temperature or condition.
var ErrMalformedResponse = errors.New("malformed weather response")

const DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5"

type OpenWeatherClient struct {
	*BaseClient
	apiKey  string
	baseURL string
}

type OpenWeatherCurrentResponse struct {
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Name string `json:"name"`
}

func NewOpenWeatherClient(apiKey, baseURL string, config ClientConfig, logger *zap.Logger) *OpenWeatherClient {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherURL
	}
	return &OpenWeatherClient{
		BaseClient: NewBaseClient("openweather", config, logger),
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// CurrentWeather fetches current conditions at the coordinate in metric units.
func (c *OpenWeatherClient) CurrentWeather(ctx context.Context, lat, lon float64) (*models.WeatherSnapshot, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	data, err := c.Get(ctx, c.baseURL+"/weather?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current weather: %w", err)
	}

	var response OpenWeatherCurrentResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if response.Main.Temp == nil || len(response.Weather) == 0 || response.Weather[0].Main == "" {
		return nil, ErrMalformedResponse
	}

	current := response.Weather[0]
	snapshot := &models.WeatherSnapshot{
		Temperature: *response.Main.Temp,
		Condition:   models.Condition(current.Main),
		Location:    response.Name,
		Description: current.Description,
		Icon:        current.Icon,
	}
	if snapshot.Location == "" {
		snapshot.Location = models.UnknownLocation
	}
	if snapshot.Description == "" {
		snapshot.Description = current.Main
	}

	return snapshot, nil
}
