package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-storefront/internal/models"
)

const DefaultOpenMeteoURL = "https://api.open-meteo.com/v1"

// OpenMeteoClient is a keyless provider. WMO weather codes are mapped onto
// the OpenWeatherMap condition vocabulary so discount rules stay the same.
type OpenMeteoClient struct {
	*BaseClient
	baseURL string
}

type OpenMeteoCurrentResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Current   struct {
		Time          string   `json:"time"`
		Temperature2M *float64 `json:"temperature_2m"`
		WeatherCode   *int     `json:"weather_code"`
		IsDay         int      `json:"is_day"`
	} `json:"current"`
}

func NewOpenMeteoClient(baseURL string, config ClientConfig, logger *zap.Logger) *OpenMeteoClient {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoURL
	}
	return &OpenMeteoClient{
		BaseClient: NewBaseClient("openmeteo", config, logger),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (c *OpenMeteoClient) CurrentWeather(ctx context.Context, lat, lon float64) (*models.WeatherSnapshot, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current", "temperature_2m,weather_code,is_day")

	data, err := c.Get(ctx, c.baseURL+"/forecast?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current weather: %w", err)
	}

	var response OpenMeteoCurrentResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if response.Current.Temperature2M == nil || response.Current.WeatherCode == nil {
		return nil, ErrMalformedResponse
	}

	code := *response.Current.WeatherCode
	condition, ok := weatherCodeToCondition(code)
	if !ok {
		return nil, fmt.Errorf("%w: unknown weather code %d", ErrMalformedResponse, code)
	}

	return &models.WeatherSnapshot{
		Temperature: *response.Current.Temperature2M,
		Condition:   condition,
		Location:    models.UnknownLocation,
		Description: weatherCodeToDescription(code),
		Icon:        weatherCodeToIcon(code, response.Current.IsDay == 1),
	}, nil
}

// WMO Weather interpretation codes
var weatherCodes = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snow fall",
	73: "Moderate snow fall",
	75: "Heavy snow fall",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

func weatherCodeToDescription(code int) string {
	if desc, ok := weatherCodes[code]; ok {
		return strings.ToLower(desc)
	}
	return "unknown"
}

func weatherCodeToCondition(code int) (models.Condition, bool) {
	switch {
	case code <= 1:
		return models.ConditionClear, true
	case code <= 3:
		return models.ConditionClouds, true
	case code == 45 || code == 48:
		return models.ConditionFog, true
	case code >= 51 && code <= 57:
		return models.ConditionDrizzle, true
	case code >= 61 && code <= 67, code >= 80 && code <= 82:
		return models.ConditionRain, true
	case code >= 71 && code <= 77, code == 85 || code == 86:
		return models.ConditionSnow, true
	case code >= 95 && code <= 99:
		return models.ConditionThunderstorm, true
	}
	return "", false
}

func weatherCodeToIcon(code int, day bool) string {
	suffix := "n"
	if day {
		suffix = "d"
	}
	switch {
	case code == 0:
		return "01" + suffix
	case code <= 3:
		return "02" + suffix
	case code <= 48:
		return "50" + suffix
	case code <= 67:
		return "10" + suffix
	case code <= 77:
		return "13" + suffix
	case code <= 82:
		return "09" + suffix
	case code <= 86:
		return "13" + suffix
	}
	return "11" + suffix
}
