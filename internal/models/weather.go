package models

// Condition is the primary weather class reported by the provider,
// using the OpenWeatherMap vocabulary.
type Condition string

const (
	ConditionClear        Condition = "Clear"
	ConditionClouds       Condition = "Clouds"
	ConditionRain         Condition = "Rain"
	ConditionDrizzle      Condition = "Drizzle"
	ConditionThunderstorm Condition = "Thunderstorm"
	ConditionSnow         Condition = "Snow"
	ConditionMist         Condition = "Mist"
	ConditionFog          Condition = "Fog"
)

// UnknownLocation is reported when the provider returns no place name.
const UnknownLocation = "Unknown location"

// WeatherSnapshot is the current weather at a coordinate. A nil snapshot
// means weather was unavailable.
type WeatherSnapshot struct {
	Temperature float64   `json:"temperature"`
	Condition   Condition `json:"conditions"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Icon        string    `json:"icon,omitempty"`
}

// Is reports whether the snapshot's condition is one of cs.
func (w *WeatherSnapshot) Is(cs ...Condition) bool {
	if w == nil {
		return false
	}
	for _, c := range cs {
		if w.Condition == c {
			return true
		}
	}
	return false
}

// DiscountDecision is the outcome of the weather discount rules.
type DiscountDecision struct {
	Percentage int    `json:"percentage"`
	Reason     string `json:"reason"`
}
