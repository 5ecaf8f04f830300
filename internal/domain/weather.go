package domain

import (
	"context"
	"time"
)

// Weather is the current observation for a location, in metric units.
type Weather struct {
	Temperature float64   `json:"temperature"` // °C
	Humidity    float64   `json:"humidity"`    // %
	Pressure    float64   `json:"pressure"`    // hPa
	CloudCover  float64   `json:"cloud_cover"` // %
	Rainfall    float64   `json:"rainfall"`    // mm over the last hour
	Description string    `json:"description,omitempty"`
	ObservedAt  time.Time `json:"observed_at"`
}

// WeatherProvider looks up current conditions at a coordinate.
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, lat, lon float64) (Weather, error)
}
