package weather

import (
	"time"
)

// Current is the "current" block of a forecast response.
type Current struct {
	TemperatureC float64
	IsDay        bool
	WeatherCode  int
}

// Day is one entry of the daily forecast.
type Day struct {
	Date        time.Time
	WeatherCode int
	MaxC        float64
	MinC        float64
}

// Forecast is what a ForecastProvider returns: current conditions plus the
// daily forecast, today first.
type Forecast struct {
	Current Current
	Daily   []Day
}
