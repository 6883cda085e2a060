package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/smart-mirror/internal/geo"
	"github.com/i474232898/smart-mirror/internal/weather"
)

const (
	openMeteoDaily   = "weather_code,temperature_2m_max,temperature_2m_min"
	openMeteoCurrent = "temperature_2m,is_day,weather_code"
)

// OpenMeteoProvider implements weather.ForecastProvider for Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(cfg HTTPClientConfig) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: cfg,
		circuit: newCircuitBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// Fetch returns current conditions and the 7-day daily forecast.
func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc geo.Location) (weather.Forecast, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", loc.Latitude))
	values.Set("longitude", fmt.Sprintf("%f", loc.Longitude))
	values.Set("daily", openMeteoDaily)
	values.Set("current", openMeteoCurrent)

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, getRequest(p.baseURL+"?"+values.Encode()))
	if err != nil {
		return weather.Forecast{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Current struct {
			Temperature float64 `json:"temperature_2m"`
			IsDay       int     `json:"is_day"`
			WeatherCode int     `json:"weather_code"`
		} `json:"current"`
		Daily struct {
			Time        []string  `json:"time"`
			WeatherCode []int     `json:"weather_code"`
			Max         []float64 `json:"temperature_2m_max"`
			Min         []float64 `json:"temperature_2m_min"`
		} `json:"daily"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Forecast{}, fmt.Errorf("decode openmeteo forecast: %w", err)
	}

	n := min(len(payload.Daily.WeatherCode), len(payload.Daily.Max), len(payload.Daily.Min))
	days := make([]weather.Day, 0, n)
	for i := 0; i < n; i++ {
		d := weather.Day{
			WeatherCode: payload.Daily.WeatherCode[i],
			MaxC:        payload.Daily.Max[i],
			MinC:        payload.Daily.Min[i],
		}
		if i < len(payload.Daily.Time) {
			if ts, err := time.ParseInLocation("2006-01-02", payload.Daily.Time[i], time.Local); err == nil {
				d.Date = ts
			}
		}
		days = append(days, d)
	}

	return weather.Forecast{
		Current: weather.Current{
			TemperatureC: payload.Current.Temperature,
			IsDay:        payload.Current.IsDay == 1,
			WeatherCode:  payload.Current.WeatherCode,
		},
		Daily: days,
	}, nil
}
