package weather

import (
	"context"
	"image"

	"github.com/i474232898/smart-mirror/internal/geo"
)

// ForecastProvider abstracts the forecast API (Open-Meteo).
type ForecastProvider interface {
	Name() string
	Fetch(ctx context.Context, loc geo.Location) (Forecast, error)
}

// IconFetcher downloads and decodes a weather icon.
type IconFetcher interface {
	FetchIcon(ctx context.Context, url string) (image.Image, error)
}
