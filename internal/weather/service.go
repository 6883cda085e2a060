package weather

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"

	"github.com/i474232898/smart-mirror/internal/display"
	"github.com/i474232898/smart-mirror/internal/geo"
)

// UnavailableMessage replaces the temperature when a refresh fails.
const UnavailableMessage = "Unable to get weather information"

// publishTimeout bounds handing a result to the display.
const publishTimeout = 5 * time.Second

// ErrUnavailable wraps every failed forecast fetch.
var ErrUnavailable = errors.New("weather unavailable")

// Refresher fetches the forecast for a fixed location and publishes the
// weather section of the display.
type Refresher struct {
	provider ForecastProvider
	icons    IconFetcher
	table    *CodeTable
	loc      geo.Location
	pub      display.Publisher
	log      zerolog.Logger
	now      func() time.Time
}

// NewRefresher creates a new Refresher.
func NewRefresher(provider ForecastProvider, icons IconFetcher, table *CodeTable, loc geo.Location, pub display.Publisher, log zerolog.Logger) *Refresher {
	return &Refresher{
		provider: provider,
		icons:    icons,
		table:    table,
		loc:      loc,
		pub:      pub,
		log:      log.With().Str("component", "weather").Logger(),
		now:      time.Now,
	}
}

// Refresh runs one fetch-and-publish cycle. On a failed fetch the
// unavailable message is published, no icon is requested, and the fetch
// error is returned wrapped in ErrUnavailable.
func (r *Refresher) Refresh(ctx context.Context) error {
	fc, err := r.provider.Fetch(ctx, r.loc)
	if err != nil {
		update := display.WeatherUpdate{
			Unavailable: true,
			Temperature: UnavailableMessage,
		}
		if pubErr := r.publish(ctx, update); pubErr != nil {
			return pubErr
		}
		return fmt.Errorf("%w: %s for %s: %w", ErrUnavailable, r.provider.Name(), r.loc.Key(), err)
	}

	update := r.build(ctx, fc)
	r.log.Debug().
		Str("location", r.loc.Key()).
		Str("temperature", update.Temperature).
		Str("description", update.Description).
		Msg("weather refreshed")

	return r.publish(ctx, update)
}

// publish hands u to the display on a context detached from the fetch
// deadline, so a fetch that ran out of time still shows its outcome.
func (r *Refresher) publish(ctx context.Context, u display.Update) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	return r.pub.Publish(ctx, u)
}

func (r *Refresher) build(ctx context.Context, fc Forecast) display.WeatherUpdate {
	info, ok := r.table.Lookup(fc.Current.WeatherCode, fc.Current.IsDay)
	if !ok {
		r.log.Info().Int("code", fc.Current.WeatherCode).Msg("invalid weather code")
	}

	return display.WeatherUpdate{
		Temperature: FormatCelsius(Round(fc.Current.TemperatureC)),
		Description: info.Description,
		IconURL:     info.Icon,
		Icon:        r.icon(ctx, info.Icon),
		Forecast:    r.rows(ctx, fc.Daily),
	}
}

// rows builds the forecast table from daily entries 1..6; entry 0 is today.
func (r *Refresher) rows(ctx context.Context, daily []Day) []display.ForecastRow {
	rows := make([]display.ForecastRow, 0, display.ForecastDays)
	today := r.now()

	for i := 1; i < len(daily) && len(rows) < display.ForecastDays; i++ {
		d := daily[i]

		date := d.Date
		if date.IsZero() {
			date = today.AddDate(0, 0, i)
		}

		iconURL := r.table.DayIcon(d.WeatherCode)
		if iconURL == "" {
			r.log.Error().Int("code", d.WeatherCode).Msg("invalid weather code")
		}

		rows = append(rows, display.ForecastRow{
			Label:       date.Format("Monday"),
			Temperature: FormatCelsius(Average(d.MaxC, d.MinC)),
			IconURL:     iconURL,
			Icon:        r.icon(ctx, iconURL),
		})
	}
	return rows
}

// icon fetches url, returning nil for an empty url or on failure.
func (r *Refresher) icon(ctx context.Context, url string) image.Image {
	if url == "" {
		return nil
	}
	img, err := r.icons.FetchIcon(ctx, url)
	if err != nil {
		r.log.Error().Err(err).Str("url", url).Msg("error loading weather icon")
		return nil
	}
	return img
}
