package providers

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/rs/zerolog"

	"github.com/i474232898/smart-mirror/internal/display"
	"github.com/i474232898/smart-mirror/internal/geo"
	"github.com/i474232898/smart-mirror/internal/news"
	"github.com/i474232898/smart-mirror/internal/weather"
)

const cannedForecast = `{
  "latitude": 52.52,
  "longitude": 13.41,
  "current": {"time": "2024-05-06T14:00", "temperature_2m": 21.4, "is_day": 1, "weather_code": 0},
  "daily": {
    "time": ["2024-05-06","2024-05-07","2024-05-08","2024-05-09","2024-05-10","2024-05-11","2024-05-12"],
    "weather_code": [0, 1, 2, 3, 61, 95, 0],
    "temperature_2m_max": [22.0, 10.0, 18.2, 17.9, 14.0, 20.0, 25.5],
    "temperature_2m_min": [11.0, 5.0, 9.1, 8.0, 7.0, 12.0, 14.5]
  }
}`

func fastConfig(client *http.Client) HTTPClientConfig {
	return HTTPClientConfig{
		Client: client,
		Backoff: BackoffConfig{
			MaxRetries:      2,
			InitialInterval: time.Millisecond,
			MaxInterval:     2 * time.Millisecond,
		},
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

type capturePublisher struct {
	updates []display.Update
}

func (p *capturePublisher) Publish(_ context.Context, u display.Update) error {
	p.updates = append(p.updates, u)
	return nil
}

var berlin = geo.Location{Latitude: 52.52, Longitude: 13.405, City: "Berlin", CountryCode: "DE"}

func TestOpenMeteoFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("daily") != "weather_code,temperature_2m_max,temperature_2m_min" {
			t.Errorf("unexpected daily param %q", q.Get("daily"))
		}
		if q.Get("current") != "temperature_2m,is_day,weather_code" {
			t.Errorf("unexpected current param %q", q.Get("current"))
		}
		if q.Get("latitude") != "52.520000" || q.Get("longitude") != "13.405000" {
			t.Errorf("unexpected coordinates %q,%q", q.Get("latitude"), q.Get("longitude"))
		}
		w.Write([]byte(cannedForecast))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(fastConfig(srv.Client()))
	p.baseURL = srv.URL

	fc, err := p.Fetch(context.Background(), berlin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fc.Current.TemperatureC != 21.4 || !fc.Current.IsDay || fc.Current.WeatherCode != 0 {
		t.Fatalf("unexpected current %+v", fc.Current)
	}
	if len(fc.Daily) != 7 {
		t.Fatalf("expected 7 days, got %d", len(fc.Daily))
	}
	if fc.Daily[1].MaxC != 10 || fc.Daily[1].MinC != 5 || fc.Daily[1].Date.Weekday() != time.Tuesday {
		t.Fatalf("unexpected day 1 %+v", fc.Daily[1])
	}
}

func TestOpenMeteoServerErrorIsRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(fastConfig(srv.Client()))
	p.baseURL = srv.URL

	_, err := p.Fetch(context.Background(), berlin)
	if !errors.Is(err, ErrServerError) {
		t.Fatalf("expected ErrServerError, got %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestClientErrorIsNotRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, `{"error":true,"reason":"Latitude must be in range"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(fastConfig(srv.Client()))
	p.baseURL = srv.URL

	_, err := p.Fetch(context.Background(), berlin)
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("expected ErrUnexpectedStatus, got %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

// TestWeatherEndToEnd feeds a canned forecast through the provider, the
// refresher and the icon fetcher.
func TestWeatherEndToEnd(t *testing.T) {
	icon := pngBytes(t)
	var iconHits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(cannedForecast))
	})
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&iconHits, 1)
		w.Header().Set("Content-Type", "image/png")
		w.Write(icon)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	table, err := weather.LoadCodeTable(strings.NewReader(`{
	  "0": {"day": {"description": "Sunny", "image": "` + srv.URL + `/img/01d.png"},
	        "night": {"description": "Clear", "image": "` + srv.URL + `/img/01n.png"}}
	}`))
	if err != nil {
		t.Fatalf("load table: %v", err)
	}

	cfg := fastConfig(srv.Client())
	p := NewOpenMeteoProvider(cfg)
	p.baseURL = srv.URL + "/forecast"
	pub := &capturePublisher{}

	r := weather.NewRefresher(p, NewIconFetcher(cfg), table, berlin, pub, zerolog.Nop())
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	u := pub.updates[0].(display.WeatherUpdate)
	if u.Temperature != "21°C" {
		t.Fatalf("expected 21°C, got %q", u.Temperature)
	}
	if u.Description != "Sunny" || u.Icon == nil {
		t.Fatalf("unexpected description/icon %q / %v", u.Description, u.Icon)
	}
	if len(u.Forecast) != 6 || u.Forecast[0].Temperature != "8°C" {
		t.Fatalf("unexpected forecast %+v", u.Forecast)
	}
	if u.Forecast[5].Label != "Sunday" || u.Forecast[5].Icon == nil {
		t.Fatalf("unexpected last row %+v", u.Forecast[5])
	}
	// The main icon and the last row share a URL; the cache serves the second.
	if got := atomic.LoadInt32(&iconHits); got != 1 {
		t.Fatalf("expected 1 icon download, got %d", got)
	}
}

func TestWeatherNonOKSkipsIcons(t *testing.T) {
	var iconHits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&iconHits, 1)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	table, err := weather.DefaultCodeTable()
	if err != nil {
		t.Fatalf("load table: %v", err)
	}
	cfg := fastConfig(srv.Client())
	p := NewOpenMeteoProvider(cfg)
	p.baseURL = srv.URL + "/forecast"
	pub := &capturePublisher{}

	err = weather.NewRefresher(p, NewIconFetcher(cfg), table, berlin, pub, zerolog.Nop()).Refresh(context.Background())
	if !errors.Is(err, weather.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	u := pub.updates[0].(display.WeatherUpdate)
	if u.Temperature != "Unable to get weather information" {
		t.Fatalf("unexpected temperature %q", u.Temperature)
	}
	if atomic.LoadInt32(&iconHits) != 0 {
		t.Fatal("icons must not be fetched after a failed forecast")
	}
}

func TestIconFetcherRejectsGarbage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not an image"))
	}))
	defer srv.Close()

	if _, err := NewIconFetcher(fastConfig(srv.Client())).FetchIcon(context.Background(), srv.URL); err == nil {
		t.Fatal("expected decode error")
	}
}

const cannedFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Top stories</title>
    <item>
      <title>Parliament passes budget - The Local</title>
      <link>https://example.com/a</link>
      <source url="https://www.thelocal.de">The Local</source>
    </item>
    <item>
      <title>Second story - Other</title>
    </item>
  </channel>
</rss>`

func TestGoogleNewsLocationFeed(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(cannedFeed))
	}))
	defer srv.Close()

	s := NewGoogleNewsSource(fastConfig(srv.Client()), berlin)
	s.baseURL = srv.URL

	h, err := s.TopHeadline(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/headlines/section/geo/Germany" {
		t.Fatalf("unexpected feed path %q", path)
	}
	if h.Publisher != "The Local" {
		t.Fatalf("unexpected publisher %q", h.Publisher)
	}
	if got := news.StripPublisher(h.Title, h.Publisher); got != "Parliament passes budget" {
		t.Fatalf("unexpected stripped title %q", got)
	}
}

func TestGoogleNewsUnknownCountryUsesTopStories(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`<rss version="2.0"><channel><item><title>Quiet day - Wire</title></item></channel></rss>`))
	}))
	defer srv.Close()

	s := NewGoogleNewsSource(fastConfig(srv.Client()), geo.Location{CountryCode: "ZZ"})
	s.baseURL = srv.URL

	h, err := s.TopHeadline(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/" && path != "" {
		t.Fatalf("expected top stories feed, got path %q", path)
	}
	if h.Publisher != "Wire" {
		t.Fatalf("publisher should come from the title suffix, got %q", h.Publisher)
	}
}

func TestGoogleNewsEmptyFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<rss version="2.0"><channel><title>empty</title></channel></rss>`))
	}))
	defer srv.Close()

	s := NewGoogleNewsSource(fastConfig(srv.Client()), berlin)
	s.baseURL = srv.URL

	if _, err := s.TopHeadline(context.Background()); !errors.Is(err, ErrNoHeadlines) {
		t.Fatalf("expected ErrNoHeadlines, got %v", err)
	}
}

func TestIPInfoLocate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ip":"203.0.113.9","city":"Lisbon","country":"pt","loc":"38.7167,-9.1333"}`))
	}))
	defer srv.Close()

	l := NewIPInfoLocator(fastConfig(srv.Client()))
	l.baseURL = srv.URL

	loc, err := l.Locate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := geo.Location{Latitude: 38.7167, Longitude: -9.1333, City: "Lisbon", CountryCode: "PT"}
	if loc != want {
		t.Fatalf("got %+v, want %+v", loc, want)
	}
}

func TestParseLatLng(t *testing.T) {
	for _, bad := range []string{"", "1.0", "a,b", "1,b"} {
		if _, _, err := parseLatLng(bad); !errors.Is(err, geo.ErrNoLocation) {
			t.Errorf("parseLatLng(%q) error = %v", bad, err)
		}
	}
}

func TestGeocodingLocator(t *testing.T) {
	l := &GeocodingLocator{
		city:    "paris",
		country: "fr",
		geocode: func(a geocoder.Address) (geocoder.Location, error) {
			if a.City != "paris" || a.Country != "fr" {
				t.Errorf("unexpected address %+v", a)
			}
			return geocoder.Location{Latitude: 48.8566, Longitude: 2.3522}, nil
		},
		reverse: func(geocoder.Location) ([]geocoder.Address, error) {
			return []geocoder.Address{{City: "Paris", Country: "France"}}, nil
		},
	}

	loc, err := l.Locate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := geo.Location{Latitude: 48.8566, Longitude: 2.3522, City: "Paris", CountryCode: "FR", Country: "France"}
	if loc != want {
		t.Fatalf("got %+v, want %+v", loc, want)
	}
}

func TestGeocodingLocatorRequiresCity(t *testing.T) {
	l := &GeocodingLocator{}
	if _, err := l.Locate(context.Background()); !errors.Is(err, geo.ErrNoLocation) {
		t.Fatalf("expected ErrNoLocation, got %v", err)
	}
}
