package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/smart-mirror/internal/geo"
)

// IPInfoLocator implements geo.Locator from the caller's public IP.
type IPInfoLocator struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewIPInfoLocator(cfg HTTPClientConfig) *IPInfoLocator {
	return &IPInfoLocator{
		name:    "ipinfo",
		baseURL: "https://ipinfo.io/json",
		httpCfg: cfg,
		circuit: newCircuitBreaker("ipinfo"),
	}
}

func (l *IPInfoLocator) Locate(ctx context.Context) (geo.Location, error) {
	resp, err := doRequestWithResilience(ctx, l.httpCfg, l.circuit, getRequest(l.baseURL))
	if err != nil {
		return geo.Location{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		City    string `json:"city"`
		Country string `json:"country"`
		Loc     string `json:"loc"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return geo.Location{}, fmt.Errorf("decode ipinfo response: %w", err)
	}

	lat, lon, err := parseLatLng(payload.Loc)
	if err != nil {
		return geo.Location{}, err
	}

	return geo.Location{
		Latitude:    lat,
		Longitude:   lon,
		City:        payload.City,
		CountryCode: strings.ToUpper(payload.Country),
	}, nil
}

// parseLatLng parses "lat,lng".
func parseLatLng(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: invalid coordinates %q", geo.ErrNoLocation, s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid latitude %q", geo.ErrNoLocation, parts[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid longitude %q", geo.ErrNoLocation, parts[1])
	}
	return lat, lon, nil
}
