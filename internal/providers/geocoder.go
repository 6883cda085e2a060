package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/smart-mirror/internal/geo"
)

// GeocodingLocator implements geo.Locator by forward-geocoding a configured
// city and country with the Google Geocoding API.
type GeocodingLocator struct {
	city    string
	country string

	geocode func(geocoder.Address) (geocoder.Location, error)
	reverse func(geocoder.Location) ([]geocoder.Address, error)
}

// NewGeocodingLocator sets the package-wide geocoder API key, so only one
// key can be in use per process.
func NewGeocodingLocator(apiKey, city, country string) *GeocodingLocator {
	geocoder.ApiKey = apiKey
	return &GeocodingLocator{
		city:    strings.TrimSpace(city),
		country: strings.TrimSpace(country),
		geocode: geocoder.Geocoding,
		reverse: geocoder.GeocodingReverse,
	}
}

// Locate does not honour ctx; the geocoder library issues its own requests.
func (l *GeocodingLocator) Locate(_ context.Context) (geo.Location, error) {
	if l.city == "" {
		return geo.Location{}, fmt.Errorf("%w: no city configured for geocoding", geo.ErrNoLocation)
	}

	pos, err := l.geocode(geocoder.Address{City: l.city, Country: l.country})
	if err != nil {
		return geo.Location{}, fmt.Errorf("geocode %s, %s: %w", l.city, l.country, err)
	}

	loc := geo.Location{
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		City:      l.city,
	}
	if len(l.country) == 2 {
		loc.CountryCode = strings.ToUpper(l.country)
	} else {
		loc.Country = l.country
	}

	// Prefer Google's canonical names when the reverse lookup succeeds.
	if addrs, err := l.reverse(pos); err == nil && len(addrs) > 0 {
		if addrs[0].City != "" {
			loc.City = addrs[0].City
		}
		if addrs[0].Country != "" {
			loc.Country = addrs[0].Country
		}
	}

	return loc, nil
}
