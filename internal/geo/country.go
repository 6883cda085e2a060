package geo

import (
	"errors"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ErrUnknownCountry is returned for codes that do not name a country.
var ErrUnknownCountry = errors.New("country not found")

// CountryName maps an ISO 3166-1 alpha-2 code to its English name.
func CountryName(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", ErrUnknownCountry
	}
	region, err := language.ParseRegion(code)
	if err != nil || !region.IsCountry() {
		return "", ErrUnknownCountry
	}
	name := display.English.Regions().Name(region)
	if name == "" {
		return "", ErrUnknownCountry
	}
	return name, nil
}
