package geo

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ErrNoLocation is returned when a Locator could not determine a position.
var ErrNoLocation = errors.New("location could not be determined")

// Location is where the mirror is. It is resolved once at startup.
type Location struct {
	Latitude    float64 `json:"latitude" validate:"latitude"`
	Longitude   float64 `json:"longitude" validate:"longitude"`
	City        string  `json:"city"`
	CountryCode string  `json:"countryCode"`
	Country     string  `json:"country"`
}

// Key returns a short label for logs.
func (l Location) Key() string {
	if l.City == "" {
		return fmt.Sprintf("%.4f,%.4f", l.Latitude, l.Longitude)
	}
	return l.City + ":" + l.CountryCode
}

// CountryName returns the English name of the country, preferring an
// explicit name over a lookup of the ISO code.
func (l Location) CountryName() (string, error) {
	if l.Country != "" {
		return l.Country, nil
	}
	return CountryName(l.CountryCode)
}

// Locator resolves the mirror's location.
type Locator interface {
	Locate(ctx context.Context) (Location, error)
}

// Static is a Locator that always returns the same Location.
type Static Location

func (s Static) Locate(context.Context) (Location, error) {
	return Location(s), nil
}

// Validate checks that the coordinates are in range.
func (l Location) Validate() error {
	if err := validate.Struct(l); err != nil {
		return fmt.Errorf("%w: %w", ErrNoLocation, err)
	}
	return nil
}

// Chain tries each Locator in order and returns the first valid location.
type Chain []Locator

func (c Chain) Locate(ctx context.Context) (Location, error) {
	var errs []error
	for _, l := range c {
		loc, err := l.Locate(ctx)
		if err == nil {
			err = loc.Validate()
		}
		if err == nil {
			return loc, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return Location{}, ErrNoLocation
	}
	return Location{}, fmt.Errorf("%w: %w", ErrNoLocation, errors.Join(errs...))
}
