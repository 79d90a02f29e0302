package services

import (
	"context"
	"errors"
	"fmt"

	geo "github.com/codingsince1985/geo-golang"
	"github.com/codingsince1985/geo-golang/mapquest/open"
	"github.com/codingsince1985/geo-golang/openstreetmap"

	"github.com/arzan03/DevCamper/internal/models"
)

// ErrAddressNotFound is returned when the provider has no match.
var ErrAddressNotFound = errors.New("address could not be geocoded")

// Geocoder resolves a free-form address or postal code to a point.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*models.Location, error)
}

type geoGeocoder struct {
	provider geo.Geocoder
}

// NewGeocoder builds a geocoder for the named provider.
func NewGeocoder(provider, apiKey string) (Geocoder, error) {
	switch provider {
	case "mapquest":
		if apiKey == "" {
			return nil, errors.New("mapquest geocoder requires GEOCODER_API_KEY")
		}
		return &geoGeocoder{provider: open.Geocoder(apiKey)}, nil
	case "openstreetmap", "":
		return &geoGeocoder{provider: openstreetmap.Geocoder()}, nil
	}
	return nil, fmt.Errorf("unknown geocoder provider %q", provider)
}

func (g *geoGeocoder) Geocode(ctx context.Context, address string) (*models.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	point, err := g.provider.Geocode(address)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", address, err)
	}
	if point == nil {
		return nil, ErrAddressNotFound
	}

	loc := models.NewPoint(point.Lng, point.Lat)
	// address parts are best effort
	if addr, err := g.provider.ReverseGeocode(point.Lat, point.Lng); err == nil && addr != nil {
		loc.FormattedAddress = addr.FormattedAddress
		loc.Street = addr.Street
		loc.City = addr.City
		loc.State = addr.StateCode
		if loc.State == "" {
			loc.State = addr.State
		}
		loc.Zipcode = addr.Postcode
		loc.Country = addr.CountryCode
	}
	return loc, nil
}
