package adapters

import (
	"context"
	"fmt"

	"localist_backend/internal/mapcore"
	"localist_backend/internal/search/geocode"
)

// MapAddressResolver adapts the geocode client for the map core's ghost-pin
// address lookup.
type MapAddressResolver struct {
	geocoder *geocode.Client
}

// NewMapAddressResolver creates an address resolver backed by the reverse
// geocode endpoint.
func NewMapAddressResolver(geocoder *geocode.Client) *MapAddressResolver {
	return &MapAddressResolver{geocoder: geocoder}
}

// ResolveAddress reverse-geocodes the coordinate to a display address.
// Returns empty when the position matches no feature.
func (a *MapAddressResolver) ResolveAddress(ctx context.Context, lat, lon float64) (string, error) {
	props, err := a.geocoder.Reverse(ctx, lat, lon)
	if err != nil {
		return "", fmt.Errorf("map address resolver: %w", err)
	}
	if props == nil {
		return "", nil
	}
	return geocode.FormatAddress(props), nil
}

var _ mapcore.AddressResolver = (*MapAddressResolver)(nil)
