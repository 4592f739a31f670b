// Package adapters wires module boundaries together: thin translations
// between one module's port interface and another module's implementation,
// so the modules themselves never import each other.
package adapters

import (
	"context"
	"fmt"

	"localist_backend/internal/mapcore"
	pinrepo "localist_backend/internal/pins/repository"
)

// MapPinProvider adapts the pin repository for the map core's mirror: the
// full persistence record collapses to identity, position and category
// styling.
type MapPinProvider struct {
	repo pinrepo.PinReader
}

// NewMapPinProvider creates a pin provider backed by the pin repository.
func NewMapPinProvider(repo pinrepo.PinReader) *MapPinProvider {
	return &MapPinProvider{repo: repo}
}

// ListPins returns the pins visible to the session as map mirror entries.
func (a *MapPinProvider) ListPins(ctx context.Context, ownerSession string) ([]mapcore.Pin, error) {
	pins, err := a.repo.GetAll(ctx, ownerSession)
	if err != nil {
		return nil, fmt.Errorf("map pin provider: list pins: %w", err)
	}

	out := make([]mapcore.Pin, 0, len(pins))
	for _, p := range pins {
		out = append(out, mapcore.Pin{
			ID:    p.ID,
			Name:  p.Name,
			Lat:   p.Latitude,
			Lon:   p.Longitude,
			Icon:  p.Category.Icon,
			Color: p.Category.Color,
		})
	}
	return out, nil
}

var _ mapcore.PinProvider = (*MapPinProvider)(nil)
