package adapters

import (
	"context"

	"localist_backend/internal/mapcore"
	"localist_backend/internal/search"
	"localist_backend/internal/search/engine"
)

// SearchMapPortProvider hands the search engine its session's map
// controller. The controller structurally satisfies engine.MapPort: the
// engine only reads the viewport center and forwards the confirmed result.
type SearchMapPortProvider struct {
	maps *mapcore.Module
}

// NewSearchMapPortProvider creates the search-to-map bridge.
func NewSearchMapPortProvider(maps *mapcore.Module) *SearchMapPortProvider {
	return &SearchMapPortProvider{maps: maps}
}

// ForSession returns the session's map port. The mirror refresh baked into
// the lookup uses a background context: a stale mirror only affects nearby
// queries, never the center bias or the selection forward.
func (a *SearchMapPortProvider) ForSession(sessionID string) engine.MapPort {
	return a.maps.ControllerFor(context.Background(), sessionID)
}

var _ search.MapPortProvider = (*SearchMapPortProvider)(nil)
