package mapcore

import (
	"sync"

	"github.com/google/uuid"

	"localist_backend/internal/geo"
	"localist_backend/internal/notify"
)

// Pin is the map core's view of a saved pin: identity, position and the
// category styling the renderer needs. The persistence module owns the full
// record.
type Pin struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Lat   float64   `json:"lat"`
	Lon   float64   `json:"lon"`
	Icon  string    `json:"icon"`
	Color string    `json:"color"`
}

// SpatialIndex maintains the live in-memory pin mirror behind the map:
// marker lifecycle, radius queries and single-marker selection. Queries are
// linear scans; the mirror only ever holds a viewport's worth of pins.
type SpatialIndex struct {
	mu       sync.RWMutex
	pins     map[uuid.UUID]Pin
	order    []uuid.UUID
	selected uuid.UUID

	view      MapView
	haptics   notify.Haptics
	sessionID string
}

// NewSpatialIndex creates an empty index rendering through view.
func NewSpatialIndex(sessionID string, view MapView, haptics notify.Haptics) *SpatialIndex {
	return &SpatialIndex{
		pins:      make(map[uuid.UUID]Pin),
		view:      view,
		haptics:   haptics,
		sessionID: sessionID,
	}
}

func markerID(id uuid.UUID) string {
	return "pin:" + id.String()
}

// SetAll replaces the entire marker set.
func (s *SpatialIndex) SetAll(pins []Pin) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		s.view.RemoveMarker(markerID(id))
	}
	s.pins = make(map[uuid.UUID]Pin, len(pins))
	s.order = s.order[:0]
	s.selected = uuid.Nil

	for _, p := range pins {
		s.addLocked(p)
	}
}

// Add places one pin marker. Adding an already-present pin replaces its
// marker in place.
func (s *SpatialIndex) Add(pin Pin) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pins[pin.ID]; exists {
		s.view.RemoveMarker(markerID(pin.ID))
		s.pins[pin.ID] = pin
		s.view.AddMarker(Marker{ID: markerID(pin.ID), Kind: MarkerPin, Lat: pin.Lat, Lon: pin.Lon, Selected: s.selected == pin.ID})
		return
	}
	s.addLocked(pin)
}

func (s *SpatialIndex) addLocked(pin Pin) {
	s.pins[pin.ID] = pin
	s.order = append(s.order, pin.ID)
	s.view.AddMarker(Marker{ID: markerID(pin.ID), Kind: MarkerPin, Lat: pin.Lat, Lon: pin.Lon})
}

// Remove drops one pin and its marker.
func (s *SpatialIndex) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pins[id]; !exists {
		return
	}
	delete(s.pins, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.selected == id {
		s.selected = uuid.Nil
	}
	s.view.RemoveMarker(markerID(id))
}

// Pins returns the mirrored pins in insertion order.
func (s *SpatialIndex) Pins() []Pin {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Pin, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.pins[id])
	}
	return out
}

// Len returns the number of mirrored pins.
func (s *SpatialIndex) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pins)
}

// FindWithinRadius returns all pins within radiusKm of the point, unordered.
// Linear haversine scan, O(n).
func (s *SpatialIndex) FindWithinRadius(lat, lon, radiusKm float64) []Pin {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Pin
	for _, id := range s.order {
		p := s.pins[id]
		if geo.WithinRadius(lat, lon, p.Lat, p.Lon, radiusKm) {
			out = append(out, p)
		}
	}
	return out
}

// ActivatePin handles a marker click: selection plus a short haptic pulse.
func (s *SpatialIndex) ActivatePin(id uuid.UUID, zoom int, clusterRadiusPx float64) bool {
	if !s.Select(id, zoom, clusterRadiusPx) {
		return false
	}
	s.haptics.Pulse(s.sessionID, notify.Light)
	return true
}

// Select marks exactly one pin selected. When the pin currently sits inside
// a collapsed cluster the cluster is asked to expand first, so the
// individual marker exists before the selection style is applied.
func (s *SpatialIndex) Select(id uuid.UUID, zoom int, clusterRadiusPx float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pin, exists := s.pins[id]
	if !exists {
		return false
	}

	pins := make([]Pin, 0, len(s.order))
	for _, pid := range s.order {
		pins = append(pins, s.pins[pid])
	}
	for _, cluster := range BuildClusters(pins, zoom, clusterRadiusPx) {
		if len(cluster.Members) < 2 {
			continue
		}
		for _, member := range cluster.Members {
			if member.ID == id {
				s.view.ExpandCluster(cluster.ID)
			}
		}
	}

	if s.selected != uuid.Nil && s.selected != id {
		prev := s.pins[s.selected]
		s.view.RemoveMarker(markerID(s.selected))
		s.view.AddMarker(Marker{ID: markerID(s.selected), Kind: MarkerPin, Lat: prev.Lat, Lon: prev.Lon})
	}

	s.selected = id
	s.view.RemoveMarker(markerID(id))
	s.view.AddMarker(Marker{ID: markerID(id), Kind: MarkerPin, Lat: pin.Lat, Lon: pin.Lon, Selected: true})
	return true
}

// Deselect clears any selection visuals. Idempotent.
func (s *SpatialIndex) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == uuid.Nil {
		return
	}
	pin := s.pins[s.selected]
	s.view.RemoveMarker(markerID(s.selected))
	s.view.AddMarker(Marker{ID: markerID(s.selected), Kind: MarkerPin, Lat: pin.Lat, Lon: pin.Lon})
	s.selected = uuid.Nil
}

// Selected returns the selected pin id, or uuid.Nil.
func (s *SpatialIndex) Selected() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}
