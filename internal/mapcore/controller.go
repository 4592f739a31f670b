package mapcore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"localist_backend/internal/geo"
	"localist_backend/internal/notify"
	"localist_backend/internal/osm"
	"localist_backend/platform/config"
	"localist_backend/platform/logger"
)

const flyDuration = 1500 * time.Millisecond

const (
	ghostMarkerID  = "ghost"
	searchMarkerID = "search"
	userMarkerID   = "user"
)

// GhostPin is a tentative, unsaved placement candidate: the clicked
// coordinates plus any existing pins found within the nearby radius.
// Ephemeral: created on map click, cleared on cancel, commit or a new click.
// Address starts as the localized "identifying" placeholder and resolves in
// the background; clients poll the ghost to pick up the final text.
type GhostPin struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address"`
	Nearby  []Pin   `json:"nearby"`
}

// AddressResolver reverse-geocodes a coordinate to a display address.
// Empty string means the position has no identifiable address.
type AddressResolver interface {
	ResolveAddress(ctx context.Context, lat, lon float64) (string, error)
}

// Localizer resolves message keys to display text for ghost-pin address
// states. Satisfied by the i18n provider.
type Localizer interface {
	T(key string) string
}

const (
	keyIdentifyingAddress = "common.identifyingAddress"
	keyAddressNotFound    = "common.addressNotFound"
)

const resolveAddressTimeout = 10 * time.Second

// Viewport is the client-reported map view.
type Viewport struct {
	Center geo.Point `json:"center"`
	Zoom   int       `json:"zoom"`
}

// Controller orchestrates one session's map: ghost-pin placement, pin
// selection, search-result centering and user-location tracking. All methods
// are safe for concurrent use; internally one mutex serializes interaction
// state the way a single-threaded UI event loop would.
type Controller struct {
	sessionID string
	cfg       config.MapConfig
	index     *SpatialIndex
	view      MapView
	notifier  notify.Notifier
	haptics   notify.Haptics
	location  LocationSource
	resolver  AddressResolver
	locales   Localizer
	log       *logger.Logger

	mu         sync.Mutex
	viewport   *Viewport
	ghost      *GhostPin
	ghostSeq   uint64
	hasSearch  bool
	userSample *LocationSample
	hasUser    bool
	watch      WatchHandle
}

// NewController creates a map controller for one client session.
func NewController(sessionID string, cfg config.MapConfig, view MapView, location LocationSource, resolver AddressResolver, locales Localizer, notifier notify.Notifier, haptics notify.Haptics, log *logger.Logger) *Controller {
	return &Controller{
		sessionID: sessionID,
		cfg:       cfg,
		index:     NewSpatialIndex(sessionID, view, haptics),
		view:      view,
		notifier:  notifier,
		haptics:   haptics,
		location:  location,
		resolver:  resolver,
		locales:   locales,
		log:       log,
	}
}

// Index exposes the spatial index for the pin mirror.
func (c *Controller) Index() *SpatialIndex {
	return c.index
}

// SetViewport records the client's current map view. Clustering and search
// bias read from it.
func (c *Controller) SetViewport(vp Viewport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport = &vp
}

// Center returns the current viewport center, or nil before the client has
// reported one. Used as the geocode ranking bias.
func (c *Controller) Center() *geo.Point {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.viewport == nil {
		return nil
	}
	center := c.viewport.Center
	return &center
}

// Zoom returns the current zoom, falling back to the search zoom before the
// client has reported a viewport.
func (c *Controller) Zoom() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.viewport == nil {
		return c.cfg.GetMapSearchZoom()
	}
	return c.viewport.Zoom
}

// SelectLocation centers the map on a confirmed search result: any previous
// search marker is replaced, then the viewport fits the place's extent when
// it has one, or flies to the point. Extent takes priority over point-fly.
func (c *Controller) SelectLocation(_ context.Context, place osm.Place) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hasSearch {
		c.view.RemoveMarker(searchMarkerID)
	}

	kind := MarkerSearch
	if place.Kind() == osm.KindArea {
		kind = MarkerArea
	}
	c.view.AddMarker(Marker{ID: searchMarkerID, Kind: kind, Lat: place.Lat, Lon: place.Lon})
	c.hasSearch = true

	if place.Extent != nil {
		c.view.FitBounds(*place.Extent, c.cfg.GetFitBoundsPadding(), c.cfg.GetFitBoundsMaxZoom())
	} else {
		c.view.FlyTo(geo.Point{Lat: place.Lat, Lon: place.Lon}, c.cfg.GetMapSearchZoom(), flyDuration)
	}
}

// HandleMapClick creates or replaces the single ghost-pin candidate at the
// clicked point, scanning the mirror for existing pins within the nearby
// radius. The scan is inline; the mirror is already in memory. The address
// resolves in the background so the click response never waits on the
// geocoder.
func (c *Controller) HandleMapClick(lat, lon float64) GhostPin {
	nearby := c.index.FindWithinRadius(lat, lon, c.cfg.GetNearbyRadiusKm())
	if nearby == nil {
		nearby = []Pin{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.haptics.Pulse(c.sessionID, notify.Light)

	if c.ghost != nil {
		c.view.RemoveMarker(ghostMarkerID)
	}
	c.view.AddMarker(Marker{ID: ghostMarkerID, Kind: MarkerGhost, Lat: lat, Lon: lon})

	ghost := GhostPin{Lat: lat, Lon: lon, Address: c.locales.T(keyIdentifyingAddress), Nearby: nearby}
	c.ghost = &ghost
	c.ghostSeq++
	go c.resolveGhostAddress(c.ghostSeq, lat, lon)
	return ghost
}

// resolveGhostAddress fills in the ghost's address once the reverse geocode
// returns. A newer click or a cleared ghost discards the result.
func (c *Controller) resolveGhostAddress(seq uint64, lat, lon float64) {
	ctx, cancel := context.WithTimeout(context.Background(), resolveAddressTimeout)
	defer cancel()

	address, err := c.resolver.ResolveAddress(ctx, lat, lon)
	if err != nil {
		c.log.Warn("ghost address resolve failed", "session_id", c.sessionID, "error", err)
	}
	if address == "" {
		address = c.locales.T(keyAddressNotFound)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ghost == nil || c.ghostSeq != seq {
		return
	}
	c.ghost.Address = address
}

// ClearGhostPin removes the ghost marker if present. Idempotent.
func (c *Controller) ClearGhostPin() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ghost == nil {
		return
	}
	c.view.RemoveMarker(ghostMarkerID)
	c.ghost = nil
}

// Ghost returns the current ghost-pin candidate, or nil.
func (c *Controller) Ghost() *GhostPin {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ghost == nil {
		return nil
	}
	ghost := *c.ghost
	return &ghost
}

// Clusters computes the marker clusters for the current viewport.
func (c *Controller) Clusters() []Cluster {
	return BuildClusters(c.index.Pins(), c.Zoom(), c.cfg.GetClusterRadiusPx())
}

// ClickCluster reveals a cluster's members, spiderfying at max zoom.
func (c *Controller) ClickCluster(clusterID string) bool {
	for _, cluster := range c.Clusters() {
		if cluster.ID == clusterID {
			ClickCluster(c.view, cluster, c.Zoom(), c.cfg.GetMapMaxZoom(), c.cfg.GetFitBoundsPadding())
			return true
		}
	}
	return false
}

// LocateOnce centers the viewport on the next position fix. Failures are
// classified by code and surfaced as a localized notification.
func (c *Controller) LocateOnce(ctx context.Context) {
	sample, err := c.location.Current(ctx, DefaultWatchOptions())
	if err != nil {
		c.notifier.Error(c.sessionID, LocationErrorKey(err))
		c.log.Warn("locate failed", "session_id", c.sessionID, "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.FlyTo(sample.Point, c.cfg.GetMapSearchZoom(), flyDuration)
	c.notifier.Success(c.sessionID, "success.locationFound")
}

// StartWatching subscribes to continuous position updates. Each fix replaces
// the single user-location sample and re-creates the "you are here" marker,
// old one removed first, rendered above everything else. No-op when already
// watching.
func (c *Controller) StartWatching() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.watch != nil {
		return nil
	}

	watch, err := c.location.Watch(DefaultWatchOptions(), c.applyFix)
	if err != nil {
		return err
	}
	c.watch = watch
	return nil
}

func (c *Controller) applyFix(sample LocationSample, err error) {
	if err != nil {
		c.notifier.Error(c.sessionID, LocationErrorKey(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.userSample = &sample
	if c.hasUser {
		c.view.RemoveMarker(userMarkerID)
	}
	c.view.AddMarker(Marker{ID: userMarkerID, Kind: MarkerUser, Lat: sample.Point.Lat, Lon: sample.Point.Lon, TopZ: true})
	c.hasUser = true
}

// StopWatching cancels the subscription and removes the user marker.
// Idempotent.
func (c *Controller) StopWatching() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.watch == nil {
		return
	}
	c.watch.Stop()
	c.watch = nil
	c.userSample = nil
	if c.hasUser {
		c.view.RemoveMarker(userMarkerID)
		c.hasUser = false
	}
}

// UserLocation returns the latest watched fix, or nil.
func (c *Controller) UserLocation() *LocationSample {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.userSample == nil {
		return nil
	}
	sample := *c.userSample
	return &sample
}

// SelectPin marks a pin selected, expanding its cluster first if collapsed.
func (c *Controller) SelectPin(id uuid.UUID) bool {
	return c.index.ActivatePin(id, c.Zoom(), c.cfg.GetClusterRadiusPx())
}

// DeselectPin clears the pin selection.
func (c *Controller) DeselectPin() {
	c.index.Deselect()
}
