// Package mapcore is the map interaction core: the live pin mirror with
// spatial queries and clustering, ghost-pin placement, search-result
// centering and user-location tracking. Rendering happens client-side; the
// core drives it through the minimal MapView capability interface.
package mapcore

import (
	"sync"
	"time"

	"localist_backend/internal/geo"
)

// MarkerKind selects the client-side marker style.
type MarkerKind string

const (
	MarkerPin    MarkerKind = "pin"
	MarkerArea   MarkerKind = "area"
	MarkerGhost  MarkerKind = "ghost"
	MarkerSearch MarkerKind = "search"
	MarkerUser   MarkerKind = "user"
)

// Marker is one rendered map marker.
type Marker struct {
	ID       string     `json:"id"`
	Kind     MarkerKind `json:"kind"`
	Lat      float64    `json:"lat"`
	Lon      float64    `json:"lon"`
	Selected bool       `json:"selected,omitempty"`
	// TopZ markers render above everything else (the "you are here" dot).
	TopZ bool `json:"topZ,omitempty"`
}

// MapView is the minimal capability set the core needs from a map renderer.
// The production implementation records commands for the client to replay;
// tests use the same implementation as a recording fake.
type MapView interface {
	AddMarker(marker Marker)
	RemoveMarker(id string)
	SetView(center geo.Point, zoom int)
	FlyTo(center geo.Point, zoom int, duration time.Duration)
	FitBounds(extent geo.Extent, padding, maxZoom int)
	// ExpandCluster asks the renderer to zoom until the cluster's members
	// separate ("zoom to show layer").
	ExpandCluster(clusterID string)
	// Spiderfy fans a cluster's members out without zooming; used at max zoom.
	Spiderfy(clusterID string)
}

// Command is one recorded view operation, replayed by the client.
type Command struct {
	Op       string      `json:"op"`
	Marker   *Marker     `json:"marker,omitempty"`
	MarkerID string      `json:"markerId,omitempty"`
	Center   *geo.Point  `json:"center,omitempty"`
	Zoom     int         `json:"zoom,omitempty"`
	Duration float64     `json:"durationSeconds,omitempty"`
	Extent   *geo.Extent `json:"extent,omitempty"`
	Padding  int         `json:"padding,omitempty"`
	MaxZoom  int         `json:"maxZoom,omitempty"`
}

// CommandView is a MapView that records commands until the client drains
// them. Draining returns commands in issue order.
type CommandView struct {
	mu       sync.Mutex
	commands []Command
}

// NewCommandView creates an empty command recorder.
func NewCommandView() *CommandView {
	return &CommandView{}
}

func (v *CommandView) record(cmd Command) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.commands = append(v.commands, cmd)
}

// AddMarker records a marker add.
func (v *CommandView) AddMarker(marker Marker) {
	v.record(Command{Op: "addMarker", Marker: &marker})
}

// RemoveMarker records a marker removal.
func (v *CommandView) RemoveMarker(id string) {
	v.record(Command{Op: "removeMarker", MarkerID: id})
}

// SetView records an instant viewport jump.
func (v *CommandView) SetView(center geo.Point, zoom int) {
	v.record(Command{Op: "setView", Center: &center, Zoom: zoom})
}

// FlyTo records an animated viewport move.
func (v *CommandView) FlyTo(center geo.Point, zoom int, duration time.Duration) {
	v.record(Command{Op: "flyTo", Center: &center, Zoom: zoom, Duration: duration.Seconds()})
}

// FitBounds records a viewport fit to an extent.
func (v *CommandView) FitBounds(extent geo.Extent, padding, maxZoom int) {
	v.record(Command{Op: "fitBounds", Extent: &extent, Padding: padding, MaxZoom: maxZoom})
}

// ExpandCluster records a cluster zoom-to-show request.
func (v *CommandView) ExpandCluster(clusterID string) {
	v.record(Command{Op: "expandCluster", MarkerID: clusterID})
}

// Spiderfy records a cluster fan-out request.
func (v *CommandView) Spiderfy(clusterID string) {
	v.record(Command{Op: "spiderfy", MarkerID: clusterID})
}

// Drain returns and clears the recorded commands.
func (v *CommandView) Drain() []Command {
	v.mu.Lock()
	defer v.mu.Unlock()

	commands := v.commands
	v.commands = nil
	if commands == nil {
		commands = []Command{}
	}
	return commands
}

// Commands returns a copy of the recorded commands without clearing them.
// Test helper.
func (v *CommandView) Commands() []Command {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Command, len(v.commands))
	copy(out, v.commands)
	return out
}

var _ MapView = (*CommandView)(nil)
