// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"localist_backend/internal/geo"
	"localist_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Pin Domain Events
// =============================================================================

// PinCreated is published when a new pin is persisted. The reverse-geocode
// worker listens for it to fill in the pin's human-readable address.
type PinCreated struct {
	BaseEvent
	PinID    uuid.UUID `json:"pinId"`
	Location geo.Point `json:"location"`
}

func (e PinCreated) EventName() string { return "pins.pin.created" }

// PinUpdated is published when a pin's fields change.
type PinUpdated struct {
	BaseEvent
	PinID uuid.UUID `json:"pinId"`
	Moved bool      `json:"moved"`
}

func (e PinUpdated) EventName() string { return "pins.pin.updated" }

// PinDeleted is published when a pin is removed.
type PinDeleted struct {
	BaseEvent
	PinID uuid.UUID `json:"pinId"`
}

func (e PinDeleted) EventName() string { return "pins.pin.deleted" }
