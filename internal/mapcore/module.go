package mapcore

import (
	"context"
	"sync"

	"localist_backend/internal/events"
	apphttp "localist_backend/internal/http"
	"localist_backend/internal/notify"
	"localist_backend/platform/config"
	"localist_backend/platform/logger"
	"localist_backend/platform/validator"
)

// PinProvider supplies the pins visible to a session for the map mirror.
type PinProvider interface {
	ListPins(ctx context.Context, ownerSession string) ([]Pin, error)
}

type sessionEntry struct {
	controller *Controller
	view       *CommandView
	location   *ClientLocationSource
	stale      bool
}

// Module owns the per-session map controllers and keeps their pin mirrors
// in sync with the persistence module through domain events.
type Module struct {
	cfg      config.MapConfig
	provider PinProvider
	resolver AddressResolver
	locales  Localizer
	notifier notify.Notifier
	haptics  notify.Haptics
	log      *logger.Logger

	mu       sync.Mutex
	sessions map[string]*sessionEntry

	handler *Handler
}

// NewModule creates the map core module.
func NewModule(cfg config.MapConfig, provider PinProvider, resolver AddressResolver, locales Localizer, notifier notify.Notifier, haptics notify.Haptics, val *validator.Validator, log *logger.Logger) *Module {
	m := &Module{
		cfg:      cfg,
		provider: provider,
		resolver: resolver,
		locales:  locales,
		notifier: notifier,
		haptics:  haptics,
		log:      log,
		sessions: make(map[string]*sessionEntry),
	}
	m.handler = NewHandler(m, val)
	return m
}

func (m *Module) Name() string {
	return "mapcore"
}

// RegisterHandlers subscribes to pin domain events so session mirrors reload
// on the next map operation after a change.
func (m *Module) RegisterHandlers(bus events.Bus) {
	invalidate := events.HandlerFunc(func(context.Context, events.Event) error {
		m.markAllStale()
		return nil
	})
	bus.Subscribe(events.PinCreated{}.EventName(), invalidate)
	bus.Subscribe(events.PinUpdated{}.EventName(), invalidate)
	bus.Subscribe(events.PinDeleted{}.EventName(), invalidate)
}

func (m *Module) markAllStale() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range m.sessions {
		entry.stale = true
	}
}

func (m *Module) entryFor(sessionID string) *sessionEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[sessionID]
	if !ok {
		view := NewCommandView()
		location := NewClientLocationSource()
		entry = &sessionEntry{
			controller: NewController(sessionID, m.cfg, view, location, m.resolver, m.locales, m.notifier, m.haptics, m.log),
			view:       view,
			location:   location,
			stale:      true,
		}
		m.sessions[sessionID] = entry
	}
	return entry
}

// ControllerFor returns the session's controller with a fresh pin mirror,
// creating it on first use. Mirror load failures are logged and leave the
// previous mirror in place; the map stays usable with stale pins.
func (m *Module) ControllerFor(ctx context.Context, sessionID string) *Controller {
	entry := m.entryFor(sessionID)

	m.mu.Lock()
	stale := entry.stale
	entry.stale = false
	m.mu.Unlock()

	if stale {
		pins, err := m.provider.ListPins(ctx, sessionID)
		if err != nil {
			m.log.Error("pin mirror reload failed", "session_id", sessionID, "error", err)
			m.mu.Lock()
			entry.stale = true
			m.mu.Unlock()
		} else {
			entry.controller.Index().SetAll(pins)
		}
	}
	return entry.controller
}

// ViewFor returns the session's command recorder.
func (m *Module) ViewFor(sessionID string) *CommandView {
	return m.entryFor(sessionID).view
}

// LocationFor returns the session's client-fed location source.
func (m *Module) LocationFor(sessionID string) *ClientLocationSource {
	return m.entryFor(sessionID).location
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/map")
	m.handler.RegisterRoutes(group)
}

var _ apphttp.Module = (*Module)(nil)
