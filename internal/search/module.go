// Package search wires the place-search engine into the HTTP layer. Each
// client session gets its own engine with a session-scoped cache and history
// on the shared durable store.
package search

import (
	apphttp "localist_backend/internal/http"
	"localist_backend/internal/notify"
	"localist_backend/internal/search/cache"
	"localist_backend/internal/search/engine"
	"localist_backend/internal/search/geocode"
	"localist_backend/internal/search/handler"
	"localist_backend/internal/search/history"
	"localist_backend/internal/search/transport"
	"localist_backend/platform/config"
	"localist_backend/platform/kv"
	"localist_backend/platform/logger"
	"localist_backend/platform/validator"
)

// MapPortProvider resolves the map core port for a client session, so a
// confirmed search selection re-centers that session's map.
type MapPortProvider interface {
	ForSession(sessionID string) engine.MapPort
}

type Module struct {
	handler *handler.Handler
}

func NewModule(store kv.Store, geocoder *geocode.Client, maps MapPortProvider, notifier notify.Notifier, labels transport.PlaceLabeler, cfg config.SearchConfig, val *validator.Validator, log *logger.Logger) *Module {
	factory := func(sessionID string) *engine.Engine {
		scoped := kv.Namespaced(store, "session:"+sessionID)
		resultCache := cache.New(scoped, cfg.GetSearchCacheTTL(), cfg.GetSearchCacheMaxEntries(), log)
		hist := history.New(scoped, cfg.GetSearchHistoryMax(), log)
		return engine.New(sessionID, cfg, resultCache, hist, geocoder, maps.ForSession(sessionID), notifier, log)
	}

	h := handler.New(factory, labels, val)
	return &Module{handler: h}
}

func (m *Module) Name() string {
	return "search"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/search")
	group.Use(ctx.SearchRateLimiter.RateLimit())
	m.handler.RegisterRoutes(group)
}

var _ apphttp.Module = (*Module)(nil)
