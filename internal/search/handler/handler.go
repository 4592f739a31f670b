// Package handler exposes the search engine over HTTP. Engines are
// per-session: each client session gets its own query state, cache view and
// history, resolved from the session header.
package handler

import (
	"errors"
	"io"
	"net/http"
	"sync"

	"localist_backend/internal/search/engine"
	"localist_backend/internal/search/transport"
	"localist_backend/platform/httpkit"
	"localist_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// EngineFactory builds a search engine scoped to one client session.
type EngineFactory func(sessionID string) *engine.Engine

type session struct {
	mu     sync.Mutex
	engine *engine.Engine
}

type Handler struct {
	val    *validator.Validator
	labels transport.PlaceLabeler

	mu        sync.Mutex
	sessions  map[string]*session
	newEngine EngineFactory
}

func New(newEngine EngineFactory, labels transport.PlaceLabeler, val *validator.Validator) *Handler {
	return &Handler{
		val:       val,
		labels:    labels,
		sessions:  make(map[string]*session),
		newEngine: newEngine,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Search)
	rg.POST("/query", h.SetQuery)
	rg.POST("/select", h.Select)
	rg.POST("/close", h.Close)
	rg.POST("/clear", h.Clear)
	rg.POST("/focus/next", h.FocusNext)
	rg.POST("/focus/previous", h.FocusPrevious)
	rg.POST("/focus/confirm", h.ConfirmFocused)
	rg.GET("/history", h.History)
	rg.DELETE("/history", h.ClearHistory)
}

// sessionFor returns the session's engine, creating it on first use.
// Engine access is serialized per session: one browser tab issuing
// overlapping requests observes the same ordering a single-threaded
// client would.
func (h *Handler) sessionFor(c *gin.Context) *session {
	sessionID := httpkit.SessionID(c)

	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[sessionID]
	if !ok {
		s = &session{engine: h.newEngine(sessionID)}
		h.sessions[sessionID] = s
	}
	return s
}

// SetQuery updates the query text as the user types. Below the minimum
// length the result list clears; otherwise cached partial matches are
// returned immediately without touching the geocoder.
func (h *Handler) SetQuery(c *gin.Context) {
	var req transport.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	s := h.sessionFor(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine.SetQuery(c.Request.Context(), req.Query)
	httpkit.OK(c, transport.StateFrom(s.engine.Snapshot(), h.labels))
}

// Search runs an explicit search for the current query. A non-empty q in
// the body updates the query first, mirroring typing followed by submit.
func (h *Handler) Search(c *gin.Context) {
	// An empty body means "search whatever the query currently is".
	var req transport.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	s := h.sessionFor(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	// Only treat q as fresh typing when it actually changed; re-submitting
	// the same text must not clear the selected-result suppression.
	if req.Query != "" && req.Query != s.engine.Snapshot().Query {
		s.engine.SetQuery(c.Request.Context(), req.Query)
	}
	s.engine.Search(c.Request.Context())
	httpkit.OK(c, transport.StateFrom(s.engine.Snapshot(), h.labels))
}

// Select confirms a result: records it in history and hands it to the map
// core for centering.
func (h *Handler) Select(c *gin.Context) {
	var req transport.SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	s := h.sessionFor(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine.SelectResult(c.Request.Context(), req.Place)
	httpkit.OK(c, transport.StateFrom(s.engine.Snapshot(), h.labels))
}

// Close dismisses the result list without clearing the query.
func (h *Handler) Close(c *gin.Context) {
	s := h.sessionFor(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine.CloseResults()
	httpkit.OK(c, transport.StateFrom(s.engine.Snapshot(), h.labels))
}

// Clear resets the search box to its idle state.
func (h *Handler) Clear(c *gin.Context) {
	s := h.sessionFor(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine.Clear()
	httpkit.OK(c, transport.StateFrom(s.engine.Snapshot(), h.labels))
}

// FocusNext moves keyboard focus down the result list, wrapping at the end.
func (h *Handler) FocusNext(c *gin.Context) {
	s := h.sessionFor(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine.FocusNext()
	httpkit.OK(c, transport.StateFrom(s.engine.Snapshot(), h.labels))
}

// FocusPrevious moves keyboard focus up the result list, wrapping at the start.
func (h *Handler) FocusPrevious(c *gin.Context) {
	s := h.sessionFor(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine.FocusPrevious()
	httpkit.OK(c, transport.StateFrom(s.engine.Snapshot(), h.labels))
}

// ConfirmFocused selects the currently focused result, if any.
func (h *Handler) ConfirmFocused(c *gin.Context) {
	s := h.sessionFor(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine.ConfirmFocused(c.Request.Context())
	httpkit.OK(c, transport.StateFrom(s.engine.Snapshot(), h.labels))
}

// History returns confirmed selections, newest first.
func (h *Handler) History(c *gin.Context) {
	s := h.sessionFor(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	httpkit.OK(c, transport.HistoryFrom(s.engine.History(c.Request.Context())))
}

// ClearHistory empties the selection history.
func (h *Handler) ClearHistory(c *gin.Context) {
	s := h.sessionFor(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine.ClearHistory(c.Request.Context())
	httpkit.NoContent(c)
}
