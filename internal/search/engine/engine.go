// Package engine implements the search controller: the incremental
// input/fetch/cache/rank pipeline behind the search box. One Engine exists
// per client session; the HTTP handler serializes access to it, so the
// engine itself is written single-threaded, mirroring an event-loop UI.
package engine

import (
	"context"
	"strings"
	"unicode/utf8"

	"localist_backend/internal/geo"
	"localist_backend/internal/osm"
	"localist_backend/internal/search/cache"
	"localist_backend/internal/search/history"
	"localist_backend/platform/config"
	"localist_backend/platform/logger"
)

// Geocoder is the upstream geocode API contract the engine consumes.
type Geocoder interface {
	Search(ctx context.Context, query string, bias *geo.Point) ([]osm.Place, error)
}

// MapPort is the slice of the map interaction core the engine drives:
// viewport center for ranking bias, and re-center-and-mark on selection.
type MapPort interface {
	Center() *geo.Point
	SelectLocation(ctx context.Context, place osm.Place)
}

// Notifier surfaces user-facing failure messages for this engine's session.
type Notifier interface {
	Error(sessionID, messageKey string)
}

// State is the UI-observable snapshot of the engine.
type State struct {
	Query             string      `json:"query"`
	Results           []osm.Place `json:"results"`
	Loading           bool        `json:"loading"`
	HasSearched       bool        `json:"hasSearched"`
	FocusedIndex      int         `json:"focusedIndex"`
	LastSearchedQuery string      `json:"lastSearchedQuery"`
}

// Engine owns one session's search state machine:
// idle → querying-cache → (loading-remote) → results-ready / no-results / error.
type Engine struct {
	sessionID string

	query             string
	results           []osm.Place
	loading           bool
	hasSearched       bool
	focusedIndex      int
	lastSearchedQuery string
	resultSelected    bool
	initialized       bool

	minQueryLength int
	maxDisplayed   int

	cache    *cache.Cache
	history  *history.History
	geocoder Geocoder
	maps     MapPort
	notifier Notifier
	log      *logger.Logger
}

// New creates an engine for one session. Initialization work (cache purge,
// history load) happens lazily on first use, not here.
func New(sessionID string, cfg config.SearchConfig, resultCache *cache.Cache, hist *history.History, geocoder Geocoder, maps MapPort, notifier Notifier, log *logger.Logger) *Engine {
	return &Engine{
		sessionID:      sessionID,
		focusedIndex:   -1,
		minQueryLength: cfg.GetSearchMinQueryLength(),
		maxDisplayed:   cfg.GetSearchMaxDisplayedResults(),
		cache:          resultCache,
		history:        hist,
		geocoder:       geocoder,
		maps:           maps,
		notifier:       notifier,
		log:            log.WithSessionID(sessionID),
	}
}

func (e *Engine) ensureInitialized(ctx context.Context) {
	if e.initialized {
		return
	}
	e.initialized = true
	e.cache.PurgeExpired(ctx)
	e.history.Load(ctx)
}

// Snapshot returns the current observable state.
func (e *Engine) Snapshot() State {
	results := e.results
	if results == nil {
		results = []osm.Place{}
	}
	return State{
		Query:             e.query,
		Results:           results,
		Loading:           e.loading,
		HasSearched:       e.hasSearched,
		FocusedIndex:      e.focusedIndex,
		LastSearchedQuery: e.lastSearchedQuery,
	}
}

// Clear resets the engine to idle.
func (e *Engine) Clear() {
	e.query = ""
	e.results = nil
	e.hasSearched = false
	e.resultSelected = false
	e.lastSearchedQuery = ""
	e.focusedIndex = -1
}

// SetQuery handles a keystroke. Below-minimum input clears results and
// returns to idle without touching the network; otherwise cached partial
// matches are shown as provisional results. This is purely local and
// synchronous; no remote call happens per keystroke.
func (e *Engine) SetQuery(ctx context.Context, value string) {
	e.ensureInitialized(ctx)
	e.query = value
	e.resultSelected = false
	e.focusedIndex = -1

	if utf8.RuneCountInString(value) < e.minQueryLength {
		e.results = nil
		e.hasSearched = false
		return
	}

	e.results = e.cache.SearchPartial(ctx, value, e.maxDisplayed)
}

// Search runs an explicit search. Guarded: a no-op when the query is blank,
// matches the last explicitly searched query, or was produced by selecting
// a result.
func (e *Engine) Search(ctx context.Context) {
	e.ensureInitialized(ctx)
	if !e.shouldSearch() {
		return
	}

	e.loading = true
	e.hasSearched = false
	e.focusedIndex = -1
	defer e.finishSearch()

	if cached, ok := e.cache.Get(ctx, e.query); ok {
		e.results = cached
		return
	}

	places, err := e.geocoder.Search(ctx, e.query, e.maps.Center())
	if err != nil {
		e.results = nil
		e.notifier.Error(e.sessionID, "errors.searchFailed")
		e.log.Error("search failed", "query", e.query, "error", err)
		return
	}

	unique := Deduplicate(places)
	if len(unique) > e.maxDisplayed {
		unique = unique[:e.maxDisplayed]
	}
	unique = RankByPrefix(unique, e.query)

	e.results = unique
	e.cache.Put(ctx, e.query, unique)
}

func (e *Engine) shouldSearch() bool {
	if strings.TrimSpace(e.query) == "" {
		return false
	}
	if e.query == e.lastSearchedQuery {
		return false
	}
	if e.resultSelected {
		return false
	}
	return true
}

func (e *Engine) finishSearch() {
	e.loading = false
	e.hasSearched = true
	e.lastSearchedQuery = e.query
}

// SelectResult confirms a result: the query becomes the place name, marked
// as already resolved so the now-matching text does not trigger a redundant
// search, the selection is recorded in history, and the map core re-centers
// on the place.
func (e *Engine) SelectResult(ctx context.Context, place osm.Place) {
	e.ensureInitialized(ctx)

	e.query = place.Name
	e.lastSearchedQuery = place.Name
	e.resultSelected = true
	e.results = nil
	e.hasSearched = false
	e.focusedIndex = -1

	e.history.Add(ctx, place.Name, place)
	e.maps.SelectLocation(ctx, place)
}

// FocusNext moves keyboard focus down the result list, wrapping to the
// first result past the end.
func (e *Engine) FocusNext() {
	if len(e.results) == 0 {
		return
	}
	if e.focusedIndex < len(e.results)-1 {
		e.focusedIndex++
	} else {
		e.focusedIndex = 0
	}
}

// FocusPrevious moves keyboard focus up the result list, wrapping to the
// last result before the start.
func (e *Engine) FocusPrevious() {
	if len(e.results) == 0 {
		return
	}
	if e.focusedIndex > 0 {
		e.focusedIndex--
	} else {
		e.focusedIndex = len(e.results) - 1
	}
}

// ConfirmFocused selects the currently focused result, if any.
func (e *Engine) ConfirmFocused(ctx context.Context) {
	if e.focusedIndex >= 0 && e.focusedIndex < len(e.results) {
		e.SelectResult(ctx, e.results[e.focusedIndex])
	}
}

// CloseResults dismisses the result list without clearing the query.
func (e *Engine) CloseResults() {
	e.focusedIndex = -1
	e.results = nil
}

// History returns the confirmed-selection history, newest first.
func (e *Engine) History(ctx context.Context) []history.Entry {
	e.ensureInitialized(ctx)
	return e.history.Entries()
}

// ClearHistory drops all recorded selections.
func (e *Engine) ClearHistory(ctx context.Context) {
	e.ensureInitialized(ctx)
	e.history.Clear(ctx)
}
