package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"localist_backend/internal/geo"
	"localist_backend/internal/osm"
	"localist_backend/internal/search/cache"
	"localist_backend/internal/search/history"
	"localist_backend/platform/kv"
	"localist_backend/platform/logger"
)

type searchTestConfig struct{}

func (searchTestConfig) GetSearchCacheTTL() time.Duration  { return 24 * time.Hour }
func (searchTestConfig) GetSearchCacheMaxEntries() int     { return 50 }
func (searchTestConfig) GetSearchHistoryMax() int          { return 5 }
func (searchTestConfig) GetSearchMinQueryLength() int      { return 3 }
func (searchTestConfig) GetSearchMaxDisplayedResults() int { return 5 }

type fakeGeocoder struct {
	places []osm.Place
	err    error
	calls  int
}

func (f *fakeGeocoder) Search(_ context.Context, _ string, _ *geo.Point) ([]osm.Place, error) {
	f.calls++
	return f.places, f.err
}

type fakeMapPort struct {
	center   *geo.Point
	selected []osm.Place
}

func (f *fakeMapPort) Center() *geo.Point { return f.center }
func (f *fakeMapPort) SelectLocation(_ context.Context, place osm.Place) {
	f.selected = append(f.selected, place)
}

type fakeNotifier struct {
	errorKeys []string
}

func (f *fakeNotifier) Error(_, messageKey string) {
	f.errorKeys = append(f.errorKeys, messageKey)
}

type engineFixture struct {
	engine   *Engine
	geocoder *fakeGeocoder
	maps     *fakeMapPort
	notifier *fakeNotifier
	cache    *cache.Cache
	history  *history.History
}

func newFixture(t *testing.T) *engineFixture {
	t.Helper()

	log := logger.New("development")
	store := kv.NewMemoryStore()
	resultCache := cache.New(store, 24*time.Hour, 50, log)
	hist := history.New(store, 5, log)
	geocoder := &fakeGeocoder{}
	maps := &fakeMapPort{}
	notifier := &fakeNotifier{}

	eng := New("session-1", searchTestConfig{}, resultCache, hist, geocoder, maps, notifier, log)
	return &engineFixture{
		engine:   eng,
		geocoder: geocoder,
		maps:     maps,
		notifier: notifier,
		cache:    resultCache,
		history:  hist,
	}
}

func TestSetQuery_BelowMinimumClearsResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.geocoder.places = []osm.Place{{OSMID: 1, Name: "Blue Cafe"}}
	f.engine.SetQuery(ctx, "blue cafe")
	f.engine.Search(ctx)

	f.engine.SetQuery(ctx, "bl")

	state := f.engine.Snapshot()
	if len(state.Results) != 0 || state.HasSearched {
		t.Fatalf("expected idle state, got %+v", state)
	}
	if f.geocoder.calls != 1 {
		t.Fatalf("expected no extra network calls, got %d", f.geocoder.calls)
	}
}

func TestSetQuery_ServesProvisionalResultsFromCacheWithoutNetwork(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.cache.Put(ctx, "cafe", []osm.Place{{OSMID: 1, Name: "Blue Cafe"}})

	f.engine.SetQuery(ctx, "caf")

	state := f.engine.Snapshot()
	if len(state.Results) != 1 || state.Results[0].Name != "Blue Cafe" {
		t.Fatalf("expected Blue Cafe provisionally, got %+v", state.Results)
	}
	if state.Loading {
		t.Fatal("partial match must not enter loading state")
	}
	if f.geocoder.calls != 0 {
		t.Fatalf("expected zero network calls, got %d", f.geocoder.calls)
	}
}

func TestSearch_BlankQueryIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.engine.SetQuery(ctx, "   ")
	f.engine.Search(ctx)

	if f.geocoder.calls != 0 {
		t.Fatalf("expected no calls for blank query, got %d", f.geocoder.calls)
	}
}

func TestSearch_SameQueryTwiceHitsNetworkOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.geocoder.places = []osm.Place{{OSMID: 1, Name: "Blue Cafe"}}
	f.engine.SetQuery(ctx, "blue cafe")
	f.engine.Search(ctx)
	f.engine.Search(ctx)

	if f.geocoder.calls != 1 {
		t.Fatalf("expected repeat search suppressed, got %d calls", f.geocoder.calls)
	}
}

func TestSearch_ExactCacheHitSkipsNetwork(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.cache.Put(ctx, "blue cafe", []osm.Place{{OSMID: 1, Name: "Blue Cafe"}})

	f.engine.SetQuery(ctx, "blue cafe")
	f.engine.Search(ctx)

	state := f.engine.Snapshot()
	if len(state.Results) != 1 {
		t.Fatalf("expected cached result, got %+v", state.Results)
	}
	if f.geocoder.calls != 0 {
		t.Fatalf("expected zero network calls, got %d", f.geocoder.calls)
	}
	if !state.HasSearched || state.Loading {
		t.Fatalf("expected finished search state, got %+v", state)
	}
}

func TestSearch_DeduplicatesTruncatesAndCaches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.geocoder.places = []osm.Place{
		{OSMID: 42, Name: "Blue Cafe"},
		{OSMID: 42, Name: "Blue Cafe"},
		{OSMID: 2, Name: "Cafe Two"},
		{OSMID: 3, Name: "Cafe Three"},
		{OSMID: 4, Name: "Cafe Four"},
		{OSMID: 5, Name: "Cafe Five"},
		{OSMID: 6, Name: "Cafe Six"},
	}

	f.engine.SetQuery(ctx, "cafe")
	f.engine.Search(ctx)

	state := f.engine.Snapshot()
	if len(state.Results) != 5 {
		t.Fatalf("expected truncation to 5, got %d", len(state.Results))
	}

	seen := make(map[int64]bool)
	for _, p := range state.Results {
		if seen[p.OSMID] {
			t.Fatalf("duplicate id %d survived dedup", p.OSMID)
		}
		seen[p.OSMID] = true
	}

	// The deduplicated set must have been written through to the cache.
	cached, ok := f.cache.Get(ctx, "cafe")
	if !ok || len(cached) != 5 {
		t.Fatalf("expected write-through to cache, got %v (ok=%v)", cached, ok)
	}
}

func TestSearch_FailureClearsResultsAndNotifiesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.geocoder.err = errors.New("upstream api error: 400")

	f.engine.SetQuery(ctx, "blue cafe")
	f.engine.Search(ctx)

	state := f.engine.Snapshot()
	if len(state.Results) != 0 {
		t.Fatalf("expected empty results, got %+v", state.Results)
	}
	if len(f.notifier.errorKeys) != 1 || f.notifier.errorKeys[0] != "errors.searchFailed" {
		t.Fatalf("expected exactly one search-failed notification, got %v", f.notifier.errorKeys)
	}
	if !state.HasSearched || state.Loading {
		t.Fatalf("expected settled state after failure, got %+v", state)
	}
}

func TestSelectResult_SuppressesRedundantSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	place := osm.Place{OSMID: 1, Name: "Blue Cafe"}
	f.geocoder.places = []osm.Place{place}

	f.engine.SetQuery(ctx, "blue")
	f.engine.Search(ctx)
	f.engine.SelectResult(ctx, place)

	state := f.engine.Snapshot()
	if state.Query != "Blue Cafe" {
		t.Fatalf("expected query set to place name, got %q", state.Query)
	}
	if len(state.Results) != 0 {
		t.Fatal("expected results cleared after selection")
	}

	// Searching the now-matching text must be a no-op.
	f.engine.Search(ctx)
	if f.geocoder.calls != 1 {
		t.Fatalf("expected post-selection search suppressed, got %d calls", f.geocoder.calls)
	}

	if len(f.maps.selected) != 1 || f.maps.selected[0].OSMID != 1 {
		t.Fatalf("expected map core notified, got %+v", f.maps.selected)
	}

	entries := f.engine.History(ctx)
	if len(entries) != 1 || entries[0].Query != "Blue Cafe" {
		t.Fatalf("expected history entry, got %+v", entries)
	}
}

func TestHistory_CapacityFive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	names := []string{"One", "Two", "Three", "Four", "Five", "Six"}
	for i, name := range names {
		f.engine.SelectResult(ctx, osm.Place{OSMID: int64(i + 1), Name: name})
	}

	entries := f.engine.History(ctx)
	if len(entries) != 5 {
		t.Fatalf("expected history capped at 5, got %d", len(entries))
	}
	if entries[0].Query != "Six" {
		t.Fatalf("expected newest first, got %s", entries[0].Query)
	}
	for _, e := range entries {
		if e.Query == "One" {
			t.Fatal("expected oldest selection dropped")
		}
	}
}

func TestFocusNavigation_Wraparound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.geocoder.places = []osm.Place{
		{OSMID: 1, Name: "Cafe One"},
		{OSMID: 2, Name: "Cafe Two"},
		{OSMID: 3, Name: "Cafe Three"},
	}
	f.engine.SetQuery(ctx, "cafe")
	f.engine.Search(ctx)

	f.engine.FocusNext()
	f.engine.FocusNext()
	f.engine.FocusNext()
	if got := f.engine.Snapshot().FocusedIndex; got != 2 {
		t.Fatalf("expected index 2, got %d", got)
	}

	f.engine.FocusNext()
	if got := f.engine.Snapshot().FocusedIndex; got != 0 {
		t.Fatalf("expected wrap to 0, got %d", got)
	}

	f.engine.FocusPrevious()
	if got := f.engine.Snapshot().FocusedIndex; got != 2 {
		t.Fatalf("expected wrap to last, got %d", got)
	}
}

func TestConfirmFocused_SelectsFocusedResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.geocoder.places = []osm.Place{
		{OSMID: 1, Name: "Cafe One"},
		{OSMID: 2, Name: "Cafe Two"},
	}
	f.engine.SetQuery(ctx, "cafe")
	f.engine.Search(ctx)

	f.engine.FocusNext()
	f.engine.FocusNext()
	f.engine.ConfirmFocused(ctx)

	if len(f.maps.selected) != 1 || f.maps.selected[0].OSMID != 2 {
		t.Fatalf("expected second result selected, got %+v", f.maps.selected)
	}
}

func TestConfirmFocused_NoFocusIsNoop(t *testing.T) {
	f := newFixture(t)
	f.engine.ConfirmFocused(context.Background())
	if len(f.maps.selected) != 0 {
		t.Fatal("expected no selection without focus")
	}
}
