// Package cache implements the time-boxed local result cache: past
// query→result-set pairs persisted to the durable key-value store, with
// partial-match autocomplete over every cached result.
package cache

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"localist_backend/internal/osm"
	"localist_backend/internal/search/normalize"
	"localist_backend/platform/kv"
	"localist_backend/platform/logger"
)

// StorageKey is the single namespaced key the whole cache lives under.
const StorageKey = "search_cache"

// Entry is one cached query with its ordered result list.
type Entry struct {
	Query     string      `json:"query"`
	Results   []osm.Place `json:"results"`
	Timestamp int64       `json:"timestamp"` // unix millis
}

// Cache is a time-boxed query→results cache. Every persistence failure
// degrades to a miss or a write no-op; callers never see an error.
type Cache struct {
	store      kv.Store
	ttl        time.Duration
	maxEntries int
	log        *logger.Logger
	now        func() time.Time
}

// New creates a cache over the given store.
func New(store kv.Store, ttl time.Duration, maxEntries int, log *logger.Logger) *Cache {
	return &Cache{
		store:      store,
		ttl:        ttl,
		maxEntries: maxEntries,
		log:        log,
		now:        time.Now,
	}
}

// Get returns the cached result set for an exact, case-insensitive query
// match. Entries at or past the TTL are invisible.
func (c *Cache) Get(ctx context.Context, query string) ([]osm.Place, bool) {
	entries := c.load(ctx)
	for _, entry := range entries {
		if strings.EqualFold(entry.Query, query) && c.fresh(entry) {
			return entry.Results, true
		}
	}
	return nil, false
}

// Put replaces any existing entry for the query (case-insensitive) and
// appends a fresh one. When the entry count exceeds the maximum, the single
// oldest entry is evicted, FIFO by insertion rather than LRU.
func (c *Cache) Put(ctx context.Context, query string, results []osm.Place) {
	entries := c.load(ctx)

	kept := entries[:0]
	for _, entry := range entries {
		if !strings.EqualFold(entry.Query, query) {
			kept = append(kept, entry)
		}
	}

	kept = append(kept, Entry{
		Query:     query,
		Results:   results,
		Timestamp: c.now().UnixMilli(),
	})

	if len(kept) > c.maxEntries {
		kept = kept[1:]
	}

	c.save(ctx, kept)
}

// SearchPartial scans every cached entry's result list for places whose
// normalized name contains the normalized partial query. Matches are
// deduplicated by provider id keeping the first occurrence, sorted so that
// exact-prefix matches come first (stable, no secondary key), and truncated
// to maxResults.
func (c *Cache) SearchPartial(ctx context.Context, partialQuery string, maxResults int) []osm.Place {
	normalized := normalize.String(partialQuery)
	if normalized == "" {
		return nil
	}

	var matches []osm.Place
	seen := make(map[int64]struct{})
	for _, entry := range c.load(ctx) {
		for _, place := range entry.Results {
			if !strings.Contains(normalize.String(place.Name), normalized) {
				continue
			}
			if _, dup := seen[place.OSMID]; dup {
				continue
			}
			seen[place.OSMID] = struct{}{}
			matches = append(matches, place)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		startsI := strings.HasPrefix(normalize.String(matches[i].Name), normalized)
		startsJ := strings.HasPrefix(normalize.String(matches[j].Name), normalized)
		return startsI && !startsJ
	})

	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches
}

// PurgeExpired drops every entry at or past the TTL. Called once at engine
// initialization, never on a timer.
func (c *Cache) PurgeExpired(ctx context.Context) {
	entries := c.load(ctx)

	kept := entries[:0]
	for _, entry := range entries {
		if c.fresh(entry) {
			kept = append(kept, entry)
		}
	}

	if len(kept) != len(entries) {
		c.save(ctx, kept)
	}
}

func (c *Cache) fresh(entry Entry) bool {
	age := c.now().UnixMilli() - entry.Timestamp
	return age < c.ttl.Milliseconds()
}

func (c *Cache) load(ctx context.Context) []Entry {
	raw, ok, err := c.store.GetItem(ctx, StorageKey)
	if err != nil {
		c.log.StorageError("get", StorageKey, err)
		return nil
	}
	if !ok {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		c.log.StorageError("decode", StorageKey, err)
		return nil
	}
	return entries
}

func (c *Cache) save(ctx context.Context, entries []Entry) {
	raw, err := json.Marshal(entries)
	if err != nil {
		c.log.StorageError("encode", StorageKey, err)
		return
	}
	if err := c.store.SetItem(ctx, StorageKey, string(raw)); err != nil {
		c.log.StorageError("set", StorageKey, err)
	}
}
