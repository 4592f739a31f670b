// Package history keeps the bounded, most-recent-first list of confirmed
// search selections. Entries are created only on explicit user selection,
// never on a raw search.
package history

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"localist_backend/internal/osm"
	"localist_backend/platform/kv"
	"localist_backend/platform/logger"
)

// StorageKey is the durable-store key history is persisted under.
const StorageKey = "search_history"

// Entry is one confirmed selection.
type Entry struct {
	Query     string    `json:"query"`
	Timestamp int64     `json:"timestamp"` // unix millis
	Result    osm.Place `json:"result"`
}

// History is a capacity-bounded, newest-first selection list with
// case-insensitive per-query deduplication. Persistence failures are
// swallowed; the list degrades to in-memory behavior.
type History struct {
	store    kv.Store
	capacity int
	log      *logger.Logger
	entries  []Entry
	loaded   bool
}

// New creates a history with the given capacity.
func New(store kv.Store, capacity int, log *logger.Logger) *History {
	return &History{
		store:    store,
		capacity: capacity,
		log:      log,
	}
}

// Load reads the persisted history. Called lazily by the engine on first
// use; safe to call more than once.
func (h *History) Load(ctx context.Context) {
	if h.loaded {
		return
	}
	h.loaded = true

	raw, ok, err := h.store.GetItem(ctx, StorageKey)
	if err != nil {
		h.log.StorageError("get", StorageKey, err)
		return
	}
	if !ok {
		return
	}

	if err := json.Unmarshal([]byte(raw), &h.entries); err != nil {
		h.log.StorageError("decode", StorageKey, err)
		h.entries = nil
	}
}

// Add records a confirmed selection at the front, dropping any previous
// entry for the same case-insensitive query and trimming to capacity.
func (h *History) Add(ctx context.Context, query string, result osm.Place) {
	kept := make([]Entry, 0, len(h.entries)+1)
	kept = append(kept, Entry{
		Query:     query,
		Timestamp: time.Now().UnixMilli(),
		Result:    result,
	})
	for _, entry := range h.entries {
		if !strings.EqualFold(entry.Query, query) {
			kept = append(kept, entry)
		}
	}

	if len(kept) > h.capacity {
		kept = kept[:h.capacity]
	}

	h.entries = kept
	h.persist(ctx)
}

// Entries returns the history, newest first.
func (h *History) Entries() []Entry {
	return h.entries
}

// Clear drops all history, in memory and in the durable store.
func (h *History) Clear(ctx context.Context) {
	h.entries = nil
	if err := h.store.RemoveItem(ctx, StorageKey); err != nil {
		h.log.StorageError("remove", StorageKey, err)
	}
}

func (h *History) persist(ctx context.Context) {
	raw, err := json.Marshal(h.entries)
	if err != nil {
		h.log.StorageError("encode", StorageKey, err)
		return
	}
	if err := h.store.SetItem(ctx, StorageKey, string(raw)); err != nil {
		h.log.StorageError("set", StorageKey, err)
	}
}
