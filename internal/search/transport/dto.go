package transport

import (
	"localist_backend/internal/osm"
	"localist_backend/internal/search/engine"
	"localist_backend/internal/search/history"
)

type QueryRequest struct {
	Query string `json:"q" validate:"max=200"`
}

type SearchRequest struct {
	Query string `json:"q" validate:"omitempty,max=200"`
}

type SelectRequest struct {
	Place osm.Place `json:"place" validate:"required"`
}

// PlaceLabeler resolves a localized place-type label for an OSM tag pair.
// Satisfied by the i18n provider.
type PlaceLabeler interface {
	PlaceLabel(tagKey string) (string, bool)
}

// PlaceResponse is one search result with its localized place-type label
// ("Cafeteria" for amenity:cafe).
type PlaceResponse struct {
	osm.Place
	Label string `json:"label"`
}

// PlaceFrom attaches the localized label, falling back to the title-cased
// raw tag value when the locale has no entry for the pair.
func PlaceFrom(place osm.Place, labels PlaceLabeler) PlaceResponse {
	label, ok := labels.PlaceLabel(place.TagKey())
	if !ok {
		label = place.FallbackLabel()
	}
	return PlaceResponse{Place: place, Label: label}
}

// StateResponse is the search box state after an operation: the current
// query text, the visible result list and keyboard focus position.
type StateResponse struct {
	Query        string          `json:"query"`
	Results      []PlaceResponse `json:"results"`
	Loading      bool            `json:"loading"`
	HasSearched  bool            `json:"hasSearched"`
	FocusedIndex int             `json:"focusedIndex"`
}

func StateFrom(state engine.State, labels PlaceLabeler) StateResponse {
	results := make([]PlaceResponse, 0, len(state.Results))
	for _, place := range state.Results {
		results = append(results, PlaceFrom(place, labels))
	}
	return StateResponse{
		Query:        state.Query,
		Results:      results,
		Loading:      state.Loading,
		HasSearched:  state.HasSearched,
		FocusedIndex: state.FocusedIndex,
	}
}

type HistoryEntry struct {
	Query     string    `json:"query"`
	Timestamp int64     `json:"timestamp"`
	Result    osm.Place `json:"result"`
}

type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

func HistoryFrom(entries []history.Entry) HistoryResponse {
	out := HistoryResponse{Entries: make([]HistoryEntry, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, HistoryEntry{
			Query:     e.Query,
			Timestamp: e.Timestamp,
			Result:    e.Result,
		})
	}
	return out
}
