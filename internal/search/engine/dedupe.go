package engine

import (
	"sort"
	"strings"

	"localist_backend/internal/osm"
	"localist_backend/internal/search/normalize"
)

// Deduplicate collapses duplicate places within a single fetched result set,
// preserving relative order with first occurrence winning.
//
// A place carrying a provider id that was already seen in the batch is
// dropped. Otherwise a composite key recognizes "the same place" across
// results lacking a stable id: road-classified places ignore the street
// field (the road is the street), everything else includes it. Places with
// an empty normalized name bypass key-based dedup but still count toward id
// dedup.
func Deduplicate(places []osm.Place) []osm.Place {
	seenIDs := make(map[int64]struct{})
	seenKeys := make(map[string]struct{})

	out := make([]osm.Place, 0, len(places))
	for _, place := range places {
		// Canonicalize the provider's English country name.
		if place.Country == "Brazil" {
			place.Country = "Brasil"
		}

		if place.OSMID != 0 {
			if _, dup := seenIDs[place.OSMID]; dup {
				continue
			}
			seenIDs[place.OSMID] = struct{}{}
		}

		name := normalize.String(place.Name)
		if name == "" {
			out = append(out, place)
			continue
		}

		key := compositeKey(place)
		if _, dup := seenKeys[key]; dup {
			continue
		}
		seenKeys[key] = struct{}{}
		out = append(out, place)
	}
	return out
}

func compositeKey(place osm.Place) string {
	name := normalize.String(place.Name)
	city := normalize.String(place.City)

	if place.OSMKey == "highway" {
		return "street|" + name + "|" + city
	}
	return "poi|" + name + "|" + city + "|" + normalize.String(place.Street)
}

// RankByPrefix stably partitions places so that every place whose normalized
// name starts with the normalized query precedes all others. Order within
// each partition is untouched.
func RankByPrefix(places []osm.Place, query string) []osm.Place {
	normalized := normalize.String(query)
	sort.SliceStable(places, func(i, j int) bool {
		startsI := strings.HasPrefix(normalize.String(places[i].Name), normalized)
		startsJ := strings.HasPrefix(normalize.String(places[j].Name), normalized)
		return startsI && !startsJ
	})
	return places
}
