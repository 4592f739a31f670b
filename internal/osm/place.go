// Package osm holds the place model shared by the search engine and the map
// interaction core: a geocoded result with coordinates, OSM classification
// and provenance properties.
package osm

import (
	"strings"

	"localist_backend/internal/geo"
)

// PlaceKind distinguishes places rendered as a single point from places that
// cover an area of the map.
type PlaceKind string

const (
	KindPoint PlaceKind = "point"
	KindArea  PlaceKind = "area"
)

// Place is a geocoded search result. Immutable once fetched from the
// geocode API.
type Place struct {
	// OSMID is the provider-assigned numeric id; 0 means absent.
	OSMID    int64  `json:"osmId,omitempty"`
	OSMType  string `json:"osmType,omitempty"`
	OSMKey   string `json:"osmKey,omitempty"`
	OSMValue string `json:"osmValue,omitempty"`

	Name        string `json:"name"`
	Country     string `json:"country,omitempty"`
	State       string `json:"state,omitempty"`
	City        string `json:"city,omitempty"`
	District    string `json:"district,omitempty"`
	Street      string `json:"street,omitempty"`
	Housenumber string `json:"housenumber,omitempty"`
	Postcode    string `json:"postcode,omitempty"`

	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	// Extent is the bounding box for area-like places, when the provider
	// supplies one.
	Extent *geo.Extent `json:"extent,omitempty"`
}

// areaValues are osm_value classifications rendered as areas rather than
// point markers.
var areaValues = map[string]struct{}{
	"city":          {},
	"town":          {},
	"village":       {},
	"suburb":        {},
	"neighbourhood": {},
	"park":          {},
	"administrative": {},
	"residential":   {},
	"industrial":    {},
	"commercial":    {},
}

// Kind classifies the place as a point or an area based on its OSM tags.
func (p Place) Kind() PlaceKind {
	if _, ok := areaValues[p.OSMValue]; ok {
		return KindArea
	}
	if p.OSMKey == "landuse" || p.OSMKey == "boundary" {
		return KindArea
	}
	return KindPoint
}

// TagKey returns the "key:value" OSM tag pair used for localized place
// labels ("amenity:cafe").
func (p Place) TagKey() string {
	return p.OSMKey + ":" + p.OSMValue
}

// FallbackLabel formats the raw osm_value for display when no localized
// label exists: underscores become spaces and words are title-cased.
func (p Place) FallbackLabel() string {
	words := strings.Split(strings.ReplaceAll(p.OSMValue, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
