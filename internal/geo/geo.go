// Package geo provides great-circle distance math used by the spatial
// index and the map interaction core.
package geo

import "github.com/golang/geo/s2"

// EarthRadiusKm is the Earth's mean radius in kilometers.
const EarthRadiusKm = 6371.0

// Point is a WGS84 coordinate pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Extent is a bounding box in WGS84 degrees.
type Extent struct {
	MinLat float64 `json:"minLat"`
	MinLon float64 `json:"minLon"`
	MaxLat float64 `json:"maxLat"`
	MaxLon float64 `json:"maxLon"`
}

// Center returns the midpoint of the extent.
func (e Extent) Center() Point {
	return Point{
		Lat: (e.MinLat + e.MaxLat) / 2,
		Lon: (e.MinLon + e.MaxLon) / 2,
	}
}

// Haversine returns the great-circle distance between two coordinates in
// kilometers.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lon1)
	b := s2.LatLngFromDegrees(lat2, lon2)
	return float64(a.Distance(b)) * EarthRadiusKm
}

// Distance returns the great-circle distance between two points in kilometers.
func Distance(a, b Point) float64 {
	return Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
}

// WithinRadius reports whether point (lat, lon) lies within radiusKm of the
// center coordinate.
func WithinRadius(centerLat, centerLon, lat, lon, radiusKm float64) bool {
	return Haversine(centerLat, centerLon, lat, lon) <= radiusKm
}
