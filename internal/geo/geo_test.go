package geo

import (
	"math"
	"testing"
)

func TestHaversine_ZeroDistance(t *testing.T) {
	if d := Haversine(10, 20, 10, 20); d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	// São Paulo to Rio de Janeiro, roughly 360 km.
	d := Haversine(-23.5505, -46.6333, -22.9068, -43.1729)
	if d < 350 || d > 370 {
		t.Fatalf("expected ~360 km, got %f", d)
	}
}

func TestHaversine_OneDegreeLatitude(t *testing.T) {
	// One degree of latitude is ~111.2 km everywhere.
	d := Haversine(0, 0, 1, 0)
	if math.Abs(d-111.2) > 1 {
		t.Fatalf("expected ~111.2 km, got %f", d)
	}
}

func TestWithinRadius(t *testing.T) {
	// ~15 m offset must fall inside a 50 m radius.
	if !WithinRadius(10, 20, 10.0001, 20.0001, 0.05) {
		t.Fatal("expected point ~15m away to be within 50m radius")
	}

	// ~1 km offset must fall outside.
	if WithinRadius(10, 20, 10.009, 20, 0.05) {
		t.Fatal("expected point ~1km away to be outside 50m radius")
	}
}

func TestDistance_SymmetricAndConsistent(t *testing.T) {
	sp := Point{Lat: -23.5505, Lon: -46.6333}
	rio := Point{Lat: -22.9068, Lon: -43.1729}

	ab := Distance(sp, rio)
	ba := Distance(rio, sp)
	if math.Abs(ab-ba) > 1e-9 {
		t.Fatalf("distance not symmetric: %f vs %f", ab, ba)
	}
	if h := Haversine(sp.Lat, sp.Lon, rio.Lat, rio.Lon); h != ab {
		t.Fatalf("Distance and Haversine disagree: %f vs %f", ab, h)
	}
}

func TestExtentCenter(t *testing.T) {
	e := Extent{MinLat: -10, MinLon: -20, MaxLat: 10, MaxLon: 40}
	c := e.Center()
	if c.Lat != 0 || c.Lon != 10 {
		t.Fatalf("unexpected center: %+v", c)
	}
}
