package engine

import (
	"testing"

	"localist_backend/internal/osm"
)

func TestDeduplicate_SameProviderID(t *testing.T) {
	places := []osm.Place{
		{OSMID: 42, Name: "Blue Cafe", City: "São Paulo"},
		{OSMID: 42, Name: "Blue Cafe Annex", City: "São Paulo"},
	}

	out := Deduplicate(places)
	if len(out) != 1 {
		t.Fatalf("expected 1 place for id 42, got %d", len(out))
	}
	if out[0].Name != "Blue Cafe" {
		t.Fatalf("expected first occurrence kept, got %s", out[0].Name)
	}
}

func TestDeduplicate_RoadsIgnoreStreet(t *testing.T) {
	places := []osm.Place{
		{OSMKey: "highway", Name: "Avenida Paulista", City: "São Paulo", Street: "Trecho A"},
		{OSMKey: "highway", Name: "Avenida Paulista", City: "São Paulo", Street: "Trecho B"},
	}

	out := Deduplicate(places)
	if len(out) != 1 {
		t.Fatalf("expected road segments collapsed, got %d", len(out))
	}
	if out[0].Street != "Trecho A" {
		t.Fatalf("expected first segment kept, got %s", out[0].Street)
	}
}

func TestDeduplicate_POIsKeepDistinctStreets(t *testing.T) {
	places := []osm.Place{
		{OSMKey: "amenity", Name: "Padaria Real", City: "São Paulo", Street: "Rua A"},
		{OSMKey: "amenity", Name: "Padaria Real", City: "São Paulo", Street: "Rua B"},
	}

	out := Deduplicate(places)
	if len(out) != 2 {
		t.Fatalf("expected both POIs kept, got %d", len(out))
	}
}

func TestDeduplicate_EmptyNameBypassesKeyDedup(t *testing.T) {
	places := []osm.Place{
		{Name: "", City: "São Paulo"},
		{Name: "", City: "São Paulo"},
	}

	out := Deduplicate(places)
	if len(out) != 2 {
		t.Fatalf("expected nameless places always kept, got %d", len(out))
	}
}

func TestDeduplicate_EmptyNameStillIDDeduped(t *testing.T) {
	places := []osm.Place{
		{OSMID: 7, Name: ""},
		{OSMID: 7, Name: ""},
	}

	out := Deduplicate(places)
	if len(out) != 1 {
		t.Fatalf("expected id dedup to apply, got %d", len(out))
	}
}

func TestDeduplicate_NameComparisonIgnoresCaseAndDiacritics(t *testing.T) {
	places := []osm.Place{
		{Name: "Café Azul", City: "Rio"},
		{Name: "cafe azul", City: "rio"},
	}

	out := Deduplicate(places)
	if len(out) != 1 {
		t.Fatalf("expected normalized duplicates collapsed, got %d", len(out))
	}
}

func TestDeduplicate_CanonicalizesCountry(t *testing.T) {
	out := Deduplicate([]osm.Place{{Name: "Praia", Country: "Brazil"}})
	if out[0].Country != "Brasil" {
		t.Fatalf("expected country canonicalized, got %s", out[0].Country)
	}
}

func TestRankByPrefix(t *testing.T) {
	places := []osm.Place{
		{Name: "Central Park Zoo"},
		{Name: "Park Avenue"},
	}

	out := RankByPrefix(places, "park")
	if out[0].Name != "Park Avenue" {
		t.Fatalf("expected prefix match promoted, got %s", out[0].Name)
	}
	if out[1].Name != "Central Park Zoo" {
		t.Fatalf("expected non-prefix match second, got %s", out[1].Name)
	}
}

func TestRankByPrefix_StableWithinPartitions(t *testing.T) {
	places := []osm.Place{
		{Name: "Park One"},
		{Name: "Central Park"},
		{Name: "Park Two"},
		{Name: "Old Park"},
	}

	out := RankByPrefix(places, "park")
	want := []string{"Park One", "Park Two", "Central Park", "Old Park"}
	for i, name := range want {
		if out[i].Name != name {
			t.Fatalf("position %d: got %s, want %s", i, out[i].Name, name)
		}
	}
}
