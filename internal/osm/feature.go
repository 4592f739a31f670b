package osm

import "localist_backend/internal/geo"

// FeatureCollection mirrors the GeoJSON body returned by the Photon API.
type FeatureCollection struct {
	Features []Feature `json:"features"`
}

// Feature is a single GeoJSON feature from the geocode response.
type Feature struct {
	Geometry   Geometry          `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

// Geometry carries the point coordinates as [lon, lat].
type Geometry struct {
	Coordinates []float64 `json:"coordinates"`
}

// FeatureProperties mirrors the relevant parts of the Photon payload.
// Extent, when present, is [minLon, minLat, maxLon, maxLat].
type FeatureProperties struct {
	OSMID       int64     `json:"osm_id"`
	OSMType     string    `json:"osm_type"`
	OSMKey      string    `json:"osm_key"`
	OSMValue    string    `json:"osm_value"`
	Name        string    `json:"name"`
	Country     string    `json:"country"`
	State       string    `json:"state"`
	City        string    `json:"city"`
	District    string    `json:"district"`
	Street      string    `json:"street"`
	Housenumber string    `json:"housenumber"`
	Postcode    string    `json:"postcode"`
	Extent      []float64 `json:"extent"`
}

// Place converts the raw feature into the domain model. Features without a
// point geometry yield a zero-coordinate place; the caller decides whether
// to keep them.
func (f Feature) Place() Place {
	p := Place{
		OSMID:       f.Properties.OSMID,
		OSMType:     f.Properties.OSMType,
		OSMKey:      f.Properties.OSMKey,
		OSMValue:    f.Properties.OSMValue,
		Name:        f.Properties.Name,
		Country:     f.Properties.Country,
		State:       f.Properties.State,
		City:        f.Properties.City,
		District:    f.Properties.District,
		Street:      f.Properties.Street,
		Housenumber: f.Properties.Housenumber,
		Postcode:    f.Properties.Postcode,
	}

	if len(f.Geometry.Coordinates) >= 2 {
		p.Lon = f.Geometry.Coordinates[0]
		p.Lat = f.Geometry.Coordinates[1]
	}

	if len(f.Properties.Extent) == 4 {
		p.Extent = &geo.Extent{
			MinLon: f.Properties.Extent[0],
			MinLat: f.Properties.Extent[1],
			MaxLon: f.Properties.Extent[2],
			MaxLat: f.Properties.Extent[3],
		}
	}

	return p
}

// Places converts every feature in the collection.
func (fc FeatureCollection) Places() []Place {
	places := make([]Place, 0, len(fc.Features))
	for _, f := range fc.Features {
		places = append(places, f.Place())
	}
	return places
}
