package mapcore

import (
	"fmt"
	"math"

	"localist_backend/internal/geo"
)

// ClusterTier sizes the cluster icon by member count.
type ClusterTier string

const (
	TierSmall  ClusterTier = "small"  // up to 10 members
	TierMedium ClusterTier = "medium" // up to 50 members
	TierLarge  ClusterTier = "large"  // more than 50 members
)

// Cluster is a group of markers close enough on screen to collapse into a
// single icon at the current zoom.
type Cluster struct {
	ID      string     `json:"id"`
	Members []Pin      `json:"members"`
	Center  geo.Point  `json:"center"`
	Bounds  geo.Extent `json:"bounds"`
}

// Tier returns the icon size tier for this cluster.
func (c Cluster) Tier() ClusterTier {
	n := len(c.Members)
	switch {
	case n <= 10:
		return TierSmall
	case n <= 50:
		return TierMedium
	default:
		return TierLarge
	}
}

const tileSize = 256.0

// project maps a coordinate to web-mercator world pixels at the given zoom.
func project(lat, lon float64, zoom int) (x, y float64) {
	worldSize := tileSize * math.Exp2(float64(zoom))
	x = (lon + 180) / 360 * worldSize

	latRad := lat * math.Pi / 180
	y = (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * worldSize
	return x, y
}

// BuildClusters groups pins whose markers sit within radiusPx of each other
// on screen at the given zoom. Greedy in insertion order: each unclaimed pin
// seeds a cluster and absorbs every later pin within the pixel radius.
// Deterministic for a fixed input order.
func BuildClusters(pins []Pin, zoom int, radiusPx float64) []Cluster {
	claimed := make([]bool, len(pins))
	var clusters []Cluster

	type projected struct{ x, y float64 }
	points := make([]projected, len(pins))
	for i, p := range pins {
		x, y := project(p.Lat, p.Lon, zoom)
		points[i] = projected{x, y}
	}

	for i := range pins {
		if claimed[i] {
			continue
		}
		claimed[i] = true
		members := []Pin{pins[i]}

		for j := i + 1; j < len(pins); j++ {
			if claimed[j] {
				continue
			}
			dx := points[j].x - points[i].x
			dy := points[j].y - points[i].y
			if math.Hypot(dx, dy) <= radiusPx {
				claimed[j] = true
				members = append(members, pins[j])
			}
		}

		clusters = append(clusters, newCluster(len(clusters), members))
	}
	return clusters
}

func newCluster(index int, members []Pin) Cluster {
	bounds := geo.Extent{
		MinLat: members[0].Lat, MaxLat: members[0].Lat,
		MinLon: members[0].Lon, MaxLon: members[0].Lon,
	}
	var sumLat, sumLon float64
	for _, m := range members {
		sumLat += m.Lat
		sumLon += m.Lon
		bounds.MinLat = math.Min(bounds.MinLat, m.Lat)
		bounds.MaxLat = math.Max(bounds.MaxLat, m.Lat)
		bounds.MinLon = math.Min(bounds.MinLon, m.Lon)
		bounds.MaxLon = math.Max(bounds.MaxLon, m.Lon)
	}
	n := float64(len(members))
	return Cluster{
		ID:      fmt.Sprintf("cluster:%d", index),
		Members: members,
		Center:  geo.Point{Lat: sumLat / n, Lon: sumLon / n},
		Bounds:  bounds,
	}
}

// ClickCluster reveals a cluster's members: zoom to its bounds, except at
// max zoom where zooming cannot separate them and the cluster fans out
// instead.
func ClickCluster(view MapView, cluster Cluster, zoom, maxZoom, fitPadding int) {
	if zoom >= maxZoom {
		view.Spiderfy(cluster.ID)
		return
	}
	view.FitBounds(cluster.Bounds, fitPadding, maxZoom)
}
