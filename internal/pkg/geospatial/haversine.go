package geospatial

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/mapnav/internal/core/domain"
)

const earthRadiusKm = 6371.0

// HaversineKm calculates the great-circle distance in kilometres between two points.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// Rounding can push a just past 1 for antipodal points.
	a = math.Min(math.Max(a, 0), 1)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// Distance is HaversineKm over two LatLng values.
func Distance(start, end domain.LatLng) float64 {
	return HaversineKm(start.Lat, start.Lng, end.Lat, end.Lng)
}

// BoundsOf returns the smallest box containing every point.
func BoundsOf(points ...domain.LatLng) domain.Bounds {
	if len(points) == 0 {
		return domain.Bounds{}
	}
	mp := make(orb.MultiPoint, 0, len(points))
	for _, p := range points {
		mp = append(mp, toPoint(p))
	}
	b := mp.Bound()
	return domain.Bounds{
		MinLat: b.Min.Lat(),
		MinLng: b.Min.Lon(),
		MaxLat: b.Max.Lat(),
		MaxLng: b.Max.Lon(),
	}
}

// RouteFeature returns the straight segment between start and end as a GeoJSON feature.
func RouteFeature(r domain.RouteResult) *geojson.Feature {
	f := geojson.NewFeature(orb.LineString{toPoint(r.Start), toPoint(r.End)})
	f.Properties["distance_km"] = r.FormattedDistance()
	return f
}

// LocationsCollection converts saved locations into a GeoJSON FeatureCollection.
func LocationsCollection(locs []domain.Location) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, l := range locs {
		f := geojson.NewFeature(toPoint(l.Position()))
		f.ID = l.ID
		f.Properties["name"] = l.Name
		f.Properties["type"] = string(l.Type)
		if l.Description != "" {
			f.Properties["description"] = l.Description
		}
		fc.Append(f)
	}
	return fc
}

func toPoint(p domain.LatLng) orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
