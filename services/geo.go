package services

import (
	"math"

	"github.com/aquasentra/api-go/models"
)

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance between two points in km.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// radiusBoundingBox returns a coarse lat/lng box around a point, used to
// pre-filter in SQL before the exact haversine check.
func radiusBoundingBox(lat, lng, radiusKm float64) (minLat, maxLat, minLng, maxLng float64) {
	latDelta := radiusKm / 111.0 // ~111km per degree of latitude
	lngDelta := radiusKm / (111.0 * math.Max(math.Cos(radians(lat)), 0.01))
	return lat - latDelta, lat + latDelta, lng - lngDelta, lng + lngDelta
}

// ClusterPrecision maps a map zoom level to a coordinate rounding factor.
// Lower zoom rounds coarser so pins collapse into fewer groups.
func ClusterPrecision(zoom int) float64 {
	factor := math.Pow(2, float64(zoom-3))
	if factor < 1 {
		return 1
	}
	if factor > 10000 {
		return 10000
	}
	return factor
}

type Cluster struct {
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Count         int     `json:"count"`
	CriticalCount int     `json:"critical_count"`
	VerifiedCount int     `json:"verified_count"`
}

// ClusterReports groups reports by rounded coordinates. A display-density
// aid for the map viewport, not a spatial index.
func ClusterReports(reports []models.HazardReport, zoom int) []Cluster {
	factor := ClusterPrecision(zoom)

	type key struct{ lat, lng float64 }
	groups := make(map[key]*Cluster)
	order := make([]key, 0)

	for i := range reports {
		r := &reports[i]
		k := key{
			lat: math.Round(r.Latitude*factor) / factor,
			lng: math.Round(r.Longitude*factor) / factor,
		}
		cl, ok := groups[k]
		if !ok {
			cl = &Cluster{Latitude: k.lat, Longitude: k.lng}
			groups[k] = cl
			order = append(order, k)
		}
		cl.Count++
		if r.Severity == models.SeverityCritical {
			cl.CriticalCount++
		}
		if r.Status == models.StatusVerified {
			cl.VerifiedCount++
		}
	}

	out := make([]Cluster, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	return out
}

// HeatWeight is the fixed per-severity scalar used for heatmap points.
func HeatWeight(severity string) int {
	switch severity {
	case models.SeverityCritical:
		return 4
	case models.SeverityHigh:
		return 3
	case models.SeverityMedium:
		return 2
	case models.SeverityLow:
		return 1
	}
	return 1
}
