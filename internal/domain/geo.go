package domain

import (
	"fmt"
	"math"
)

// Immutable geographic point (latitude, longitude).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Return the point as [lon, lat] for external API compatibility.
func (p GeoPoint) LonLat() []float64 { return []float64{p.Lng, p.Lat} }

// Validate reports whether the point lies within WGS84 bounds.
func (p GeoPoint) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return fmt.Errorf("geo point: NaN coordinate")
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("geo point: latitude %v out of range", p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("geo point: longitude %v out of range", p.Lng)
	}
	return nil
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

const earthRadiusKm = 6371.0

// HaversineMeters is the great-circle distance between two points.
func HaversineMeters(a, b GeoPoint) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c * 1000
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
