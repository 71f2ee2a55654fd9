package geo

import "math"

const earthRadiusKM = 6371.0

// Waypoint is a named coordinate submitted to the routing oracle.
type Waypoint struct {
	Name string
	Lat  float64
	Lng  float64
}

// HaversineKM returns the great-circle distance between two coordinates in
// kilometers.
func HaversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLng := (lng2 - lng1) * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180.0)*math.Cos(lat2*math.Pi/180.0)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}
