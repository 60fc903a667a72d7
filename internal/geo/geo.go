package geo

import "math"

const earthRadiusMeters = 6371000

// HaversineDistanceMeters returns the great-circle distance between two
// coordinates using the spherical law of haversines.
func HaversineDistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// IsWithinCircle reports whether the point lies inside or on the circle.
// NaN coordinates propagate through the distance and compare false.
func IsWithinCircle(pointLat, pointLng, centerLat, centerLng, radiusMeters float64) bool {
	return HaversineDistanceMeters(pointLat, pointLng, centerLat, centerLng) <= radiusMeters
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
