package geo

import (
	"math"
	"testing"
)

func TestHaversineDistanceMeters(t *testing.T) {
	tests := []struct {
		name                     string
		lat1, lng1, lat2, lng2   float64
		wantMeters, tolerancePct float64
	}{
		{
			name: "same point",
			lat1: 40.7128, lng1: -74.0060,
			lat2: 40.7128, lng2: -74.0060,
			wantMeters: 0, tolerancePct: 0,
		},
		{
			name: "new york to los angeles",
			lat1: 40.7128, lng1: -74.0060,
			lat2: 34.0522, lng2: -118.2437,
			wantMeters: 3935746, tolerancePct: 0.5,
		},
		{
			name: "one degree of latitude at equator",
			lat1: 0, lng1: 0,
			lat2: 1, lng2: 0,
			wantMeters: 111195, tolerancePct: 0.1,
		},
		{
			name: "short hop across manhattan",
			lat1: 40.7128, lng1: -74.0060,
			lat2: 40.7589, lng2: -73.9851,
			wantMeters: 5420, tolerancePct: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineDistanceMeters(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if tt.wantMeters == 0 {
				if got != 0 {
					t.Fatalf("expected 0, got %f", got)
				}
				return
			}
			diff := math.Abs(got-tt.wantMeters) / tt.wantMeters * 100
			if diff > tt.tolerancePct {
				t.Fatalf("expected ~%f m (±%f%%), got %f m", tt.wantMeters, tt.tolerancePct, got)
			}
		})
	}
}

func TestIsWithinCircle(t *testing.T) {
	// Center of the office zone used throughout the fixtures.
	const lat, lng = 40.7128, -74.0060

	t.Run("center point is always inside for non-negative radius", func(t *testing.T) {
		if !IsWithinCircle(lat, lng, lat, lng, 0) {
			t.Error("point at center with radius 0 should be inside")
		}
		if !IsWithinCircle(lat, lng, lat, lng, 500) {
			t.Error("point at center with radius 500 should be inside")
		}
	})

	t.Run("point just inside radius", func(t *testing.T) {
		// ~157 m north of center.
		if !IsWithinCircle(lat+0.00141, lng, lat, lng, 500) {
			t.Error("expected point ~157m away to be inside 500m circle")
		}
	})

	t.Run("point outside radius", func(t *testing.T) {
		// ~1.1 km north of center.
		if IsWithinCircle(lat+0.01, lng, lat, lng, 500) {
			t.Error("expected point ~1.1km away to be outside 500m circle")
		}
	})

	t.Run("asymmetric swap of point and center keeps distance but not verdict", func(t *testing.T) {
		pLat, pLng := lat+0.004, lng // ~445 m away
		inside := IsWithinCircle(pLat, pLng, lat, lng, 500)
		swapped := IsWithinCircle(lat, lng, pLat, pLng, 500)
		if inside != swapped {
			t.Error("same radius: swapping point and center must not change the verdict")
		}
		// Shrinking the radius on one side breaks the symmetry.
		if IsWithinCircle(pLat, pLng, lat, lng, 500) == IsWithinCircle(lat, lng, pLat, pLng, 100) {
			t.Error("different radii: verdicts should differ for a ~445m separation")
		}
	})

	t.Run("NaN coordinates are never inside", func(t *testing.T) {
		if IsWithinCircle(math.NaN(), lng, lat, lng, 1e9) {
			t.Error("NaN latitude must not be inside any circle")
		}
		if IsWithinCircle(lat, lng, lat, math.NaN(), 1e9) {
			t.Error("NaN center must not contain any point")
		}
	})
}
