package ingestion

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }
func iptr(v int) *int        { return &v }
func bptr(v bool) *bool      { return &v }

const testDeviceID = "7b0f7db1-84c9-4f0e-9f2f-0f6f1cf6a001"

func validReading() *RawReading {
	return &RawReading{
		DeviceID:  testDeviceID,
		Latitude:  f64(10.762622),
		Longitude: f64(106.660172),
	}
}

func TestValidateReading(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *RawReading)
		wantField string
	}{
		{
			name:   "valid minimal reading",
			mutate: func(r *RawReading) {},
		},
		{
			name:      "missing device id",
			mutate:    func(r *RawReading) { r.DeviceID = "" },
			wantField: "device_id",
		},
		{
			name:      "malformed device id",
			mutate:    func(r *RawReading) { r.DeviceID = "not-a-uuid" },
			wantField: "device_id",
		},
		{
			name:      "missing latitude",
			mutate:    func(r *RawReading) { r.Latitude = nil },
			wantField: "latitude",
		},
		{
			name:      "latitude out of range",
			mutate:    func(r *RawReading) { r.Latitude = f64(91) },
			wantField: "latitude",
		},
		{
			name:      "missing longitude",
			mutate:    func(r *RawReading) { r.Longitude = nil },
			wantField: "longitude",
		},
		{
			name:      "longitude out of range",
			mutate:    func(r *RawReading) { r.Longitude = f64(-180.5) },
			wantField: "longitude",
		},
		{
			name:   "zero coordinates are a valid fix",
			mutate: func(r *RawReading) { r.Latitude, r.Longitude = f64(0), f64(0) },
		},
		{
			name:      "negative speed",
			mutate:    func(r *RawReading) { r.Speed = f64(-1) },
			wantField: "speed",
		},
		{
			name:      "heading above 360",
			mutate:    func(r *RawReading) { r.Heading = iptr(361) },
			wantField: "heading",
		},
		{
			name:   "heading at 360 is allowed",
			mutate: func(r *RawReading) { r.Heading = iptr(360) },
		},
		{
			name:      "fuel level above 100",
			mutate:    func(r *RawReading) { r.FuelLevel = iptr(101) },
			wantField: "fuel_level",
		},
		{
			name:      "battery level below 0",
			mutate:    func(r *RawReading) { r.BatteryLevel = f64(-0.1) },
			wantField: "battery_level",
		},
		{
			name:   "battery level at bounds",
			mutate: func(r *RawReading) { r.BatteryLevel = f64(100) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reading := validReading()
			tt.mutate(reading)

			err := ValidateReading(reading)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.wantField, validationErr.Field)
		})
	}
}

func TestParseReadingRejectsMalformedJSON(t *testing.T) {
	_, err := ParseReading([]byte("{not json"))
	assert.Error(t, err)
}

func TestToPositionDefaultsDeviceTime(t *testing.T) {
	reading := validReading()
	received := mustTime(t, "2026-03-14T09:26:53Z")

	p := reading.ToPosition(received)
	assert.Equal(t, received, p.DeviceTime)

	reported := mustTime(t, "2026-03-14T09:20:00Z")
	reading.DeviceTime = &reported
	p = reading.ToPosition(received)
	assert.Equal(t, reported, p.DeviceTime)
}
