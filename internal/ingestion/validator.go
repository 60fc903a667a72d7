package ingestion

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError is fatal to the reading being processed: nothing is
// persisted and the reading is never retried automatically.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [%s]: %s", e.Field, e.Message)
}

// ValidateReading validates an inbound reading before anything is
// persisted. Device id, latitude and longitude are the only required
// fields; everything else is optional telemetry.
func ValidateReading(r *RawReading) error {
	if r.DeviceID == "" {
		return &ValidationError{Field: "device_id", Message: "device_id is required"}
	}
	if _, err := uuid.Parse(r.DeviceID); err != nil {
		return &ValidationError{Field: "device_id", Message: "device_id must be valid UUID"}
	}

	if r.Latitude == nil {
		return &ValidationError{Field: "latitude", Message: "latitude is required"}
	}
	if *r.Latitude < -90 || *r.Latitude > 90 {
		return &ValidationError{Field: "latitude", Message: "latitude must be between -90 and 90"}
	}

	if r.Longitude == nil {
		return &ValidationError{Field: "longitude", Message: "longitude is required"}
	}
	if *r.Longitude < -180 || *r.Longitude > 180 {
		return &ValidationError{Field: "longitude", Message: "longitude must be between -180 and 180"}
	}

	if r.Speed != nil && *r.Speed < 0 {
		return &ValidationError{Field: "speed", Message: "speed must be non-negative"}
	}

	if r.Heading != nil {
		if *r.Heading < 0 || *r.Heading > 360 {
			return &ValidationError{Field: "heading", Message: "heading must be between 0 and 360"}
		}
	}

	if r.FuelLevel != nil {
		if *r.FuelLevel < 0 || *r.FuelLevel > 100 {
			return &ValidationError{Field: "fuel_level", Message: "fuel_level must be between 0 and 100"}
		}
	}

	if r.BatteryLevel != nil {
		if *r.BatteryLevel < 0 || *r.BatteryLevel > 100 {
			return &ValidationError{Field: "battery_level", Message: "battery_level must be between 0 and 100"}
		}
	}

	return nil
}
