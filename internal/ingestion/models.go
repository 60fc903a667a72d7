package ingestion

import (
	"encoding/json"
	"time"

	"fleet-telemetry/internal/domain/position"

	"github.com/google/uuid"
)

// RawReading is one inbound GPS report as received from a device
// uplink. Latitude/longitude are pointers so a missing coordinate is
// distinguishable from zero (0,0 is a valid fix in the Gulf of Guinea).
type RawReading struct {
	DeviceID     string          `json:"device_id"`
	Latitude     *float64        `json:"latitude"`
	Longitude    *float64        `json:"longitude"`
	Altitude     *float64        `json:"altitude"`
	Speed        *float64        `json:"speed"`
	Heading      *int            `json:"heading"`
	Satellites   *int            `json:"satellites"`
	Accuracy     *float64        `json:"accuracy"`
	Odometer     *float64        `json:"odometer"`
	FuelLevel    *int            `json:"fuel_level"`
	BatteryLevel *float64        `json:"battery_level"`
	Ignition     *bool           `json:"ignition"`
	Address      *string         `json:"address"`
	RawData      json.RawMessage `json:"raw_data"`
	DeviceTime   *time.Time      `json:"device_time"`

	// OriginSocketID identifies the live connection that submitted the
	// reading, if any. Events triggered by this reading are not echoed
	// back to it.
	OriginSocketID string `json:"-"`
}

// ParseReading decodes a JSON uplink payload.
func ParseReading(payload []byte) (*RawReading, error) {
	var reading RawReading
	if err := json.Unmarshal(payload, &reading); err != nil {
		return nil, err
	}
	return &reading, nil
}

// ToPosition builds the immutable position record. The device-reported
// timestamp defaults to the server receipt time when absent; it may
// legitimately be earlier than receivedAt and is not required to be
// monotonic per device.
func (r *RawReading) ToPosition(receivedAt time.Time) *position.Position {
	deviceID, _ := uuid.Parse(r.DeviceID)

	deviceTime := receivedAt
	if r.DeviceTime != nil && !r.DeviceTime.IsZero() {
		deviceTime = *r.DeviceTime
	}

	return &position.Position{
		DeviceID:     deviceID,
		Latitude:     *r.Latitude,
		Longitude:    *r.Longitude,
		Altitude:     r.Altitude,
		Speed:        r.Speed,
		Heading:      r.Heading,
		Satellites:   r.Satellites,
		Accuracy:     r.Accuracy,
		Odometer:     r.Odometer,
		FuelLevel:    r.FuelLevel,
		BatteryLevel: r.BatteryLevel,
		Ignition:     r.Ignition,
		Address:      r.Address,
		RawData:      r.RawData,
		DeviceTime:   deviceTime,
	}
}
