package position

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Position is one immutable GPS telemetry reading. Optional telemetry
// fields are pointers: a missing value and a zero value are distinct
// (a nil battery level produces no low-battery alert, a 0% one does).
type Position struct {
	ID           uuid.UUID
	DeviceID     uuid.UUID
	Latitude     float64
	Longitude    float64
	Altitude     *float64
	Speed        *float64
	Heading      *int
	Satellites   *int
	Accuracy     *float64
	Odometer     *float64
	FuelLevel    *int
	BatteryLevel *float64
	Ignition     *bool
	Address      *string
	RawData      json.RawMessage
	DeviceTime   time.Time
	CreatedAt    time.Time
}

// Snapshot is the narrow projection cached and broadcast for live map
// rendering. Kept deliberately small so cache payloads stay cheap under
// high write volume.
type Snapshot struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Speed      *float64  `json:"speed"`
	Heading    *int      `json:"heading"`
	Ignition   *bool     `json:"ignition"`
	DeviceTime time.Time `json:"device_time"`
}

// ToSnapshot projects the position down to the live-map fields.
func (p *Position) ToSnapshot() Snapshot {
	return Snapshot{
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
		Speed:      p.Speed,
		Heading:    p.Heading,
		Ignition:   p.Ignition,
		DeviceTime: p.DeviceTime,
	}
}
