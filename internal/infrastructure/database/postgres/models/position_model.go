package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PositionModel is the database model for position readings. The
// composite (device_id, device_time) index backs the idle-check range
// scan and history queries.
type PositionModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DeviceID     uuid.UUID `gorm:"type:uuid;not null;index:idx_positions_device_time,priority:1"`
	Latitude     float64   `gorm:"type:decimal(10,7);not null"`
	Longitude    float64   `gorm:"type:decimal(10,7);not null"`
	Altitude     *float64  `gorm:"type:decimal(8,2)"`
	Speed        *float64  `gorm:"type:decimal(6,2)"`
	Heading      *int
	Satellites   *int
	Accuracy     *float64 `gorm:"type:decimal(6,2)"`
	Odometer     *float64 `gorm:"type:decimal(12,2)"`
	FuelLevel    *int
	BatteryLevel *float64 `gorm:"type:decimal(5,2)"`
	Ignition     *bool
	Address      *string
	RawData      json.RawMessage `gorm:"type:jsonb"`
	DeviceTime   time.Time       `gorm:"not null;index:idx_positions_device_time,priority:2;index"`
	CreatedAt    time.Time
}

func (PositionModel) TableName() string {
	return "positions"
}
