package device

import (
	"time"

	"github.com/google/uuid"
)

// Device represents a tracked vehicle or asset in the domain.
type Device struct {
	ID          uuid.UUID
	Name        string
	IMEI        *string
	Type        DeviceType
	Status      DeviceStatus
	PlateNumber *string
	Model       *string
	Color       *string
	Year        *int
	DriverName  *string
	DriverPhone *string
	Notes       *string
	OwnerUserID *uuid.UUID
	LastSeenAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// DeviceType categorizes the tracked asset.
type DeviceType string

const (
	TypeCar        DeviceType = "car"
	TypeTruck      DeviceType = "truck"
	TypeVan        DeviceType = "van"
	TypeMotorcycle DeviceType = "motorcycle"
	TypeEquipment  DeviceType = "equipment"
	TypeOther      DeviceType = "other"
)

// DeviceStatus represents the operational status of a device.
type DeviceStatus string

const (
	StatusActive      DeviceStatus = "active"
	StatusInactive    DeviceStatus = "inactive"
	StatusMaintenance DeviceStatus = "maintenance"
)

// ValidStatus reports whether s is one of the known device statuses.
func ValidStatus(s DeviceStatus) bool {
	switch s {
	case StatusActive, StatusInactive, StatusMaintenance:
		return true
	}
	return false
}

// IsOnline checks if the device reported within the last 5 minutes.
func (d *Device) IsOnline() bool {
	if d.LastSeenAt == nil {
		return false
	}
	return time.Since(*d.LastSeenAt) < 5*time.Minute
}
