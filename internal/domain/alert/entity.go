package alert

import (
	"time"

	"github.com/google/uuid"
)

// Alert is a generated notification for one device. Alerts are created
// by the rule engine, toggled read/unread by operators, and never
// deleted by the ingestion side.
type Alert struct {
	ID         uuid.UUID
	DeviceID   uuid.UUID
	GeofenceID *uuid.UUID
	Type       AlertType
	Severity   Severity
	Message    string
	Data       map[string]any
	Read       bool
	ReadAt     *time.Time
	CreatedAt  time.Time
}

type AlertType string

const (
	TypeGeofenceEntry AlertType = "geofence_entry"
	TypeGeofenceExit  AlertType = "geofence_exit"
	TypeSpeedLimit    AlertType = "speed_limit"
	TypeIdle          AlertType = "idle"
	TypeLowBattery    AlertType = "low_battery"
	TypeSOS           AlertType = "sos"
	TypePowerCut      AlertType = "power_cut"
	TypeMovement      AlertType = "movement"
	TypeOther         AlertType = "other"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Validate checks the fields required before persisting.
func (a *Alert) Validate() error {
	if a.DeviceID == uuid.Nil {
		return ErrMissingDeviceID
	}
	if a.Type == "" {
		return ErrMissingType
	}
	if a.Severity == "" {
		return ErrMissingSeverity
	}
	if a.Message == "" {
		return ErrMissingMessage
	}
	return nil
}
