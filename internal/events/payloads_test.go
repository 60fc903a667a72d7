package events

import (
	"testing"
	"time"

	"fleet-telemetry/internal/domain/alert"
	"fleet-telemetry/internal/domain/position"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPositionUpdated(t *testing.T) {
	deviceID := uuid.New()
	speed := 45.0
	heading := 90
	ignition := true
	fuel := 80

	deviceTime := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	p := &position.Position{
		DeviceID:   deviceID,
		Latitude:   40.7128,
		Longitude:  -74.0060,
		Speed:      &speed,
		Heading:    &heading,
		Ignition:   &ignition,
		FuelLevel:  &fuel,
		DeviceTime: deviceTime,
		CreatedAt:  deviceTime.Add(2 * time.Second),
	}

	event := NewPositionUpdated(p, "socket-123")

	assert.Equal(t, "position.updated", event.Name)
	assert.Equal(t, []string{"devices", "device." + deviceID.String()}, event.Channels)
	assert.Equal(t, "socket-123", event.OriginSocketID)

	// snake_case keys and ISO-8601 timestamps are the wire contract.
	for _, key := range []string{
		"device_id", "latitude", "longitude", "speed", "heading",
		"altitude", "ignition", "fuel_level", "device_time", "created_at",
	} {
		assert.Contains(t, event.Payload, key)
	}
	assert.Equal(t, deviceID.String(), event.Payload["device_id"])
	assert.Equal(t, "2026-03-14T09:26:53Z", event.Payload["device_time"])
}

func TestNewAlertCreated(t *testing.T) {
	deviceID := uuid.New()
	geofenceID := uuid.New()
	geofenceName := "Office Zone"
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	a := &alert.Alert{
		ID:         uuid.New(),
		DeviceID:   deviceID,
		GeofenceID: &geofenceID,
		Type:       alert.TypeGeofenceEntry,
		Severity:   alert.SeverityWarning,
		Message:    "Device entered geofence: Office Zone",
		Data:       map[string]any{"geofence_name": geofenceName},
		CreatedAt:  created,
	}

	event := NewAlertCreated(a, "Vehicle 001", &geofenceName, "")

	require.Equal(t, "alert.created", event.Name)
	assert.Equal(t, []string{"alerts"}, event.Channels)
	assert.Empty(t, event.OriginSocketID)

	assert.Equal(t, "Vehicle 001", event.Payload["device_name"])
	assert.Equal(t, geofenceID.String(), event.Payload["geofence_id"])
	assert.Equal(t, &geofenceName, event.Payload["geofence_name"])
	assert.Equal(t, "geofence_entry", event.Payload["type"])
	assert.Equal(t, "warning", event.Payload["severity"])
	assert.Equal(t, "2026-03-14T09:30:00Z", event.Payload["created_at"])
}

func TestNewAlertCreatedWithoutGeofence(t *testing.T) {
	a := &alert.Alert{
		ID:        uuid.New(),
		DeviceID:  uuid.New(),
		Type:      alert.TypeSpeedLimit,
		Severity:  alert.SeverityHigh,
		Message:   "Device exceeded speed limit: 160 km/h (limit: 120 km/h)",
		CreatedAt: time.Now(),
	}

	event := NewAlertCreated(a, "Truck 042", nil, "")

	assert.Nil(t, event.Payload["geofence_id"])
	assert.Nil(t, event.Payload["geofence_name"])
}
