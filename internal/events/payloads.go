package events

import (
	"time"

	"fleet-telemetry/internal/domain/alert"
	"fleet-telemetry/internal/domain/device"
	"fleet-telemetry/internal/domain/position"
)

// Payload field names are snake_case and timestamps ISO-8601; both are
// part of the wire contract.

// NewPositionUpdated builds the position.updated event for the devices
// and per-device channels.
func NewPositionUpdated(p *position.Position, originSocketID string) Event {
	return Event{
		Channels: []string{ChannelDevices, DeviceChannel(p.DeviceID.String())},
		Name:     EventPositionUpdated,
		Payload: map[string]any{
			"device_id":   p.DeviceID.String(),
			"latitude":    p.Latitude,
			"longitude":   p.Longitude,
			"speed":       p.Speed,
			"heading":     p.Heading,
			"altitude":    p.Altitude,
			"ignition":    p.Ignition,
			"fuel_level":  p.FuelLevel,
			"device_time": p.DeviceTime.Format(time.RFC3339),
			"created_at":  p.CreatedAt.Format(time.RFC3339),
		},
		OriginSocketID: originSocketID,
	}
}

// NewAlertCreated builds the alert.created event. Device and geofence
// display names are resolved by the caller; geofence fields stay nil
// for alerts without one.
func NewAlertCreated(a *alert.Alert, deviceName string, geofenceName *string, originSocketID string) Event {
	var geofenceID any
	if a.GeofenceID != nil {
		geofenceID = a.GeofenceID.String()
	}

	return Event{
		Channels: []string{ChannelAlerts},
		Name:     EventAlertCreated,
		Payload: map[string]any{
			"id":            a.ID.String(),
			"device_id":     a.DeviceID.String(),
			"device_name":   deviceName,
			"geofence_id":   geofenceID,
			"geofence_name": geofenceName,
			"type":          string(a.Type),
			"severity":      string(a.Severity),
			"message":       a.Message,
			"data":          a.Data,
			"created_at":    a.CreatedAt.Format(time.RFC3339),
		},
		OriginSocketID: originSocketID,
	}
}

// NewDeviceStatusChanged builds the device.status.changed event fired
// on operator edits.
func NewDeviceStatusChanged(d *device.Device, oldStatus, newStatus device.DeviceStatus) Event {
	return Event{
		Channels: []string{ChannelDevices, DeviceChannel(d.ID.String())},
		Name:     EventDeviceStatusChanged,
		Payload: map[string]any{
			"device_id":   d.ID.String(),
			"device_name": d.Name,
			"old_status":  string(oldStatus),
			"new_status":  string(newStatus),
			"changed_at":  time.Now().Format(time.RFC3339),
		},
	}
}
