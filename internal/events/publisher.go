package events

import "context"

// Channel names are part of the wire contract with existing
// subscribers and must not change.
const (
	ChannelDevices = "devices"
	ChannelAlerts  = "alerts"
)

// Event names on the wire.
const (
	EventPositionUpdated     = "position.updated"
	EventAlertCreated        = "alert.created"
	EventDeviceStatusChanged = "device.status.changed"
)

// DeviceChannel returns the per-device channel name.
func DeviceChannel(deviceID string) string {
	return "device." + deviceID
}

// Event is one notification fanned out to live subscribers. When
// OriginSocketID is set, the transport must not deliver the event back
// to that connection (the triggering client already knows).
type Event struct {
	Channels       []string       `json:"channels"`
	Name           string         `json:"event"`
	Payload        map[string]any `json:"payload"`
	OriginSocketID string         `json:"origin_socket_id,omitempty"`
}

// Publisher fans events out to live subscribers. Implementations are
// fire-and-forget: delivery failure must never fail the caller's
// pipeline, so callers log and continue on error.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
