package position

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the durable position store. Positions are append-only:
// nothing updates or deletes rows through this interface.
type Repository interface {
	// Append persists a new reading and fills in its generated ID.
	Append(ctx context.Context, p *Position) error

	// CountIdleReadings counts readings for the device since the given
	// time with speed = 0 and ignition on. Hot path for the idle check;
	// backed by the (device_id, device_time) index.
	CountIdleReadings(ctx context.Context, deviceID uuid.UUID, since time.Time) (int64, error)

	// LatestByDevice returns the most recent reading by device_time,
	// or ErrPositionNotFound.
	LatestByDevice(ctx context.Context, deviceID uuid.UUID) (*Position, error)

	// HistoryByDevice returns readings in [from, to] ordered by
	// device_time descending, capped at limit.
	HistoryByDevice(ctx context.Context, deviceID uuid.UUID, from, to time.Time, limit int) ([]*Position, error)

	CountSince(ctx context.Context, since time.Time) (int64, error)
}
