package alert

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the durable alert store. Counters are read-mostly and
// eventually consistent with alert creation; dashboards poll them.
type Repository interface {
	// Create persists a new alert after Validate passes and fills in
	// its generated ID.
	Create(ctx context.Context, a *Alert) error

	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context) (int64, error)

	CountUnread(ctx context.Context) (int64, error)
	CountBySeverity(ctx context.Context) (map[Severity]int64, error)
	CountByType(ctx context.Context) (map[AlertType]int64, error)

	ListRecent(ctx context.Context, limit int) ([]*Alert, error)
}
