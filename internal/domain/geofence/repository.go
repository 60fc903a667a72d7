package geofence

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines geofence persistence. Delete is a soft delete so
// historical alerts keep their geofence reference.
type Repository interface {
	Create(ctx context.Context, g *Geofence) error
	GetByID(ctx context.Context, id uuid.UUID) (*Geofence, error)
	Update(ctx context.Context, g *Geofence) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ListActive returns all active geofences, optionally scoped to one
	// owner. Tenant scoping is always an explicit parameter, never
	// ambient state.
	ListActive(ctx context.Context, ownerUserID *uuid.UUID) ([]*Geofence, error)

	List(ctx context.Context, ownerUserID *uuid.UUID) ([]*Geofence, error)
	CountActive(ctx context.Context) (int64, error)
}
