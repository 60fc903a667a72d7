package device

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for device repository operations.
// Delete is a soft delete: retired devices keep their historical
// positions and alerts.
type Repository interface {
	Create(ctx context.Context, device *Device) error
	GetByID(ctx context.Context, deviceID uuid.UUID) (*Device, error)
	GetByIMEI(ctx context.Context, imei string) (*Device, error)
	Update(ctx context.Context, device *Device) error
	UpdateStatus(ctx context.Context, deviceID uuid.UUID, status DeviceStatus) error
	TouchLastSeen(ctx context.Context, deviceID uuid.UUID) error
	Delete(ctx context.Context, deviceID uuid.UUID) error
	List(ctx context.Context, filter *Filter) ([]*Device, int64, error)
	CountByStatus(ctx context.Context) (map[DeviceStatus]int64, error)
}

// Filter represents filtering options for listing devices.
type Filter struct {
	Status      *DeviceStatus
	OwnerUserID *uuid.UUID
	Search      string
	Page        int
	PageSize    int
}
