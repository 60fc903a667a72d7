package device

import (
	"context"
	"time"

	domain "fleet-telemetry/internal/domain/device"
	"fleet-telemetry/internal/events"
	"fleet-telemetry/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service implements device management use cases.
type Service struct {
	repo      domain.Repository
	publisher events.Publisher
}

func NewService(repo domain.Repository, publisher events.Publisher) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *Service) CreateDevice(ctx context.Context, req *CreateDeviceRequest) (*DeviceResponse, error) {
	if req.IMEI != nil {
		existing, _ := s.repo.GetByIMEI(ctx, *req.IMEI)
		if existing != nil {
			return nil, domain.ErrDeviceAlreadyExists
		}
	}

	deviceType := domain.TypeOther
	if req.Type != "" {
		deviceType = domain.DeviceType(req.Type)
	}

	d := &domain.Device{
		Name:        req.Name,
		IMEI:        req.IMEI,
		Type:        deviceType,
		Status:      domain.StatusActive,
		PlateNumber: req.PlateNumber,
		Model:       req.Model,
		Color:       req.Color,
		Year:        req.Year,
		DriverName:  req.DriverName,
		DriverPhone: req.DriverPhone,
		Notes:       req.Notes,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if req.OwnerUserID != nil {
		ownerID, err := uuid.Parse(*req.OwnerUserID)
		if err != nil {
			return nil, domain.ErrInvalidOwner
		}
		d.OwnerUserID = &ownerID
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	logger.Info("Device created",
		zap.String("device_id", d.ID.String()),
		zap.String("name", d.Name),
		zap.String("event", "device_created"),
	)

	return ToDeviceResponse(d), nil
}

func (s *Service) GetDevice(ctx context.Context, deviceID uuid.UUID) (*DeviceResponse, error) {
	d, err := s.repo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return ToDeviceResponse(d), nil
}

func (s *Service) ListDevices(ctx context.Context, req *DeviceFilterRequest) (*DeviceListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	devices, total, err := s.repo.List(ctx, ToDomainFilter(req))
	if err != nil {
		return nil, err
	}

	responses := make([]DeviceResponse, len(devices))
	for i, d := range devices {
		responses[i] = *ToDeviceResponse(d)
	}

	totalPages := int(total) / req.PageSize
	if int(total)%req.PageSize > 0 {
		totalPages++
	}

	return &DeviceListResponse{
		Devices:    responses,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *Service) UpdateDevice(ctx context.Context, deviceID uuid.UUID, req *UpdateDeviceRequest) (*DeviceResponse, error) {
	d, err := s.repo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.Type != nil {
		d.Type = domain.DeviceType(*req.Type)
	}
	if req.PlateNumber != nil {
		d.PlateNumber = req.PlateNumber
	}
	if req.Model != nil {
		d.Model = req.Model
	}
	if req.Color != nil {
		d.Color = req.Color
	}
	if req.Year != nil {
		d.Year = req.Year
	}
	if req.DriverName != nil {
		d.DriverName = req.DriverName
	}
	if req.DriverPhone != nil {
		d.DriverPhone = req.DriverPhone
	}
	if req.Notes != nil {
		d.Notes = req.Notes
	}
	d.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	logger.Info("Device updated",
		zap.String("device_id", d.ID.String()),
		zap.String("event", "device_updated"),
	)

	return ToDeviceResponse(d), nil
}

// UpdateStatus changes the operational status and broadcasts
// device.status.changed to live subscribers. The broadcast is
// best-effort: a publish failure never rolls back the update.
func (s *Service) UpdateStatus(ctx context.Context, deviceID uuid.UUID, req *UpdateStatusRequest) (*DeviceResponse, error) {
	newStatus := domain.DeviceStatus(req.Status)
	if !domain.ValidStatus(newStatus) {
		return nil, domain.ErrInvalidStatus
	}

	d, err := s.repo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	oldStatus := d.Status
	if oldStatus == newStatus {
		return ToDeviceResponse(d), nil
	}

	if err := s.repo.UpdateStatus(ctx, deviceID, newStatus); err != nil {
		return nil, err
	}
	d.Status = newStatus

	if err := s.publisher.Publish(ctx, events.NewDeviceStatusChanged(d, oldStatus, newStatus)); err != nil {
		logger.Warn("device status broadcast failed",
			zap.String("device_id", deviceID.String()),
			zap.Error(err),
		)
	}

	logger.Info("Device status changed",
		zap.String("device_id", deviceID.String()),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(newStatus)),
		zap.String("event", "device_status_changed"),
	)

	return ToDeviceResponse(d), nil
}

func (s *Service) DeleteDevice(ctx context.Context, deviceID uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, deviceID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, deviceID); err != nil {
		return err
	}

	logger.Info("Device deleted",
		zap.String("device_id", deviceID.String()),
		zap.String("event", "device_deleted"),
	)

	return nil
}
