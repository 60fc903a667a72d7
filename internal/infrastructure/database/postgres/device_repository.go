package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainDevice "fleet-telemetry/internal/domain/device"
	"fleet-telemetry/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeviceRepository implements device.Repository.
type DeviceRepository struct {
	db *DB
}

func NewDeviceRepository(db *DB) domainDevice.Repository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) Create(ctx context.Context, d *domainDevice.Device) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	if d.Type == "" {
		d.Type = domainDevice.TypeCar
	}
	if d.Status == "" {
		d.Status = domainDevice.StatusActive
	}

	dbModel := toDeviceModel(d)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key value") {
			return domainDevice.ErrDeviceAlreadyExists
		}
		return fmt.Errorf("failed to create device: %w", err)
	}

	return nil
}

func (r *DeviceRepository) GetByID(ctx context.Context, deviceID uuid.UUID) (*domainDevice.Device, error) {
	var dbModel models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", deviceID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDevice.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return toDeviceEntity(&dbModel), nil
}

func (r *DeviceRepository) GetByIMEI(ctx context.Context, imei string) (*domainDevice.Device, error) {
	var dbModel models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Where("imei = ?", imei).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDevice.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return toDeviceEntity(&dbModel), nil
}

func (r *DeviceRepository) Update(ctx context.Context, d *domainDevice.Device) error {
	d.UpdatedAt = time.Now()

	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", d.ID).
		Updates(map[string]interface{}{
			"name":         d.Name,
			"imei":         d.IMEI,
			"type":         string(d.Type),
			"status":       string(d.Status),
			"plate_number": d.PlateNumber,
			"model":        d.Model,
			"color":        d.Color,
			"year":         d.Year,
			"driver_name":  d.DriverName,
			"driver_phone": d.DriverPhone,
			"notes":        d.Notes,
			"updated_at":   d.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update device: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDevice.ErrDeviceNotFound
	}

	return nil
}

func (r *DeviceRepository) UpdateStatus(ctx context.Context, deviceID uuid.UUID, status domainDevice.DeviceStatus) error {
	if !domainDevice.ValidStatus(status) {
		return domainDevice.ErrInvalidStatus
	}

	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", deviceID).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDevice.ErrDeviceNotFound
	}

	return nil
}

func (r *DeviceRepository) TouchLastSeen(ctx context.Context, deviceID uuid.UUID) error {
	now := time.Now()
	return r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", deviceID).
		Updates(map[string]interface{}{
			"last_seen_at": now,
			"updated_at":   now,
		}).Error
}

func (r *DeviceRepository) Delete(ctx context.Context, deviceID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).Delete(&models.DeviceModel{}, "id = ?", deviceID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete device: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDevice.ErrDeviceNotFound
	}
	return nil
}

func (r *DeviceRepository) List(ctx context.Context, filter *domainDevice.Filter) ([]*domainDevice.Device, int64, error) {
	var dbModels []models.DeviceModel
	var total int64

	db := r.db.DB.WithContext(ctx).Model(&models.DeviceModel{})

	if filter.Status != nil {
		db = db.Where("status = ?", string(*filter.Status))
	}
	if filter.OwnerUserID != nil {
		db = db.Where("owner_user_id = ?", *filter.OwnerUserID)
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		db = db.Where("name ILIKE ? OR imei ILIKE ? OR plate_number ILIKE ?", search, search, search)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count devices: %w", err)
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	err := db.Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&dbModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list devices: %w", err)
	}

	devices := make([]*domainDevice.Device, len(dbModels))
	for i := range dbModels {
		devices[i] = toDeviceEntity(&dbModels[i])
	}

	return devices, total, nil
}

func (r *DeviceRepository) CountByStatus(ctx context.Context) (map[domainDevice.DeviceStatus]int64, error) {
	var rows []groupedCount
	err := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Select("status AS key, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count devices by status: %w", err)
	}

	counts := make(map[domainDevice.DeviceStatus]int64, len(rows))
	for _, row := range rows {
		counts[domainDevice.DeviceStatus(row.Key)] = row.Count
	}
	return counts, nil
}

func toDeviceModel(d *domainDevice.Device) *models.DeviceModel {
	return &models.DeviceModel{
		ID:          d.ID,
		Name:        d.Name,
		IMEI:        d.IMEI,
		Type:        string(d.Type),
		Status:      string(d.Status),
		PlateNumber: d.PlateNumber,
		Model:       d.Model,
		Color:       d.Color,
		Year:        d.Year,
		DriverName:  d.DriverName,
		DriverPhone: d.DriverPhone,
		Notes:       d.Notes,
		OwnerUserID: d.OwnerUserID,
		LastSeenAt:  d.LastSeenAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func toDeviceEntity(m *models.DeviceModel) *domainDevice.Device {
	d := &domainDevice.Device{
		ID:          m.ID,
		Name:        m.Name,
		IMEI:        m.IMEI,
		Type:        domainDevice.DeviceType(m.Type),
		Status:      domainDevice.DeviceStatus(m.Status),
		PlateNumber: m.PlateNumber,
		Model:       m.Model,
		Color:       m.Color,
		Year:        m.Year,
		DriverName:  m.DriverName,
		DriverPhone: m.DriverPhone,
		Notes:       m.Notes,
		OwnerUserID: m.OwnerUserID,
		LastSeenAt:  m.LastSeenAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.DeletedAt.Valid {
		t := m.DeletedAt.Time
		d.DeletedAt = &t
	}
	return d
}
