package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainPosition "fleet-telemetry/internal/domain/position"
	"fleet-telemetry/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PositionRepository implements position.Repository. Append-only:
// positions are never updated or deleted through this type.
type PositionRepository struct {
	db *DB
}

func NewPositionRepository(db *DB) domainPosition.Repository {
	return &PositionRepository{db: db}
}

func (r *PositionRepository) Append(ctx context.Context, p *domainPosition.Position) error {
	dbModel := toPositionModel(p)
	dbModel.ID = uuid.New()
	dbModel.CreatedAt = time.Now()

	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to append position: %w", err)
	}

	p.ID = dbModel.ID
	p.CreatedAt = dbModel.CreatedAt

	return nil
}

func (r *PositionRepository) CountIdleReadings(ctx context.Context, deviceID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.PositionModel{}).
		Where("device_id = ? AND device_time >= ? AND speed = 0 AND ignition = true", deviceID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count idle readings: %w", err)
	}
	return count, nil
}

func (r *PositionRepository) LatestByDevice(ctx context.Context, deviceID uuid.UUID) (*domainPosition.Position, error) {
	var dbModel models.PositionModel
	err := r.db.DB.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("device_time DESC").
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainPosition.ErrPositionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest position: %w", err)
	}

	return toPositionEntity(&dbModel), nil
}

func (r *PositionRepository) HistoryByDevice(ctx context.Context, deviceID uuid.UUID, from, to time.Time, limit int) ([]*domainPosition.Position, error) {
	if limit <= 0 {
		limit = 500
	}

	var dbModels []models.PositionModel
	err := r.db.DB.WithContext(ctx).
		Where("device_id = ? AND device_time BETWEEN ? AND ?", deviceID, from, to).
		Order("device_time DESC").
		Limit(limit).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load position history: %w", err)
	}

	positions := make([]*domainPosition.Position, len(dbModels))
	for i := range dbModels {
		positions[i] = toPositionEntity(&dbModels[i])
	}
	return positions, nil
}

func (r *PositionRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.PositionModel{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count positions: %w", err)
	}
	return count, nil
}

func toPositionModel(p *domainPosition.Position) *models.PositionModel {
	return &models.PositionModel{
		ID:           p.ID,
		DeviceID:     p.DeviceID,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		Altitude:     p.Altitude,
		Speed:        p.Speed,
		Heading:      p.Heading,
		Satellites:   p.Satellites,
		Accuracy:     p.Accuracy,
		Odometer:     p.Odometer,
		FuelLevel:    p.FuelLevel,
		BatteryLevel: p.BatteryLevel,
		Ignition:     p.Ignition,
		Address:      p.Address,
		RawData:      p.RawData,
		DeviceTime:   p.DeviceTime,
		CreatedAt:    p.CreatedAt,
	}
}

func toPositionEntity(m *models.PositionModel) *domainPosition.Position {
	return &domainPosition.Position{
		ID:           m.ID,
		DeviceID:     m.DeviceID,
		Latitude:     m.Latitude,
		Longitude:    m.Longitude,
		Altitude:     m.Altitude,
		Speed:        m.Speed,
		Heading:      m.Heading,
		Satellites:   m.Satellites,
		Accuracy:     m.Accuracy,
		Odometer:     m.Odometer,
		FuelLevel:    m.FuelLevel,
		BatteryLevel: m.BatteryLevel,
		Ignition:     m.Ignition,
		Address:      m.Address,
		RawData:      m.RawData,
		DeviceTime:   m.DeviceTime,
		CreatedAt:    m.CreatedAt,
	}
}
