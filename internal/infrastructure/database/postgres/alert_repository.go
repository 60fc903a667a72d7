package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domainAlert "fleet-telemetry/internal/domain/alert"
	"fleet-telemetry/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
)

// AlertRepository implements alert.Repository.
type AlertRepository struct {
	db *DB
}

func NewAlertRepository(db *DB) domainAlert.Repository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(ctx context.Context, a *domainAlert.Alert) error {
	if err := a.Validate(); err != nil {
		return err
	}

	var data json.RawMessage
	if a.Data != nil {
		raw, err := json.Marshal(a.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal alert data: %w", err)
		}
		data = raw
	}

	dbModel := &models.AlertModel{
		ID:         uuid.New(),
		DeviceID:   a.DeviceID,
		GeofenceID: a.GeofenceID,
		Type:       string(a.Type),
		Severity:   string(a.Severity),
		Message:    a.Message,
		Data:       data,
		Read:       false,
		CreatedAt:  time.Now(),
	}

	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}

	a.ID = dbModel.ID
	a.CreatedAt = dbModel.CreatedAt

	return nil
}

func (r *AlertRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	result := r.db.DB.WithContext(ctx).
		Model(&models.AlertModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"read":    true,
			"read_at": now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark alert read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainAlert.ErrAlertNotFound
	}

	return nil
}

func (r *AlertRepository) MarkAllRead(ctx context.Context) (int64, error) {
	now := time.Now()
	result := r.db.DB.WithContext(ctx).
		Model(&models.AlertModel{}).
		Where("read = false").
		Updates(map[string]interface{}{
			"read":    true,
			"read_at": now,
		})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark all alerts read: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func (r *AlertRepository) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.AlertModel{}).
		Where("read = false").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread alerts: %w", err)
	}
	return count, nil
}

func (r *AlertRepository) CountBySeverity(ctx context.Context) (map[domainAlert.Severity]int64, error) {
	rows, err := r.countGrouped(ctx, "severity")
	if err != nil {
		return nil, err
	}

	counts := make(map[domainAlert.Severity]int64, len(rows))
	for _, row := range rows {
		counts[domainAlert.Severity(row.Key)] = row.Count
	}
	return counts, nil
}

func (r *AlertRepository) CountByType(ctx context.Context) (map[domainAlert.AlertType]int64, error) {
	rows, err := r.countGrouped(ctx, "type")
	if err != nil {
		return nil, err
	}

	counts := make(map[domainAlert.AlertType]int64, len(rows))
	for _, row := range rows {
		counts[domainAlert.AlertType(row.Key)] = row.Count
	}
	return counts, nil
}

type groupedCount struct {
	Key   string
	Count int64
}

func (r *AlertRepository) countGrouped(ctx context.Context, column string) ([]groupedCount, error) {
	var rows []groupedCount
	err := r.db.DB.WithContext(ctx).
		Model(&models.AlertModel{}).
		Select(fmt.Sprintf("%s AS key, COUNT(*) AS count", column)).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count alerts by %s: %w", column, err)
	}
	return rows, nil
}

func (r *AlertRepository) ListRecent(ctx context.Context, limit int) ([]*domainAlert.Alert, error) {
	if limit <= 0 {
		limit = 50
	}

	var dbModels []models.AlertModel
	err := r.db.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	alerts := make([]*domainAlert.Alert, len(dbModels))
	for i := range dbModels {
		a, err := toAlertEntity(&dbModels[i])
		if err != nil {
			return nil, err
		}
		alerts[i] = a
	}
	return alerts, nil
}

func toAlertEntity(m *models.AlertModel) (*domainAlert.Alert, error) {
	var data map[string]any
	if len(m.Data) > 0 {
		if err := json.Unmarshal(m.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal alert data: %w", err)
		}
	}

	return &domainAlert.Alert{
		ID:         m.ID,
		DeviceID:   m.DeviceID,
		GeofenceID: m.GeofenceID,
		Type:       domainAlert.AlertType(m.Type),
		Severity:   domainAlert.Severity(m.Severity),
		Message:    m.Message,
		Data:       data,
		Read:       m.Read,
		ReadAt:     m.ReadAt,
		CreatedAt:  m.CreatedAt,
	}, nil
}
