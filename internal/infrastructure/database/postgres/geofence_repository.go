package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainGeofence "fleet-telemetry/internal/domain/geofence"
	"fleet-telemetry/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GeofenceRepository implements geofence.Repository with gorm soft
// deletes so historical alerts keep a valid geofence reference.
type GeofenceRepository struct {
	db *DB
}

func NewGeofenceRepository(db *DB) domainGeofence.Repository {
	return &GeofenceRepository{db: db}
}

func (r *GeofenceRepository) Create(ctx context.Context, g *domainGeofence.Geofence) error {
	g.ID = uuid.New()
	g.CreatedAt = time.Now()
	g.UpdatedAt = g.CreatedAt
	if g.Color == "" {
		g.Color = "#3B82F6"
	}

	dbModel := toGeofenceModel(g)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create geofence: %w", err)
	}

	return nil
}

func (r *GeofenceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domainGeofence.Geofence, error) {
	var dbModel models.GeofenceModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainGeofence.ErrGeofenceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get geofence: %w", err)
	}

	return toGeofenceEntity(&dbModel), nil
}

func (r *GeofenceRepository) Update(ctx context.Context, g *domainGeofence.Geofence) error {
	g.UpdatedAt = time.Now()

	result := r.db.DB.WithContext(ctx).
		Model(&models.GeofenceModel{}).
		Where("id = ?", g.ID).
		Updates(map[string]interface{}{
			"name":           g.Name,
			"description":    g.Description,
			"type":           string(g.Type),
			"center_lat":     g.CenterLat,
			"center_lng":     g.CenterLng,
			"radius":         g.RadiusMeters,
			"coordinates":    g.Coordinates,
			"color":          g.Color,
			"active":         g.Active,
			"alert_on_enter": g.AlertOnEnter,
			"alert_on_exit":  g.AlertOnExit,
			"updated_at":     g.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update geofence: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainGeofence.ErrGeofenceNotFound
	}

	return nil
}

func (r *GeofenceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).Delete(&models.GeofenceModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete geofence: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainGeofence.ErrGeofenceNotFound
	}
	return nil
}

func (r *GeofenceRepository) ListActive(ctx context.Context, ownerUserID *uuid.UUID) ([]*domainGeofence.Geofence, error) {
	db := r.db.DB.WithContext(ctx).Where("active = true")
	if ownerUserID != nil {
		db = db.Where("owner_user_id = ?", *ownerUserID)
	}

	var dbModels []models.GeofenceModel
	if err := db.Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list active geofences: %w", err)
	}

	return toGeofenceEntities(dbModels), nil
}

func (r *GeofenceRepository) List(ctx context.Context, ownerUserID *uuid.UUID) ([]*domainGeofence.Geofence, error) {
	db := r.db.DB.WithContext(ctx)
	if ownerUserID != nil {
		db = db.Where("owner_user_id = ?", *ownerUserID)
	}

	var dbModels []models.GeofenceModel
	if err := db.Order("created_at DESC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list geofences: %w", err)
	}

	return toGeofenceEntities(dbModels), nil
}

func (r *GeofenceRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.GeofenceModel{}).
		Where("active = true").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active geofences: %w", err)
	}
	return count, nil
}

func toGeofenceEntities(dbModels []models.GeofenceModel) []*domainGeofence.Geofence {
	geofences := make([]*domainGeofence.Geofence, len(dbModels))
	for i := range dbModels {
		geofences[i] = toGeofenceEntity(&dbModels[i])
	}
	return geofences
}

func toGeofenceModel(g *domainGeofence.Geofence) *models.GeofenceModel {
	return &models.GeofenceModel{
		ID:           g.ID,
		Name:         g.Name,
		Description:  g.Description,
		Type:         string(g.Type),
		CenterLat:    g.CenterLat,
		CenterLng:    g.CenterLng,
		RadiusMeters: g.RadiusMeters,
		Coordinates:  g.Coordinates,
		Color:        g.Color,
		Active:       g.Active,
		AlertOnEnter: g.AlertOnEnter,
		AlertOnExit:  g.AlertOnExit,
		OwnerUserID:  g.OwnerUserID,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}

func toGeofenceEntity(m *models.GeofenceModel) *domainGeofence.Geofence {
	g := &domainGeofence.Geofence{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		Type:         domainGeofence.GeofenceType(m.Type),
		CenterLat:    m.CenterLat,
		CenterLng:    m.CenterLng,
		RadiusMeters: m.RadiusMeters,
		Coordinates:  m.Coordinates,
		Color:        m.Color,
		Active:       m.Active,
		AlertOnEnter: m.AlertOnEnter,
		AlertOnExit:  m.AlertOnExit,
		OwnerUserID:  m.OwnerUserID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.DeletedAt.Valid {
		t := m.DeletedAt.Time
		g.DeletedAt = &t
	}
	return g
}
