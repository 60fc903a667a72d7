package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GeofenceModel is the database model for geofences. Coordinates holds
// polygon/rectangle vertices; only circle geometry is evaluated.
type GeofenceModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string    `gorm:"not null"`
	Description  *string
	Type         string   `gorm:"not null;default:circle"`
	CenterLat    *float64 `gorm:"type:decimal(10,7)"`
	CenterLng    *float64 `gorm:"type:decimal(10,7)"`
	RadiusMeters *int     `gorm:"column:radius"`
	Coordinates  json.RawMessage `gorm:"type:jsonb"`
	Color        string          `gorm:"type:varchar(7);default:#3B82F6"`
	Active       bool            `gorm:"default:true;index"`
	AlertOnEnter bool            `gorm:"default:false"`
	AlertOnExit  bool            `gorm:"default:false"`
	OwnerUserID  *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (GeofenceModel) TableName() string {
	return "geofences"
}
