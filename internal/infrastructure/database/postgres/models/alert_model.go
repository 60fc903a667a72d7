package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AlertModel is the database model for alerts.
type AlertModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DeviceID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_alerts_device_created,priority:1"`
	GeofenceID *uuid.UUID `gorm:"type:uuid;index"`
	Type       string     `gorm:"not null"`
	Severity   string     `gorm:"not null;default:info"`
	Message    string     `gorm:"not null"`
	Data       json.RawMessage `gorm:"type:jsonb"`
	Read       bool            `gorm:"default:false;index:idx_alerts_read_created,priority:1"`
	ReadAt     *time.Time
	CreatedAt  time.Time `gorm:"index:idx_alerts_device_created,priority:2;index:idx_alerts_read_created,priority:2"`
}

func (AlertModel) TableName() string {
	return "alerts"
}
