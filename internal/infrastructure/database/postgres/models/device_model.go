package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeviceModel is the database model for devices.
type DeviceModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"not null"`
	IMEI        *string   `gorm:"column:imei;uniqueIndex"`
	Type        string    `gorm:"not null;default:car"`
	Status      string    `gorm:"not null;default:active;index"`
	PlateNumber *string
	Model       *string
	Color       *string
	Year        *int
	DriverName  *string
	DriverPhone *string
	Notes       *string
	OwnerUserID *uuid.UUID `gorm:"type:uuid;index"`
	LastSeenAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (DeviceModel) TableName() string {
	return "devices"
}
