package geofence

import (
	"encoding/json"
	"time"

	domain "fleet-telemetry/internal/domain/geofence"

	"github.com/google/uuid"
)

type CreateGeofenceRequest struct {
	Name         string          `json:"name" binding:"required,max=120"`
	Description  *string         `json:"description"`
	Type         string          `json:"type" binding:"required,oneof=circle polygon rectangle"`
	CenterLat    *float64        `json:"center_lat" binding:"omitempty,gte=-90,lte=90"`
	CenterLng    *float64        `json:"center_lng" binding:"omitempty,gte=-180,lte=180"`
	RadiusMeters *int            `json:"radius_meters" binding:"omitempty,gt=0"`
	Coordinates  json.RawMessage `json:"coordinates"`
	Color        string          `json:"color"`
	Active       *bool           `json:"active"`
	AlertOnEnter bool            `json:"alert_on_enter"`
	AlertOnExit  bool            `json:"alert_on_exit"`
}

type UpdateGeofenceRequest struct {
	Name         *string         `json:"name" binding:"omitempty,max=120"`
	Description  *string         `json:"description"`
	CenterLat    *float64        `json:"center_lat" binding:"omitempty,gte=-90,lte=90"`
	CenterLng    *float64        `json:"center_lng" binding:"omitempty,gte=-180,lte=180"`
	RadiusMeters *int            `json:"radius_meters" binding:"omitempty,gt=0"`
	Coordinates  json.RawMessage `json:"coordinates"`
	Color        *string         `json:"color"`
	Active       *bool           `json:"active"`
	AlertOnEnter *bool           `json:"alert_on_enter"`
	AlertOnExit  *bool           `json:"alert_on_exit"`
}

type GeofenceResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  *string         `json:"description"`
	Type         string          `json:"type"`
	CenterLat    *float64        `json:"center_lat"`
	CenterLng    *float64        `json:"center_lng"`
	RadiusMeters *int            `json:"radius_meters"`
	Coordinates  json.RawMessage `json:"coordinates"`
	Color        string          `json:"color"`
	Active       bool            `json:"active"`
	AlertOnEnter bool            `json:"alert_on_enter"`
	AlertOnExit  bool            `json:"alert_on_exit"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func ToGeofenceResponse(g *domain.Geofence) *GeofenceResponse {
	return &GeofenceResponse{
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
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}
