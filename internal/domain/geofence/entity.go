package geofence

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Geofence is a named geographic boundary used for entry/exit alerting.
// Only circle containment is implemented; polygon and rectangle shapes
// are stored but never evaluated.
type Geofence struct {
	ID           uuid.UUID
	Name         string
	Description  *string
	Type         GeofenceType
	CenterLat    *float64
	CenterLng    *float64
	RadiusMeters *int
	Coordinates  json.RawMessage
	Color        string
	Active       bool
	AlertOnEnter bool
	AlertOnExit  bool
	OwnerUserID  *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

type GeofenceType string

const (
	TypeCircle    GeofenceType = "circle"
	TypePolygon   GeofenceType = "polygon"
	TypeRectangle GeofenceType = "rectangle"
)

// HasCircleGeometry reports whether the circle fields are populated
// enough to run containment math.
func (g *Geofence) HasCircleGeometry() bool {
	return g.Type == TypeCircle && g.CenterLat != nil && g.CenterLng != nil && g.RadiusMeters != nil
}
