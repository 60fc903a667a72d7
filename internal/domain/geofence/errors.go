package geofence

import "errors"

var (
	ErrGeofenceNotFound = errors.New("geofence not found")
	ErrInvalidGeometry  = errors.New("geofence geometry is incomplete")
)
