package telemetry

import (
	"context"
	"time"

	domainAlert "fleet-telemetry/internal/domain/alert"
	domainDevice "fleet-telemetry/internal/domain/device"
	domainGeofence "fleet-telemetry/internal/domain/geofence"
	domainPosition "fleet-telemetry/internal/domain/position"
	"fleet-telemetry/internal/infrastructure/cache"
	"fleet-telemetry/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PositionResponse struct {
	ID           uuid.UUID `json:"id"`
	DeviceID     uuid.UUID `json:"device_id"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Altitude     *float64  `json:"altitude"`
	Speed        *float64  `json:"speed"`
	Heading      *int      `json:"heading"`
	Satellites   *int      `json:"satellites"`
	Accuracy     *float64  `json:"accuracy"`
	Odometer     *float64  `json:"odometer"`
	FuelLevel    *int      `json:"fuel_level"`
	BatteryLevel *float64  `json:"battery_level"`
	Ignition     *bool     `json:"ignition"`
	Address      *string   `json:"address"`
	DeviceTime   time.Time `json:"device_time"`
	CreatedAt    time.Time `json:"created_at"`
}

// LastPositionResponse is the narrow live-map projection. Source tells
// the caller whether it came from the cache or the position store.
type LastPositionResponse struct {
	DeviceID   uuid.UUID `json:"device_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Speed      *float64  `json:"speed"`
	Heading    *int      `json:"heading"`
	Ignition   *bool     `json:"ignition"`
	DeviceTime time.Time `json:"device_time"`
	Source     string    `json:"source"`
}

type FleetStatsResponse struct {
	DevicesByStatus map[string]int64 `json:"devices_by_status"`
	ActiveGeofences int64            `json:"active_geofences"`
	UnreadAlerts    int64            `json:"unread_alerts"`
	PositionsLast24 int64            `json:"positions_last_24h"`
}

// Service answers read-side telemetry queries: last known position,
// track history and fleet statistics.
type Service struct {
	positions domainPosition.Repository
	devices   domainDevice.Repository
	geofences domainGeofence.Repository
	alerts    domainAlert.Repository
	cache     cache.PositionCache
}

func NewService(
	positions domainPosition.Repository,
	devices domainDevice.Repository,
	geofences domainGeofence.Repository,
	alerts domainAlert.Repository,
	positionCache cache.PositionCache,
) *Service {
	return &Service{
		positions: positions,
		devices:   devices,
		geofences: geofences,
		alerts:    alerts,
		cache:     positionCache,
	}
}

// LastPosition reads the device's most recent snapshot, preferring the
// cache. A cache miss or failure falls through to the position store;
// cache errors are never surfaced to the caller.
func (s *Service) LastPosition(ctx context.Context, deviceID uuid.UUID) (*LastPositionResponse, error) {
	if s.cache != nil {
		snapshot, err := s.cache.Get(ctx, deviceID)
		if err != nil {
			logger.Warn("last position cache read failed",
				zap.String("device_id", deviceID.String()),
				zap.Error(err),
			)
		}
		if snapshot != nil {
			return &LastPositionResponse{
				DeviceID:   deviceID,
				Latitude:   snapshot.Latitude,
				Longitude:  snapshot.Longitude,
				Speed:      snapshot.Speed,
				Heading:    snapshot.Heading,
				Ignition:   snapshot.Ignition,
				DeviceTime: snapshot.DeviceTime,
				Source:     "cache",
			}, nil
		}
	}

	p, err := s.positions.LatestByDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	return &LastPositionResponse{
		DeviceID:   p.DeviceID,
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
		Speed:      p.Speed,
		Heading:    p.Heading,
		Ignition:   p.Ignition,
		DeviceTime: p.DeviceTime,
		Source:     "database",
	}, nil
}

// History returns the device track in [from, to], newest first.
func (s *Service) History(ctx context.Context, deviceID uuid.UUID, from, to time.Time, limit int) ([]PositionResponse, error) {
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.Add(-24 * time.Hour)
	}
	if limit <= 0 {
		limit = 500
	}
	if limit > 5000 {
		limit = 5000
	}

	positions, err := s.positions.HistoryByDevice(ctx, deviceID, from, to, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]PositionResponse, len(positions))
	for i, p := range positions {
		responses[i] = toPositionResponse(p)
	}
	return responses, nil
}

// FleetStats aggregates the dashboard counters.
func (s *Service) FleetStats(ctx context.Context) (*FleetStatsResponse, error) {
	byStatus, err := s.devices.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	activeGeofences, err := s.geofences.CountActive(ctx)
	if err != nil {
		return nil, err
	}

	unreadAlerts, err := s.alerts.CountUnread(ctx)
	if err != nil {
		return nil, err
	}

	positionsLast24, err := s.positions.CountSince(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}

	stats := &FleetStatsResponse{
		DevicesByStatus: make(map[string]int64, len(byStatus)),
		ActiveGeofences: activeGeofences,
		UnreadAlerts:    unreadAlerts,
		PositionsLast24: positionsLast24,
	}
	for status, count := range byStatus {
		stats.DevicesByStatus[string(status)] = count
	}
	return stats, nil
}

func toPositionResponse(p *domainPosition.Position) PositionResponse {
	return PositionResponse{
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
		DeviceTime:   p.DeviceTime,
		CreatedAt:    p.CreatedAt,
	}
}
