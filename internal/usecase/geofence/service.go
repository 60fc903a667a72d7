package geofence

import (
	"context"
	"time"

	domain "fleet-telemetry/internal/domain/geofence"
	"fleet-telemetry/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service implements geofence management use cases.
type Service struct {
	repo domain.Repository
}

func NewService(repo domain.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateGeofence(ctx context.Context, req *CreateGeofenceRequest) (*GeofenceResponse, error) {
	g := &domain.Geofence{
		Name:         req.Name,
		Description:  req.Description,
		Type:         domain.GeofenceType(req.Type),
		CenterLat:    req.CenterLat,
		CenterLng:    req.CenterLng,
		RadiusMeters: req.RadiusMeters,
		Coordinates:  req.Coordinates,
		Color:        req.Color,
		Active:       true,
		AlertOnEnter: req.AlertOnEnter,
		AlertOnExit:  req.AlertOnExit,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if req.Active != nil {
		g.Active = *req.Active
	}

	// Circles must carry full geometry or the engine can never
	// evaluate them.
	if g.Type == domain.TypeCircle && !g.HasCircleGeometry() {
		return nil, domain.ErrInvalidGeometry
	}

	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}

	logger.Info("Geofence created",
		zap.String("geofence_id", g.ID.String()),
		zap.String("name", g.Name),
		zap.String("type", string(g.Type)),
		zap.String("event", "geofence_created"),
	)

	return ToGeofenceResponse(g), nil
}

func (s *Service) GetGeofence(ctx context.Context, id uuid.UUID) (*GeofenceResponse, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToGeofenceResponse(g), nil
}

func (s *Service) ListGeofences(ctx context.Context, activeOnly bool) ([]GeofenceResponse, error) {
	var (
		fences []*domain.Geofence
		err    error
	)
	if activeOnly {
		fences, err = s.repo.ListActive(ctx, nil)
	} else {
		fences, err = s.repo.List(ctx, nil)
	}
	if err != nil {
		return nil, err
	}

	responses := make([]GeofenceResponse, len(fences))
	for i, g := range fences {
		responses[i] = *ToGeofenceResponse(g)
	}
	return responses, nil
}

func (s *Service) UpdateGeofence(ctx context.Context, id uuid.UUID, req *UpdateGeofenceRequest) (*GeofenceResponse, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		g.Name = *req.Name
	}
	if req.Description != nil {
		g.Description = req.Description
	}
	if req.CenterLat != nil {
		g.CenterLat = req.CenterLat
	}
	if req.CenterLng != nil {
		g.CenterLng = req.CenterLng
	}
	if req.RadiusMeters != nil {
		g.RadiusMeters = req.RadiusMeters
	}
	if req.Coordinates != nil {
		g.Coordinates = req.Coordinates
	}
	if req.Color != nil {
		g.Color = *req.Color
	}
	if req.Active != nil {
		g.Active = *req.Active
	}
	if req.AlertOnEnter != nil {
		g.AlertOnEnter = *req.AlertOnEnter
	}
	if req.AlertOnExit != nil {
		g.AlertOnExit = *req.AlertOnExit
	}
	g.UpdatedAt = time.Now()

	if g.Type == domain.TypeCircle && !g.HasCircleGeometry() {
		return nil, domain.ErrInvalidGeometry
	}

	if err := s.repo.Update(ctx, g); err != nil {
		return nil, err
	}

	logger.Info("Geofence updated",
		zap.String("geofence_id", g.ID.String()),
		zap.String("event", "geofence_updated"),
	)

	return ToGeofenceResponse(g), nil
}

func (s *Service) DeleteGeofence(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info("Geofence deleted",
		zap.String("geofence_id", id.String()),
		zap.String("event", "geofence_deleted"),
	)

	return nil
}
