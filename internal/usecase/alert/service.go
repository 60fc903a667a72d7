package alert

import (
	"context"
	"time"

	domain "fleet-telemetry/internal/domain/alert"
	"fleet-telemetry/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AlertResponse struct {
	ID         uuid.UUID      `json:"id"`
	DeviceID   uuid.UUID      `json:"device_id"`
	GeofenceID *uuid.UUID     `json:"geofence_id"`
	Type       string         `json:"type"`
	Severity   string         `json:"severity"`
	Message    string         `json:"message"`
	Data       map[string]any `json:"data"`
	Read       bool           `json:"read"`
	ReadAt     *time.Time     `json:"read_at"`
	CreatedAt  time.Time      `json:"created_at"`
}

type AlertCountsResponse struct {
	Unread     int64            `json:"unread"`
	BySeverity map[string]int64 `json:"by_severity"`
	ByType     map[string]int64 `json:"by_type"`
}

// Service implements alert inbox use cases. Alerts are created by the
// rule engine only; this service covers the operator side.
type Service struct {
	repo domain.Repository
}

func NewService(repo domain.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListRecent(ctx context.Context, limit int) ([]AlertResponse, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	alerts, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]AlertResponse, len(alerts))
	for i, a := range alerts {
		responses[i] = toAlertResponse(a)
	}
	return responses, nil
}

func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return err
	}

	logger.Info("Alert marked read",
		zap.String("alert_id", id.String()),
		zap.String("event", "alert_read"),
	)
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx)
	if err != nil {
		return 0, err
	}

	logger.Info("All alerts marked read",
		zap.Int64("count", count),
		zap.String("event", "alerts_read_all"),
	)
	return count, nil
}

func (s *Service) CountUnread(ctx context.Context) (int64, error) {
	return s.repo.CountUnread(ctx)
}

func (s *Service) Counts(ctx context.Context) (*AlertCountsResponse, error) {
	unread, err := s.repo.CountUnread(ctx)
	if err != nil {
		return nil, err
	}

	bySeverity, err := s.repo.CountBySeverity(ctx)
	if err != nil {
		return nil, err
	}

	byType, err := s.repo.CountByType(ctx)
	if err != nil {
		return nil, err
	}

	resp := &AlertCountsResponse{
		Unread:     unread,
		BySeverity: make(map[string]int64, len(bySeverity)),
		ByType:     make(map[string]int64, len(byType)),
	}
	for severity, count := range bySeverity {
		resp.BySeverity[string(severity)] = count
	}
	for alertType, count := range byType {
		resp.ByType[string(alertType)] = count
	}
	return resp, nil
}

func toAlertResponse(a *domain.Alert) AlertResponse {
	return AlertResponse{
		ID:         a.ID,
		DeviceID:   a.DeviceID,
		GeofenceID: a.GeofenceID,
		Type:       string(a.Type),
		Severity:   string(a.Severity),
		Message:    a.Message,
		Data:       a.Data,
		Read:       a.Read,
		ReadAt:     a.ReadAt,
		CreatedAt:  a.CreatedAt,
	}
}
