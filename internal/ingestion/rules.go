package ingestion

import (
	"context"
	"fmt"
	"time"

	"fleet-telemetry/internal/domain/alert"
	"fleet-telemetry/internal/domain/device"
	"fleet-telemetry/internal/domain/geofence"
	"fleet-telemetry/internal/domain/position"
	"fleet-telemetry/internal/events"
	"fleet-telemetry/internal/geo"
	pkgerrors "fleet-telemetry/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Rule thresholds. Speed and battery limits are hardcoded for every
// device; per-device configurability is a known gap.
const (
	speedLimitKmh   = 120.0
	lowBatteryPct   = 20.0
	idleWindow      = 30 * time.Minute
	idleMinReadings = 3
)

// GeofenceProvider lists the active geofences to evaluate. Tenant
// scoping, when needed, is an explicit parameter upstream; the engine
// itself evaluates whatever the provider returns.
type GeofenceProvider interface {
	ListActive(ctx context.Context, ownerUserID *uuid.UUID) ([]*geofence.Geofence, error)
}

// IdleCounter counts same-device at-rest readings in a trailing window.
type IdleCounter interface {
	CountIdleReadings(ctx context.Context, deviceID uuid.UUID, since time.Time) (int64, error)
}

// DeviceResolver resolves display names for alert payloads.
type DeviceResolver interface {
	GetByID(ctx context.Context, deviceID uuid.UUID) (*device.Device, error)
}

// RuleEngine evaluates one newly persisted position against the four
// alert checks. Checks are independent: one position can produce
// several alerts, and a failing check never stops the others.
type RuleEngine struct {
	geofences GeofenceProvider
	idle      IdleCounter
	devices   DeviceResolver
	alerts    alert.Repository
	publisher events.Publisher
	log       *zap.Logger
}

func NewRuleEngine(
	geofences GeofenceProvider,
	idle IdleCounter,
	devices DeviceResolver,
	alerts alert.Repository,
	publisher events.Publisher,
	log *zap.Logger,
) *RuleEngine {
	return &RuleEngine{
		geofences: geofences,
		idle:      idle,
		devices:   devices,
		alerts:    alerts,
		publisher: publisher,
		log:       log,
	}
}

// alertDraft is a pending alert-creation request plus the display
// metadata the broadcast payload needs.
type alertDraft struct {
	alert        *alert.Alert
	geofenceName *string
}

type ruleCheck struct {
	name string
	fn   func(ctx context.Context, p *position.Position) ([]alertDraft, error)
}

// Evaluate runs all four checks for the position and persists and
// broadcasts every resulting alert exactly once. It returns the alerts
// that were successfully created.
func (e *RuleEngine) Evaluate(ctx context.Context, p *position.Position, originSocketID string) []*alert.Alert {
	checks := []ruleCheck{
		{name: "speed_limit", fn: e.checkSpeedLimit},
		{name: "geofence", fn: e.checkGeofences},
		{name: "idle", fn: e.checkIdleTime},
		{name: "low_battery", fn: e.checkLowBattery},
	}

	var drafts []alertDraft
	for _, check := range checks {
		result, err := e.runCheck(ctx, check, p)
		if err != nil {
			e.log.Warn("alert rule check failed",
				zap.String("check", check.name),
				zap.String("device_id", p.DeviceID.String()),
				zap.Error(err),
			)
			continue
		}
		drafts = append(drafts, result...)
	}

	if len(drafts) == 0 {
		return nil
	}

	deviceName := e.resolveDeviceName(ctx, p.DeviceID)

	created := make([]*alert.Alert, 0, len(drafts))
	for _, draft := range drafts {
		if err := e.alerts.Create(ctx, draft.alert); err != nil {
			e.log.Error("alert persist failed",
				zap.String("type", string(draft.alert.Type)),
				zap.String("device_id", p.DeviceID.String()),
				zap.Error(err),
			)
			continue
		}

		event := events.NewAlertCreated(draft.alert, deviceName, draft.geofenceName, originSocketID)
		if err := e.publisher.Publish(ctx, event); err != nil {
			e.log.Warn("alert broadcast failed",
				zap.String("type", string(draft.alert.Type)),
				zap.String("device_id", p.DeviceID.String()),
				zap.Error(err),
			)
		}

		created = append(created, draft.alert)
	}

	return created
}

// runCheck isolates one check: an error or panic is reported as a
// RuleCheckError and never aborts the sibling checks.
func (e *RuleEngine) runCheck(ctx context.Context, check ruleCheck, p *position.Position) (drafts []alertDraft, err error) {
	defer func() {
		if r := recover(); r != nil {
			drafts = nil
			err = &pkgerrors.RuleCheckError{Check: check.name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	drafts, err = check.fn(ctx, p)
	if err != nil {
		return nil, &pkgerrors.RuleCheckError{Check: check.name, Err: err}
	}
	return drafts, nil
}

func (e *RuleEngine) checkSpeedLimit(_ context.Context, p *position.Position) ([]alertDraft, error) {
	if p.Speed == nil || *p.Speed <= speedLimitKmh {
		return nil, nil
	}

	return []alertDraft{{alert: &alert.Alert{
		DeviceID: p.DeviceID,
		Type:     alert.TypeSpeedLimit,
		Severity: alert.SeverityHigh,
		Message:  fmt.Sprintf("Device exceeded speed limit: %g km/h (limit: %g km/h)", *p.Speed, speedLimitKmh),
		Data: map[string]any{
			"speed":       *p.Speed,
			"speed_limit": speedLimitKmh,
			"latitude":    p.Latitude,
			"longitude":   p.Longitude,
		},
	}}}, nil
}

// checkGeofences evaluates every active circle geofence. There is no
// per-device containment state: a device sitting inside an active
// enter-alerting circle re-triggers an alert on every reading. Exit
// detection and polygon/rectangle geometry are not implemented.
func (e *RuleEngine) checkGeofences(ctx context.Context, p *position.Position) ([]alertDraft, error) {
	fences, err := e.geofences.ListActive(ctx, nil)
	if err != nil {
		return nil, err
	}

	var drafts []alertDraft
	for _, fence := range fences {
		if fence.Type != geofence.TypeCircle || !fence.HasCircleGeometry() {
			continue
		}

		inside := geo.IsWithinCircle(
			p.Latitude, p.Longitude,
			*fence.CenterLat, *fence.CenterLng,
			float64(*fence.RadiusMeters),
		)
		if !inside || !fence.AlertOnEnter {
			continue
		}

		fenceID := fence.ID
		name := fence.Name
		drafts = append(drafts, alertDraft{
			geofenceName: &name,
			alert: &alert.Alert{
				DeviceID:   p.DeviceID,
				GeofenceID: &fenceID,
				Type:       alert.TypeGeofenceEntry,
				Severity:   alert.SeverityWarning,
				Message:    fmt.Sprintf("Device entered geofence: %s", fence.Name),
				Data: map[string]any{
					"geofence_name": fence.Name,
					"latitude":      p.Latitude,
					"longitude":     p.Longitude,
				},
			},
		})
	}

	return drafts, nil
}

// checkIdleTime fires when the device has reported at least
// idleMinReadings at-rest readings (speed 0, ignition on) in the
// trailing window, the just-persisted reading included. Like the
// geofence check it has no "already alerted" suppression.
func (e *RuleEngine) checkIdleTime(ctx context.Context, p *position.Position) ([]alertDraft, error) {
	if p.Speed == nil || *p.Speed != 0 || p.Ignition == nil || !*p.Ignition {
		return nil, nil
	}

	count, err := e.idle.CountIdleReadings(ctx, p.DeviceID, time.Now().Add(-idleWindow))
	if err != nil {
		return nil, err
	}
	if count < idleMinReadings {
		return nil, nil
	}

	return []alertDraft{{alert: &alert.Alert{
		DeviceID: p.DeviceID,
		Type:     alert.TypeIdle,
		Severity: alert.SeverityWarning,
		Message:  "Device has been idle with engine running for 30+ minutes",
		Data: map[string]any{
			"idle_duration": 30,
			"latitude":      p.Latitude,
			"longitude":     p.Longitude,
		},
	}}}, nil
}

func (e *RuleEngine) checkLowBattery(_ context.Context, p *position.Position) ([]alertDraft, error) {
	if p.BatteryLevel == nil || *p.BatteryLevel >= lowBatteryPct {
		return nil, nil
	}

	return []alertDraft{{alert: &alert.Alert{
		DeviceID: p.DeviceID,
		Type:     alert.TypeLowBattery,
		Severity: alert.SeverityHigh,
		Message:  fmt.Sprintf("Device battery is low: %g%%", *p.BatteryLevel),
		Data: map[string]any{
			"battery_level": *p.BatteryLevel,
			"latitude":      p.Latitude,
			"longitude":     p.Longitude,
		},
	}}}, nil
}

func (e *RuleEngine) resolveDeviceName(ctx context.Context, deviceID uuid.UUID) string {
	if e.devices == nil {
		return ""
	}
	d, err := e.devices.GetByID(ctx, deviceID)
	if err != nil {
		e.log.Debug("device name lookup failed", zap.String("device_id", deviceID.String()), zap.Error(err))
		return ""
	}
	return d.Name
}
