package ingestion

import (
	"context"
	"time"

	"fleet-telemetry/internal/domain/position"
	"fleet-telemetry/internal/events"
	"fleet-telemetry/internal/infrastructure/cache"
	pkgerrors "fleet-telemetry/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DeviceToucher updates the device's last-seen timestamp.
type DeviceToucher interface {
	TouchLastSeen(ctx context.Context, deviceID uuid.UUID) error
}

// PositionAppender durably persists position readings.
type PositionAppender interface {
	Append(ctx context.Context, p *position.Position) error
}

// Pipeline processes one inbound reading end to end:
// validate, persist, cache, broadcast, evaluate alert rules.
//
// Validation and persistence are the only fatal stages. Every stage
// after a successful append is additive and best-effort: cache, device
// touch, broadcast and rule failures are logged and swallowed, so a
// persisted reading always reaches the end of the pipeline. Duplicate
// submissions (at-least-once redelivery) create duplicate rows; there
// is no dedup key.
type Pipeline struct {
	positions PositionAppender
	devices   DeviceToucher
	cache     cache.PositionCache
	publisher events.Publisher
	engine    *RuleEngine
	metrics   *MetricsTracker
	log       *zap.Logger
}

func NewPipeline(
	positions PositionAppender,
	devices DeviceToucher,
	positionCache cache.PositionCache,
	publisher events.Publisher,
	engine *RuleEngine,
	metrics *MetricsTracker,
	log *zap.Logger,
) *Pipeline {
	if metrics == nil {
		metrics = NewMetricsTracker()
	}
	return &Pipeline{
		positions: positions,
		devices:   devices,
		cache:     positionCache,
		publisher: publisher,
		engine:    engine,
		metrics:   metrics,
		log:       log,
	}
}

// Process runs the pipeline for one reading. It returns the persisted
// position, or a ValidationError / PersistenceError when one of the
// two fatal stages rejects the reading.
func (p *Pipeline) Process(ctx context.Context, reading *RawReading) (*position.Position, error) {
	if err := ValidateReading(reading); err != nil {
		p.log.Warn("reading rejected",
			zap.String("device_id", reading.DeviceID),
			zap.Error(err),
		)
		return nil, err
	}

	pos := reading.ToPosition(time.Now())
	log := p.log.With(zap.String("device_id", pos.DeviceID.String()))

	if err := p.positions.Append(ctx, pos); err != nil {
		return nil, &pkgerrors.PersistenceError{Op: "position append", Err: err}
	}

	if p.cache != nil {
		if err := p.cache.Put(ctx, pos.DeviceID, pos.ToSnapshot()); err != nil {
			log.Warn("last position cache update failed", zap.Error(err))
		}
	}

	if p.devices != nil {
		if err := p.devices.TouchLastSeen(ctx, pos.DeviceID); err != nil {
			log.Warn("device last seen update failed", zap.Error(err))
		}
	}

	if err := p.publisher.Publish(ctx, events.NewPositionUpdated(pos, reading.OriginSocketID)); err != nil {
		log.Warn("position broadcast failed", zap.Error(err))
	}

	created := p.engine.Evaluate(ctx, pos, reading.OriginSocketID)
	if len(created) > 0 {
		p.metrics.Update(func(m *IngestMetrics) {
			m.AlertsGenerated += int64(len(created))
		})
	}

	return pos, nil
}
