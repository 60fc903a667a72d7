package ingestion

import (
	"context"
	"errors"
	"testing"

	"fleet-telemetry/internal/domain/alert"
	"fleet-telemetry/internal/domain/geofence"
	"fleet-telemetry/internal/events"
	pkgerrors "fleet-telemetry/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pipelineFixture struct {
	pipeline  *Pipeline
	appender  *fakeAppender
	toucher   *fakeToucher
	cache     *fakeCache
	publisher *fakePublisher
	alerts    *fakeAlertRepo
	metrics   *MetricsTracker
}

func newPipelineFixture(geofences *fakeGeofences, idle *fakeIdle) *pipelineFixture {
	f := &pipelineFixture{
		appender:  &fakeAppender{},
		toucher:   &fakeToucher{},
		cache:     newFakeCache(),
		publisher: &fakePublisher{},
		alerts:    &fakeAlertRepo{},
		metrics:   NewMetricsTracker(),
	}
	engine := NewRuleEngine(geofences, idle, &fakeDevices{}, f.alerts, f.publisher, zap.NewNop())
	f.pipeline = NewPipeline(f.appender, f.toucher, f.cache, f.publisher, engine, f.metrics, zap.NewNop())
	return f
}

func TestProcessRejectsInvalidReadingBeforeAnySideEffect(t *testing.T) {
	f := newPipelineFixture(&fakeGeofences{}, &fakeIdle{})

	reading := validReading()
	reading.Latitude = nil

	_, err := f.pipeline.Process(context.Background(), reading)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "latitude", validationErr.Field)

	assert.Zero(t, f.appender.count())
	assert.Empty(t, f.publisher.events)
	assert.Empty(t, f.alerts.created)
	assert.Empty(t, f.cache.snapshots)
}

func TestProcessWrapsAppendFailure(t *testing.T) {
	f := newPipelineFixture(&fakeGeofences{}, &fakeIdle{})
	f.appender.appendErr = errors.New("connection refused")

	_, err := f.pipeline.Process(context.Background(), validReading())

	var persistErr *pkgerrors.PersistenceError
	require.True(t, errors.As(err, &persistErr))

	assert.Empty(t, f.publisher.events)
	assert.Empty(t, f.cache.snapshots)
}

func TestProcessSurvivesCacheAndTouchFailures(t *testing.T) {
	f := newPipelineFixture(&fakeGeofences{}, &fakeIdle{})
	f.cache.putErr = errors.New("redis down")
	f.toucher.err = errors.New("db busy")

	p, err := f.pipeline.Process(context.Background(), validReading())

	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 1, f.appender.count())
	assert.Len(t, f.publisher.byName(events.EventPositionUpdated), 1)
}

func TestProcessCachesSnapshotAndTouchesDevice(t *testing.T) {
	f := newPipelineFixture(&fakeGeofences{}, &fakeIdle{})

	reading := validReading()
	reading.Speed = f64(52.5)

	p, err := f.pipeline.Process(context.Background(), reading)
	require.NoError(t, err)

	snapshot, cacheErr := f.cache.Get(context.Background(), p.DeviceID)
	require.NoError(t, cacheErr)
	require.NotNil(t, snapshot)
	assert.Equal(t, p.Latitude, snapshot.Latitude)
	assert.Equal(t, p.Longitude, snapshot.Longitude)
	require.NotNil(t, snapshot.Speed)
	assert.Equal(t, 52.5, *snapshot.Speed)

	require.Len(t, f.toucher.touched, 1)
	assert.Equal(t, p.DeviceID, f.toucher.touched[0])
}

func TestProcessFullScenario(t *testing.T) {
	// Speeding, low battery, inside an enter-alerting 500m circle: one
	// persisted position, one position.updated broadcast and exactly
	// three alerts.
	depot := circleFence("Depot", 10.762622, 106.660172, 500, true)
	f := newPipelineFixture(&fakeGeofences{fences: []*geofence.Geofence{depot}}, &fakeIdle{})

	reading := validReading()
	reading.Speed = f64(160)
	reading.BatteryLevel = f64(15)
	reading.OriginSocketID = "socket-7"

	p, err := f.pipeline.Process(context.Background(), reading)
	require.NoError(t, err)

	assert.Equal(t, 1, f.appender.count())
	require.Len(t, f.alerts.created, 3)
	assert.Len(t, f.alerts.byType(alert.TypeSpeedLimit), 1)
	assert.Len(t, f.alerts.byType(alert.TypeGeofenceEntry), 1)
	assert.Len(t, f.alerts.byType(alert.TypeLowBattery), 1)

	positionEvents := f.publisher.byName(events.EventPositionUpdated)
	require.Len(t, positionEvents, 1)
	assert.Equal(t, "socket-7", positionEvents[0].OriginSocketID)
	assert.ElementsMatch(t, []string{
		events.ChannelDevices,
		events.DeviceChannel(p.DeviceID.String()),
	}, positionEvents[0].Channels)

	assert.Len(t, f.publisher.byName(events.EventAlertCreated), 3)

	metrics := f.metrics.Snapshot()
	assert.Equal(t, int64(3), metrics.AlertsGenerated)
}

func TestProcessPublishFailureDoesNotFailPipeline(t *testing.T) {
	f := newPipelineFixture(&fakeGeofences{}, &fakeIdle{})
	f.publisher.err = errors.New("redis down")

	p, err := f.pipeline.Process(context.Background(), validReading())
	require.NoError(t, err)
	assert.NotNil(t, p)
	assert.Equal(t, 1, f.appender.count())
}

func TestProcessorProcessesSubmittedReadings(t *testing.T) {
	f := newPipelineFixture(&fakeGeofences{}, &fakeIdle{})
	processor := NewProcessor(f.pipeline, 2, 16, f.metrics, zap.NewNop())
	processor.Start()

	for i := 0; i < 5; i++ {
		processor.Submit(validReading())
	}
	processor.Stop()

	assert.Equal(t, 5, f.appender.count())

	metrics := processor.GetMetrics()
	assert.Equal(t, int64(5), metrics.ReadingsReceived)
	assert.Equal(t, int64(5), metrics.ReadingsProcessed)
	assert.Zero(t, metrics.ReadingsDropped)
}

func TestProcessorDropsWhenBufferFull(t *testing.T) {
	f := newPipelineFixture(&fakeGeofences{}, &fakeIdle{})
	processor := NewProcessor(f.pipeline, 1, 2, f.metrics, zap.NewNop())
	// Workers are never started, so the buffer fills after two submits.

	for i := 0; i < 5; i++ {
		processor.Submit(validReading())
	}

	metrics := processor.GetMetrics()
	assert.Equal(t, int64(2), metrics.ReadingsReceived)
	assert.Equal(t, int64(3), metrics.ReadingsDropped)

	processor.Start()
	processor.Stop()
	assert.Equal(t, 2, f.appender.count())
}

func TestProcessorCountsFailedReadings(t *testing.T) {
	f := newPipelineFixture(&fakeGeofences{}, &fakeIdle{})
	f.appender.appendErr = errors.New("db down")
	processor := NewProcessor(f.pipeline, 1, 8, f.metrics, zap.NewNop())
	processor.Start()

	processor.Submit(validReading())
	processor.Stop()

	metrics := processor.GetMetrics()
	assert.Equal(t, int64(1), metrics.ReadingsFailed)
	assert.Zero(t, metrics.ReadingsProcessed)
}

func TestProcessorDropsSubmitsAfterStop(t *testing.T) {
	f := newPipelineFixture(&fakeGeofences{}, &fakeIdle{})
	processor := NewProcessor(f.pipeline, 1, 8, f.metrics, zap.NewNop())
	processor.Start()

	processor.Submit(validReading())
	processor.Stop()

	// A late submit must be counted as dropped, not panic on the
	// closed queue.
	processor.Submit(validReading())
	processor.Stop()

	metrics := processor.GetMetrics()
	assert.Equal(t, int64(1), metrics.ReadingsReceived)
	assert.Equal(t, int64(1), metrics.ReadingsDropped)
	assert.Equal(t, 1, f.appender.count())
}

func TestProcessorMetricsReportQueueDepth(t *testing.T) {
	f := newPipelineFixture(&fakeGeofences{}, &fakeIdle{})
	processor := NewProcessor(f.pipeline, 1, 8, f.metrics, zap.NewNop())
	// Workers are never started, so submitted readings sit in the queue.

	for i := 0; i < 3; i++ {
		processor.Submit(validReading())
	}
	assert.Equal(t, 3, processor.GetMetrics().BufferSize)

	processor.Start()
	processor.Stop()
	assert.Zero(t, processor.GetMetrics().BufferSize)
}

func TestProcessorProcessesUnknownDevice(t *testing.T) {
	f := newPipelineFixture(&fakeGeofences{}, &fakeIdle{})
	processor := NewProcessor(f.pipeline, 1, 8, f.metrics, zap.NewNop())
	processor.Start()

	reading := validReading()
	reading.DeviceID = uuid.NewString()
	processor.Submit(reading)
	processor.Stop()

	assert.Equal(t, 1, f.appender.count())
}
