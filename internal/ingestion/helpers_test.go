package ingestion

import (
	"context"
	"sync"
	"testing"
	"time"

	"fleet-telemetry/internal/domain/alert"
	"fleet-telemetry/internal/domain/device"
	"fleet-telemetry/internal/domain/geofence"
	"fleet-telemetry/internal/domain/position"
	"fleet-telemetry/internal/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

type fakeGeofences struct {
	fences []*geofence.Geofence
	err    error
	panics bool
}

func (f *fakeGeofences) ListActive(ctx context.Context, ownerUserID *uuid.UUID) ([]*geofence.Geofence, error) {
	if f.panics {
		panic("geofence store unavailable")
	}
	return f.fences, f.err
}

type fakeIdle struct {
	count int64
	err   error
	calls int
}

func (f *fakeIdle) CountIdleReadings(ctx context.Context, deviceID uuid.UUID, since time.Time) (int64, error) {
	f.calls++
	return f.count, f.err
}

type fakeDevices struct {
	device *device.Device
	err    error
}

func (f *fakeDevices) GetByID(ctx context.Context, deviceID uuid.UUID) (*device.Device, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.device != nil {
		return f.device, nil
	}
	return &device.Device{ID: deviceID, Name: "Truck 42"}, nil
}

type fakeAlertRepo struct {
	mu        sync.Mutex
	created   []*alert.Alert
	createErr error
}

func (f *fakeAlertRepo) Create(ctx context.Context, a *alert.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	f.created = append(f.created, a)
	return nil
}

func (f *fakeAlertRepo) MarkRead(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeAlertRepo) MarkAllRead(ctx context.Context) (int64, error)  { return 0, nil }
func (f *fakeAlertRepo) CountUnread(ctx context.Context) (int64, error)  { return 0, nil }
func (f *fakeAlertRepo) CountBySeverity(ctx context.Context) (map[alert.Severity]int64, error) {
	return nil, nil
}
func (f *fakeAlertRepo) CountByType(ctx context.Context) (map[alert.AlertType]int64, error) {
	return nil, nil
}
func (f *fakeAlertRepo) ListRecent(ctx context.Context, limit int) ([]*alert.Alert, error) {
	return nil, nil
}

func (f *fakeAlertRepo) byType(alertType alert.AlertType) []*alert.Alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*alert.Alert
	for _, a := range f.created {
		if a.Type == alertType {
			out = append(out, a)
		}
	}
	return out
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, event events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) byName(name string) []events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []events.Event
	for _, e := range f.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

type fakeAppender struct {
	mu        sync.Mutex
	appended  []*position.Position
	appendErr error
}

func (f *fakeAppender) Append(ctx context.Context, p *position.Position) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	f.appended = append(f.appended, p)
	return nil
}

func (f *fakeAppender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.appended)
}

type fakeToucher struct {
	mu      sync.Mutex
	touched []uuid.UUID
	err     error
}

func (f *fakeToucher) TouchLastSeen(ctx context.Context, deviceID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.touched = append(f.touched, deviceID)
	return nil
}

type fakeCache struct {
	mu        sync.Mutex
	snapshots map[uuid.UUID]position.Snapshot
	putErr    error
}

func newFakeCache() *fakeCache {
	return &fakeCache{snapshots: make(map[uuid.UUID]position.Snapshot)}
}

func (f *fakeCache) Put(ctx context.Context, deviceID uuid.UUID, snapshot position.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.snapshots[deviceID] = snapshot
	return nil
}

func (f *fakeCache) Get(ctx context.Context, deviceID uuid.UUID) (*position.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snapshot, ok := f.snapshots[deviceID]
	if !ok {
		return nil, nil
	}
	return &snapshot, nil
}

func circleFence(name string, lat, lng float64, radius int, alertOnEnter bool) *geofence.Geofence {
	return &geofence.Geofence{
		ID:           uuid.New(),
		Name:         name,
		Type:         geofence.TypeCircle,
		CenterLat:    &lat,
		CenterLng:    &lng,
		RadiusMeters: &radius,
		Active:       true,
		AlertOnEnter: alertOnEnter,
	}
}
