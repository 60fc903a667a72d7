package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleet-telemetry/internal/domain/alert"
	"fleet-telemetry/internal/domain/geofence"
	"fleet-telemetry/internal/domain/position"
	"fleet-telemetry/internal/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(geofences *fakeGeofences, idle *fakeIdle, alerts *fakeAlertRepo, publisher *fakePublisher) *RuleEngine {
	return NewRuleEngine(geofences, idle, &fakeDevices{}, alerts, publisher, zap.NewNop())
}

func testPosition(mutate func(p *position.Position)) *position.Position {
	p := &position.Position{
		ID:         uuid.New(),
		DeviceID:   uuid.MustParse(testDeviceID),
		Latitude:   10.762622,
		Longitude:  106.660172,
		DeviceTime: time.Now(),
	}
	if mutate != nil {
		mutate(p)
	}
	return p
}

func TestSpeedLimitCheck(t *testing.T) {
	tests := []struct {
		name      string
		speed     *float64
		wantAlert bool
	}{
		{name: "no speed reported", speed: nil, wantAlert: false},
		{name: "below limit", speed: f64(80), wantAlert: false},
		{name: "exactly at limit does not fire", speed: f64(120), wantAlert: false},
		{name: "just above limit fires", speed: f64(120.1), wantAlert: true},
		{name: "far above limit fires", speed: f64(160), wantAlert: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := &fakeAlertRepo{}
			publisher := &fakePublisher{}
			engine := newTestEngine(&fakeGeofences{}, &fakeIdle{}, alerts, publisher)

			created := engine.Evaluate(context.Background(), testPosition(func(p *position.Position) {
				p.Speed = tt.speed
			}), "")

			if !tt.wantAlert {
				assert.Empty(t, created)
				return
			}

			require.Len(t, created, 1)
			a := created[0]
			assert.Equal(t, alert.TypeSpeedLimit, a.Type)
			assert.Equal(t, alert.SeverityHigh, a.Severity)
			assert.Equal(t, *tt.speed, a.Data["speed"])
			assert.Equal(t, 120.0, a.Data["speed_limit"])
		})
	}
}

func TestLowBatteryCheck(t *testing.T) {
	tests := []struct {
		name      string
		battery   *float64
		wantAlert bool
	}{
		{name: "no battery reported", battery: nil, wantAlert: false},
		{name: "healthy battery", battery: f64(80), wantAlert: false},
		{name: "exactly at threshold does not fire", battery: f64(20), wantAlert: false},
		{name: "just below threshold fires", battery: f64(19.9), wantAlert: true},
		{name: "zero battery fires", battery: f64(0), wantAlert: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := &fakeAlertRepo{}
			publisher := &fakePublisher{}
			engine := newTestEngine(&fakeGeofences{}, &fakeIdle{}, alerts, publisher)

			created := engine.Evaluate(context.Background(), testPosition(func(p *position.Position) {
				p.BatteryLevel = tt.battery
			}), "")

			if !tt.wantAlert {
				assert.Empty(t, created)
				return
			}

			require.Len(t, created, 1)
			assert.Equal(t, alert.TypeLowBattery, created[0].Type)
			assert.Equal(t, alert.SeverityHigh, created[0].Severity)
			assert.Equal(t, *tt.battery, created[0].Data["battery_level"])
		})
	}
}

func TestGeofenceEntryCheck(t *testing.T) {
	// Reading at the fence center, well inside a 500m radius.
	inside := circleFence("Depot", 10.762622, 106.660172, 500, true)
	silent := circleFence("Silent zone", 10.762622, 106.660172, 500, false)
	faraway := circleFence("Other city", 21.028511, 105.804817, 500, true)

	t.Run("fires for containing fence with enter alerting", func(t *testing.T) {
		alerts := &fakeAlertRepo{}
		publisher := &fakePublisher{}
		engine := newTestEngine(&fakeGeofences{fences: []*geofence.Geofence{inside, silent, faraway}}, &fakeIdle{}, alerts, publisher)

		created := engine.Evaluate(context.Background(), testPosition(nil), "")

		require.Len(t, created, 1)
		a := created[0]
		assert.Equal(t, alert.TypeGeofenceEntry, a.Type)
		assert.Equal(t, alert.SeverityWarning, a.Severity)
		require.NotNil(t, a.GeofenceID)
		assert.Equal(t, inside.ID, *a.GeofenceID)
		assert.Equal(t, "Device entered geofence: Depot", a.Message)
		assert.Equal(t, "Depot", a.Data["geofence_name"])
	})

	t.Run("fires again on every reading while inside", func(t *testing.T) {
		alerts := &fakeAlertRepo{}
		publisher := &fakePublisher{}
		engine := newTestEngine(&fakeGeofences{fences: []*geofence.Geofence{inside}}, &fakeIdle{}, alerts, publisher)

		engine.Evaluate(context.Background(), testPosition(nil), "")
		engine.Evaluate(context.Background(), testPosition(nil), "")

		assert.Len(t, alerts.byType(alert.TypeGeofenceEntry), 2)
	})

	t.Run("skips fences without circle geometry", func(t *testing.T) {
		polygon := &geofence.Geofence{
			ID:           uuid.New(),
			Name:         "Polygon zone",
			Type:         geofence.TypePolygon,
			Active:       true,
			AlertOnEnter: true,
		}
		broken := &geofence.Geofence{
			ID:           uuid.New(),
			Name:         "Broken circle",
			Type:         geofence.TypeCircle,
			Active:       true,
			AlertOnEnter: true,
		}

		alerts := &fakeAlertRepo{}
		engine := newTestEngine(&fakeGeofences{fences: []*geofence.Geofence{polygon, broken}}, &fakeIdle{}, alerts, &fakePublisher{})

		created := engine.Evaluate(context.Background(), testPosition(nil), "")
		assert.Empty(t, created)
	})
}

func TestIdleCheck(t *testing.T) {
	tests := []struct {
		name      string
		speed     *float64
		ignition  *bool
		idleCount int64
		wantAlert bool
		wantQuery bool
	}{
		{name: "moving device never idles", speed: f64(40), ignition: bptr(true), wantQuery: false},
		{name: "no speed reported skips check", speed: nil, ignition: bptr(true), wantQuery: false},
		{name: "ignition off skips check", speed: f64(0), ignition: bptr(false), wantQuery: false},
		{name: "no ignition reported skips check", speed: f64(0), ignition: nil, wantQuery: false},
		{name: "two readings is below threshold", speed: f64(0), ignition: bptr(true), idleCount: 2, wantQuery: true},
		{name: "three readings fires", speed: f64(0), ignition: bptr(true), idleCount: 3, wantAlert: true, wantQuery: true},
		{name: "many readings fires", speed: f64(0), ignition: bptr(true), idleCount: 17, wantAlert: true, wantQuery: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := &fakeAlertRepo{}
			idle := &fakeIdle{count: tt.idleCount}
			engine := newTestEngine(&fakeGeofences{}, idle, alerts, &fakePublisher{})

			created := engine.Evaluate(context.Background(), testPosition(func(p *position.Position) {
				p.Speed = tt.speed
				p.Ignition = tt.ignition
			}), "")

			if tt.wantQuery {
				assert.Equal(t, 1, idle.calls)
			} else {
				assert.Zero(t, idle.calls)
			}

			if !tt.wantAlert {
				assert.Empty(t, created)
				return
			}

			require.Len(t, created, 1)
			assert.Equal(t, alert.TypeIdle, created[0].Type)
			assert.Equal(t, alert.SeverityWarning, created[0].Severity)
			assert.Equal(t, 30, created[0].Data["idle_duration"])
		})
	}
}

func TestEvaluateCheckIsolation(t *testing.T) {
	t.Run("failing geofence check does not block speed check", func(t *testing.T) {
		alerts := &fakeAlertRepo{}
		engine := newTestEngine(&fakeGeofences{err: errors.New("db down")}, &fakeIdle{}, alerts, &fakePublisher{})

		created := engine.Evaluate(context.Background(), testPosition(func(p *position.Position) {
			p.Speed = f64(150)
		}), "")

		require.Len(t, created, 1)
		assert.Equal(t, alert.TypeSpeedLimit, created[0].Type)
	})

	t.Run("panicking check does not block siblings", func(t *testing.T) {
		alerts := &fakeAlertRepo{}
		engine := newTestEngine(&fakeGeofences{panics: true}, &fakeIdle{}, alerts, &fakePublisher{})

		created := engine.Evaluate(context.Background(), testPosition(func(p *position.Position) {
			p.BatteryLevel = f64(5)
		}), "")

		require.Len(t, created, 1)
		assert.Equal(t, alert.TypeLowBattery, created[0].Type)
	})

	t.Run("publish failure keeps the alert", func(t *testing.T) {
		alerts := &fakeAlertRepo{}
		engine := newTestEngine(&fakeGeofences{}, &fakeIdle{}, alerts, &fakePublisher{err: errors.New("redis down")})

		created := engine.Evaluate(context.Background(), testPosition(func(p *position.Position) {
			p.Speed = f64(130)
		}), "")

		require.Len(t, created, 1)
		assert.Len(t, alerts.created, 1)
	})

	t.Run("persist failure drops only that alert", func(t *testing.T) {
		alerts := &fakeAlertRepo{createErr: errors.New("disk full")}
		publisher := &fakePublisher{}
		engine := newTestEngine(&fakeGeofences{}, &fakeIdle{}, alerts, publisher)

		created := engine.Evaluate(context.Background(), testPosition(func(p *position.Position) {
			p.Speed = f64(130)
		}), "")

		assert.Empty(t, created)
		assert.Empty(t, publisher.byName(events.EventAlertCreated))
	})
}

func TestEvaluateBroadcastsCreatedAlerts(t *testing.T) {
	publisher := &fakePublisher{}
	alerts := &fakeAlertRepo{}
	engine := newTestEngine(&fakeGeofences{}, &fakeIdle{}, alerts, publisher)

	created := engine.Evaluate(context.Background(), testPosition(func(p *position.Position) {
		p.Speed = f64(130)
		p.BatteryLevel = f64(10)
	}), "socket-abc")

	require.Len(t, created, 2)

	broadcast := publisher.byName(events.EventAlertCreated)
	require.Len(t, broadcast, 2)
	for _, event := range broadcast {
		assert.Equal(t, []string{events.ChannelAlerts}, event.Channels)
		assert.Equal(t, "socket-abc", event.OriginSocketID)
		assert.Equal(t, "Truck 42", event.Payload["device_name"])
	}
}
