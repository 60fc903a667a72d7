package alert

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestAlertValidate(t *testing.T) {
	valid := func() *Alert {
		return &Alert{
			DeviceID: uuid.New(),
			Type:     TypeSpeedLimit,
			Severity: SeverityHigh,
			Message:  "Device exceeded speed limit: 160 km/h (limit: 120 km/h)",
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid alert should pass: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Alert)
		wantErr error
	}{
		{"missing device id", func(a *Alert) { a.DeviceID = uuid.Nil }, ErrMissingDeviceID},
		{"missing type", func(a *Alert) { a.Type = "" }, ErrMissingType},
		{"missing severity", func(a *Alert) { a.Severity = "" }, ErrMissingSeverity},
		{"missing message", func(a *Alert) { a.Message = "" }, ErrMissingMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid()
			tt.mutate(a)
			if err := a.Validate(); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
