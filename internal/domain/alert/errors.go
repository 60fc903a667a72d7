package alert

import "errors"

var (
	ErrAlertNotFound   = errors.New("alert not found")
	ErrMissingDeviceID = errors.New("alert device id is required")
	ErrMissingType     = errors.New("alert type is required")
	ErrMissingSeverity = errors.New("alert severity is required")
	ErrMissingMessage  = errors.New("alert message is required")
)
