package device

import "errors"

var (
	ErrDeviceNotFound      = errors.New("device not found")
	ErrDeviceAlreadyExists = errors.New("device already exists")
	ErrInvalidStatus       = errors.New("invalid device status")
	ErrInvalidOwner        = errors.New("invalid owner user id")
)
