package device

import "errors"

var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrDeviceExists   = errors.New("device already registered")
	ErrDeviceBanned   = errors.New("device is banned")
	ErrDeviceInactive = errors.New("device is inactive")
)
