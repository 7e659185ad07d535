package alert

import "errors"

var (
	ErrAlertNotFound     = errors.New("alert not found")
	ErrUnknownType       = errors.New("unknown alert type")
	ErrInvalidTransition = errors.New("invalid alert status transition")
)
