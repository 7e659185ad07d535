package vehicle

import "errors"

var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	// ErrPlateClaimed is returned when the hash is already registered.
	// One real-world vehicle maps to exactly one registration, which
	// prevents hijack-by-reregistration.
	ErrPlateClaimed = errors.New("vehicle already registered")
)
