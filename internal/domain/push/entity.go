package push

import (
	"time"

	"github.com/google/uuid"
)

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// Token is a delivery address for a device. Repeated delivery failures
// deactivate the token instead of deleting it, so a recovered device can
// re-register the same value.
type Token struct {
	ID            uuid.UUID
	DeviceID      uuid.UUID
	Token         string
	Platform      Platform
	IsActive      bool
	LastSuccessAt *time.Time
	FailureCount  int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
