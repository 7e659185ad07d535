package device

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists devices. All mutations that touch counters go
// through storage-side atomic expressions, never read-modify-write.
type Repository interface {
	Create(ctx context.Context, device *Device) error
	GetByID(ctx context.Context, deviceID uuid.UUID) (*Device, error)
	GetByHash(ctx context.Context, deviceIDHash string) (*Device, error)
	// Touch refreshes lastSeenAt and pushes the deleteAfter horizon
	// forward; called on every authenticated activity.
	Touch(ctx context.Context, deviceID uuid.UUID, seenAt time.Time) error
	UpdateLocation(ctx context.Context, deviceID uuid.UUID, lat, lon *float64, radiusKm *float64) error
	// AdjustTrust applies delta with storage-side clamping to
	// [MinTrustScore, MaxTrustScore] and returns the resulting score.
	AdjustTrust(ctx context.Context, deviceID uuid.UUID, delta int) (int, error)
	Ban(ctx context.Context, deviceID uuid.UUID, reason string, until time.Time) error
	// Delete removes the device and cascades to vehicles, push tokens
	// and alerts where it is the sender. Atomic: full erasure or none.
	Delete(ctx context.Context, deviceID uuid.UUID) error
	// DeleteExpired removes devices whose deleteAfter horizon has
	// passed and returns the number of rows removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
