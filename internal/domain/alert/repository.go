package alert

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists the alert and increments the target vehicle's
	// received-alert counter in the same transaction.
	Create(ctx context.Context, alert *Alert) error
	GetByID(ctx context.Context, alertID uuid.UUID) (*Alert, error)
	// ListForVehicles returns non-expired alerts for the given vehicles,
	// newest first. Fetches limit+1 rows so callers can derive has_more.
	ListForVehicles(ctx context.Context, vehicleIDs []uuid.UUID, now time.Time, limit, offset int) ([]*Alert, int64, error)
	// UpdateStatus applies a transition; implementations guard with a
	// WHERE on the expected current status so concurrent transitions
	// cannot race.
	UpdateStatus(ctx context.Context, alertID uuid.UUID, from, to Status, at time.Time) error
	Flag(ctx context.Context, alertID uuid.UUID, reason string, at time.Time) error
	MarkNotified(ctx context.Context, alertID uuid.UUID, at time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
