package push

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Upsert registers a token value. A re-registered token is
	// re-activated and reassigned to the registering device.
	Upsert(ctx context.Context, token *Token) error
	ListActiveByDevice(ctx context.Context, deviceID uuid.UUID) ([]*Token, error)
	// RecordSuccess resets failureCount and stamps lastSuccessAt.
	RecordSuccess(ctx context.Context, tokenID uuid.UUID, at time.Time) error
	// RecordFailure increments failureCount storage-side and
	// deactivates the token once it reaches threshold.
	RecordFailure(ctx context.Context, tokenID uuid.UUID, threshold int) error
	Delete(ctx context.Context, deviceID uuid.UUID, tokenValue string) error
}
