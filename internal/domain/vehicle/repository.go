package vehicle

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, vehicle *Vehicle) error
	GetByID(ctx context.Context, vehicleID uuid.UUID) (*Vehicle, error)
	GetByQRToken(ctx context.Context, qrToken string) (*Vehicle, error)
	GetByHash(ctx context.Context, vehicleIDHash string) (*Vehicle, error)
	ListByDevice(ctx context.Context, deviceID uuid.UUID) ([]*Vehicle, error)
	UpdateNickname(ctx context.Context, vehicleID uuid.UUID, nickname *string) error
	// IncrementFalseAlertCount bumps falseAlertCount with a storage-side
	// expression.
	IncrementFalseAlertCount(ctx context.Context, vehicleID uuid.UUID) error
	Delete(ctx context.Context, vehicleID uuid.UUID) error
}
