package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainVehicle "vehicle-alert/internal/domain/vehicle"
	"vehicle-alert/internal/infrastructure/database/postgres/models"
)

type VehicleRepository struct {
	db *DB
}

func NewVehicleRepository(db *DB) domainVehicle.Repository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) Create(ctx context.Context, v *domainVehicle.Vehicle) error {
	now := time.Now()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = now
	v.UpdatedAt = now

	dbModel := toVehicleModel(v)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key value") {
			return domainVehicle.ErrPlateClaimed
		}
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	v.ID = dbModel.ID
	return nil
}

func (r *VehicleRepository) GetByID(ctx context.Context, vehicleID uuid.UUID) (*domainVehicle.Vehicle, error) {
	return r.getOne(ctx, "id = ?", vehicleID)
}

func (r *VehicleRepository) GetByQRToken(ctx context.Context, qrToken string) (*domainVehicle.Vehicle, error) {
	var dbModel models.VehicleModel
	err := r.db.DB.WithContext(ctx).
		Where("qr_code_token = ? AND is_active = ?", qrToken, true).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainVehicle.ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle by qr token: %w", err)
	}
	return toVehicleEntity(&dbModel), nil
}

func (r *VehicleRepository) GetByHash(ctx context.Context, vehicleIDHash string) (*domainVehicle.Vehicle, error) {
	return r.getOne(ctx, "vehicle_id_hash = ?", vehicleIDHash)
}

func (r *VehicleRepository) getOne(ctx context.Context, query string, arg interface{}) (*domainVehicle.Vehicle, error) {
	var dbModel models.VehicleModel
	err := r.db.DB.WithContext(ctx).
		Where(query, arg).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainVehicle.ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return toVehicleEntity(&dbModel), nil
}

func (r *VehicleRepository) ListByDevice(ctx context.Context, deviceID uuid.UUID) ([]*domainVehicle.Vehicle, error) {
	var dbModels []models.VehicleModel
	err := r.db.DB.WithContext(ctx).
		Where("device_id = ? AND is_active = ?", deviceID, true).
		Order("created_at ASC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}

	vehicles := make([]*domainVehicle.Vehicle, 0, len(dbModels))
	for i := range dbModels {
		vehicles = append(vehicles, toVehicleEntity(&dbModels[i]))
	}
	return vehicles, nil
}

func (r *VehicleRepository) UpdateNickname(ctx context.Context, vehicleID uuid.UUID, nickname *string) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.VehicleModel{}).
		Where("id = ?", vehicleID).
		Updates(map[string]interface{}{
			"nickname":   nickname,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update nickname: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainVehicle.ErrVehicleNotFound
	}
	return nil
}

func (r *VehicleRepository) IncrementFalseAlertCount(ctx context.Context, vehicleID uuid.UUID) error {
	return r.increment(ctx, vehicleID, "false_alert_count")
}

func (r *VehicleRepository) increment(ctx context.Context, vehicleID uuid.UUID, column string) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.VehicleModel{}).
		Where("id = ?", vehicleID).
		Update(column, gorm.Expr(column+" + 1"))

	if result.Error != nil {
		return fmt.Errorf("failed to increment %s: %w", column, result.Error)
	}
	if result.RowsAffected == 0 {
		return domainVehicle.ErrVehicleNotFound
	}
	return nil
}

func (r *VehicleRepository) Delete(ctx context.Context, vehicleID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).
		Where("id = ?", vehicleID).
		Delete(&models.VehicleModel{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete vehicle: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainVehicle.ErrVehicleNotFound
	}
	return nil
}

func toVehicleModel(v *domainVehicle.Vehicle) *models.VehicleModel {
	return &models.VehicleModel{
		ID:                 v.ID,
		DeviceID:           v.DeviceID,
		VehicleIDHash:      v.VehicleIDHash,
		QRCodeToken:        v.QRCodeToken,
		Nickname:           v.Nickname,
		IsActive:           v.IsActive,
		AlertCountReceived: v.AlertCountReceived,
		FalseAlertCount:    v.FalseAlertCount,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
}

func toVehicleEntity(m *models.VehicleModel) *domainVehicle.Vehicle {
	return &domainVehicle.Vehicle{
		ID:                 m.ID,
		DeviceID:           m.DeviceID,
		VehicleIDHash:      m.VehicleIDHash,
		QRCodeToken:        m.QRCodeToken,
		Nickname:           m.Nickname,
		IsActive:           m.IsActive,
		AlertCountReceived: m.AlertCountReceived,
		FalseAlertCount:    m.FalseAlertCount,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
