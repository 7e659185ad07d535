package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainDevice "vehicle-alert/internal/domain/device"
	"vehicle-alert/internal/infrastructure/database/postgres/models"
)

// DeviceRepository implements device.Repository on PostgreSQL.
type DeviceRepository struct {
	db *DB
}

func NewDeviceRepository(db *DB) domainDevice.Repository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) Create(ctx context.Context, d *domainDevice.Device) error {
	now := time.Now()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt = now
	d.LastSeenAt = now
	d.DeleteAfter = now.AddDate(0, 0, domainDevice.RetentionDays)

	dbModel := toDeviceModel(d)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key value") {
			return domainDevice.ErrDeviceExists
		}
		return fmt.Errorf("failed to create device: %w", err)
	}

	d.ID = dbModel.ID
	return nil
}

func (r *DeviceRepository) GetByID(ctx context.Context, deviceID uuid.UUID) (*domainDevice.Device, error) {
	var dbModel models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", deviceID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDevice.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return toDeviceEntity(&dbModel), nil
}

func (r *DeviceRepository) GetByHash(ctx context.Context, deviceIDHash string) (*domainDevice.Device, error) {
	var dbModel models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Where("device_id_hash = ?", deviceIDHash).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDevice.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return toDeviceEntity(&dbModel), nil
}

func (r *DeviceRepository) Touch(ctx context.Context, deviceID uuid.UUID, seenAt time.Time) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", deviceID).
		Updates(map[string]interface{}{
			"last_seen_at": seenAt,
			"delete_after": seenAt.AddDate(0, 0, domainDevice.RetentionDays),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to touch device: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDevice.ErrDeviceNotFound
	}
	return nil
}

func (r *DeviceRepository) UpdateLocation(ctx context.Context, deviceID uuid.UUID, lat, lon *float64, radiusKm *float64) error {
	updates := map[string]interface{}{}
	if lat != nil {
		updates["last_latitude"] = *lat
	}
	if lon != nil {
		updates["last_longitude"] = *lon
	}
	if radiusKm != nil {
		updates["alert_radius_km"] = domainDevice.ClampRadius(*radiusKm)
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", deviceID).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update device location: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDevice.ErrDeviceNotFound
	}
	return nil
}

// AdjustTrust clamps storage-side so concurrent adjustments cannot lose
// updates or escape the [0,100] bounds.
func (r *DeviceRepository) AdjustTrust(ctx context.Context, deviceID uuid.UUID, delta int) (int, error) {
	var updated models.DeviceModel
	result := r.db.DB.WithContext(ctx).
		Model(&updated).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "trust_score"}}}).
		Where("id = ?", deviceID).
		Update("trust_score", gorm.Expr(
			"LEAST(?, GREATEST(?, trust_score + ?))",
			domainDevice.MaxTrustScore, domainDevice.MinTrustScore, delta,
		))

	if result.Error != nil {
		return 0, fmt.Errorf("failed to adjust trust score: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, domainDevice.ErrDeviceNotFound
	}
	return updated.TrustScore, nil
}

func (r *DeviceRepository) Ban(ctx context.Context, deviceID uuid.UUID, reason string, until time.Time) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", deviceID).
		Updates(map[string]interface{}{
			"is_banned":      true,
			"ban_reason":     reason,
			"ban_expires_at": until,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to ban device: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDevice.ErrDeviceNotFound
	}
	return nil
}

// Delete relies on ON DELETE CASCADE for vehicles, push tokens and
// sent alerts; the single statement keeps erasure atomic.
func (r *DeviceRepository) Delete(ctx context.Context, deviceID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).
		Where("id = ?", deviceID).
		Delete(&models.DeviceModel{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete device: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDevice.ErrDeviceNotFound
	}
	return nil
}

func (r *DeviceRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.DB.WithContext(ctx).
		Where("delete_after < ?", now).
		Delete(&models.DeviceModel{})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired devices: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func toDeviceModel(d *domainDevice.Device) *models.DeviceModel {
	return &models.DeviceModel{
		ID:             d.ID,
		DeviceIDHash:   d.DeviceIDHash,
		AnonymousToken: d.AnonymousToken,
		LastLatitude:   d.LastLatitude,
		LastLongitude:  d.LastLongitude,
		AlertRadiusKm:  d.AlertRadiusKm,
		IsActive:       d.IsActive,
		IsBanned:       d.IsBanned,
		BanReason:      d.BanReason,
		BanExpiresAt:   d.BanExpiresAt,
		TrustScore:     d.TrustScore,
		CreatedAt:      d.CreatedAt,
		LastSeenAt:     d.LastSeenAt,
		DeleteAfter:    d.DeleteAfter,
	}
}

func toDeviceEntity(m *models.DeviceModel) *domainDevice.Device {
	return &domainDevice.Device{
		ID:             m.ID,
		DeviceIDHash:   m.DeviceIDHash,
		AnonymousToken: m.AnonymousToken,
		LastLatitude:   m.LastLatitude,
		LastLongitude:  m.LastLongitude,
		AlertRadiusKm:  m.AlertRadiusKm,
		IsActive:       m.IsActive,
		IsBanned:       m.IsBanned,
		BanReason:      m.BanReason,
		BanExpiresAt:   m.BanExpiresAt,
		TrustScore:     m.TrustScore,
		CreatedAt:      m.CreatedAt,
		LastSeenAt:     m.LastSeenAt,
		DeleteAfter:    m.DeleteAfter,
	}
}
