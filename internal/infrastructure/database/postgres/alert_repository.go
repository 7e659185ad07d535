package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainAlert "vehicle-alert/internal/domain/alert"
	domainVehicle "vehicle-alert/internal/domain/vehicle"
	"vehicle-alert/internal/infrastructure/database/postgres/models"
)

type AlertRepository struct {
	db *DB
}

func NewAlertRepository(db *DB) domainAlert.Repository {
	return &AlertRepository{db: db}
}

// Create inserts the alert and bumps the target vehicle's received
// counter in the same transaction, so the counter can never drift from
// the alert rows.
func (r *AlertRepository) Create(ctx context.Context, a *domainAlert.Alert) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	dbModel := toAlertModel(a)
	err := r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(dbModel).Error; err != nil {
			return fmt.Errorf("failed to create alert: %w", err)
		}

		result := tx.
			Model(&models.VehicleModel{}).
			Where("id = ?", a.VehicleID).
			Update("alert_count_received", gorm.Expr("alert_count_received + 1"))
		if result.Error != nil {
			return fmt.Errorf("failed to increment alert count: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domainVehicle.ErrVehicleNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	a.ID = dbModel.ID
	return nil
}

func (r *AlertRepository) GetByID(ctx context.Context, alertID uuid.UUID) (*domainAlert.Alert, error) {
	var dbModel models.AlertModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", alertID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainAlert.ErrAlertNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return toAlertEntity(&dbModel), nil
}

func (r *AlertRepository) ListForVehicles(ctx context.Context, vehicleIDs []uuid.UUID, now time.Time, limit, offset int) ([]*domainAlert.Alert, int64, error) {
	if len(vehicleIDs) == 0 {
		return nil, 0, nil
	}

	query := r.db.DB.WithContext(ctx).
		Model(&models.AlertModel{}).
		Where("vehicle_id IN ? AND expires_at > ?", vehicleIDs, now)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count alerts: %w", err)
	}

	var dbModels []models.AlertModel
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&dbModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list alerts: %w", err)
	}

	alerts := make([]*domainAlert.Alert, 0, len(dbModels))
	for i := range dbModels {
		alerts = append(alerts, toAlertEntity(&dbModels[i]))
	}
	return alerts, total, nil
}

// UpdateStatus guards on the expected current status so two concurrent
// transitions cannot both apply.
func (r *AlertRepository) UpdateStatus(ctx context.Context, alertID uuid.UUID, from, to domainAlert.Status, at time.Time) error {
	updates := map[string]interface{}{"status": string(to)}
	switch to {
	case domainAlert.StatusAcknowledged:
		updates["acknowledged_at"] = at
	case domainAlert.StatusResolved:
		updates["resolved_at"] = at
	}

	result := r.db.DB.WithContext(ctx).
		Model(&models.AlertModel{}).
		Where("id = ? AND status = ?", alertID, string(from)).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update alert status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainAlert.ErrInvalidTransition
	}
	return nil
}

func (r *AlertRepository) Flag(ctx context.Context, alertID uuid.UUID, reason string, at time.Time) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.AlertModel{}).
		Where("id = ? AND status = ?", alertID, string(domainAlert.StatusActive)).
		Updates(map[string]interface{}{
			"status":      string(domainAlert.StatusFlagged),
			"is_flagged":  true,
			"flagged_at":  at,
			"flag_reason": reason,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to flag alert: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainAlert.ErrInvalidTransition
	}
	return nil
}

func (r *AlertRepository) MarkNotified(ctx context.Context, alertID uuid.UUID, at time.Time) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.AlertModel{}).
		Where("id = ?", alertID).
		Update("notification_sent_at", at)

	if result.Error != nil {
		return fmt.Errorf("failed to mark alert notified: %w", result.Error)
	}
	return nil
}

func (r *AlertRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.DB.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.AlertModel{})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired alerts: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func toAlertModel(a *domainAlert.Alert) *models.AlertModel {
	return &models.AlertModel{
		ID:                 a.ID,
		SenderDeviceID:     a.SenderDeviceID,
		VehicleID:          a.VehicleID,
		AlertType:          string(a.AlertType),
		Status:             string(a.Status),
		Latitude:           a.Latitude,
		Longitude:          a.Longitude,
		CreatedAt:          a.CreatedAt,
		ExpiresAt:          a.ExpiresAt,
		NotificationSentAt: a.NotificationSentAt,
		AcknowledgedAt:     a.AcknowledgedAt,
		ResolvedAt:         a.ResolvedAt,
		IsFlagged:          a.IsFlagged,
		FlaggedAt:          a.FlaggedAt,
		FlagReason:         a.FlagReason,
	}
}

func toAlertEntity(m *models.AlertModel) *domainAlert.Alert {
	return &domainAlert.Alert{
		ID:                 m.ID,
		SenderDeviceID:     m.SenderDeviceID,
		VehicleID:          m.VehicleID,
		AlertType:          domainAlert.Type(m.AlertType),
		Status:             domainAlert.Status(m.Status),
		Latitude:           m.Latitude,
		Longitude:          m.Longitude,
		CreatedAt:          m.CreatedAt,
		ExpiresAt:          m.ExpiresAt,
		NotificationSentAt: m.NotificationSentAt,
		AcknowledgedAt:     m.AcknowledgedAt,
		ResolvedAt:         m.ResolvedAt,
		IsFlagged:          m.IsFlagged,
		FlaggedAt:          m.FlaggedAt,
		FlagReason:         m.FlagReason,
	}
}
