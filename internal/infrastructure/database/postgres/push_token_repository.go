package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainPush "vehicle-alert/internal/domain/push"
	"vehicle-alert/internal/infrastructure/database/postgres/models"
)

type PushTokenRepository struct {
	db *DB
}

func NewPushTokenRepository(db *DB) domainPush.Repository {
	return &PushTokenRepository{db: db}
}

// Upsert keys on the token value: re-registering reassigns the token to
// the registering device and re-activates it.
func (r *PushTokenRepository) Upsert(ctx context.Context, t *domainPush.Token) error {
	now := time.Now()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = now
	t.UpdatedAt = now

	dbModel := &models.PushTokenModel{
		ID:           t.ID,
		DeviceID:     t.DeviceID,
		Token:        t.Token,
		Platform:     string(t.Platform),
		IsActive:     true,
		FailureCount: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.db.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "token"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"device_id":     t.DeviceID,
				"platform":      string(t.Platform),
				"is_active":     true,
				"failure_count": 0,
				"updated_at":    now,
			}),
		}).
		Create(dbModel).Error
	if err != nil {
		return fmt.Errorf("failed to upsert push token: %w", err)
	}

	t.ID = dbModel.ID
	return nil
}

func (r *PushTokenRepository) ListActiveByDevice(ctx context.Context, deviceID uuid.UUID) ([]*domainPush.Token, error) {
	var dbModels []models.PushTokenModel
	err := r.db.DB.WithContext(ctx).
		Where("device_id = ? AND is_active = ?", deviceID, true).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list push tokens: %w", err)
	}

	tokens := make([]*domainPush.Token, 0, len(dbModels))
	for i := range dbModels {
		m := &dbModels[i]
		tokens = append(tokens, &domainPush.Token{
			ID:            m.ID,
			DeviceID:      m.DeviceID,
			Token:         m.Token,
			Platform:      domainPush.Platform(m.Platform),
			IsActive:      m.IsActive,
			LastSuccessAt: m.LastSuccessAt,
			FailureCount:  m.FailureCount,
			CreatedAt:     m.CreatedAt,
			UpdatedAt:     m.UpdatedAt,
		})
	}
	return tokens, nil
}

func (r *PushTokenRepository) RecordSuccess(ctx context.Context, tokenID uuid.UUID, at time.Time) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.PushTokenModel{}).
		Where("id = ?", tokenID).
		Updates(map[string]interface{}{
			"last_success_at": at,
			"failure_count":   0,
			"updated_at":      at,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to record push success: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainPush.ErrTokenNotFound
	}
	return nil
}

// RecordFailure increments and deactivates in one statement so the
// threshold check cannot race with concurrent failures.
func (r *PushTokenRepository) RecordFailure(ctx context.Context, tokenID uuid.UUID, threshold int) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.PushTokenModel{}).
		Where("id = ?", tokenID).
		Updates(map[string]interface{}{
			"failure_count": gorm.Expr("failure_count + 1"),
			"is_active":     gorm.Expr("failure_count + 1 < ?", threshold),
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to record push failure: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainPush.ErrTokenNotFound
	}
	return nil
}

func (r *PushTokenRepository) Delete(ctx context.Context, deviceID uuid.UUID, tokenValue string) error {
	result := r.db.DB.WithContext(ctx).
		Where("device_id = ? AND token = ?", deviceID, tokenValue).
		Delete(&models.PushTokenModel{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete push token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainPush.ErrTokenNotFound
	}
	return nil
}
