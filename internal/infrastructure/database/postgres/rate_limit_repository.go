package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vehicle-alert/internal/domain/abuse"
	"vehicle-alert/internal/infrastructure/database/postgres/models"
)

type RateLimitRepository struct {
	db *DB
}

func NewRateLimitRepository(db *DB) abuse.WindowRepository {
	return &RateLimitRepository{db: db}
}

// CheckAndIncrement runs the window sum and the bucket increment in one
// transaction, serialized per identifier+action by a transaction-scoped
// advisory lock. Row locks alone cannot serialize the first request of
// a fresh minute, where no bucket row exists yet to lock, so two
// concurrent callers could both see the last remaining slot; the
// advisory lock covers that case. A caller that blocks on the lock
// re-reads the window after the holder commits, so it sees the
// holder's bucket. The sum covers only buckets inside the trailing
// window, and a rejected request does not consume budget.
func (r *RateLimitRepository) CheckAndIncrement(ctx context.Context, identifierHash string, identifierType abuse.IdentifierType, action abuse.Action, maxRequests int, window time.Duration, now time.Time) (bool, error) {
	windowStart := abuse.BucketMinute(now)
	oldest := windowStart.Add(-window)

	allowed := false
	err := r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(
			"SELECT pg_advisory_xact_lock(hashtext(? || ':' || ? || ':' || ?))",
			identifierHash, string(identifierType), string(action),
		).Error
		if err != nil {
			return fmt.Errorf("failed to acquire window lock: %w", err)
		}

		var total int64
		err = tx.
			Model(&models.RateLimitWindowModel{}).
			Where(
				"identifier_hash = ? AND identifier_type = ? AND action = ? AND window_start >= ?",
				identifierHash, string(identifierType), string(action), oldest,
			).
			Select("COALESCE(SUM(request_count), 0)").
			Scan(&total).Error
		if err != nil {
			return fmt.Errorf("failed to sum window buckets: %w", err)
		}
		if total >= int64(maxRequests) {
			return nil
		}

		row := &models.RateLimitWindowModel{
			IdentifierHash: identifierHash,
			IdentifierType: string(identifierType),
			Action:         string(action),
			WindowStart:    windowStart,
			RequestCount:   1,
			ExpiresAt:      now.Add(abuse.WindowTTL),
		}
		err = tx.
			Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "identifier_hash"},
					{Name: "identifier_type"},
					{Name: "action"},
					{Name: "window_start"},
				},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"request_count": gorm.Expr("rate_limit_windows.request_count + 1"),
				}),
			}).
			Create(row).Error
		if err != nil {
			return fmt.Errorf("failed to increment window bucket: %w", err)
		}

		allowed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return allowed, nil
}

func (r *RateLimitRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.DB.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.RateLimitWindowModel{})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired windows: %w", result.Error)
	}
	return result.RowsAffected, nil
}
