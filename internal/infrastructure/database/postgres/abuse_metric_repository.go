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

type AbuseMetricRepository struct {
	db *DB
}

func NewAbuseMetricRepository(db *DB) abuse.MetricRepository {
	return &AbuseMetricRepository{db: db}
}

// Increment is an atomic add-or-create on the hour bucket. Aggregation
// is mandatory here: no per-event row is ever written.
func (r *AbuseMetricRepository) Increment(ctx context.Context, deviceIDHash string, metricType abuse.MetricType, at time.Time) error {
	bucket := abuse.BucketHour(at)
	row := &models.AbuseMetricModel{
		DeviceIDHash: deviceIDHash,
		MetricType:   string(metricType),
		BucketHour:   bucket,
		Count:        1,
		ExpiresAt:    bucket.Add(abuse.MetricTTL),
	}

	err := r.db.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "device_id_hash"},
				{Name: "metric_type"},
				{Name: "bucket_hour"},
			},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"count": gorm.Expr("abuse_metrics.count + 1"),
			}),
		}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to increment abuse metric: %w", err)
	}
	return nil
}

func (r *AbuseMetricRepository) SumSince(ctx context.Context, deviceIDHash string, metricType abuse.MetricType, since time.Time) (int64, error) {
	var total int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.AbuseMetricModel{}).
		Where("device_id_hash = ? AND metric_type = ? AND bucket_hour >= ?", deviceIDHash, string(metricType), since).
		Select("COALESCE(SUM(count), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum abuse metrics: %w", err)
	}
	return total, nil
}

func (r *AbuseMetricRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.DB.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.AbuseMetricModel{})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired abuse metrics: %w", result.Error)
	}
	return result.RowsAffected, nil
}
