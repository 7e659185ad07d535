package models

import "time"

// AbuseMetricModel is an hour-bucketed counter. The composite primary
// key gives upsert-increment a conflict target; there is no per-event
// row by design.
type AbuseMetricModel struct {
	DeviceIDHash string    `gorm:"type:varchar(64);primaryKey"`
	MetricType   string    `gorm:"type:varchar(30);primaryKey"`
	BucketHour   time.Time `gorm:"type:timestamptz;primaryKey"`
	Count        int64     `gorm:"type:bigint;not null;default:0"`
	ExpiresAt    time.Time `gorm:"not null;index"`
}

func (AbuseMetricModel) TableName() string {
	return "abuse_metrics"
}

// RateLimitWindowModel is a minute-truncated sliding-window bucket.
type RateLimitWindowModel struct {
	IdentifierHash string    `gorm:"type:varchar(64);primaryKey"`
	IdentifierType string    `gorm:"type:varchar(10);primaryKey"`
	Action         string    `gorm:"type:varchar(30);primaryKey"`
	WindowStart    time.Time `gorm:"type:timestamptz;primaryKey"`
	RequestCount   int64     `gorm:"type:bigint;not null;default:0"`
	ExpiresAt      time.Time `gorm:"not null;index"`
}

func (RateLimitWindowModel) TableName() string {
	return "rate_limit_windows"
}
