package abuse

import (
	"context"
	"time"
)

// MetricRepository stores hour-bucketed abuse counters with atomic
// add-or-create semantics.
type MetricRepository interface {
	// Increment upserts the (deviceIDHash, metricType, bucketHour) row,
	// adding one to its count atomically.
	Increment(ctx context.Context, deviceIDHash string, metricType MetricType, at time.Time) error
	// SumSince totals a device's counters of one type across buckets at
	// or after since.
	SumSince(ctx context.Context, deviceIDHash string, metricType MetricType, since time.Time) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// WindowRepository stores minute-bucketed rate-limit counters.
type WindowRepository interface {
	// CheckAndIncrement sums requestCount across buckets within
	// [windowStart(now) - window, now] for the identifier+action and,
	// only if the sum is below maxRequests, increments the current
	// minute's bucket. The check and the increment are a single atomic
	// operation: two concurrent callers must never both pass when one
	// slot remains. Returns true when the request is admitted.
	CheckAndIncrement(ctx context.Context, identifierHash string, identifierType IdentifierType, action Action, maxRequests int, window time.Duration, now time.Time) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
