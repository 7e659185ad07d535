package abuse

import "time"

// Metric TTLs and window TTLs are fixed contract values.
const (
	MetricTTL = 7 * 24 * time.Hour
	WindowTTL = time.Hour
)

// MetricType enumerates the anonymous behavioral signals. Counters are
// hour-bucketed aggregates; there is deliberately no per-event row, so
// an individual's timeline can never be reconstructed.
type MetricType string

const (
	MetricAlertSent    MetricType = "alert_sent"
	MetricAlertFlagged MetricType = "alert_flagged"
	MetricRateLimitHit MetricType = "rate_limit_hit"
	MetricAuthFailure  MetricType = "auth_failure"
	MetricQRScan       MetricType = "qr_scan"
	// MetricSuspiciousPattern is reserved for an offline scoring job
	// that correlates the other counters; nothing emits it yet.
	MetricSuspiciousPattern MetricType = "suspicious_pattern"
)

// Metric is an hour-bucketed counter keyed by the anonymous device hash.
type Metric struct {
	DeviceIDHash string
	MetricType   MetricType
	BucketHour   time.Time
	Count        int64
	ExpiresAt    time.Time
}

// IdentifierType distinguishes what a rate-limit identifier hash refers to.
type IdentifierType string

const (
	IdentifierDevice IdentifierType = "device"
	// IdentifierIP is reserved for persisted per-IP windows; the HTTP
	// layer currently limits IPs in process instead.
	IdentifierIP IdentifierType = "ip"
)

// Action names the operations that carry their own rate budget.
type Action string

const (
	ActionDeviceRegister  Action = "device_register"
	ActionVehicleRegister Action = "vehicle_register"
	ActionAlertCreate     Action = "alert_create"
	ActionGeneral         Action = "general"
)

// Window is a minute-truncated rate-limit bucket.
type Window struct {
	IdentifierHash string
	IdentifierType IdentifierType
	Action         Action
	WindowStart    time.Time
	RequestCount   int64
	ExpiresAt      time.Time
}

// BucketHour truncates t to the hour in UTC.
func BucketHour(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}

// BucketMinute truncates t to the minute in UTC.
func BucketMinute(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}
