package device

import (
	"time"

	"github.com/google/uuid"
)

// Retention and trust contract values.
const (
	RetentionDays     = 90
	DefaultTrustScore = 100
	MinTrustScore     = 0
	MaxTrustScore     = 100
	BanThreshold      = 10
	BanDuration       = 7 * 24 * time.Hour

	MinAlertRadiusKm     = 0.5
	MaxAlertRadiusKm     = 10.0
	DefaultAlertRadiusKm = 2.0
)

// BanReasonLowTrust marks devices auto-banned by the trust engine.
const BanReasonLowTrust = "low_trust_score"

// Device is an anonymous actor. Only the one-way hash of the
// client-generated identifier is stored; the raw identifier never
// reaches persistence.
type Device struct {
	ID             uuid.UUID
	DeviceIDHash   string
	AnonymousToken string
	LastLatitude   *float64
	LastLongitude  *float64
	AlertRadiusKm  float64
	IsActive       bool
	IsBanned       bool
	BanReason      *string
	BanExpiresAt   *time.Time
	TrustScore     int
	CreatedAt      time.Time
	LastSeenAt     time.Time
	DeleteAfter    time.Time
}

// Banned reports whether the device is currently under an active ban.
// Expired bans are treated as lifted even before the flag is cleared.
func (d *Device) Banned(now time.Time) bool {
	if !d.IsBanned {
		return false
	}
	return d.BanExpiresAt == nil || d.BanExpiresAt.After(now)
}

// ClampRadius bounds an alert radius to the supported range.
func ClampRadius(radiusKm float64) float64 {
	if radiusKm < MinAlertRadiusKm {
		return MinAlertRadiusKm
	}
	if radiusKm > MaxAlertRadiusKm {
		return MaxAlertRadiusKm
	}
	return radiusKm
}
