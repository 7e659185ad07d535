package alert

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TTLDays is the fixed alert lifetime. Expired alerts are hard-deleted
// by the retention sweep regardless of status.
const TTLDays = 30

// Type is the closed alert vocabulary. Free text is rejected by design,
// which removes the moderation surface entirely.
type Type string

const (
	TypeLightsOn       Type = "lights_on"
	TypeWindowOpen     Type = "window_open"
	TypeAlarmTriggered Type = "alarm_triggered"
	TypeParkingIssue   Type = "parking_issue"
	TypeDamageSpotted  Type = "damage_spotted"
	TypeTowingRisk     Type = "towing_risk"
	TypeObstruction    Type = "obstruction"
	TypeGeneral        Type = "general"
)

var knownTypes = map[Type]struct{}{
	TypeLightsOn:       {},
	TypeWindowOpen:     {},
	TypeAlarmTriggered: {},
	TypeParkingIssue:   {},
	TypeDamageSpotted:  {},
	TypeTowingRisk:     {},
	TypeObstruction:    {},
	TypeGeneral:        {},
}

// ParseType is the normalization boundary for alert types arriving from
// clients. Any casing of a known type maps to its canonical lowercase
// form; anything else is rejected rather than coerced to general, since
// silent defaulting would mask client bugs.
func ParseType(raw string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := knownTypes[t]
	return t, ok
}

type Status string

const (
	StatusActive       Status = "active"
	StatusAcknowledged Status = "acknowledged"
	StatusResolved     Status = "resolved"
	StatusExpired      Status = "expired"
	StatusFlagged      Status = "flagged"
)

// CanTransition encodes the alert state machine:
// active -> acknowledged -> resolved on the normal path,
// active -> expired and active -> flagged as terminal branches.
// Nothing leaves expired.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusActive:
		return to == StatusAcknowledged || to == StatusResolved || to == StatusExpired || to == StatusFlagged
	case StatusAcknowledged:
		return to == StatusResolved
	default:
		return false
	}
}

// Alert is an ephemeral event directed at a vehicle.
type Alert struct {
	ID                 uuid.UUID
	SenderDeviceID     uuid.UUID
	VehicleID          uuid.UUID
	AlertType          Type
	Status             Status
	Latitude           float64
	Longitude          float64
	CreatedAt          time.Time
	ExpiresAt          time.Time
	NotificationSentAt *time.Time
	AcknowledgedAt     *time.Time
	ResolvedAt         *time.Time
	IsFlagged          bool
	FlaggedAt          *time.Time
	FlagReason         *string
}

func (a *Alert) Expired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}
