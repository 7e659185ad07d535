package models

import (
	"time"

	"github.com/google/uuid"
)

// DeviceModel is the database row for anonymous devices. Only the
// peppered hash of the client identifier is stored.
type DeviceModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	DeviceIDHash   string     `gorm:"type:varchar(64);not null;uniqueIndex"`
	AnonymousToken string     `gorm:"type:varchar(64);not null;uniqueIndex"`
	LastLatitude   *float64   `gorm:"type:double precision"`
	LastLongitude  *float64   `gorm:"type:double precision"`
	AlertRadiusKm  float64    `gorm:"type:double precision;not null;default:2.0"`
	IsActive       bool       `gorm:"not null;default:true"`
	IsBanned       bool       `gorm:"not null;default:false"`
	BanReason      *string    `gorm:"type:varchar(100)"`
	BanExpiresAt   *time.Time `gorm:"type:timestamptz"`
	TrustScore     int        `gorm:"type:integer;not null;default:100"`
	CreatedAt      time.Time  `gorm:"not null"`
	LastSeenAt     time.Time  `gorm:"not null"`
	DeleteAfter    time.Time  `gorm:"not null;index"`
}

func (DeviceModel) TableName() string {
	return "devices"
}
