package models

import (
	"time"

	"github.com/google/uuid"
)

// AlertModel stores one community alert. Rows are hard-deleted by the
// retention sweep once expires_at passes, regardless of status.
type AlertModel struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SenderDeviceID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	SenderDevice       *DeviceModel `gorm:"foreignKey:SenderDeviceID;constraint:OnDelete:CASCADE"`
	VehicleID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	Vehicle            *VehicleModel `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE"`
	AlertType          string     `gorm:"type:varchar(30);not null"`
	Status             string     `gorm:"type:varchar(20);not null;default:'active'"`
	Latitude           float64    `gorm:"type:double precision;not null"`
	Longitude          float64    `gorm:"type:double precision;not null"`
	CreatedAt          time.Time  `gorm:"not null"`
	ExpiresAt          time.Time  `gorm:"not null;index"`
	NotificationSentAt *time.Time `gorm:"type:timestamptz"`
	AcknowledgedAt     *time.Time `gorm:"type:timestamptz"`
	ResolvedAt         *time.Time `gorm:"type:timestamptz"`
	IsFlagged          bool       `gorm:"not null;default:false"`
	FlaggedAt          *time.Time `gorm:"type:timestamptz"`
	FlagReason         *string    `gorm:"type:varchar(200)"`
}

func (AlertModel) TableName() string {
	return "alerts"
}
