package models

import (
	"time"

	"github.com/google/uuid"
)

// VehicleModel stores a registered vehicle. The plate itself never
// reaches this table; the hash column is unique so one real-world
// vehicle maps to exactly one registration.
type VehicleModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	DeviceID           uuid.UUID `gorm:"type:uuid;not null;index"`
	Device             *DeviceModel `gorm:"foreignKey:DeviceID;constraint:OnDelete:CASCADE"`
	VehicleIDHash      string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	QRCodeToken        string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	Nickname           *string   `gorm:"type:varchar(50)"`
	IsActive           bool      `gorm:"not null;default:true"`
	AlertCountReceived int       `gorm:"type:integer;not null;default:0"`
	FalseAlertCount    int       `gorm:"type:integer;not null;default:0"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

func (VehicleModel) TableName() string {
	return "vehicles"
}
