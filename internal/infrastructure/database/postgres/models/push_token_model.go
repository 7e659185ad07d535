package models

import (
	"time"

	"github.com/google/uuid"
)

type PushTokenModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	DeviceID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Device        *DeviceModel `gorm:"foreignKey:DeviceID;constraint:OnDelete:CASCADE"`
	Token         string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	Platform      string     `gorm:"type:varchar(20);not null"`
	IsActive      bool       `gorm:"not null;default:true"`
	LastSuccessAt *time.Time `gorm:"type:timestamptz"`
	FailureCount  int        `gorm:"type:integer;not null;default:0"`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

func (PushTokenModel) TableName() string {
	return "push_tokens"
}
