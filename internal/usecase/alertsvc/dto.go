package alertsvc

import (
	"time"

	"github.com/google/uuid"

	domainAlert "vehicle-alert/internal/domain/alert"
)

type CreateAlertRequest struct {
	QRToken   string  `json:"qr_token" validate:"required,min=20,max=128"`
	AlertType string  `json:"alert_type" validate:"required,max=32"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type FlagAlertRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=200"`
}

type AlertResponse struct {
	ID                 uuid.UUID  `json:"id"`
	VehicleID          uuid.UUID  `json:"vehicle_id"`
	AlertType          string     `json:"alert_type"`
	Status             string     `json:"status"`
	Latitude           float64    `json:"latitude"`
	Longitude          float64    `json:"longitude"`
	CreatedAt          time.Time  `json:"created_at"`
	ExpiresAt          time.Time  `json:"expires_at"`
	NotificationSentAt *time.Time `json:"notification_sent_at,omitempty"`
	AcknowledgedAt     *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt         *time.Time `json:"resolved_at,omitempty"`
}

type AlertListResponse struct {
	Alerts  []*AlertResponse `json:"alerts"`
	Total   int64            `json:"total"`
	HasMore bool             `json:"has_more"`
}

// ToAlertResponse omits the sender's identity; recipients never learn
// who scanned their vehicle.
func ToAlertResponse(a *domainAlert.Alert) *AlertResponse {
	return &AlertResponse{
		ID:                 a.ID,
		VehicleID:          a.VehicleID,
		AlertType:          string(a.AlertType),
		Status:             string(a.Status),
		Latitude:           a.Latitude,
		Longitude:          a.Longitude,
		CreatedAt:          a.CreatedAt,
		ExpiresAt:          a.ExpiresAt,
		NotificationSentAt: a.NotificationSentAt,
		AcknowledgedAt:     a.AcknowledgedAt,
		ResolvedAt:         a.ResolvedAt,
	}
}
