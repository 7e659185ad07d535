package registry

import (
	"time"

	"github.com/google/uuid"

	domainDevice "vehicle-alert/internal/domain/device"
	domainVehicle "vehicle-alert/internal/domain/vehicle"
)

type RegisterDeviceRequest struct {
	DeviceID  string   `json:"device_id" validate:"required,min=16,max=128"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
}

type RegisterDeviceResponse struct {
	AccessToken string    `json:"access_token"`
	DeviceID    uuid.UUID `json:"device_id"`
}

type DeviceResponse struct {
	ID            uuid.UUID `json:"id"`
	AlertRadiusKm float64   `json:"alert_radius_km"`
	IsActive      bool      `json:"is_active"`
	TrustScore    int       `json:"trust_score"`
	CreatedAt     time.Time `json:"created_at"`
	LastSeenAt    time.Time `json:"last_seen_at"`
}

type UpdateDeviceRequest struct {
	Latitude      *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude     *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
	AlertRadiusKm *float64 `json:"alert_radius_km" validate:"omitempty,min=0.5,max=10"`
}

type RegisterVehicleRequest struct {
	Plate    string  `json:"plate" validate:"required,min=2,max=20"`
	Nickname *string `json:"nickname" validate:"omitempty,max=50"`
}

type UpdateVehicleRequest struct {
	Nickname *string `json:"nickname" validate:"omitempty,max=50"`
}

type VehicleResponse struct {
	ID                 uuid.UUID `json:"id"`
	Nickname           *string   `json:"nickname,omitempty"`
	Country            string    `json:"country,omitempty"`
	QRCodeToken        string    `json:"qr_code_token"`
	IsActive           bool      `json:"is_active"`
	AlertCountReceived int       `json:"alert_count_received"`
	CreatedAt          time.Time `json:"created_at"`
}

type VehicleQRResponse struct {
	QRURL string `json:"qr_url"`
	Token string `json:"token"`
}

// ToDeviceResponse deliberately omits the identifier hash and the
// anonymous token; neither ever leaves the backend.
func ToDeviceResponse(d *domainDevice.Device) *DeviceResponse {
	return &DeviceResponse{
		ID:            d.ID,
		AlertRadiusKm: d.AlertRadiusKm,
		IsActive:      d.IsActive,
		TrustScore:    d.TrustScore,
		CreatedAt:     d.CreatedAt,
		LastSeenAt:    d.LastSeenAt,
	}
}

func ToVehicleResponse(v *domainVehicle.Vehicle, country string) *VehicleResponse {
	return &VehicleResponse{
		ID:                 v.ID,
		Nickname:           v.Nickname,
		Country:            country,
		QRCodeToken:        v.QRCodeToken,
		IsActive:           v.IsActive,
		AlertCountReceived: v.AlertCountReceived,
		CreatedAt:          v.CreatedAt,
	}
}
