package vehicle

import (
	"time"

	"github.com/google/uuid"
)

// QRTokenBytes is the entropy of a vehicle QR token. The token is random
// and independent of the vehicle hash so it cannot be brute-forced back
// to a plate.
const QRTokenBytes = 32

// Vehicle is owned by exactly one device. The license plate itself is
// never stored, only its peppered one-way hash.
type Vehicle struct {
	ID                 uuid.UUID
	DeviceID           uuid.UUID
	VehicleIDHash      string
	QRCodeToken        string
	Nickname           *string
	IsActive           bool
	AlertCountReceived int
	FalseAlertCount    int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
