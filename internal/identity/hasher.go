package identity

import (
	"crypto/sha256"
	"encoding/hex"

	apperrors "vehicle-alert/pkg/errors"
)

// Hasher produces one-way, peppered digests of raw identifiers. The raw
// value is never persisted; the digest is stable for lookups but cannot
// be reversed without the pepper.
type Hasher struct {
	devicePepper  string
	vehiclePepper string
}

// NewHasher rejects peppers shorter than minPepperLength; hashing with a
// weak pepper must never happen, so this is a startup-time failure.
func NewHasher(devicePepper, vehiclePepper string, minPepperLength int) (*Hasher, error) {
	if len(devicePepper) < minPepperLength || len(vehiclePepper) < minPepperLength {
		return nil, apperrors.Configuration("hash pepper below minimum length", apperrors.ErrWeakPepper)
	}
	return &Hasher{
		devicePepper:  devicePepper,
		vehiclePepper: vehiclePepper,
	}, nil
}

// HashDeviceID digests a client-generated device identifier.
func (h *Hasher) HashDeviceID(raw string) string {
	return digest(h.devicePepper, raw)
}

// HashVehicleID digests a normalized license plate.
func (h *Hasher) HashVehicleID(normalizedPlate string) string {
	return digest(h.vehiclePepper, normalizedPlate)
}

func digest(pepper, value string) string {
	sum := sha256.Sum256([]byte(pepper + value))
	return hex.EncodeToString(sum[:])
}
