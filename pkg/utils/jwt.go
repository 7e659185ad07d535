package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DeviceClaims is the payload of a device session token. The subject is
// the opaque device ID, never the device identifier hash.
type DeviceClaims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// GenerateDeviceToken issues a signed session token bound to a device.
func GenerateDeviceToken(deviceID uuid.UUID, secret string, expiryHours int) (string, error) {
	now := time.Now()
	claims := DeviceClaims{
		TokenType: "device",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   deviceID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expiryHours) * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign device token: %w", err)
	}
	return signed, nil
}

// ValidateDeviceToken verifies signature and expiry and returns the
// device ID carried in the subject.
func ValidateDeviceToken(tokenString, secret string) (uuid.UUID, error) {
	claims := &DeviceClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, errors.New("invalid or expired token")
	}
	if claims.TokenType != "device" {
		return uuid.Nil, errors.New("not a device token")
	}

	deviceID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed token subject: %w", err)
	}
	return deviceID, nil
}
