package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateSecureToken returns a URL-safe random token with nBytes of
// entropy. Used for anonymous session linkage and vehicle QR tokens;
// QR tokens are deliberately independent of the vehicle hash so a token
// can never be brute-forced back to a plate.
func GenerateSecureToken(nBytes int) (string, error) {
	buf := make([]byte, nBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
