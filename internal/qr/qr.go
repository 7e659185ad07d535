package qr

import (
	"fmt"
	"net/url"
	"strings"

	apperrors "vehicle-alert/pkg/errors"
)

// MinTokenLength guards against short strings being mistaken for a raw
// QR token.
const MinTokenLength = 20

// ExtractToken pulls the vehicle token out of a scanned QR payload. Two
// shapes are accepted: a URL whose last path segment is the token
// (".../vehicle/{token}") and a bare token of at least MinTokenLength
// characters with no path separators.
func ExtractToken(payload string) (string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", apperrors.FieldValidation("qr_payload", "QR payload is empty")
	}

	if strings.Contains(payload, "://") {
		parsed, err := url.Parse(payload)
		if err != nil {
			return "", apperrors.FieldValidation("qr_payload", "QR payload is not a valid URL")
		}
		segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
		token := segments[len(segments)-1]
		if len(token) < MinTokenLength {
			return "", apperrors.FieldValidation("qr_payload", "QR URL does not contain a vehicle token")
		}
		return token, nil
	}

	if strings.ContainsAny(payload, "/\\") || len(payload) < MinTokenLength {
		return "", apperrors.FieldValidation("qr_payload", "QR payload is not a recognized vehicle token")
	}
	return payload, nil
}

// BuildURL renders the scannable URL for a vehicle token. Image rendering
// is the client's job.
func BuildURL(baseURL, token string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(baseURL, "/"), token)
}
