package pushsvc

import (
	"time"

	"github.com/google/uuid"

	domainPush "vehicle-alert/internal/domain/push"
)

type RegisterTokenRequest struct {
	Token    string `json:"token" validate:"required,min=10,max=512"`
	Platform string `json:"platform" validate:"required,push_platform"`
}

type TokenResponse struct {
	ID        uuid.UUID `json:"id"`
	Platform  string    `json:"platform"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func ToTokenResponse(t *domainPush.Token) *TokenResponse {
	return &TokenResponse{
		ID:        t.ID,
		Platform:  string(t.Platform),
		IsActive:  t.IsActive,
		CreatedAt: t.CreatedAt,
	}
}
