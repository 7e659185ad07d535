package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"vehicle-alert/internal/logger"
)

// ExpoClient delivers notifications through the Expo push HTTP API with
// a bounded request timeout. It never holds a database transaction open;
// callers send after commit.
type ExpoClient struct {
	endpoint string
	http     *http.Client
}

func NewExpoClient(endpoint string, timeout time.Duration) (*ExpoClient, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("push endpoint is required")
	}
	return &ExpoClient{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type expoMessage struct {
	To       string            `json:"to"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
	Sound    string            `json:"sound"`
	Priority string            `json:"priority"`
}

type expoTicket struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type expoResponse struct {
	Data []expoTicket `json:"data"`
}

func (c *ExpoClient) Send(ctx context.Context, token, platform string, payload Payload) bool {
	body, err := json.Marshal([]expoMessage{{
		To:       token,
		Title:    payload.Title,
		Body:     payload.Body,
		Data:     payload.Data,
		Sound:    "default",
		Priority: "high",
	}})
	if err != nil {
		logger.Error("Failed to encode push message", zap.Error(err))
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		logger.Error("Failed to build push request", zap.Error(err))
		return false
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("Push delivery failed",
			zap.String("platform", platform),
			zap.Error(err),
		)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("Push endpoint returned non-OK status",
			zap.Int("status", resp.StatusCode),
		)
		return false
	}

	var parsed expoResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		logger.Warn("Failed to decode push response", zap.Error(err))
		return false
	}
	for _, ticket := range parsed.Data {
		if ticket.Status == "error" {
			logger.Warn("Push ticket rejected",
				zap.String("message", ticket.Message),
			)
			return false
		}
	}
	return true
}
