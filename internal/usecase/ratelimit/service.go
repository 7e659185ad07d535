package ratelimit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"vehicle-alert/internal/domain/abuse"
	"vehicle-alert/internal/logger"
)

// Service enforces per-(identity, action) sliding-window limits backed
// by minute buckets in the store. The store is the sole synchronization
// point; this service holds no state.
type Service struct {
	windows abuse.WindowRepository
	metrics abuse.MetricRepository
}

func NewService(windows abuse.WindowRepository, metrics abuse.MetricRepository) *Service {
	return &Service{
		windows: windows,
		metrics: metrics,
	}
}

// CheckAndRecord admits or rejects one request. An admitted request
// consumes one slot of the current minute bucket; a rejected request
// consumes nothing and is recorded as a rate_limit_hit abuse signal for
// device identifiers.
func (s *Service) CheckAndRecord(ctx context.Context, identifierHash string, identifierType abuse.IdentifierType, action abuse.Action, maxRequests, windowMinutes int) (bool, error) {
	window := time.Duration(windowMinutes) * time.Minute
	allowed, err := s.windows.CheckAndIncrement(ctx, identifierHash, identifierType, action, maxRequests, window, time.Now())
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	if !allowed {
		logger.Warn("Rate limit exceeded",
			zap.String("identifier_type", string(identifierType)),
			zap.String("action", string(action)),
			zap.Int("max_requests", maxRequests),
			zap.Int("window_minutes", windowMinutes),
		)
		if identifierType == abuse.IdentifierDevice {
			if err := s.metrics.Increment(ctx, identifierHash, abuse.MetricRateLimitHit, time.Now()); err != nil {
				logger.Error("Failed to record rate_limit_hit metric", zap.Error(err))
			}
		}
	}
	return allowed, nil
}
