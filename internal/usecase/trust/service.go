package trust

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vehicle-alert/internal/domain/abuse"
	domainDevice "vehicle-alert/internal/domain/device"
	"vehicle-alert/internal/logger"
	apperrors "vehicle-alert/pkg/errors"
)

// Trust deltas are policy, not structure: tune freely. The clamping,
// the ban threshold and the ban duration are fixed contract values in
// the device package.
const (
	DeltaAlertFlagged  = -15
	DeltaRateLimitHit  = -5
	DeltaAlertResolved = +2
)

// Service aggregates anonymous behavioral signals into a bounded trust
// score and derives ban decisions from it.
type Service struct {
	devices domainDevice.Repository
	metrics abuse.MetricRepository
}

func NewService(devices domainDevice.Repository, metrics abuse.MetricRepository) *Service {
	return &Service{
		devices: devices,
		metrics: metrics,
	}
}

// RecordMetric upsert-increments the current hour's bucket for the
// device hash. Failures are logged, never propagated: a metrics hiccup
// must not fail the operation that emitted the signal.
func (s *Service) RecordMetric(ctx context.Context, deviceIDHash string, metricType abuse.MetricType) {
	if err := s.metrics.Increment(ctx, deviceIDHash, metricType, time.Now()); err != nil {
		logger.Error("Failed to record abuse metric",
			zap.String("metric_type", string(metricType)),
			zap.Error(err),
		)
	}
}

// RecordMetricForDevice resolves the device's anonymous hash before
// recording, for callers that only hold the device id.
func (s *Service) RecordMetricForDevice(ctx context.Context, deviceID uuid.UUID, metricType abuse.MetricType) {
	dev, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		logger.Error("Failed to resolve device for abuse metric",
			zap.String("metric_type", string(metricType)),
			zap.Error(err),
		)
		return
	}
	s.RecordMetric(ctx, dev.DeviceIDHash, metricType)
}

// AdjustTrust applies delta with storage-side clamping to [0,100] and
// auto-bans the device for seven days when the result drops below the
// threshold.
func (s *Service) AdjustTrust(ctx context.Context, deviceID uuid.UUID, delta int) (int, error) {
	newScore, err := s.devices.AdjustTrust(ctx, deviceID, delta)
	if err != nil {
		return 0, fmt.Errorf("failed to adjust trust: %w", err)
	}

	if newScore < domainDevice.BanThreshold {
		until := time.Now().Add(domainDevice.BanDuration)
		if err := s.devices.Ban(ctx, deviceID, domainDevice.BanReasonLowTrust, until); err != nil {
			return newScore, fmt.Errorf("failed to ban device: %w", err)
		}
		logger.Warn("Device auto-banned for low trust score",
			zap.String("device_id", deviceID.String()),
			zap.Int("trust_score", newScore),
			zap.Time("ban_expires_at", until),
		)
	}
	return newScore, nil
}

// EnsureNotBanned is the soft ban gate callers check before honoring
// any write from a device. A banned device knocking on the gate is
// itself an abuse signal.
func (s *Service) EnsureNotBanned(ctx context.Context, deviceID uuid.UUID) (*domainDevice.Device, error) {
	dev, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return nil, apperrors.NotFound("device not found")
	}
	if dev.Banned(time.Now()) {
		s.RecordMetric(ctx, dev.DeviceIDHash, abuse.MetricAuthFailure)
		return nil, apperrors.Authorization("device is banned")
	}
	return dev, nil
}
