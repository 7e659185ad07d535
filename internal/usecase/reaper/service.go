package reaper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"vehicle-alert/internal/domain/abuse"
	domainAlert "vehicle-alert/internal/domain/alert"
	domainDevice "vehicle-alert/internal/domain/device"
	"vehicle-alert/internal/logger"
)

// Service hard-deletes data that has outlived its retention horizon:
// alerts after 30 days, inactive devices after 90, abuse metrics after
// 7, rate-limit windows after one hour. Deletion is the only expiry
// mechanism; nothing is archived.
type Service struct {
	alerts  domainAlert.Repository
	devices domainDevice.Repository
	metrics abuse.MetricRepository
	windows abuse.WindowRepository
}

func NewService(
	alerts domainAlert.Repository,
	devices domainDevice.Repository,
	metrics abuse.MetricRepository,
	windows abuse.WindowRepository,
) *Service {
	return &Service{
		alerts:  alerts,
		devices: devices,
		metrics: metrics,
		windows: windows,
	}
}

// SweepResult counts rows removed by one pass.
type SweepResult struct {
	Alerts  int64
	Devices int64
	Metrics int64
	Windows int64
}

// Sweep runs all four retention deletions once. A failing deletion is
// logged and skipped; one stuck table must not block the others.
func (s *Service) Sweep(ctx context.Context) SweepResult {
	now := time.Now()
	var res SweepResult
	var err error

	if res.Alerts, err = s.alerts.DeleteExpired(ctx, now); err != nil {
		logger.Error("Failed to delete expired alerts", zap.Error(err))
	}
	if res.Devices, err = s.devices.DeleteExpired(ctx, now); err != nil {
		logger.Error("Failed to delete expired devices", zap.Error(err))
	}
	if res.Metrics, err = s.metrics.DeleteExpired(ctx, now); err != nil {
		logger.Error("Failed to delete expired abuse metrics", zap.Error(err))
	}
	if res.Windows, err = s.windows.DeleteExpired(ctx, now); err != nil {
		logger.Error("Failed to delete expired rate-limit windows", zap.Error(err))
	}

	if total := res.Alerts + res.Devices + res.Metrics + res.Windows; total > 0 {
		logger.Info("Retention sweep completed",
			zap.Int64("alerts", res.Alerts),
			zap.Int64("devices", res.Devices),
			zap.Int64("metrics", res.Metrics),
			zap.Int64("windows", res.Windows),
		)
	}
	return res
}

// Start runs sweeps on the given interval until the context is
// cancelled. One sweep runs immediately on startup.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Retention sweeper started",
		zap.Duration("interval", interval),
	)

	s.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Retention sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}
