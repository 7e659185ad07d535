package alertsvc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vehicle-alert/internal/config"
	"vehicle-alert/internal/domain/abuse"
	domainAlert "vehicle-alert/internal/domain/alert"
	domainVehicle "vehicle-alert/internal/domain/vehicle"
	"vehicle-alert/internal/logger"
	"vehicle-alert/internal/qr"
	"vehicle-alert/internal/usecase/pushsvc"
	"vehicle-alert/internal/usecase/ratelimit"
	"vehicle-alert/internal/usecase/trust"
	apperrors "vehicle-alert/pkg/errors"
	"vehicle-alert/pkg/utils"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Service implements the alert lifecycle. Senders are anonymous to
// recipients; a sender learns nothing about the owner beyond the fact
// that the QR token resolved.
type Service struct {
	alerts   domainAlert.Repository
	vehicles domainVehicle.Repository
	limiter  *ratelimit.Service
	trust    *trust.Service
	push     *pushsvc.Service
	cfg      *config.Config
}

func NewService(
	alerts domainAlert.Repository,
	vehicles domainVehicle.Repository,
	limiter *ratelimit.Service,
	trustSvc *trust.Service,
	pushSvc *pushsvc.Service,
	cfg *config.Config,
) *Service {
	return &Service{
		alerts:   alerts,
		vehicles: vehicles,
		limiter:  limiter,
		trust:    trustSvc,
		push:     pushSvc,
		cfg:      cfg,
	}
}

// CreateAlert runs the scan flow. Check order matters: an unresolvable
// token and a malformed type fail before any rate-limit budget is
// consumed, so probing invalid tokens cannot starve a sender's real
// alerts, while the limiter still sees every well-formed attempt.
func (s *Service) CreateAlert(ctx context.Context, senderDeviceID uuid.UUID, req *CreateAlertRequest) (*AlertResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "invalid alert payload", err)
	}

	qrToken, err := qr.ExtractToken(req.QRToken)
	if err != nil {
		return nil, err
	}

	v, err := s.vehicles.GetByQRToken(ctx, qrToken)
	if err != nil {
		return nil, apperrors.NotFound("vehicle not found")
	}

	alertType, ok := domainAlert.ParseType(req.AlertType)
	if !ok {
		return nil, apperrors.FieldValidation("alert_type", "unknown alert type")
	}

	if v.DeviceID == senderDeviceID {
		return nil, apperrors.Validation("cannot send an alert to your own vehicle")
	}

	sender, err := s.trust.EnsureNotBanned(ctx, senderDeviceID)
	if err != nil {
		return nil, err
	}
	s.trust.RecordMetric(ctx, sender.DeviceIDHash, abuse.MetricQRScan)

	allowed, err := s.limiter.CheckAndRecord(ctx, sender.DeviceIDHash, abuse.IdentifierDevice, abuse.ActionAlertCreate,
		s.cfg.RateLimit.AlertsPerHour, 60)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.RateLimit("alert limit reached, try again later")
	}

	if req.Latitude < -90 || req.Latitude > 90 {
		return nil, apperrors.FieldValidation("latitude", "latitude must be between -90 and 90")
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		return nil, apperrors.FieldValidation("longitude", "longitude must be between -180 and 180")
	}

	now := time.Now()
	a := &domainAlert.Alert{
		SenderDeviceID: senderDeviceID,
		VehicleID:      v.ID,
		AlertType:      alertType,
		Status:         domainAlert.StatusActive,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		CreatedAt:      now,
		ExpiresAt:      now.Add(domainAlert.TTLDays * 24 * time.Hour),
	}
	if err := s.alerts.Create(ctx, a); err != nil {
		return nil, err
	}

	s.trust.RecordMetric(ctx, sender.DeviceIDHash, abuse.MetricAlertSent)

	// Delivery is best effort and must not fail the created alert.
	delivered := s.push.NotifyAlert(ctx, v.DeviceID, a)

	logger.Info("Alert created",
		zap.String("alert_id", a.ID.String()),
		zap.String("vehicle_id", v.ID.String()),
		zap.String("alert_type", string(alertType)),
		zap.Int("deliveries", delivered),
		zap.String("event", "alert_created"),
	)

	return ToAlertResponse(a), nil
}

// ListMyAlerts returns non-expired alerts for all vehicles the device
// owns, newest first.
func (s *Service) ListMyAlerts(ctx context.Context, deviceID uuid.UUID, limit, offset int) (*AlertListResponse, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	vehicles, err := s.vehicles.ListByDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if len(vehicles) == 0 {
		return &AlertListResponse{Alerts: []*AlertResponse{}}, nil
	}

	ids := make([]uuid.UUID, 0, len(vehicles))
	for _, v := range vehicles {
		ids = append(ids, v.ID)
	}

	alerts, total, err := s.alerts.ListForVehicles(ctx, ids, time.Now(), limit+1, offset)
	if err != nil {
		return nil, err
	}

	hasMore := len(alerts) > limit
	if hasMore {
		alerts = alerts[:limit]
	}

	out := make([]*AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, ToAlertResponse(a))
	}
	return &AlertListResponse{Alerts: out, Total: total, HasMore: hasMore}, nil
}

// GetAlert is visible to the vehicle owner and to the sender.
func (s *Service) GetAlert(ctx context.Context, deviceID, alertID uuid.UUID) (*AlertResponse, error) {
	a, _, err := s.loadVisible(ctx, deviceID, alertID)
	if err != nil {
		return nil, err
	}
	return ToAlertResponse(a), nil
}

// Acknowledge moves an active alert to acknowledged. Owner only.
func (s *Service) Acknowledge(ctx context.Context, deviceID, alertID uuid.UUID) (*AlertResponse, error) {
	return s.transition(ctx, deviceID, alertID, domainAlert.StatusAcknowledged)
}

// Resolve closes an alert from active or acknowledged and rewards the
// sender with a small trust credit. Owner only.
func (s *Service) Resolve(ctx context.Context, deviceID, alertID uuid.UUID) (*AlertResponse, error) {
	resp, err := s.transition(ctx, deviceID, alertID, domainAlert.StatusResolved)
	if err != nil {
		return nil, err
	}

	a, getErr := s.alerts.GetByID(ctx, alertID)
	if getErr == nil {
		if _, trustErr := s.trust.AdjustTrust(ctx, a.SenderDeviceID, trust.DeltaAlertResolved); trustErr != nil {
			logger.Error("Failed to credit sender trust", zap.Error(trustErr))
		}
	}
	return resp, nil
}

// Flag marks an active alert as abusive. The sender takes a trust
// penalty, which can cross the auto-ban threshold, and the vehicle's
// false alert counter grows. Owner only.
func (s *Service) Flag(ctx context.Context, deviceID, alertID uuid.UUID, req *FlagAlertRequest) (*AlertResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "invalid flag payload", err)
	}

	a, owned, err := s.loadVisible(ctx, deviceID, alertID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, apperrors.Authorization("only the vehicle owner can flag an alert")
	}

	if err := s.alerts.Flag(ctx, alertID, req.Reason, time.Now()); err != nil {
		if errors.Is(err, domainAlert.ErrInvalidTransition) {
			return nil, apperrors.Conflict("alert can no longer be flagged")
		}
		return nil, err
	}

	if err := s.vehicles.IncrementFalseAlertCount(ctx, a.VehicleID); err != nil {
		logger.Error("Failed to increment false alert count", zap.Error(err))
	}

	s.trust.RecordMetricForDevice(ctx, a.SenderDeviceID, abuse.MetricAlertFlagged)
	if _, trustErr := s.trust.AdjustTrust(ctx, a.SenderDeviceID, trust.DeltaAlertFlagged); trustErr != nil {
		logger.Error("Failed to penalize sender trust", zap.Error(trustErr))
	}

	logger.Info("Alert flagged",
		zap.String("alert_id", alertID.String()),
		zap.String("event", "alert_flagged"),
	)

	return s.GetAlert(ctx, deviceID, alertID)
}

func (s *Service) transition(ctx context.Context, deviceID, alertID uuid.UUID, to domainAlert.Status) (*AlertResponse, error) {
	a, owned, err := s.loadVisible(ctx, deviceID, alertID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, apperrors.Authorization("only the vehicle owner can update an alert")
	}

	from := a.Status
	if !domainAlert.CanTransition(from, to) {
		return nil, apperrors.Conflict("invalid alert status transition")
	}

	if err := s.alerts.UpdateStatus(ctx, alertID, from, to, time.Now()); err != nil {
		if errors.Is(err, domainAlert.ErrInvalidTransition) {
			return nil, apperrors.Conflict("invalid alert status transition")
		}
		return nil, err
	}
	return s.GetAlert(ctx, deviceID, alertID)
}

// loadVisible fetches an alert if the device may see it: the owner of
// the target vehicle or the sender. Returns whether the device owns the
// vehicle.
func (s *Service) loadVisible(ctx context.Context, deviceID, alertID uuid.UUID) (*domainAlert.Alert, bool, error) {
	a, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		return nil, false, apperrors.NotFound("alert not found")
	}
	if a.Expired(time.Now()) {
		return nil, false, apperrors.NotFound("alert not found")
	}

	v, err := s.vehicles.GetByID(ctx, a.VehicleID)
	if err != nil {
		return nil, false, apperrors.NotFound("alert not found")
	}
	owned := v.DeviceID == deviceID
	if !owned && a.SenderDeviceID != deviceID {
		return nil, false, apperrors.NotFound("alert not found")
	}
	return a, owned, nil
}
