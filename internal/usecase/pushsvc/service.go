package pushsvc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainAlert "vehicle-alert/internal/domain/alert"
	domainPush "vehicle-alert/internal/domain/push"
	"vehicle-alert/internal/logger"
	"vehicle-alert/internal/notify"
	apperrors "vehicle-alert/pkg/errors"
	"vehicle-alert/pkg/utils"
)

// NotificationTitle is the fixed title on every alert notification. The
// body carries the alert type; no user-provided text is ever pushed.
const NotificationTitle = "VizinhoAlert"

// alertTypeMessages maps the closed alert vocabulary to push bodies.
var alertTypeMessages = map[domainAlert.Type]string{
	domainAlert.TypeLightsOn:       "Your vehicle's lights appear to be on",
	domainAlert.TypeWindowOpen:     "A window on your vehicle appears to be open",
	domainAlert.TypeAlarmTriggered: "Your vehicle's alarm has been triggered",
	domainAlert.TypeParkingIssue:   "There's a parking issue with your vehicle",
	domainAlert.TypeDamageSpotted:  "Damage has been spotted on your vehicle",
	domainAlert.TypeTowingRisk:     "Your vehicle may be at risk of towing",
	domainAlert.TypeObstruction:    "Your vehicle may be causing an obstruction",
	domainAlert.TypeGeneral:        "Someone has sent an alert about your vehicle",
}

// MessageFor returns the push body for an alert type.
func MessageFor(t domainAlert.Type) string {
	if msg, ok := alertTypeMessages[t]; ok {
		return msg
	}
	return "New alert for your vehicle"
}

// Service manages push tokens and delivers alert notifications through
// an injected Notifier.
type Service struct {
	tokens           domainPush.Repository
	alerts           domainAlert.Repository
	notifier         notify.Notifier
	failureThreshold int
}

func NewService(tokens domainPush.Repository, alerts domainAlert.Repository, notifier notify.Notifier, failureThreshold int) *Service {
	return &Service{
		tokens:           tokens,
		alerts:           alerts,
		notifier:         notifier,
		failureThreshold: failureThreshold,
	}
}

// RegisterToken upserts a delivery token for the device. A token value
// already registered, possibly by a previous install on another device
// row, is reassigned and reactivated.
func (s *Service) RegisterToken(ctx context.Context, deviceID uuid.UUID, req *RegisterTokenRequest) (*TokenResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "invalid push token payload", err)
	}

	token := &domainPush.Token{
		DeviceID: deviceID,
		Token:    req.Token,
		Platform: domainPush.Platform(req.Platform),
		IsActive: true,
	}
	if err := s.tokens.Upsert(ctx, token); err != nil {
		return nil, err
	}
	return ToTokenResponse(token), nil
}

func (s *Service) DeleteToken(ctx context.Context, deviceID uuid.UUID, tokenValue string) error {
	if err := s.tokens.Delete(ctx, deviceID, tokenValue); err != nil {
		if errors.Is(err, domainPush.ErrTokenNotFound) {
			return apperrors.NotFound("push token not found")
		}
		return err
	}
	return nil
}

// NotifyAlert fans an alert out to the owner device's active tokens.
// Best effort by contract: every failure path degrades token health and
// returns, it never propagates an error into the alert flow. Returns
// the number of successful deliveries.
func (s *Service) NotifyAlert(ctx context.Context, ownerDeviceID uuid.UUID, a *domainAlert.Alert) int {
	tokens, err := s.tokens.ListActiveByDevice(ctx, ownerDeviceID)
	if err != nil {
		logger.Error("Failed to load push tokens", zap.Error(err))
		return 0
	}
	if len(tokens) == 0 {
		return 0
	}

	payload := notify.Payload{
		Title: NotificationTitle,
		Body:  MessageFor(a.AlertType),
		Data: map[string]string{
			"alert_id":   a.ID.String(),
			"alert_type": string(a.AlertType),
		},
	}

	delivered := 0
	now := time.Now()
	for _, t := range tokens {
		if s.notifier.Send(ctx, t.Token, string(t.Platform), payload) {
			delivered++
			if err := s.tokens.RecordSuccess(ctx, t.ID, now); err != nil {
				logger.Error("Failed to record delivery success", zap.Error(err))
			}
			continue
		}
		if err := s.tokens.RecordFailure(ctx, t.ID, s.failureThreshold); err != nil {
			logger.Error("Failed to record delivery failure", zap.Error(err))
		}
	}

	if delivered > 0 {
		if err := s.alerts.MarkNotified(ctx, a.ID, now); err != nil {
			logger.Error("Failed to mark alert notified", zap.Error(err))
		}
	}
	return delivered
}
