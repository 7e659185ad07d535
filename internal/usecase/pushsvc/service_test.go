package pushsvc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	domainAlert "vehicle-alert/internal/domain/alert"
	domainPush "vehicle-alert/internal/domain/push"
	"vehicle-alert/internal/logger"
	"vehicle-alert/internal/notify"
	apperrors "vehicle-alert/pkg/errors"
)

func TestMain(m *testing.M) {
	_ = logger.Init("development")
	m.Run()
}

type memTokenRepo struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]*domainPush.Token
	byValue map[string]uuid.UUID
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{
		byID:   map[uuid.UUID]*domainPush.Token{},
		byValue: map[string]uuid.UUID{},
	}
}

func (r *memTokenRepo) Upsert(_ context.Context, t *domainPush.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byValue[t.Token]; ok {
		existing := r.byID[id]
		existing.DeviceID = t.DeviceID
		existing.Platform = t.Platform
		existing.IsActive = true
		existing.FailureCount = 0
		*t = *existing
		return nil
	}
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	copied := *t
	r.byID[t.ID] = &copied
	r.byValue[t.Token] = t.ID
	return nil
}

func (r *memTokenRepo) ListActiveByDevice(_ context.Context, deviceID uuid.UUID) ([]*domainPush.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domainPush.Token
	for _, t := range r.byID {
		if t.DeviceID == deviceID && t.IsActive {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memTokenRepo) RecordSuccess(_ context.Context, tokenID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[tokenID]
	if !ok {
		return domainPush.ErrTokenNotFound
	}
	t.FailureCount = 0
	t.LastSuccessAt = &at
	return nil
}

func (r *memTokenRepo) RecordFailure(_ context.Context, tokenID uuid.UUID, threshold int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[tokenID]
	if !ok {
		return domainPush.ErrTokenNotFound
	}
	t.FailureCount++
	if t.FailureCount >= threshold {
		t.IsActive = false
	}
	return nil
}

func (r *memTokenRepo) Delete(_ context.Context, deviceID uuid.UUID, tokenValue string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byValue[tokenValue]
	if !ok || r.byID[id].DeviceID != deviceID {
		return domainPush.ErrTokenNotFound
	}
	delete(r.byID, id)
	delete(r.byValue, tokenValue)
	return nil
}

type memAlertRepo struct {
	mu       sync.Mutex
	notified map[uuid.UUID]time.Time
}

func newMemAlertRepo() *memAlertRepo { return &memAlertRepo{notified: map[uuid.UUID]time.Time{}} }

func (r *memAlertRepo) Create(context.Context, *domainAlert.Alert) error { return nil }
func (r *memAlertRepo) GetByID(context.Context, uuid.UUID) (*domainAlert.Alert, error) {
	return nil, domainAlert.ErrAlertNotFound
}
func (r *memAlertRepo) ListForVehicles(context.Context, []uuid.UUID, time.Time, int, int) ([]*domainAlert.Alert, int64, error) {
	return nil, 0, nil
}
func (r *memAlertRepo) UpdateStatus(context.Context, uuid.UUID, domainAlert.Status, domainAlert.Status, time.Time) error {
	return nil
}
func (r *memAlertRepo) Flag(context.Context, uuid.UUID, string, time.Time) error { return nil }

func (r *memAlertRepo) MarkNotified(_ context.Context, alertID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notified[alertID] = at
	return nil
}

func (r *memAlertRepo) DeleteExpired(context.Context, time.Time) (int64, error) { return 0, nil }

// scriptNotifier returns a canned outcome per token value and records
// every payload it saw.
type scriptNotifier struct {
	mu       sync.Mutex
	outcomes map[string]bool
	sent     []notify.Payload
}

func (n *scriptNotifier) Send(_ context.Context, token, _ string, payload notify.Payload) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, payload)
	return n.outcomes[token]
}

func testAlert() *domainAlert.Alert {
	return &domainAlert.Alert{
		ID:        uuid.New(),
		AlertType: domainAlert.TypeLightsOn,
		Status:    domainAlert.StatusActive,
	}
}

func TestRegisterTokenReassignsExistingValue(t *testing.T) {
	tokens := newMemTokenRepo()
	svc := NewService(tokens, newMemAlertRepo(), &scriptNotifier{}, 5)
	ctx := context.Background()

	oldDevice := uuid.New()
	newDevice := uuid.New()

	first, err := svc.RegisterToken(ctx, oldDevice, &RegisterTokenRequest{Token: "ExponentPushToken[abc]", Platform: "ios"})
	if err != nil {
		t.Fatalf("RegisterToken: %v", err)
	}
	second, err := svc.RegisterToken(ctx, newDevice, &RegisterTokenRequest{Token: "ExponentPushToken[abc]", Platform: "android"})
	if err != nil {
		t.Fatalf("RegisterToken reassign: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("same token value produced two rows: %s vs %s", first.ID, second.ID)
	}

	active, _ := tokens.ListActiveByDevice(ctx, newDevice)
	if len(active) != 1 {
		t.Fatalf("new device active tokens = %d, want 1", len(active))
	}
	if active[0].Platform != domainPush.PlatformAndroid {
		t.Errorf("platform = %s, want android", active[0].Platform)
	}
	if stale, _ := tokens.ListActiveByDevice(ctx, oldDevice); len(stale) != 0 {
		t.Errorf("old device still has %d tokens", len(stale))
	}
}

func TestRegisterTokenRejectsUnknownPlatform(t *testing.T) {
	svc := NewService(newMemTokenRepo(), newMemAlertRepo(), &scriptNotifier{}, 5)

	_, err := svc.RegisterToken(context.Background(), uuid.New(), &RegisterTokenRequest{
		Token:    "ExponentPushToken[abc]",
		Platform: "web",
	})
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestNotifyAlertDeliversAndMarksNotified(t *testing.T) {
	tokens := newMemTokenRepo()
	alerts := newMemAlertRepo()
	notifier := &scriptNotifier{outcomes: map[string]bool{"tok-good": true, "tok-bad": false}}
	svc := NewService(tokens, alerts, notifier, 5)
	ctx := context.Background()

	owner := uuid.New()
	_ = tokens.Upsert(ctx, &domainPush.Token{DeviceID: owner, Token: "tok-good", Platform: domainPush.PlatformIOS, IsActive: true})
	_ = tokens.Upsert(ctx, &domainPush.Token{DeviceID: owner, Token: "tok-bad", Platform: domainPush.PlatformAndroid, IsActive: true})

	a := testAlert()
	if delivered := svc.NotifyAlert(ctx, owner, a); delivered != 1 {
		t.Errorf("delivered = %d, want 1", delivered)
	}
	if _, ok := alerts.notified[a.ID]; !ok {
		t.Error("alert should be marked notified after a successful delivery")
	}
	if len(notifier.sent) != 2 {
		t.Fatalf("send attempts = %d, want 2", len(notifier.sent))
	}
	payload := notifier.sent[0]
	if payload.Title != NotificationTitle {
		t.Errorf("title = %q, want %q", payload.Title, NotificationTitle)
	}
	if payload.Body != alertTypeMessages[domainAlert.TypeLightsOn] {
		t.Errorf("body = %q, want lights_on message", payload.Body)
	}
	if payload.Data["alert_id"] != a.ID.String() || payload.Data["alert_type"] != "lights_on" {
		t.Errorf("payload data = %v", payload.Data)
	}
}

func TestNotifyAlertDeactivatesTokenAtThreshold(t *testing.T) {
	tokens := newMemTokenRepo()
	alerts := newMemAlertRepo()
	notifier := &scriptNotifier{outcomes: map[string]bool{}}
	svc := NewService(tokens, alerts, notifier, 3)
	ctx := context.Background()

	owner := uuid.New()
	_ = tokens.Upsert(ctx, &domainPush.Token{DeviceID: owner, Token: "tok-dead", Platform: domainPush.PlatformIOS, IsActive: true})

	a := testAlert()
	for i := 0; i < 3; i++ {
		if delivered := svc.NotifyAlert(ctx, owner, a); delivered != 0 {
			t.Fatalf("attempt %d: delivered = %d, want 0", i, delivered)
		}
	}
	if active, _ := tokens.ListActiveByDevice(ctx, owner); len(active) != 0 {
		t.Errorf("token should be deactivated after 3 failures, still %d active", len(active))
	}
	if len(alerts.notified) != 0 {
		t.Error("alert must not be marked notified when nothing was delivered")
	}
	// Later attempts see no active tokens and send nothing.
	before := len(notifier.sent)
	svc.NotifyAlert(ctx, owner, a)
	if len(notifier.sent) != before {
		t.Error("deactivated token should not receive further sends")
	}
}

func TestNotifyAlertNoTokens(t *testing.T) {
	svc := NewService(newMemTokenRepo(), newMemAlertRepo(), &scriptNotifier{}, 5)
	if delivered := svc.NotifyAlert(context.Background(), uuid.New(), testAlert()); delivered != 0 {
		t.Errorf("delivered = %d, want 0", delivered)
	}
}

func TestDeleteTokenScopedToDevice(t *testing.T) {
	tokens := newMemTokenRepo()
	svc := NewService(tokens, newMemAlertRepo(), &scriptNotifier{}, 5)
	ctx := context.Background()

	owner := uuid.New()
	if _, err := svc.RegisterToken(ctx, owner, &RegisterTokenRequest{Token: "ExponentPushToken[abc]", Platform: "ios"}); err != nil {
		t.Fatalf("RegisterToken: %v", err)
	}

	if err := svc.DeleteToken(ctx, uuid.New(), "ExponentPushToken[abc]"); !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Errorf("expected not found for other device, got %v", err)
	}
	if err := svc.DeleteToken(ctx, owner, "ExponentPushToken[abc]"); err != nil {
		t.Errorf("owner delete failed: %v", err)
	}
}
