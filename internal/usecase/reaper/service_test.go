package reaper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"vehicle-alert/internal/domain/abuse"
	domainAlert "vehicle-alert/internal/domain/alert"
	domainDevice "vehicle-alert/internal/domain/device"
	"vehicle-alert/internal/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init("development")
	m.Run()
}

// countingStore answers DeleteExpired with a fixed count, or an error,
// and remembers how often it was called.
type countingStore struct {
	mu    sync.Mutex
	count int64
	err   error
	calls int
}

func (s *countingStore) DeleteExpired(context.Context, time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.count, nil
}

func (s *countingStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// The embedding types below satisfy the full repository interfaces
// while the sweeper only exercises DeleteExpired.

type alertStore struct{ countingStore }

func (s *alertStore) Create(context.Context, *domainAlert.Alert) error { return nil }
func (s *alertStore) GetByID(context.Context, uuid.UUID) (*domainAlert.Alert, error) {
	return nil, domainAlert.ErrAlertNotFound
}
func (s *alertStore) ListForVehicles(context.Context, []uuid.UUID, time.Time, int, int) ([]*domainAlert.Alert, int64, error) {
	return nil, 0, nil
}
func (s *alertStore) UpdateStatus(context.Context, uuid.UUID, domainAlert.Status, domainAlert.Status, time.Time) error {
	return nil
}
func (s *alertStore) Flag(context.Context, uuid.UUID, string, time.Time) error { return nil }
func (s *alertStore) MarkNotified(context.Context, uuid.UUID, time.Time) error { return nil }

type deviceStore struct{ countingStore }

func (s *deviceStore) Create(context.Context, *domainDevice.Device) error { return nil }
func (s *deviceStore) GetByID(context.Context, uuid.UUID) (*domainDevice.Device, error) {
	return nil, domainDevice.ErrDeviceNotFound
}
func (s *deviceStore) GetByHash(context.Context, string) (*domainDevice.Device, error) {
	return nil, domainDevice.ErrDeviceNotFound
}
func (s *deviceStore) Touch(context.Context, uuid.UUID, time.Time) error { return nil }
func (s *deviceStore) UpdateLocation(context.Context, uuid.UUID, *float64, *float64, *float64) error {
	return nil
}
func (s *deviceStore) AdjustTrust(context.Context, uuid.UUID, int) (int, error) { return 0, nil }
func (s *deviceStore) Ban(context.Context, uuid.UUID, string, time.Time) error { return nil }
func (s *deviceStore) Delete(context.Context, uuid.UUID) error { return nil }

type metricStore struct{ countingStore }

func (s *metricStore) Increment(context.Context, string, abuse.MetricType, time.Time) error {
	return nil
}
func (s *metricStore) SumSince(context.Context, string, abuse.MetricType, time.Time) (int64, error) {
	return 0, nil
}

type windowStore struct{ countingStore }

func (s *windowStore) CheckAndIncrement(context.Context, string, abuse.IdentifierType, abuse.Action, int, time.Duration, time.Time) (bool, error) {
	return true, nil
}

func TestSweepCountsAllStores(t *testing.T) {
	alerts := &alertStore{countingStore{count: 3}}
	devices := &deviceStore{countingStore{count: 1}}
	metrics := &metricStore{countingStore{count: 40}}
	windows := &windowStore{countingStore{count: 7}}

	svc := NewService(alerts, devices, metrics, windows)
	res := svc.Sweep(context.Background())

	if res.Alerts != 3 || res.Devices != 1 || res.Metrics != 40 || res.Windows != 7 {
		t.Errorf("sweep result = %+v", res)
	}
}

func TestSweepContinuesPastFailures(t *testing.T) {
	alerts := &alertStore{countingStore{err: errors.New("connection reset")}}
	devices := &deviceStore{countingStore{count: 2}}
	metrics := &metricStore{countingStore{count: 5}}
	windows := &windowStore{countingStore{count: 9}}

	svc := NewService(alerts, devices, metrics, windows)
	res := svc.Sweep(context.Background())

	if res.Alerts != 0 {
		t.Errorf("failed store contributed %d", res.Alerts)
	}
	if res.Devices != 2 || res.Metrics != 5 || res.Windows != 9 {
		t.Errorf("later stores skipped: %+v", res)
	}
	if windows.callCount() != 1 {
		t.Errorf("window sweep calls = %d, want 1", windows.callCount())
	}
}

func TestStartSweepsImmediatelyAndStopsOnCancel(t *testing.T) {
	alerts := &alertStore{}
	devices := &deviceStore{}
	metrics := &metricStore{}
	windows := &windowStore{}
	svc := NewService(alerts, devices, metrics, windows)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Start(ctx, time.Hour)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for alerts.callCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("startup sweep never ran")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop on context cancel")
	}
	if got := alerts.callCount(); got != 1 {
		t.Errorf("sweeps before first tick = %d, want 1", got)
	}
}
