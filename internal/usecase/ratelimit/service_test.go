package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"vehicle-alert/internal/domain/abuse"
	"vehicle-alert/internal/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init("development")
	m.Run()
}

// memWindowStore reproduces the store contract in memory: minute
// buckets, trailing-window sum, and a check-then-increment serialized
// per call the way the Postgres store serializes on its advisory lock.
type memWindowStore struct {
	mu      sync.Mutex
	buckets map[string]map[time.Time]int64
}

func newMemWindowStore() *memWindowStore {
	return &memWindowStore{buckets: map[string]map[time.Time]int64{}}
}

func (s *memWindowStore) key(hash string, it abuse.IdentifierType, action abuse.Action) string {
	return hash + "|" + string(it) + "|" + string(action)
}

func (s *memWindowStore) CheckAndIncrement(_ context.Context, hash string, it abuse.IdentifierType, action abuse.Action, max int, window time.Duration, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.key(hash, it, action)
	if s.buckets[key] == nil {
		s.buckets[key] = map[time.Time]int64{}
	}

	current := abuse.BucketMinute(now)
	oldest := current.Add(-window)

	var total int64
	for start, count := range s.buckets[key] {
		if !start.Before(oldest) {
			total += count
		}
	}
	if total >= int64(max) {
		return false, nil
	}
	s.buckets[key][current]++
	return true, nil
}

func (s *memWindowStore) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type memMetricStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newMemMetricStore() *memMetricStore {
	return &memMetricStore{counts: map[string]int64{}}
}

func (s *memMetricStore) Increment(_ context.Context, hash string, mt abuse.MetricType, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[hash+"|"+string(mt)]++
	return nil
}

func (s *memMetricStore) SumSince(_ context.Context, hash string, mt abuse.MetricType, _ time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[hash+"|"+string(mt)], nil
}

func (s *memMetricStore) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func TestCheckAndRecordSequence(t *testing.T) {
	svc := NewService(newMemWindowStore(), newMemMetricStore())
	ctx := context.Background()

	want := []bool{true, true, true, false}
	for i, expected := range want {
		got, err := svc.CheckAndRecord(ctx, "hash-a", abuse.IdentifierDevice, abuse.ActionAlertCreate, 3, 1)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if got != expected {
			t.Errorf("call %d: allowed = %v, want %v", i, got, expected)
		}
	}
}

func TestRejectedRequestConsumesNoBudget(t *testing.T) {
	store := newMemWindowStore()
	svc := NewService(store, newMemMetricStore())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := svc.CheckAndRecord(ctx, "hash-b", abuse.IdentifierDevice, abuse.ActionAlertCreate, 2, 1)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}

	key := store.key("hash-b", abuse.IdentifierDevice, abuse.ActionAlertCreate)
	var total int64
	store.mu.Lock()
	for _, count := range store.buckets[key] {
		total += count
	}
	store.mu.Unlock()
	if total != 2 {
		t.Errorf("recorded count = %d, want 2 (rejections must not be recorded)", total)
	}
}

func TestConcurrentCallsNeverOverAdmit(t *testing.T) {
	svc := NewService(newMemWindowStore(), newMemMetricStore())
	ctx := context.Background()

	const callers = 16
	const max = 3

	var wg sync.WaitGroup
	results := make(chan bool, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, err := svc.CheckAndRecord(ctx, "hash-c", abuse.IdentifierDevice, abuse.ActionGeneral, max, 1)
			if err != nil {
				t.Error(err)
				return
			}
			results <- allowed
		}()
	}
	wg.Wait()
	close(results)

	admitted := 0
	for allowed := range results {
		if allowed {
			admitted++
		}
	}
	if admitted != max {
		t.Errorf("admitted %d concurrent calls, want exactly %d", admitted, max)
	}
}

// TestConcurrentFirstRequestsSingleSlot targets the case with no
// pre-existing bucket for the identifier: the very first wave of
// concurrent requests must still be serialized through the whole
// check-then-increment, or several callers would each see an empty
// window and all claim the only slot.
func TestConcurrentFirstRequestsSingleSlot(t *testing.T) {
	svc := NewService(newMemWindowStore(), newMemMetricStore())
	ctx := context.Background()

	const callers = 32
	var wg sync.WaitGroup
	var admitted int64
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, err := svc.CheckAndRecord(ctx, "hash-fresh", abuse.IdentifierDevice, abuse.ActionAlertCreate, 1, 60)
			if err != nil {
				t.Error(err)
				return
			}
			if allowed {
				atomic.AddInt64(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	if admitted != 1 {
		t.Errorf("admitted %d first requests, want exactly 1", admitted)
	}
}

func TestIdentifiersAreIsolated(t *testing.T) {
	svc := NewService(newMemWindowStore(), newMemMetricStore())
	ctx := context.Background()

	if allowed, _ := svc.CheckAndRecord(ctx, "hash-d", abuse.IdentifierDevice, abuse.ActionGeneral, 1, 1); !allowed {
		t.Fatal("first call for hash-d must pass")
	}
	if allowed, _ := svc.CheckAndRecord(ctx, "hash-e", abuse.IdentifierDevice, abuse.ActionGeneral, 1, 1); !allowed {
		t.Error("hash-e must have its own budget")
	}
	if allowed, _ := svc.CheckAndRecord(ctx, "hash-d", abuse.IdentifierDevice, abuse.ActionVehicleRegister, 1, 1); !allowed {
		t.Error("a different action must have its own budget")
	}
}

func TestRejectionRecordsAbuseMetric(t *testing.T) {
	metrics := newMemMetricStore()
	svc := NewService(newMemWindowStore(), metrics)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.CheckAndRecord(ctx, "hash-f", abuse.IdentifierDevice, abuse.ActionGeneral, 1, 1); err != nil {
			t.Fatal(err)
		}
	}

	hits, _ := metrics.SumSince(ctx, "hash-f", abuse.MetricRateLimitHit, time.Time{})
	if hits != 2 {
		t.Errorf("rate_limit_hit count = %d, want 2", hits)
	}

	// IP identifiers carry no abuse metrics.
	for i := 0; i < 2; i++ {
		if _, err := svc.CheckAndRecord(ctx, "hash-g", abuse.IdentifierIP, abuse.ActionGeneral, 1, 1); err != nil {
			t.Fatal(err)
		}
	}
	hits, _ = metrics.SumSince(ctx, "hash-g", abuse.MetricRateLimitHit, time.Time{})
	if hits != 0 {
		t.Errorf("ip rejection recorded a device metric: %d", hits)
	}
}
