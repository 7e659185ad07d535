package identity

import (
	"strings"
	"testing"
)

const (
	testDevicePepper  = "device-pepper-0123456789abcdef0123456789"
	testVehiclePepper = "vehicle-pepper-0123456789abcdef012345678"
)

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(testDevicePepper, testVehiclePepper, 32)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	return h
}

func TestNewHasherRejectsShortPepper(t *testing.T) {
	if _, err := NewHasher("short", testVehiclePepper, 32); err == nil {
		t.Fatal("expected error for short device pepper")
	}
	if _, err := NewHasher(testDevicePepper, "", 32); err == nil {
		t.Fatal("expected error for empty vehicle pepper")
	}
}

func TestHashIsDeterministic(t *testing.T) {
	h := newTestHasher(t)

	a := h.HashDeviceID("client-token-123")
	b := h.HashDeviceID("client-token-123")
	if a != b {
		t.Errorf("same input must hash identically: %s != %s", a, b)
	}
}

func TestHashIs64CharHex(t *testing.T) {
	h := newTestHasher(t)

	got := h.HashVehicleID("AB12CDE")
	if len(got) != 64 {
		t.Fatalf("digest length = %d, want 64", len(got))
	}
	if strings.ToLower(got) != got {
		t.Errorf("digest must be lowercase hex: %s", got)
	}
	for _, r := range got {
		if !strings.ContainsRune("0123456789abcdef", r) {
			t.Fatalf("non-hex rune %q in digest", r)
		}
	}
}

func TestHashIsPepperDependent(t *testing.T) {
	h := newTestHasher(t)

	// Same raw value hashed under the device pepper and the vehicle pepper
	// must not collide, otherwise the two tables could be cross-referenced.
	if h.HashDeviceID("AB12CDE") == h.HashVehicleID("AB12CDE") {
		t.Error("device and vehicle digests of the same value must differ")
	}

	other, err := NewHasher(testVehiclePepper, testDevicePepper, 32)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	if h.HashDeviceID("x") == other.HashDeviceID("x") {
		t.Error("different peppers must produce different digests")
	}
}

func TestDistinctInputsDistinctDigests(t *testing.T) {
	h := newTestHasher(t)

	seen := map[string]string{}
	for _, raw := range []string{"AB12CDE", "AB12CDF", "1234ABC", "", "a", "A"} {
		d := h.HashVehicleID(raw)
		if prev, ok := seen[d]; ok {
			t.Fatalf("collision between %q and %q", prev, raw)
		}
		seen[d] = raw
	}
}
