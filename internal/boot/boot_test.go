package boot

import (
	"errors"
	"testing"
	"time"

	"github.com/patura/shelterd/internal/store"
)

func newManager(s store.Store, r Rebooter) *Manager {
	return NewManager(s, r, DefaultMaxAttempts, DefaultSuccessTimeout, DefaultRecoveryInterval)
}

func TestFirstBootIsNormal(t *testing.T) {
	s := store.NewMemStore()
	m := newManager(s, &FakeRebooter{})
	m.OnBoot(time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC))

	if m.SafeMode() {
		t.Error("first boot should not be safe mode")
	}
	if !m.CameraAllowed() {
		t.Error("camera should be allowed")
	}
	if got := s.GetInt(store.KeyBootAttempts, -1); got != 1 {
		t.Errorf("persisted attempts = %d, want 1", got)
	}
}

func TestThirdFailedBootEntersSafeMode(t *testing.T) {
	s := store.NewMemStore()
	s.Ints[store.KeyBootAttempts] = 2

	m := newManager(s, &FakeRebooter{})
	m.OnBoot(time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC))

	if !m.SafeMode() {
		t.Error("third attempt should enter safe mode")
	}
	if m.CameraAllowed() {
		t.Error("camera must be disabled in safe mode")
	}
	if !s.GetBool(store.KeySafeMode, false) {
		t.Error("safe mode flag should be persisted")
	}
}

func TestPersistedSafeModeFlagHonored(t *testing.T) {
	s := store.NewMemStore()
	s.Bools[store.KeySafeMode] = true

	m := newManager(s, &FakeRebooter{})
	m.OnBoot(time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC))

	if !m.SafeMode() {
		t.Error("a persisted safe mode flag should demote the boot even below the attempt threshold")
	}
}

func TestSustainedUptimeClearsCounter(t *testing.T) {
	s := store.NewMemStore()
	s.Ints[store.KeyBootAttempts] = 1

	m := newManager(s, &FakeRebooter{})
	start := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	m.OnBoot(start)

	m.OnTick(start.Add(4 * time.Minute))
	if got := s.GetInt(store.KeyBootAttempts, -1); got != 2 {
		t.Errorf("counter cleared too early, persisted = %d", got)
	}

	m.OnTick(start.Add(5 * time.Minute))
	if got := s.GetInt(store.KeyBootAttempts, -1); got != 0 {
		t.Errorf("persisted attempts after sustained uptime = %d, want 0", got)
	}
}

func TestMarkSuccessDoesNotLeaveSafeMode(t *testing.T) {
	s := store.NewMemStore()
	s.Ints[store.KeyBootAttempts] = 2

	m := newManager(s, &FakeRebooter{})
	m.OnBoot(time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC))

	m.MarkSuccess()

	if s.GetBool(store.KeySafeMode, true) {
		t.Error("persisted safe mode flag should be cleared")
	}
	if s.GetInt(store.KeyBootAttempts, -1) != 0 {
		t.Error("persisted attempts should be cleared")
	}
	// The running session stays demoted until a fresh boot.
	if !m.SafeMode() || m.CameraAllowed() {
		t.Error("runtime safe mode must stay set for the session")
	}
}

func TestCameraInitFailureReboots(t *testing.T) {
	s := store.NewMemStore()
	r := &FakeRebooter{}
	m := newManager(s, r)
	m.OnBoot(time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC))

	m.OnCameraInitFailure()

	if len(r.Reasons) != 1 || r.Reasons[0] != "camera init failed" {
		t.Errorf("reboot reasons = %v, want [camera init failed]", r.Reasons)
	}
}

func TestSafeModeRecoveryReboot(t *testing.T) {
	s := store.NewMemStore()
	s.Ints[store.KeyBootAttempts] = 2
	r := &FakeRebooter{}
	m := newManager(s, r)
	start := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	m.OnBoot(start)

	m.OnTick(start.Add(59 * time.Minute))
	if len(r.Reasons) != 0 {
		t.Fatal("no recovery reboot before the interval")
	}

	m.OnTick(start.Add(time.Hour))
	if len(r.Reasons) != 1 || r.Reasons[0] != "safe mode recovery" {
		t.Fatalf("reboot reasons = %v, want [safe mode recovery]", r.Reasons)
	}
	// Counter cleared so the next boot is a fresh normal attempt.
	if s.GetInt(store.KeyBootAttempts, -1) != 0 {
		t.Error("persisted attempts should be cleared before the recovery reboot")
	}
	if s.GetBool(store.KeySafeMode, true) {
		t.Error("persisted safe mode flag should be cleared before the recovery reboot")
	}
}

func TestCrashLoopEndToEnd(t *testing.T) {
	// Three boots in a row ending in a camera init failure, then safe mode,
	// then recovery, then a clean fourth boot.
	s := store.NewMemStore()
	r := &FakeRebooter{}
	start := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		m := newManager(s, r)
		m.OnBoot(start)
		m.OnCameraInitFailure()
		if m.SafeMode() {
			t.Fatalf("boot %d should still be normal mode", i+1)
		}
	}
	if got := s.GetInt(store.KeyBootAttempts, -1); got != 2 {
		t.Fatalf("persisted attempts after two failures = %d, want 2", got)
	}

	// Boot 3 crosses the threshold.
	m := newManager(s, r)
	m.OnBoot(start)
	if !m.SafeMode() {
		t.Fatal("boot 3 should enter safe mode")
	}

	// An hour later the recovery path clears state and reboots.
	m.OnTick(start.Add(time.Hour))
	if last := r.Reasons[len(r.Reasons)-1]; last != "safe mode recovery" {
		t.Fatalf("last reboot reason = %q", last)
	}

	// Boot 4 starts over at attempt 1, normal mode.
	m = newManager(s, r)
	m.OnBoot(start.Add(time.Hour + time.Minute))
	if m.SafeMode() {
		t.Error("boot 4 should be a fresh normal attempt")
	}
	if m.Attempts() != 1 {
		t.Errorf("boot 4 attempts = %d, want 1", m.Attempts())
	}
}

func TestStoreWriteFailureIsBestEffort(t *testing.T) {
	s := store.NewMemStore()
	s.WriteErr = errors.New("disk full")

	m := newManager(s, &FakeRebooter{})
	m.OnBoot(time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)) // must not panic

	if m.Attempts() != 1 {
		t.Errorf("attempts = %d, want 1", m.Attempts())
	}
}

func TestOperatorSafeModeAndReset(t *testing.T) {
	s := store.NewMemStore()
	m := newManager(s, &FakeRebooter{})
	now := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	m.OnBoot(now)

	m.EnterSafeMode(now)
	if !m.SafeMode() || !s.GetBool(store.KeySafeMode, false) {
		t.Error("command should enter and persist safe mode")
	}

	m.ResetCounter()
	if s.GetInt(store.KeyBootAttempts, -1) != 0 || s.GetBool(store.KeySafeMode, true) {
		t.Error("reset should clear the persisted state")
	}
}
