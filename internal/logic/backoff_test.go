package logic

import (
	"testing"
	"time"
)

func TestBackoffDoubles(t *testing.T) {
	b := NewRetryBackoff(5*time.Second, 80*time.Second)
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	// First attempt is always allowed; subsequent ones double the gate.
	wantDelays := []time.Duration{
		5 * time.Second,
		10 * time.Second,
		20 * time.Second,
		40 * time.Second,
		80 * time.Second,
		80 * time.Second, // clamped
	}
	for i, want := range wantDelays {
		if !b.CanRetry(now) {
			t.Fatalf("attempt %d: expected retry allowed", i)
		}
		if got := b.CurrentDelay(); got != want {
			t.Errorf("attempt %d: delay = %v, want %v", i, got, want)
		}
		now = now.Add(b.CurrentDelay())
	}
}

func TestBackoffGatesEarlyRetry(t *testing.T) {
	b := NewRetryBackoff(5*time.Second, 80*time.Second)
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	b.CanRetry(now)

	if b.CanRetry(now.Add(4 * time.Second)) {
		t.Error("retry inside the delay window must be refused")
	}
	if !b.CanRetry(now.Add(5 * time.Second)) {
		t.Error("retry at the delay boundary should be allowed")
	}

	allowed, delayed, _ := b.Counts()
	if allowed != 2 || delayed != 1 {
		t.Errorf("counts = (%d allowed, %d delayed), want (2, 1)", allowed, delayed)
	}
}

func TestBackoffReset(t *testing.T) {
	b := NewRetryBackoff(5*time.Second, 80*time.Second)
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	b.CanRetry(now)
	b.CanRetry(now.Add(5 * time.Second))
	b.Reset()

	if b.CurrentDelay() != 0 {
		t.Errorf("delay after reset = %v, want 0", b.CurrentDelay())
	}
	// Immediately retryable again, starting over at the minimum.
	if !b.CanRetry(now.Add(6 * time.Second)) {
		t.Error("retry right after reset should be allowed")
	}
	if b.CurrentDelay() != 5*time.Second {
		t.Errorf("delay restarts at %v, want 5s", b.CurrentDelay())
	}

	allowed, delayed, resets := b.Counts()
	if allowed != 1 || delayed != 0 || resets != 1 {
		t.Errorf("counts = (%d, %d, %d), want (1, 0, 1)", allowed, delayed, resets)
	}
}
