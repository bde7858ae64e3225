package logic

import (
	"testing"
	"time"
)

func newDebounce() *DebounceGate {
	return NewDebounceGate(2*time.Second, 30*time.Second, time.Minute, 5*time.Minute)
}

func TestDebounceDelayGrowsUnderSustainedTrigger(t *testing.T) {
	g := newDebounce()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	g.MarkAct(now)
	wantDelays := []time.Duration{
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second, // capped
		30 * time.Second,
	}
	for i, want := range wantDelays {
		now = now.Add(g.CurrentDelay())
		if !g.CanAct(now) {
			t.Fatalf("step %d: expected action allowed after the delay", i)
		}
		g.MarkAct(now)
		if got := g.CurrentDelay(); got != want {
			t.Errorf("step %d: delay = %v, want %v", i, got, want)
		}
	}
}

func TestDebounceBlocksInsideDelay(t *testing.T) {
	g := newDebounce()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	g.MarkAct(now)
	g.MarkAct(now.Add(2 * time.Second)) // delay now 4s

	if g.CanAct(now.Add(4 * time.Second)) {
		t.Error("action inside the grown delay must be blocked")
	}
	if !g.CanAct(now.Add(6 * time.Second)) {
		t.Error("action at the delay boundary should be allowed")
	}
}

func TestDebounceCooldownResetsDelay(t *testing.T) {
	g := newDebounce()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	g.MarkAct(now)
	g.MarkAct(now.Add(2 * time.Second)) // delay 4s
	g.MarkAct(now.Add(6 * time.Second)) // delay 8s

	// Quiet for longer than the cooldown: back to the minimum.
	quiet := now.Add(6*time.Second + time.Minute + time.Second)
	g.MarkAct(quiet)
	if got := g.CurrentDelay(); got != 2*time.Second {
		t.Errorf("delay after cooldown = %v, want 2s", got)
	}
}

func TestDebounceMustAct(t *testing.T) {
	g := newDebounce()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	if !g.MustAct(now) {
		t.Error("a gate that never acted must act")
	}
	g.MarkAct(now)

	if g.MustAct(now.Add(4 * time.Minute)) {
		t.Error("no forced action before the maximum interval")
	}
	if !g.MustAct(now.Add(5 * time.Minute)) {
		t.Error("forced action at the maximum interval")
	}
}
