package logic

import (
	"testing"
	"time"
)

func newGate() *ScheduleGate {
	return NewScheduleGate(10*time.Minute, time.Minute, time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC))
}

func TestMotionEdgeTriggersCapture(t *testing.T) {
	g := newGate()
	start := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	// A rising edge right at startup should fire: the gate is
	// initialised with a backdated capture timestamp.
	fire, reason := g.ShouldCapture(start, true)
	if !fire {
		t.Fatal("expected capture on first motion edge")
	}
	if reason != CaptureMotion {
		t.Errorf("reason = %q, want %q", reason, CaptureMotion)
	}
}

func TestMotionCooldownBlocksSecondEdge(t *testing.T) {
	g := newGate()
	start := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	g.ShouldCapture(start, true)
	g.ShouldCapture(start.Add(10*time.Second), false) // cat leaves

	// Second edge 30s after the first capture: still in cooldown.
	if fire, _ := g.ShouldCapture(start.Add(30*time.Second), true); fire {
		t.Error("edge inside the motion cooldown must not capture")
	}

	g.ShouldCapture(start.Add(40*time.Second), false)

	// Edge after the cooldown expires fires again.
	if fire, _ := g.ShouldCapture(start.Add(70*time.Second), true); !fire {
		t.Error("edge after the cooldown should capture")
	}
}

func TestSustainedPresenceIsNotAnEdge(t *testing.T) {
	g := newGate()
	start := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	g.ShouldCapture(start, true)
	for i := 1; i <= 300; i++ {
		now := start.Add(time.Duration(i) * 2 * time.Second)
		if fire, reason := g.ShouldCapture(now, true); fire && reason == CaptureMotion {
			t.Fatalf("sustained presence produced a motion capture at %v", now)
		}
	}
}

func TestPeriodicCapture(t *testing.T) {
	g := newGate()
	start := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	if fire, _ := g.ShouldCapture(start.Add(9*time.Minute), false); fire {
		t.Error("no capture before the periodic interval")
	}

	fire, reason := g.ShouldCapture(start.Add(10*time.Minute), false)
	if !fire {
		t.Fatal("expected periodic capture at the interval")
	}
	if reason != CapturePeriodic {
		t.Errorf("reason = %q, want %q", reason, CapturePeriodic)
	}
}

func TestPeriodicResetsMotionCooldown(t *testing.T) {
	g := newGate()
	start := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	g.ShouldCapture(start.Add(10*time.Minute), false) // periodic fires

	// The periodic capture counts toward the motion cooldown too.
	if fire, _ := g.ShouldCapture(start.Add(10*time.Minute+30*time.Second), true); fire {
		t.Error("motion edge right after a periodic capture must wait out the cooldown")
	}
}

func TestPeriodicTakesPriorityOverMotion(t *testing.T) {
	g := newGate()
	start := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	// Interval elapsed and a motion edge on the same tick: one capture,
	// attributed to the schedule.
	fire, reason := g.ShouldCapture(start.Add(10*time.Minute), true)
	if !fire {
		t.Fatal("expected capture")
	}
	if reason != CapturePeriodic {
		t.Errorf("reason = %q, want %q", reason, CapturePeriodic)
	}
}

func TestNextPeriodic(t *testing.T) {
	g := newGate()
	start := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	if got := g.NextPeriodic(start.Add(4 * time.Minute)); got != 6*time.Minute {
		t.Errorf("NextPeriodic = %v, want 6m", got)
	}
	if got := g.NextPeriodic(start.Add(11 * time.Minute)); got != 0 {
		t.Errorf("NextPeriodic past due = %v, want 0", got)
	}
}
