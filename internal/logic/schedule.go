package logic

import "time"

// ScheduleGate decides when a capture-and-upload cycle should run: a fixed
// periodic interval, or a rising presence edge limited by a cooldown. The
// periodic capture takes priority and resets both timers.
type ScheduleGate struct {
	periodicInterval time.Duration
	motionCooldown   time.Duration

	lastPeriodic    time.Time
	lastCapture     time.Time
	previousPresent bool
}

// NewScheduleGate creates a gate. The start time seeds the periodic timer;
// the capture timer is backdated past the cooldown so the first motion edge
// can trigger immediately (matching the device's boot behavior).
func NewScheduleGate(periodicInterval, motionCooldown time.Duration, start time.Time) *ScheduleGate {
	return &ScheduleGate{
		periodicInterval: periodicInterval,
		motionCooldown:   motionCooldown,
		lastPeriodic:     start,
		lastCapture:      start.Add(-motionCooldown - time.Second),
	}
}

// ShouldCapture evaluates the gate for one tick. It must be called every
// tick even when the answer is no, to track the presence edge.
func (g *ScheduleGate) ShouldCapture(now time.Time, present bool) (bool, CaptureReason) {
	defer func() { g.previousPresent = present }()

	if now.Sub(g.lastPeriodic) >= g.periodicInterval {
		g.lastPeriodic = now
		g.lastCapture = now
		return true, CapturePeriodic
	}

	justArrived := present && !g.previousPresent
	cooldownExpired := now.Sub(g.lastCapture) >= g.motionCooldown
	if justArrived && cooldownExpired {
		g.lastCapture = now
		return true, CaptureMotion
	}

	return false, ""
}

// NextPeriodic returns how long until the next periodic capture.
func (g *ScheduleGate) NextPeriodic(now time.Time) time.Duration {
	if rem := g.periodicInterval - now.Sub(g.lastPeriodic); rem > 0 {
		return rem
	}
	return 0
}

// SinceLastCapture returns the elapsed time since any capture fired.
func (g *ScheduleGate) SinceLastCapture(now time.Time) time.Duration {
	return now.Sub(g.lastCapture)
}
