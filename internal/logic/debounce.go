package logic

import "time"

// DebounceGate paces an action driven by a continuous trigger. The interval
// between actions doubles under sustained triggering (up to maxDelay) and
// drops back to minAct once a cooldown passes with no activity. MustAct
// additionally forces a periodic action even with no trigger, bounded by
// maxAct. Pure timer logic, no I/O.
type DebounceGate struct {
	minAct   time.Duration
	maxDelay time.Duration
	cooldown time.Duration
	maxAct   time.Duration

	lastAct      time.Time
	currentDelay time.Duration
	hasActed     bool
}

// NewDebounceGate creates a gate with the given pacing parameters.
func NewDebounceGate(minAct, maxDelay, cooldown, maxAct time.Duration) *DebounceGate {
	return &DebounceGate{
		minAct:   minAct,
		maxDelay: maxDelay,
		cooldown: cooldown,
		maxAct:   maxAct,
	}
}

// CanAct reports whether the current delay has elapsed since the last action.
func (g *DebounceGate) CanAct(now time.Time) bool {
	if !g.hasActed {
		return true
	}
	return !now.Before(g.lastAct.Add(g.currentDelay))
}

// MustAct reports whether the maximum interval has passed with no action,
// forcing one even without a trigger.
func (g *DebounceGate) MustAct(now time.Time) bool {
	if !g.hasActed {
		return true
	}
	return !now.Before(g.lastAct.Add(g.maxAct))
}

// MarkAct records an action and grows or resets the delay: back to the
// minimum if the cooldown elapsed since the previous action, doubled
// (capped at maxDelay) otherwise.
func (g *DebounceGate) MarkAct(now time.Time) {
	if !g.hasActed || now.After(g.lastAct.Add(g.cooldown)) {
		g.currentDelay = g.minAct
	} else {
		next := g.currentDelay * 2
		if next < g.minAct {
			next = g.minAct
		}
		if next > g.maxDelay {
			next = g.maxDelay
		}
		g.currentDelay = next
	}
	g.lastAct = now
	g.hasActed = true
}

// CurrentDelay returns the delay gating the next action.
func (g *DebounceGate) CurrentDelay() time.Duration {
	return g.currentDelay
}

// LastAct returns the time of the last action and whether one occurred.
func (g *DebounceGate) LastAct() (time.Time, bool) {
	return g.lastAct, g.hasActed
}
