package logic

import "time"

// PresenceTracker converts instantaneous motion pulses into a debounced,
// timeout-extended occupancy boolean. The PIR reports motion, not presence:
// a sleeping occupant produces no pulses, so presence is extended by a long
// timeout rather than re-derived from the raw signal every tick.
//
// The false->true transition is instantaneous and never debounced; missing
// an arrival is worse than a false positive.
type PresenceTracker struct {
	timeout    time.Duration
	present    bool
	lastMotion time.Time
	hasMotion  bool // whether any motion was ever seen
}

// NewPresenceTracker creates a tracker with the given presence timeout.
func NewPresenceTracker(timeout time.Duration) *PresenceTracker {
	return &PresenceTracker{timeout: timeout}
}

// Update consumes one raw motion sample. It returns true if the presence
// state changed on this call.
func (p *PresenceTracker) Update(rawMotion bool, now time.Time) bool {
	if rawMotion {
		p.lastMotion = now
		p.hasMotion = true
		if !p.present {
			p.present = true
			return true
		}
		return false
	}

	if p.present && now.Sub(p.lastMotion) >= p.timeout {
		p.present = false
		return true
	}
	return false
}

// Present returns the debounced occupancy state.
func (p *PresenceTracker) Present() bool {
	return p.present
}

// LastMotion returns the timestamp of the most recent motion pulse and
// whether any pulse has been seen since startup.
func (p *PresenceTracker) LastMotion() (time.Time, bool) {
	return p.lastMotion, p.hasMotion
}
