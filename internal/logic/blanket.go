package logic

import "time"

// ActuatorController decides and gates the heated-blanket relay state.
// Relay hardware and thermal mass both penalize rapid toggling, so a
// transition is applied only after MinDwell has elapsed since the previous
// one; a borderline temperature oscillating around the threshold must not
// chatter the relay every sampling interval.
type ActuatorController struct {
	coldThreshold float64
	minDwell      time.Duration

	on         bool
	lastChange time.Time
	hasChanged bool // false until the first actuation, which is never dwell-gated
	override   bool
}

// NewActuatorController creates a controller with the given cold threshold
// and minimum dwell time.
func NewActuatorController(coldThreshold float64, minDwell time.Duration) *ActuatorController {
	return &ActuatorController{
		coldThreshold: coldThreshold,
		minDwell:      minDwell,
	}
}

// Decide returns the desired relay state for the given inputs.
func (a *ActuatorController) Decide(present bool, effectiveTemp float64) bool {
	return present && effectiveTemp < a.coldThreshold
}

// Apply moves the relay toward the desired state, enforcing the dwell time.
// While a manual override is set, automatic logic is fully bypassed.
// The returned action tells the caller whether to drive the physical relay.
func (a *ActuatorController) Apply(desired bool, now time.Time) ActuatorAction {
	if a.override {
		return ActuatorNoChange
	}
	if desired == a.on {
		return ActuatorNoChange
	}
	if a.hasChanged && now.Sub(a.lastChange) < a.minDwell {
		return ActuatorSuppressed
	}
	a.on = desired
	a.lastChange = now
	a.hasChanged = true
	return ActuatorSwitched
}

// Force sets the manual override and actuates immediately, bypassing the
// dwell gate. Check-and-apply is a single step so a command arriving between
// Decide and Apply cannot interleave with automatic control.
func (a *ActuatorController) Force(on bool, now time.Time) ActuatorAction {
	a.override = true
	if a.on == on && a.hasChanged {
		return ActuatorNoChange
	}
	a.on = on
	a.lastChange = now
	a.hasChanged = true
	return ActuatorSwitched
}

// ClearOverride returns the blanket to automatic control. The current relay
// state is kept; the next Apply decides from there, still dwell-gated.
func (a *ActuatorController) ClearOverride() {
	a.override = false
}

// On returns the current relay state.
func (a *ActuatorController) On() bool {
	return a.on
}

// Override reports whether manual override is active.
func (a *ActuatorController) Override() bool {
	return a.override
}

// LastChange returns the timestamp of the last actuation.
func (a *ActuatorController) LastChange() time.Time {
	return a.lastChange
}

// DwellRemaining returns how long a pending transition is still suppressed,
// zero when a transition would be allowed now.
func (a *ActuatorController) DwellRemaining(now time.Time) time.Duration {
	if !a.hasChanged {
		return 0
	}
	if rem := a.minDwell - now.Sub(a.lastChange); rem > 0 {
		return rem
	}
	return 0
}
