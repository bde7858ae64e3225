// Package logic contains pure control logic for the shelter controller.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Defaults for the control constants. All are overridable through the
// config file; these match the deployed device.
const (
	DefaultPresenceTimeout  = 60 * time.Minute
	DefaultMinDwell         = 5 * time.Minute
	DefaultColdThreshold    = 13.0
	DefaultMinReasonable    = -30.0
	DefaultMaxReasonable    = 45.0
	DefaultPeriodicInterval = 10 * time.Minute
	DefaultMotionCooldown   = 1 * time.Minute
)

// CaptureReason explains why the schedule gate fired.
type CaptureReason string

const (
	CapturePeriodic CaptureReason = "scheduled"
	CaptureMotion   CaptureReason = "motion detected"
)

// SensorTransition reports a health edge from EnvironmentModel.Sample.
// Health changes are edge-triggered so the caller can log them once
// instead of every sample.
type SensorTransition int

const (
	SensorUnchanged SensorTransition = iota
	SensorFailed
	SensorRecovered
)

// ActuatorAction is the outcome of an ActuatorController.Apply call.
type ActuatorAction int

const (
	ActuatorNoChange ActuatorAction = iota
	ActuatorSwitched
	ActuatorSuppressed // transition wanted but dwell time not yet elapsed
)
