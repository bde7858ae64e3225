// Package status provides a thread-safe status tracker for the shelter
// controller. It is read by the HTTP handlers and by the MQTT reporter.
package status

import (
	"sync"
	"time"

	"github.com/patura/shelterd/internal/analyzer"
)

// Config contains daemon configuration for display.
type Config struct {
	TickMs          int64
	SampleMs        int64
	HeartbeatMs     int64
	Broker          string
	HTTPPort        string
	DeviceID        string
	ColdThresholdC  float64
	PresenceTimeout time.Duration
	MinDwell        time.Duration
}

// Environment is the latest sensor fusion output.
type Environment struct {
	RawTemperature float64
	RawHumidity    float64
	EffectiveTemp  float64
	ExpectedTemp   float64
	SensorHealthy  bool
	UsingFallback  bool
}

// Blanket is the relay state.
type Blanket struct {
	On         bool
	Override   bool
	LastChange time.Time
}

// Presence is the debounced occupancy state.
type Presence struct {
	Present    bool
	LastMotion time.Time
	HasMotion  bool
}

// Capture records the most recent photo cycle.
type Capture struct {
	Time    time.Time
	Reason  string
	Success bool
	Metrics *analyzer.Metrics
}

// Snapshot is a point-in-time view of controller state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	SafeMode      bool
	BootAttempts  int64
	Presence      Presence
	Environment   Environment
	Blanket       Blanket
	CameraOK      bool
	MQTTConnected bool
	LastCapture   Capture
	StartTime     time.Time
	Now           time.Time
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Mode returns the operating mode as a string.
func (s Snapshot) Mode() string {
	if s.SafeMode {
		return "SAFE"
	}
	return "NORMAL"
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// SetBoot records the boot state, once after OnBoot.
func (t *Tracker) SetBoot(safeMode bool, attempts int64) {
	t.mu.Lock()
	t.snap.SafeMode = safeMode
	t.snap.BootAttempts = attempts
	t.mu.Unlock()
}

// Update sets the per-tick control state. Called from runLoop every tick.
func (t *Tracker) Update(p Presence, e Environment, b Blanket) {
	t.mu.Lock()
	t.snap.Presence = p
	t.snap.Environment = e
	t.snap.Blanket = b
	t.mu.Unlock()
}

// SetCameraOK sets camera availability.
func (t *Tracker) SetCameraOK(ok bool) {
	t.mu.Lock()
	t.snap.CameraOK = ok
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetLastCapture records the outcome of a capture cycle.
func (t *Tracker) SetLastCapture(c Capture) {
	t.mu.Lock()
	t.snap.LastCapture = c
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
