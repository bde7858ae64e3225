// Package boot tracks crash loops across reboots. Every power-on increments
// a persisted counter before any risky subsystem is initialised; too many
// consecutive failed boots demote the device to safe mode (camera disabled,
// heating and sensing kept alive), and a sustained healthy uptime clears the
// counter again.
package boot

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/patura/shelterd/internal/store"
)

// Defaults matching the deployed device.
const (
	DefaultMaxAttempts      = 3
	DefaultSuccessTimeout   = 5 * time.Minute
	DefaultRecoveryInterval = time.Hour
)

// Rebooter restarts the machine. Reboot flushes logs, waits briefly, and
// does not return on real hardware.
type Rebooter interface {
	Reboot(reason string)
}

// Manager is the boot-resilience state machine. It is owned by the control
// loop; no locking.
type Manager struct {
	store    store.Store
	rebooter Rebooter

	maxAttempts      int64
	successTimeout   time.Duration
	recoveryInterval time.Duration

	attempts  int64
	safeMode  bool // sticky for the whole session, see MarkSuccess
	bootStart time.Time
	recovery  time.Time
	cleared   bool
}

// NewManager creates a Manager bound to the given store and rebooter.
func NewManager(s store.Store, r Rebooter, maxAttempts int64, successTimeout, recoveryInterval time.Duration) *Manager {
	return &Manager{
		store:            s,
		rebooter:         r,
		maxAttempts:      maxAttempts,
		successTimeout:   successTimeout,
		recoveryInterval: recoveryInterval,
	}
}

// OnBoot loads the persisted state and records this boot attempt. It must
// run exactly once, before camera or network init: a camera init failure is
// the most common trigger for the next reboot, and the counter has to be on
// disk before that happens.
func (m *Manager) OnBoot(now time.Time) {
	m.bootStart = now
	m.attempts = m.store.GetInt(store.KeyBootAttempts, 0) + 1
	if err := m.store.PutInt(store.KeyBootAttempts, m.attempts); err != nil {
		log.WithError(err).Warn("could not persist boot attempt count")
	}

	persisted := m.store.GetBool(store.KeySafeMode, false)
	if m.attempts >= m.maxAttempts {
		m.safeMode = true
		if !persisted {
			if err := m.store.PutBool(store.KeySafeMode, true); err != nil {
				log.WithError(err).Warn("could not persist safe mode flag")
			}
		}
	} else if persisted {
		m.safeMode = true
	}

	if m.safeMode {
		m.recovery = now
		log.WithField("attempts", m.attempts).Warn("entering safe mode, camera disabled for this session")
	} else {
		log.WithField("attempts", m.attempts).Info("boot attempt recorded")
	}
}

// OnCameraInitFailure reboots immediately so the next boot sees the
// incremented counter. Fail fast rather than limp along with a
// half-initialised camera.
func (m *Manager) OnCameraInitFailure() {
	m.rebooter.Reboot("camera init failed")
}

// OnTick runs the per-tick checks: self-healing after sustained uptime, and
// the hourly recovery reboot while in safe mode.
func (m *Manager) OnTick(now time.Time) {
	if !m.cleared && m.attempts > 0 && now.Sub(m.bootStart) >= m.successTimeout {
		log.WithField("uptime", now.Sub(m.bootStart)).Info("sustained uptime, clearing boot counter")
		m.MarkSuccess()
	}

	if m.safeMode && now.Sub(m.recovery) >= m.recoveryInterval {
		m.MarkSuccess()
		m.rebooter.Reboot("safe mode recovery")
		m.recovery = now // only reached with a fake rebooter
	}
}

// MarkSuccess resets the persisted counter and safe mode flag. The runtime
// safe mode flag is left alone: a device that booted into safe mode stays
// camera-disabled until a fresh boot, even after the counter is cleared.
func (m *Manager) MarkSuccess() {
	m.cleared = true
	if err := m.store.PutInt(store.KeyBootAttempts, 0); err != nil {
		log.WithError(err).Warn("could not clear boot attempt count")
	}
	if err := m.store.PutBool(store.KeySafeMode, false); err != nil {
		log.WithError(err).Warn("could not clear safe mode flag")
	}
}

// ResetCounter clears the persisted state on operator request, without
// waiting for the uptime threshold.
func (m *Manager) ResetCounter() {
	m.MarkSuccess()
	log.Info("boot counter reset by command")
}

// EnterSafeMode demotes the running session on operator request.
func (m *Manager) EnterSafeMode(now time.Time) {
	if m.safeMode {
		return
	}
	m.safeMode = true
	m.recovery = now
	if err := m.store.PutBool(store.KeySafeMode, true); err != nil {
		log.WithError(err).Warn("could not persist safe mode flag")
	}
	log.Warn("safe mode entered by command")
}

// SafeMode reports whether this session runs in safe mode.
func (m *Manager) SafeMode() bool {
	return m.safeMode
}

// CameraAllowed reports whether the camera subsystem may be used.
func (m *Manager) CameraAllowed() bool {
	return !m.safeMode
}

// Attempts returns the boot attempt count recorded for this session.
func (m *Manager) Attempts() int64 {
	return m.attempts
}

// Uptime returns the elapsed time since OnBoot.
func (m *Manager) Uptime(now time.Time) time.Duration {
	return now.Sub(m.bootStart)
}
