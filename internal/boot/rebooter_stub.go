//go:build !linux

package boot

import log "github.com/sirupsen/logrus"

// SystemRebooter is a no-op on non-Linux platforms, for development builds.
type SystemRebooter struct{}

func (SystemRebooter) Reboot(reason string) {
	log.WithField("reason", reason).Warn("reboot requested (ignored on this platform)")
}
