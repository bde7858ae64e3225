//go:build linux

package boot

import (
	"os/exec"
	"time"

	log "github.com/sirupsen/logrus"
)

// SystemRebooter restarts the controller host through systemd.
type SystemRebooter struct{}

// Reboot logs the reason, gives the log sink a moment to flush, and asks
// systemd to restart the machine. It does not return.
func (SystemRebooter) Reboot(reason string) {
	log.WithField("reason", reason).Warn("rebooting")
	time.Sleep(2 * time.Second)
	if err := exec.Command("systemctl", "reboot").Run(); err != nil {
		log.WithError(err).Error("reboot command failed")
	}
	select {} // wait for the kernel to take us down
}
