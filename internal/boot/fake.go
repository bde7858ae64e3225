package boot

// FakeRebooter records reboot requests instead of restarting, for tests.
type FakeRebooter struct {
	Reasons []string
}

func (f *FakeRebooter) Reboot(reason string) {
	f.Reasons = append(f.Reasons, reason)
}
