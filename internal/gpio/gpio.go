// Package gpio provides motion input and relay output with hardware
// abstraction. The real implementations use the Linux GPIO character
// device; the fakes allow testing without hardware.
package gpio

// MotionReader reads the PIR motion sensor.
type MotionReader interface {
	// Read returns true while the sensor reports motion. The raw signal
	// is instantaneous, not occupancy; debouncing happens upstream.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Relay drives the heated-blanket relay.
type Relay interface {
	// SetState sets the relay, fire-and-forget.
	SetState(on bool) error

	// Close releases GPIO resources, leaving the relay off.
	Close() error
}

// Pin definitions (BCM numbering)
const (
	PinMotion = 17 // PIR motion sensor
	PinRelay  = 27 // heated blanket relay
)
