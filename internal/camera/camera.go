// Package camera captures JPEG stills from a V4L2 webcam. The real
// implementation streams MJPEG frames from the device; the fake returns
// canned images for testing.
package camera

// Camera captures still images.
type Camera interface {
	// Available reports whether the device is initialised and usable.
	Available() bool

	// Capture returns one JPEG frame.
	Capture() ([]byte, error)

	// Close releases the device.
	Close() error
}
