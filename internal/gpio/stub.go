//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealMotionReader is not available on non-Linux platforms.
type RealMotionReader struct{}

func NewRealMotionReader(pin int) (*RealMotionReader, error) {
	return nil, errUnsupported
}

func (r *RealMotionReader) Read() (bool, error) {
	return false, errUnsupported
}

func (r *RealMotionReader) Close() error {
	return nil
}

// RealRelay is not available on non-Linux platforms.
type RealRelay struct{}

func NewRealRelay(pin int) (*RealRelay, error) {
	return nil, errUnsupported
}

func (r *RealRelay) SetState(on bool) error {
	return errUnsupported
}

func (r *RealRelay) Close() error {
	return nil
}
