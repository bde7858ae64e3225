//go:build !linux

package camera

import "errors"

var errUnsupported = errors.New("camera: not supported on this platform (requires Linux)")

// RealCamera is not available on non-Linux platforms.
type RealCamera struct{}

func NewRealCamera(device string, width, height uint32) (*RealCamera, error) {
	return nil, errUnsupported
}

func (c *RealCamera) Available() bool {
	return false
}

func (c *RealCamera) Capture() ([]byte, error) {
	return nil, errUnsupported
}

func (c *RealCamera) Close() error {
	return nil
}
