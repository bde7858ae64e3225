//go:build !linux

package climate

import "errors"

var errUnsupported = errors.New("climate: not supported on this platform (requires Linux)")

// RealSensor is not available on non-Linux platforms.
type RealSensor struct{}

func NewRealSensor(busName string) (*RealSensor, error) {
	return nil, errUnsupported
}

func (s *RealSensor) Read() (Reading, error) {
	return Reading{}, errUnsupported
}

func (s *RealSensor) Close() error {
	return nil
}
