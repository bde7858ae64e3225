//go:build linux

package climate

import (
	"fmt"

	"github.com/mikesmitty/sht4x"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// RealSensor reads an SHT4x over the I2C bus.
type RealSensor struct {
	bus i2c.BusCloser
	dev *sht4x.Dev
}

// NewRealSensor initialises the periph host, opens the named I2C bus
// (empty string selects the first available), and probes the sensor.
func NewRealSensor(busName string) (*RealSensor, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}

	dev, err := sht4x.New(bus, nil)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("probe sht4x: %w", err)
	}

	return &RealSensor{bus: bus, dev: dev}, nil
}

// Read samples the sensor once. A failed read returns Valid=false along
// with the error so the caller can both log and fall back.
func (s *RealSensor) Read() (Reading, error) {
	var e physic.Env
	if err := s.dev.Sense(&e); err != nil {
		return Reading{}, fmt.Errorf("sht4x sense: %w", err)
	}
	return Reading{
		Temperature: e.Temperature.Celsius(),
		Humidity:    float64(e.Humidity) / float64(physic.PercentRH),
		Valid:       true,
	}, nil
}

// Close releases the I2C bus.
func (s *RealSensor) Close() error {
	return s.bus.Close()
}
