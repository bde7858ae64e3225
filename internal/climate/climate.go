// Package climate reads the SHT4x temperature/humidity sensor over I2C.
// The real implementation drives the hardware through periph.io; the fake
// allows testing without a sensor attached.
package climate

// Reading is one sensor sample. Valid is false when the read failed or the
// sensor returned garbage; the caller falls back to the time-of-day table.
type Reading struct {
	Temperature float64 // degrees Celsius
	Humidity    float64 // percent relative
	Valid       bool
}

// Sensor reads the environment on a fixed cadence.
type Sensor interface {
	Read() (Reading, error)
	Close() error
}
