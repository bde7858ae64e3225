package climate

import "errors"

// FakeSensor is a test double that returns scripted readings.
type FakeSensor struct {
	// Samples contains scripted readings. Each call to Read() consumes
	// the next sample; the last sample repeats when exhausted.
	Samples []Reading

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeSensor creates a FakeSensor with the given samples.
func NewFakeSensor(samples []Reading) *FakeSensor {
	return &FakeSensor{Samples: samples}
}

// Read returns the next scripted reading.
func (f *FakeSensor) Read() (Reading, error) {
	if f.ReadError != nil {
		return Reading{}, f.ReadError
	}

	if len(f.Samples) == 0 {
		return Reading{}, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the sensor as closed.
func (f *FakeSensor) Close() error {
	f.Closed = true
	return nil
}
