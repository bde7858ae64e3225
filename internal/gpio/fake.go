package gpio

import "errors"

// FakeMotionReader is a test double that returns scripted motion values.
type FakeMotionReader struct {
	// Samples contains scripted motion readings. Each call to Read()
	// consumes the next sample; the last sample repeats when exhausted.
	Samples []bool

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeMotionReader creates a FakeMotionReader with the given samples.
func NewFakeMotionReader(samples []bool) *FakeMotionReader {
	return &FakeMotionReader{Samples: samples}
}

// Read returns the next scripted sample.
func (f *FakeMotionReader) Read() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the reader as closed.
func (f *FakeMotionReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeMotionReader) Reset() {
	f.index = 0
	f.Closed = false
}

// FakeRelay records every state write for inspection.
type FakeRelay struct {
	// States holds the sequence of states written.
	States []bool

	// Closed tracks if Close was called
	Closed bool

	// WriteError, if set, will be returned by SetState()
	WriteError error
}

// SetState records the requested state.
func (f *FakeRelay) SetState(on bool) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.States = append(f.States, on)
	return nil
}

// Close marks the relay as closed.
func (f *FakeRelay) Close() error {
	f.Closed = true
	return nil
}

// Last returns the most recent state written, false if none.
func (f *FakeRelay) Last() bool {
	if len(f.States) == 0 {
		return false
	}
	return f.States[len(f.States)-1]
}
