package camera

// FakeCamera is a test double returning a canned frame.
type FakeCamera struct {
	// Frame is returned by every Capture.
	Frame []byte

	// CaptureError, if set, will be returned by Capture()
	CaptureError error

	// Unavailable makes Available report false.
	Unavailable bool

	// Captures counts Capture calls.
	Captures int

	// Closed tracks if Close was called
	Closed bool
}

func (f *FakeCamera) Available() bool {
	return !f.Unavailable
}

func (f *FakeCamera) Capture() ([]byte, error) {
	f.Captures++
	if f.CaptureError != nil {
		return nil, f.CaptureError
	}
	return f.Frame, nil
}

func (f *FakeCamera) Close() error {
	f.Closed = true
	return nil
}
