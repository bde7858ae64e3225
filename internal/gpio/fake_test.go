package gpio

import (
	"errors"
	"testing"
)

func TestFakeMotionReaderRead(t *testing.T) {
	f := NewFakeMotionReader([]bool{true, false, true})

	want := []bool{true, false, true, true} // last sample repeats
	for i, w := range want {
		got, err := f.Read()
		if err != nil {
			t.Fatalf("read %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("read %d = %v, want %v", i, got, w)
		}
	}
}

func TestFakeMotionReaderNoSamples(t *testing.T) {
	f := NewFakeMotionReader(nil)

	if _, err := f.Read(); err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeMotionReaderError(t *testing.T) {
	f := NewFakeMotionReader([]bool{true})
	f.ReadError = errors.New("simulated error")

	if _, err := f.Read(); err == nil {
		t.Error("expected error to be returned")
	}
}

func TestFakeRelayRecordsStates(t *testing.T) {
	f := &FakeRelay{}

	f.SetState(true)
	f.SetState(false)
	f.SetState(true)

	if len(f.States) != 3 {
		t.Fatalf("recorded %d states, want 3", len(f.States))
	}
	if !f.Last() {
		t.Error("last state should be on")
	}
}

func TestFakeRelayWriteError(t *testing.T) {
	f := &FakeRelay{WriteError: errors.New("simulated error")}

	if err := f.SetState(true); err == nil {
		t.Error("expected error to be returned")
	}
	if len(f.States) != 0 {
		t.Error("failed write must not be recorded")
	}
}
