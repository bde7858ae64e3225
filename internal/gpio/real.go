//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealMotionReader reads the PIR sensor through the Linux GPIO character
// device.
type RealMotionReader struct {
	chip *gpiocdev.Chip
	pin  *gpiocdev.Line
}

// NewRealMotionReader opens the motion input pin.
func NewRealMotionReader(pin int) (*RealMotionReader, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// Pull-down so a disconnected sensor reads as "no motion" rather
	// than floating.
	line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request motion pin %d: %w", pin, err)
	}

	return &RealMotionReader{chip: chip, pin: line}, nil
}

// Read returns true while the PIR output is high.
func (r *RealMotionReader) Read() (bool, error) {
	raw, err := r.pin.Value()
	if err != nil {
		return false, fmt.Errorf("read motion pin: %w", err)
	}
	return raw != 0, nil
}

// Close releases GPIO resources, restoring the pin to the Pi boot default
// (input with pull-down).
func (r *RealMotionReader) Close() error {
	var errs []error

	if r.pin != nil {
		if err := r.pin.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure motion pin: %w", err))
		}
		if err := r.pin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close motion pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealRelay drives the blanket relay through the Linux GPIO character
// device.
type RealRelay struct {
	chip *gpiocdev.Chip
	pin  *gpiocdev.Line
}

// NewRealRelay opens the relay output pin, initially off.
func NewRealRelay(pin int) (*RealRelay, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request relay pin %d: %w", pin, err)
	}

	return &RealRelay{chip: chip, pin: line}, nil
}

// SetState sets the relay output.
func (r *RealRelay) SetState(on bool) error {
	value := 0
	if on {
		value = 1
	}
	if err := r.pin.SetValue(value); err != nil {
		return fmt.Errorf("set relay pin: %w", err)
	}
	return nil
}

// Close turns the relay off and releases GPIO resources. Leaving the
// blanket energised after the controller exits would be unsupervised
// heating.
func (r *RealRelay) Close() error {
	var errs []error

	if r.pin != nil {
		if err := r.pin.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("relay off: %w", err))
		}
		if err := r.pin.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure relay pin: %w", err))
		}
		if err := r.pin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close relay pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
