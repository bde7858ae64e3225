//go:build linux

package camera

import (
	"fmt"
	"strings"

	"github.com/blackjack/webcam"
	log "github.com/sirupsen/logrus"
)

const frameTimeoutSec = 5

// RealCamera wraps a V4L2 device streaming MJPEG frames.
type RealCamera struct {
	cam    *webcam.Webcam
	width  uint32
	height uint32
}

// NewRealCamera opens the device and negotiates an MJPEG format at the
// requested resolution. The device keeps streaming between captures; the
// first frames after power-on have bad exposure, so Capture discards a few.
func NewRealCamera(device string, width, height uint32) (*RealCamera, error) {
	cam, err := webcam.Open(device)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}

	format, err := findMJPEG(cam)
	if err != nil {
		cam.Close()
		return nil, err
	}

	_, w, h, err := cam.SetImageFormat(format, width, height)
	if err != nil {
		cam.Close()
		return nil, fmt.Errorf("set image format: %w", err)
	}
	if w != width || h != height {
		log.WithField("width", w).WithField("height", h).Info("camera adjusted resolution")
	}

	if err := cam.StartStreaming(); err != nil {
		cam.Close()
		return nil, fmt.Errorf("start streaming: %w", err)
	}

	return &RealCamera{cam: cam, width: w, height: h}, nil
}

func findMJPEG(cam *webcam.Webcam) (webcam.PixelFormat, error) {
	for format, name := range cam.GetSupportedFormats() {
		if strings.Contains(strings.ToUpper(name), "JPEG") {
			return format, nil
		}
	}
	return 0, fmt.Errorf("device supports no JPEG format")
}

// Available reports whether the device is open.
func (c *RealCamera) Available() bool {
	return c.cam != nil
}

// Capture reads one frame. A couple of frames are discarded first so the
// auto-exposure has settled on the returned one.
func (c *RealCamera) Capture() ([]byte, error) {
	if c.cam == nil {
		return nil, fmt.Errorf("camera not initialised")
	}

	var frame []byte
	for i := 0; i < 3; i++ {
		if err := c.cam.WaitForFrame(frameTimeoutSec); err != nil {
			return nil, fmt.Errorf("wait for frame: %w", err)
		}
		raw, err := c.cam.ReadFrame()
		if err != nil {
			return nil, fmt.Errorf("read frame: %w", err)
		}
		if len(raw) == 0 {
			continue
		}
		frame = append([]byte(nil), raw...)
	}
	if len(frame) == 0 {
		return nil, fmt.Errorf("no frame data")
	}
	return frame, nil
}

// Close stops streaming and releases the device.
func (c *RealCamera) Close() error {
	if c.cam == nil {
		return nil
	}
	c.cam.StopStreaming()
	err := c.cam.Close()
	c.cam = nil
	return err
}
