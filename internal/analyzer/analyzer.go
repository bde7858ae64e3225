// Package analyzer scores captured JPEG frames. The metrics travel with
// each photo as sidecar metadata, so bad frames (lens fogged over, IR cut
// filter stuck, night shots) can be spotted without pulling every image.
package analyzer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"math"
)

const (
	sampleCount = 1000

	darkThreshold   = 40.0
	brightThreshold = 215.0

	overexposedLevel  = 250
	underexposedLevel = 5
)

// Metrics describes the quality of one frame. Brightness and contrast are
// in luminance units (0-255), exposure figures are percentages of sampled
// pixels, sharpness and noise are normalised to 0-100.
type Metrics struct {
	Brightness    float64 `json:"brightness"`
	Contrast      float64 `json:"contrast"`
	Sharpness     float64 `json:"sharpness"`
	NoiseLevel    float64 `json:"noise_level"`
	Overexposure  float64 `json:"overexposure_pct"`
	Underexposure float64 `json:"underexposure_pct"`
	QualityScore  float64 `json:"quality_score"`
	IsDark        bool    `json:"is_dark"`
	IsBright      bool    `json:"is_bright"`
}

// Analyze decodes the JPEG and computes quality metrics from a uniform
// grid of luminance samples. Decoding the whole frame just to sample a
// thousand pixels is fine on a Pi.
func Analyze(jpeg []byte) (Metrics, error) {
	img, _, err := image.Decode(bytes.NewReader(jpeg))
	if err != nil {
		return Metrics{}, fmt.Errorf("decode jpeg: %w", err)
	}

	samples := sampleLuminance(img, sampleCount)
	if len(samples) == 0 {
		return Metrics{}, fmt.Errorf("empty image")
	}

	var m Metrics
	m.Brightness = mean(samples)
	m.Contrast = stddev(samples, m.Brightness)
	m.NoiseLevel = math.Min(100, m.Contrast)
	m.Sharpness = sharpness(samples)
	m.Overexposure = fractionAbove(samples, overexposedLevel) * 100
	m.Underexposure = fractionBelow(samples, underexposedLevel) * 100
	m.IsDark = m.Brightness < darkThreshold
	m.IsBright = m.Brightness > brightThreshold
	m.QualityScore = score(m)
	return m, nil
}

// sampleLuminance walks a roughly square grid over the image and collects
// per-pixel luminance.
func sampleLuminance(img image.Image, n int) []float64 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	side := int(math.Sqrt(float64(n)))
	if side < 1 {
		side = 1
	}

	samples := make([]float64, 0, side*side)
	for gy := 0; gy < side; gy++ {
		for gx := 0; gx < side; gx++ {
			x := bounds.Min.X + gx*w/side
			y := bounds.Min.Y + gy*h/side
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			samples = append(samples, float64(g.Y))
		}
	}
	return samples
}

func mean(samples []float64) float64 {
	var sum float64
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples))
}

func stddev(samples []float64, mean float64) float64 {
	var variance float64
	for _, s := range samples {
		d := s - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(samples)))
}

// sharpness averages adjacent-sample gradients. Grid neighbours are
// spatially close, so strong edges show up as large deltas.
func sharpness(samples []float64) float64 {
	if len(samples) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(samples); i++ {
		sum += math.Abs(samples[i] - samples[i-1])
	}
	avg := sum / float64(len(samples)-1)
	return math.Min(100, avg*2)
}

func fractionAbove(samples []float64, level float64) float64 {
	var n int
	for _, s := range samples {
		if s >= level {
			n++
		}
	}
	return float64(n) / float64(len(samples))
}

func fractionBelow(samples []float64, level float64) float64 {
	var n int
	for _, s := range samples {
		if s <= level {
			n++
		}
	}
	return float64(n) / float64(len(samples))
}

// score folds the metrics into a single 0-100 figure: penalties for bad
// exposure, low contrast, noise and clipping, a small bonus for sharpness.
func score(m Metrics) float64 {
	s := 100.0

	if m.Brightness < darkThreshold {
		s -= (darkThreshold - m.Brightness) * 1.5
	} else if m.Brightness > brightThreshold {
		s -= (m.Brightness - brightThreshold) * 1.5
	}

	if m.Contrast < 30 {
		s -= 30 - m.Contrast
	}

	s -= m.NoiseLevel * 0.5
	s -= m.Overexposure * 2.0
	s -= m.Underexposure * 1.5

	if m.Sharpness > 20 {
		s += math.Min(10, (m.Sharpness-20)*0.2)
	}

	return math.Max(0, math.Min(100, s))
}
