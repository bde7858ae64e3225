package shelter

import (
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/patura/shelterd/internal/analyzer"
	"github.com/patura/shelterd/internal/camera"
)

// ObjectStore is the slice of the S3 client the photographer needs.
type ObjectStore interface {
	PutObject(name, contentType string, body []byte) (string, error)
}

// Photographer runs one capture-and-upload cycle: grab a frame, score it,
// upload the photo and a JSON sidecar with the same base name.
type Photographer struct {
	cam      camera.Camera
	store    ObjectStore
	deviceID string
}

// NewPhotographer creates a Photographer. store may be nil when no upload
// credentials are configured; captures are then scored and dropped.
func NewPhotographer(cam camera.Camera, store ObjectStore, deviceID string) *Photographer {
	return &Photographer{cam: cam, store: store, deviceID: deviceID}
}

// Available reports whether a capture can be attempted.
func (p *Photographer) Available() bool {
	return p.cam != nil && p.cam.Available()
}

// photoMeta is the JSON sidecar uploaded next to each photo.
type photoMeta struct {
	Device    string           `json:"device"`
	Timestamp string           `json:"timestamp"`
	Reason    string           `json:"reason"`
	Metrics   analyzer.Metrics `json:"metrics"`
}

// CaptureAndUpload runs one cycle. It returns success and the image
// metrics when a frame was captured. A failed sidecar upload still counts
// as success for scheduling purposes: the photo made it out.
func (p *Photographer) CaptureAndUpload(now time.Time, reason string) (bool, *analyzer.Metrics) {
	frame, err := p.cam.Capture()
	if err != nil {
		log.WithError(err).Warn("capture failed")
		return false, nil
	}

	metrics, err := analyzer.Analyze(frame)
	if err != nil {
		log.WithError(err).Warn("frame analysis failed")
		return false, nil
	}
	log.WithField("reason", reason).
		WithField("score", fmt.Sprintf("%.0f", metrics.QualityScore)).
		WithField("bytes", len(frame)).
		Info("photo captured")

	if p.store == nil {
		return true, &metrics
	}

	base := fmt.Sprintf("cat_%s", now.UTC().Format("20060102_150405"))

	if _, err := p.store.PutObject(base+".jpg", "image/jpeg", frame); err != nil {
		log.WithError(err).Warn("photo upload failed")
		return false, &metrics
	}

	meta, _ := json.Marshal(photoMeta{
		Device:    p.deviceID,
		Timestamp: now.UTC().Format(time.RFC3339),
		Reason:    reason,
		Metrics:   metrics,
	})
	if _, err := p.store.PutObject(base+".json", "application/json", meta); err != nil {
		log.WithError(err).Warn("metadata upload failed, photo is uploaded")
	}

	return true, &metrics
}
