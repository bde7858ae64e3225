package shelter

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"
	"time"

	"github.com/patura/shelterd/internal/camera"
)

// fakeObjectStore records uploads and can fail selectively by name suffix.
type fakeObjectStore struct {
	objects      map[string][]byte
	contentTypes map[string]string
	failSuffix   string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (f *fakeObjectStore) PutObject(name, contentType string, body []byte) (string, error) {
	if f.failSuffix != "" && strings.HasSuffix(name, f.failSuffix) {
		return "", errors.New("upload rejected")
	}
	f.objects[name] = body
	f.contentTypes[name] = contentType
	return "\"etag\"", nil
}

// testFrame returns a real JPEG so the analyzer accepts it.
func testFrame(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 4)})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test frame: %v", err)
	}
	return buf.Bytes()
}

func TestCaptureAndUploadSuccess(t *testing.T) {
	cam := &camera.FakeCamera{Frame: testFrame(t)}
	store := newFakeObjectStore()
	p := NewPhotographer(cam, store, "porch")

	when := time.Date(2026, 1, 10, 12, 30, 45, 0, time.UTC)
	ok, metrics := p.CaptureAndUpload(when, "motion detected")
	if !ok {
		t.Fatal("expected success")
	}
	if metrics == nil {
		t.Fatal("expected metrics")
	}

	photo, found := store.objects["cat_20260110_123045.jpg"]
	if !found {
		t.Fatalf("photo not uploaded, have %v", keys(store.objects))
	}
	if !bytes.Equal(photo, cam.Frame) {
		t.Error("uploaded photo does not match captured frame")
	}
	if got := store.contentTypes["cat_20260110_123045.jpg"]; got != "image/jpeg" {
		t.Errorf("photo content type = %q", got)
	}

	sidecar, found := store.objects["cat_20260110_123045.json"]
	if !found {
		t.Fatal("sidecar not uploaded")
	}
	if got := store.contentTypes["cat_20260110_123045.json"]; got != "application/json" {
		t.Errorf("sidecar content type = %q", got)
	}

	var meta photoMeta
	if err := json.Unmarshal(sidecar, &meta); err != nil {
		t.Fatalf("sidecar is not valid JSON: %v", err)
	}
	if meta.Device != "porch" {
		t.Errorf("sidecar device = %q", meta.Device)
	}
	if meta.Reason != "motion detected" {
		t.Errorf("sidecar reason = %q", meta.Reason)
	}
	if meta.Timestamp != "2026-01-10T12:30:45Z" {
		t.Errorf("sidecar timestamp = %q", meta.Timestamp)
	}
}

func TestCaptureAndUploadCameraError(t *testing.T) {
	cam := &camera.FakeCamera{CaptureError: errors.New("device busy")}
	store := newFakeObjectStore()
	p := NewPhotographer(cam, store, "porch")

	ok, metrics := p.CaptureAndUpload(time.Now(), "scheduled")
	if ok {
		t.Error("expected failure on capture error")
	}
	if metrics != nil {
		t.Error("expected nil metrics on capture error")
	}
	if len(store.objects) != 0 {
		t.Error("nothing should be uploaded after a failed capture")
	}
}

func TestCaptureAndUploadBadFrame(t *testing.T) {
	cam := &camera.FakeCamera{Frame: []byte("not a jpeg")}
	p := NewPhotographer(cam, newFakeObjectStore(), "porch")

	ok, _ := p.CaptureAndUpload(time.Now(), "scheduled")
	if ok {
		t.Error("expected failure on undecodable frame")
	}
}

func TestCaptureAndUploadPhotoUploadFails(t *testing.T) {
	cam := &camera.FakeCamera{Frame: testFrame(t)}
	store := newFakeObjectStore()
	store.failSuffix = ".jpg"
	p := NewPhotographer(cam, store, "porch")

	ok, metrics := p.CaptureAndUpload(time.Now(), "scheduled")
	if ok {
		t.Error("expected failure when photo upload fails")
	}
	if metrics == nil {
		t.Error("metrics should still be returned, the frame was scored")
	}
}

func TestCaptureAndUploadSidecarFailureStillSucceeds(t *testing.T) {
	cam := &camera.FakeCamera{Frame: testFrame(t)}
	store := newFakeObjectStore()
	store.failSuffix = ".json"
	p := NewPhotographer(cam, store, "porch")

	ok, _ := p.CaptureAndUpload(time.Now(), "scheduled")
	if !ok {
		t.Error("sidecar failure must not fail the cycle")
	}
	if len(store.objects) != 1 {
		t.Errorf("expected just the photo uploaded, got %v", keys(store.objects))
	}
}

func TestCaptureAndUploadNoStore(t *testing.T) {
	cam := &camera.FakeCamera{Frame: testFrame(t)}
	p := NewPhotographer(cam, nil, "porch")

	ok, metrics := p.CaptureAndUpload(time.Now(), "scheduled")
	if !ok {
		t.Error("capture without a store should still succeed")
	}
	if metrics == nil {
		t.Error("expected metrics without a store")
	}
}

func TestPhotographerAvailable(t *testing.T) {
	if (&Photographer{}).Available() {
		t.Error("nil camera should not be available")
	}
	p := NewPhotographer(&camera.FakeCamera{Unavailable: true}, nil, "porch")
	if p.Available() {
		t.Error("unavailable camera should not be available")
	}
	p = NewPhotographer(&camera.FakeCamera{}, nil, "porch")
	if !p.Available() {
		t.Error("camera should be available")
	}
}

func keys(m map[string][]byte) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}
