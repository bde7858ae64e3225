package s3

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testClient(endpoint string) *Client {
	c := NewClient("shelter-photos", "eu-west-1", "cats", "AKIDEXAMPLE", "secret")
	c.endpoint = endpoint
	c.now = func() time.Time {
		return time.Date(2026, 1, 10, 12, 30, 45, 0, time.UTC)
	}
	if endpoint != "" {
		c.httpClient = http.DefaultClient
	}
	return c
}

func TestSignatureHeaders(t *testing.T) {
	body := []byte("jpeg bytes")
	var got http.Header
	var gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotPath = r.URL.Path
		w.Header().Set("ETag", `"abc123"`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	etag, err := c.PutObject("cat_20260110_123045.jpg", "image/jpeg", body)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if etag != `"abc123"` {
		t.Errorf("etag = %q", etag)
	}
	if gotPath != "/cats/cat_20260110_123045.jpg" {
		t.Errorf("path = %q, want folder prefix applied", gotPath)
	}

	if d := got.Get("x-amz-date"); d != "20260110T123045Z" {
		t.Errorf("x-amz-date = %q", d)
	}
	wantHash := sha256.Sum256(body)
	if h := got.Get("x-amz-content-sha256"); h != hex.EncodeToString(wantHash[:]) {
		t.Errorf("payload hash = %q", h)
	}

	auth := got.Get("Authorization")
	if !strings.HasPrefix(auth, "AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/20260110/eu-west-1/s3/aws4_request, ") {
		t.Errorf("authorization = %q", auth)
	}
	if !strings.Contains(auth, "SignedHeaders=host;x-amz-content-sha256;x-amz-date, ") {
		t.Errorf("authorization = %q", auth)
	}
	i := strings.Index(auth, "Signature=")
	if i < 0 || len(auth[i+len("Signature="):]) != 64 {
		t.Errorf("authorization signature malformed: %q", auth)
	}
}

func TestSignatureIsDeterministic(t *testing.T) {
	c := testClient("https://example.invalid")

	sig := func() string {
		req, _ := http.NewRequest(http.MethodPut, "https://bucket.example/x", nil)
		c.sign(req, "/x", []byte("payload"))
		return req.Header.Get("Authorization")
	}

	if sig() != sig() {
		t.Error("same inputs must produce the same signature")
	}
}

func TestGetObjectNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, _, err := c.GetObject("missing.json")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"tag"`)
		w.Write([]byte(`{"v":1}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	body, etag, err := c.GetObject("config.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(body) != `{"v":1}` || etag != `"tag"` {
		t.Errorf("body = %q, etag = %q", body, etag)
	}
}

func TestPutObjectServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	if _, err := c.PutObject("x.jpg", "image/jpeg", nil); err == nil {
		t.Error("expected error on 500")
	}
}
