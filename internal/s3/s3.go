// Package s3 uploads photos and metadata to an S3 bucket using AWS
// Signature V4 over plain HTTP requests. The full SDK would be overkill:
// the device only ever PUTs and GETs single small objects.
package s3

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrNotFound is returned by GetObject when the key does not exist.
var ErrNotFound = errors.New("s3: object not found")

// Client talks to a single bucket.
type Client struct {
	bucket    string
	region    string
	folder    string // optional key prefix, no trailing slash
	accessKey string
	secretKey string

	httpClient *http.Client
	endpoint   string           // overridable for tests
	now        func() time.Time // injectable for signing tests
}

// NewClient creates a client for the given bucket and region. A non-empty
// folder prefixes every key.
func NewClient(bucket, region, folder, accessKey, secretKey string) *Client {
	return &Client{
		bucket:     bucket,
		region:     region,
		folder:     folder,
		accessKey:  accessKey,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region),
		now:        time.Now,
	}
}

func (c *Client) key(name string) string {
	if c.folder != "" {
		return c.folder + "/" + name
	}
	return name
}

// PutObject uploads body under the given object name and returns the ETag.
func (c *Client) PutObject(name, contentType string, body []byte) (string, error) {
	uri := "/" + c.key(name)
	req, err := http.NewRequest(http.MethodPut, c.endpoint+uri, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	c.sign(req, uri, body)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("put %s: %w", name, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("put %s: status %d", name, resp.StatusCode)
	}

	log.WithField("key", c.key(name)).WithField("bytes", len(body)).Debug("uploaded object")
	return resp.Header.Get("ETag"), nil
}

// GetObject downloads an object. A missing key returns ErrNotFound so the
// caller can tell "not there" from "request failed".
func (c *Client) GetObject(name string) ([]byte, string, error) {
	uri := "/" + c.key(name)
	req, err := http.NewRequest(http.MethodGet, c.endpoint+uri, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	c.sign(req, uri, nil)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("get %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return nil, "", ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, "", fmt.Errorf("get %s: status %d", name, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", name, err)
	}
	return body, resp.Header.Get("ETag"), nil
}
