package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/meshpin/node/internal/metrics"
)

// Client is the capability every object-store call goes through: a plain
// POST and a multipart POST. A real net/http implementation and an
// in-memory test double (storetest.Mock) both satisfy it.
type Client interface {
	Post(ctx context.Context, url string) (*http.Response, error)
	PostMultipart(ctx context.Context, url, fieldName string, body []byte) (*http.Response, error)
}

// HTTPClient is the production Client backed by net/http.
type HTTPClient struct {
	BaseURL string
	HTTP    *http.Client
	Metrics *metrics.Registry
}

// NewHTTPClient returns an HTTPClient with a sane request timeout. reg may
// be nil, in which case object-store request metrics simply aren't
// recorded (the in-memory storetest.Mock never goes through here, so only
// the real HTTP path is instrumented).
func NewHTTPClient(baseURL string, reg *metrics.Registry) *HTTPClient {
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Metrics: reg,
	}
}

func (c *HTTPClient) Post(ctx context.Context, path string) (*http.Response, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, nil)
	if err != nil {
		c.observe(path, start, nil, err)
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	c.observe(path, start, resp, err)
	return resp, err
}

func (c *HTTPClient) PostMultipart(ctx context.Context, path, fieldName string, body []byte) (*http.Response, error) {
	start := time.Now()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(fieldName, fieldName)
	if err != nil {
		c.observe(path, start, nil, err)
		return nil, err
	}
	if _, err := part.Write(body); err != nil {
		c.observe(path, start, nil, err)
		return nil, err
	}
	if err := w.Close(); err != nil {
		c.observe(path, start, nil, err)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, &buf)
	if err != nil {
		c.observe(path, start, nil, err)
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := c.HTTP.Do(req)
	c.observe(path, start, resp, err)
	return resp, err
}

// observe records a request's outcome and duration against endpoint, the
// request path with any query string stripped so hash/arg values don't
// blow up cardinality.
func (c *HTTPClient) observe(path string, start time.Time, resp *http.Response, err error) {
	if c.Metrics == nil {
		return
	}
	endpoint := path
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	outcome := "success"
	if err != nil || resp == nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = "error"
	}
	c.Metrics.ObjectStoreRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	c.Metrics.ObjectStoreRequestDurationSeconds.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// allowEmptyBody permits call to return a nil result instead of an error
// when the response body is empty after trimming. Every current caller
// passes emptyBodyIsError; "cat", the one operation whose empty body is a
// success, goes through callRaw instead.
type allowEmptyBody bool

const (
	emptyBodyIsError   allowEmptyBody = false
	emptyBodyIsSuccess allowEmptyBody = true
)

// call runs an HTTP round trip, rejects non-2xx statuses, and decodes the
// body as JSON into D. A nil *D with a nil error means "empty body,
// treated as success" - only returned when allowEmpty is true.
func call[D any](resp *http.Response, err error, allowEmpty allowEmptyBody) (*D, error) {
	if err != nil {
		return nil, fmt.Errorf("objectstore: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, fmt.Errorf("objectstore: reading response body: %w", readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("objectstore: %s (status %d)", strings.TrimSpace(string(body)), resp.StatusCode)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		if allowEmpty {
			return nil, nil
		}
		return nil, fmt.Errorf("objectstore: empty response body")
	}

	var out D
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("objectstore: decoding response: %w", err)
	}
	return &out, nil
}

// callRaw is the "cat" variant: success is the raw trimmed body as a
// string, with an empty body permitted.
func callRaw(resp *http.Response, err error) (string, error) {
	if err != nil {
		return "", fmt.Errorf("objectstore: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return "", fmt.Errorf("objectstore: reading response body: %w", readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("objectstore: %s (status %d)", strings.TrimSpace(string(body)), resp.StatusCode)
	}
	return string(bytes.TrimSpace(body)), nil
}
