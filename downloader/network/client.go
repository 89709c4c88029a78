package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"gtkup/logging"

	"github.com/dustin/go-humanize"
)

// ErrTruncated is returned when the body is shorter than announced
var ErrTruncated = errors.New("transfer truncated")

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned non-OK status: %s", e.Status)
}

// Client handles network operations
type Client struct {
	httpClient *http.Client
	userAgent  string
	progress   *progress
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the overall request timeout; zero means none
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithProgress renders a progress bar per download on w
func WithProgress(w io.Writer) Option {
	return func(c *Client) {
		c.progress = newProgress(w)
	}
}

// NewClient creates a new Client instance
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) newRequest(ctx context.Context, method, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// GetFileSize retrieves the size of a remote file with a HEAD request
func (c *Client) GetFileSize(ctx context.Context, url string) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodHead, url)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to get file size: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("server did not report a Content-Length")
	}

	return resp.ContentLength, nil
}

// Download fetches url into dst in a single attempt and returns the number
// of bytes written
func (c *Client) Download(ctx context.Context, url string, dst io.Writer) (int64, error) {
	logging.LogDebug("📡 Initiating network request to %s", url)

	req, err := c.newRequest(ctx, http.MethodGet, url)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("network request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var body io.Reader = resp.Body
	done := func(bool) {}
	if c.progress != nil && resp.ContentLength > 0 {
		body, done = c.progress.track(resp.Body, resp.ContentLength, url)
	}

	written, err := io.Copy(dst, body)
	if err != nil {
		done(false)
		return written, fmt.Errorf("failed to write file: %w", err)
	}
	if resp.ContentLength >= 0 && written != resp.ContentLength {
		done(false)
		return written, fmt.Errorf("%w: got %d of %d bytes", ErrTruncated, written, resp.ContentLength)
	}
	done(true)

	logging.LogDebug("✅ Download completed. Wrote %s", humanize.IBytes(uint64(written)))
	return written, nil
}

// Wait blocks until all progress bars have been rendered
func (c *Client) Wait() {
	if c.progress != nil {
		c.progress.wait()
	}
}
