// Package download implements the HTTP transport used to retrieve the
// manifest and package payloads. Every call is a single attempt.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/glorpus-work/modpick/internal/logger"
	pkgerrors "github.com/glorpus-work/modpick/pkg/errors"
)

const (
	// DefaultTimeout bounds every request so an unresponsive server cannot stall a session.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "modpick/1.0"
	// maxRedirects mirrors net/http's own limit but reports it as a download failure.
	maxRedirects = 10
)

// Response is the raw result of a GET.
type Response struct {
	StatusCode int
	Body       []byte
}

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d %s for %s", e.Code, http.StatusText(e.Code), e.URL)
}

// Unwrap lets errors.Is match ErrStatus.
func (e *StatusError) Unwrap() error {
	return pkgerrors.ErrStatus
}

// Client performs HTTP GETs without retries.
type Client struct {
	client    *http.Client
	userAgent string
}

// NewClient creates a client with the given timeout and user agent.
// A zero timeout selects DefaultTimeout.
func NewClient(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects: %w", pkgerrors.ErrFetchFailed)
				}
				return nil
			},
		},
		userAgent: userAgent,
	}
}

// Get performs one GET and returns status code and body regardless of status.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read response body")
	}

	logger.Debug("GET finished", logger.Fields{"url": url, "status": resp.StatusCode, "bytes": len(body)})
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// Fetch returns the body of a successful, non-empty response. A non-2xx
// status yields a *StatusError and an empty body yields ErrEmptyBody.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}
	if len(resp.Body) == 0 {
		return nil, fmt.Errorf("%s: %w", url, pkgerrors.ErrEmptyBody)
	}
	return resp.Body, nil
}
