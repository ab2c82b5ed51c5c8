// Package network fetches and decodes JSON documents over HTTP.
package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrBadData is returned when a successful response carries no body.
var ErrBadData = errors.New("bad data: empty response body")

const maxBodyBytes = 10 * 1024 * 1024 // 10 MiB

// StatusError reports a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// DecodeError reports a body that is not the expected JSON shape.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decoding %s: %v", e.URL, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// Getter is what Fetch needs; *Client satisfies it.
type Getter interface {
	Get(ctx context.Context, url string, v any) error
}

type Client struct {
	http *http.Client
}

// New returns a client with the given request timeout; zero keeps the
// net/http default of no timeout.
func New(timeout time.Duration) *Client {
	return NewWithHTTPClient(&http.Client{Timeout: timeout})
}

// NewWithHTTPClient wraps an existing http.Client.
func NewWithHTTPClient(hc *http.Client) *Client {
	return &Client{http: hc}
}

// Get performs one GET and decodes the JSON body into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes)) //nolint:errcheck
		return &StatusError{URL: url, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if len(body) == 0 {
		return ErrBadData
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &DecodeError{URL: url, Err: err}
	}
	return nil
}

// Fetch decodes the document at url into a fresh T.
func Fetch[T any](ctx context.Context, g Getter, url string) (T, error) {
	var out T
	if err := g.Get(ctx, url, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
