// Package apiclient is the typed gateway to the backend API. Every call
// goes to a configured base URL with a JSON content type and, when a
// bearer token is set, an Authorization header. Failures are reported as
// a typed *Error that distinguishes transport failures (no usable
// upstream response) from backend-reported failures (non-2xx status with
// a decoded envelope).
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/linkeunid/linkeun-dash/internal/models"
)

// Response is a decoded backend reply.
type Response struct {
	StatusCode int
	Envelope   models.Envelope
}

// Error is the gateway failure type.
// Transport failures carry only the underlying error; backend failures
// carry the upstream status and the decoded envelope.
type Error struct {
	Transport  bool
	StatusCode int
	Envelope   *models.Envelope
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Transport {
		return fmt.Sprintf("api transport failure: %v", e.Err)
	}
	return fmt.Sprintf("api backend failure: status %d: %s", e.StatusCode, e.backendMessage())
}

// Unwrap exposes the underlying transport error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) backendMessage() string {
	if e.Envelope != nil {
		return e.Envelope.Message
	}
	return ""
}

// Message returns the backend-provided message, or fallback when absent.
func (e *Error) Message(fallback string) string {
	if msg := e.backendMessage(); msg != "" {
		return msg
	}
	return fallback
}

// Status returns the upstream status code, or fallback for transport failures.
func (e *Error) Status(fallback int) int {
	if e.Transport || e.StatusCode == 0 {
		return fallback
	}
	return e.StatusCode
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Observer receives one record per outbound call. A statusCode of 0
// marks a transport failure.
type Observer func(method string, statusCode int, duration time.Duration)

// Client wraps a resty client bound to the backend base URL.
type Client struct {
	rc      *resty.Client
	observe Observer
}

// Option customizes a Client at construction.
type Option func(*Client)

// WithToken sets the bearer token sent on every call.
func WithToken(token string) Option {
	return func(c *Client) {
		c.rc.SetAuthToken(token)
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.rc.SetTimeout(timeout)
	}
}

// WithObserver registers a metrics callback for outbound calls.
func WithObserver(observe Observer) Option {
	return func(c *Client) {
		c.observe = observe
	}
}

// New creates a gateway client for the given backend origin.
func New(baseURL string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	client := &Client{rc: rc}
	for _, opt := range opts {
		opt(client)
	}

	return client
}

// SetToken replaces the bearer token used for subsequent calls.
func (c *Client) SetToken(token string) {
	c.rc.SetAuthToken(token)
}

// ClearToken removes the bearer token from subsequent calls.
func (c *Client) ClearToken() {
	c.rc.SetAuthToken("")
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string {
	return c.rc.BaseURL
}

// Get performs a GET request against path.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPatch, path, body)
}

// Delete performs a DELETE request against path.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*Response, error) {
	request := c.rc.R().SetContext(ctx)
	if body != nil {
		request.SetBody(body)
	}

	start := time.Now()
	response, err := request.Execute(method, path)
	if c.observe != nil {
		statusCode := 0
		if err == nil {
			statusCode = response.StatusCode()
		}
		c.observe(method, statusCode, time.Since(start))
	}
	if err != nil {
		return nil, &Error{Transport: true, Err: err}
	}

	var envelope models.Envelope
	if err := json.Unmarshal(response.Body(), &envelope); err != nil {
		// An unparseable reply is indistinguishable from a broken transport
		// for the caller: there is no envelope to branch on.
		return nil, &Error{Transport: true, Err: fmt.Errorf("decoding envelope: %w", err)}
	}

	result := &Response{
		StatusCode: response.StatusCode(),
		Envelope:   envelope,
	}

	if response.IsError() {
		return result, &Error{
			StatusCode: result.StatusCode,
			Envelope:   &result.Envelope,
		}
	}

	return result, nil
}
