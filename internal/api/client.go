// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/jeranaias/wayne-tui/internal/config"
)

// Configuration constants for the API client.
const (
	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 15 * time.Second

	// MaxResponseSize is the default maximum response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024

	// RequestIDHeader carries a per-request UUID for log correlation.
	RequestIDHeader = "X-Request-ID"

	userAgent = "wayne-tui"
)

// =============================================================================
// RESULT
// =============================================================================

// Result is the uniform outcome of an API call.
type Result struct {
	// OK is true for 2xx responses.
	OK bool
	// Status is the HTTP status, or 0 when no usable response was received.
	Status int
	// Data is the raw response body.
	Data json.RawMessage
	// Message describes a failure: the server's detail text or the
	// transport error.
	Message string
	// Unauthorized is set on 401. The session has already been cleared.
	Unauthorized bool
	// RequestID is the X-Request-ID sent with the request.
	RequestID string

	method string
	path   string
}

// Err returns nil for a successful result and an *Error otherwise.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	return &Error{Method: r.method, Path: r.path, Status: r.Status, Message: r.Message, RequestID: r.RequestID}
}

// Decode unmarshals Data into v. A failed result returns its error.
func (r Result) Decode(v interface{}) error {
	if err := r.Err(); err != nil {
		return err
	}
	if len(r.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("failed to parse %s %s response: %w", r.method, r.path, err)
	}
	return nil
}

// =============================================================================
// CLIENT
// =============================================================================

// Session supplies the bearer token. Invalidate receives the token a
// rejected request carried.
type Session interface {
	Token() string
	Invalidate(ctx context.Context, token string)
}

// Client is the Wayne Security API client. It is safe for concurrent use.
type Client struct {
	http            *resty.Client
	baseURL         string
	session         Session
	limiter         *rate.Limiter
	maxResponseSize int64
	onUnauthorized  func()
	log             logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithSession attaches a session for bearer tokens and 401 handling.
func WithSession(s Session) Option {
	return func(c *Client) { c.session = s }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithRateLimit caps the request rate. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxResponseSize caps response bodies.
func WithMaxResponseSize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxResponseSize = n
		}
	}
}

// WithUnauthorizedHandler registers fn to run after a 401 cleared the session.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) {
		c.log = log
		c.http.SetLogger(log)
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		timeout := c.http.GetClient().Timeout
		c.http = resty.NewWithClient(hc).
			SetBaseURL(c.baseURL).
			SetHeader("User-Agent", userAgent).
			SetTimeout(timeout).
			SetLogger(c.log)
	}
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	log := logrus.StandardLogger()
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("User-Agent", userAgent).
			SetTimeout(DefaultTimeout).
			SetLogger(log),
		baseURL:         baseURL,
		maxResponseSize: MaxResponseSize,
		log:             log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig creates a client from the [api] config section.
func NewFromConfig(cfg *config.Config, opts ...Option) *Client {
	base := []Option{
		WithTimeout(cfg.Timeout()),
		WithRateLimit(cfg.API.RateLimit, cfg.API.Burst),
		WithMaxResponseSize(cfg.API.MaxResponseBytes),
	}
	return NewClient(cfg.API.URL, append(base, opts...)...)
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a JSON request. body may be nil.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}) Result {
	return c.do(ctx, method, path, func(r *resty.Request) {
		if body != nil {
			r.SetHeader("Content-Type", "application/json")
			r.SetBody(body)
		}
	})
}

// DoForm sends a form-encoded request.
func (c *Client) DoForm(ctx context.Context, method, path string, form map[string]string) Result {
	return c.do(ctx, method, path, func(r *resty.Request) {
		r.SetFormData(form)
	})
}

func (c *Client) do(ctx context.Context, method, path string, prepare func(*resty.Request)) Result {
	requestID := uuid.NewString()
	res := Result{RequestID: requestID, method: method, path: path}
	entry := c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			res.Message = fmt.Sprintf("rate limiter: %v", err)
			entry.WithError(err).Warn("API request not sent")
			return res
		}
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeader(RequestIDHeader, requestID).
		SetHeader("Accept", "application/json").
		SetDoNotParseResponse(true)
	token := ""
	if c.session != nil {
		token = c.session.Token()
	}
	if token != "" {
		req.SetAuthToken(token)
	}
	prepare(req)

	start := time.Now()
	resp, err := req.Execute(method, path)
	if resp != nil && resp.RawBody() != nil {
		defer resp.RawBody().Close()
	}
	if err != nil {
		res.Message = err.Error()
		entry.WithError(err).WithField("duration", time.Since(start)).Warn("API request failed")
		return res
	}

	res.Status = resp.StatusCode()
	res.OK = res.Status >= 200 && res.Status < 300

	data, readErr := c.readBody(resp.RawBody())
	if readErr != nil {
		res.Message = readErr.Error()
		// A success whose body was lost is a transport failure.
		if res.OK {
			res.OK = false
			res.Status = 0
		}
	} else {
		res.Data = data
	}

	entry = entry.WithFields(logrus.Fields{"status": res.Status, "duration": time.Since(start)})
	if res.OK {
		entry.Debug("API request")
		return res
	}

	if res.Message == "" {
		res.Message = detailMessage(data, res.Status)
	}
	entry.WithField("detail", res.Message).Info("API request rejected")

	if res.Status == http.StatusUnauthorized {
		res.Unauthorized = true
		if c.session != nil {
			c.session.Invalidate(ctx, token)
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	}
	return res
}

// readBody reads the response body with a size limit.
// SECURITY: Response size limit prevents memory exhaustion.
func (c *Client) readBody(body io.Reader) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(io.LimitReader(body, c.maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(data)) > c.maxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", c.maxResponseSize)
	}
	return data, nil
}

// detailMessage extracts the error text from a FastAPI style body:
// {"detail": "..."} or {"detail": [{"msg": "..."}]}. Falls back to the
// status text.
func detailMessage(body []byte, status int) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		var s string
		if json.Unmarshal(payload.Detail, &s) == nil && s != "" {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(payload.Detail, &items) == nil && len(items) > 0 {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				msgs = append(msgs, it.Msg)
			}
			return strings.Join(msgs, "; ")
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}
