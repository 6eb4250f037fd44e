// Package remote checks field values against a server, for rules only the
// backend can answer (uniqueness of an e-mail, an already registered tax id).
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/goliatone/go-formguard/pkg/messages"
	"github.com/goliatone/go-formguard/pkg/validate"
)

// RequestIDHeader carries the id of each remote check.
const RequestIDHeader = "X-Request-ID"

var (
	// ErrNoEndpoint is returned when an HTTPChecker has no URL.
	ErrNoEndpoint = errors.New("remote: endpoint is required")
	// ErrStatus is wrapped when the server answers with a non 2xx status.
	ErrStatus = errors.New("remote: unexpected status")
)

// Checker validates a value remotely. A returned error means the check could
// not run; the caller keeps the local verdict.
type Checker interface {
	Check(ctx context.Context, field, value string) (validate.Outcome, error)
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context, field, value string) (validate.Outcome, error)

// Check implements Checker.
func (fn CheckerFunc) Check(ctx context.Context, field, value string) (validate.Outcome, error) {
	return fn(ctx, field, value)
}

// Request is the body posted by HTTPChecker.
type Request struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Response is the body HTTPChecker expects back. Key and Message are optional;
// a failed check without either renders the generic remote message.
type Response struct {
	Valid   bool   `json:"valid"`
	Key     string `json:"key,omitempty"`
	Message string `json:"message,omitempty"`
}

// Option configures an HTTPChecker.
type Option func(*HTTPChecker)

// WithClient sets the HTTP client.
func WithClient(client *http.Client) Option {
	return func(c *HTTPChecker) {
		if client != nil {
			c.client = client
		}
	}
}

// WithHeader adds a static header to every request.
func WithHeader(key, value string) Option {
	return func(c *HTTPChecker) {
		c.headers.Set(key, value)
	}
}

// WithRequestID overrides the request id generator.
func WithRequestID(fn func() string) Option {
	return func(c *HTTPChecker) {
		if fn != nil {
			c.requestID = fn
		}
	}
}

// HTTPChecker posts a JSON Request to an endpoint.
type HTTPChecker struct {
	endpoint  string
	client    *http.Client
	headers   http.Header
	requestID func() string
}

// NewHTTPChecker builds a checker for endpoint.
func NewHTTPChecker(endpoint string, options ...Option) (*HTTPChecker, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}
	c := &HTTPChecker{
		endpoint:  endpoint,
		client:    http.DefaultClient,
		headers:   http.Header{},
		requestID: func() string { return ulid.Make().String() },
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Check implements Checker.
func (c *HTTPChecker) Check(ctx context.Context, field, value string) (validate.Outcome, error) {
	body, err := json.Marshal(Request{Field: field, Value: value})
	if err != nil {
		return validate.Outcome{}, fmt.Errorf("remote: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return validate.Outcome{}, fmt.Errorf("remote: build request: %w", err)
	}
	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, c.requestID())

	resp, err := c.client.Do(req)
	if err != nil {
		return validate.Outcome{}, fmt.Errorf("remote: check %s: %w", field, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return validate.Outcome{}, fmt.Errorf("%w %d for %s", ErrStatus, resp.StatusCode, field)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return validate.Outcome{}, fmt.Errorf("remote: decode response: %w", err)
	}
	return out.Outcome(), nil
}

// Outcome converts a response into a validation outcome.
func (r Response) Outcome() validate.Outcome {
	if r.Valid {
		return validate.OK()
	}
	key := messages.Remote
	if r.Key != "" {
		key = messages.Key(r.Key)
	}
	out := validate.Fail(key, nil)
	out.Message = r.Message
	return out
}
