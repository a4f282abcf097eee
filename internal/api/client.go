package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/stockdesk/internal/apperr"
)

const (
	// DefaultTimeout bounds every ordinary call at the transport level.
	DefaultTimeout = 30 * time.Second
	// LogoutTimeout bounds the logout call made while the window closes.
	LogoutTimeout = 10 * time.Second

	maxBodyBytes = 64 << 20
)

// TokenSource provides the current bearer token; "" means anonymous.
type TokenSource interface {
	Token() string
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// Stream requests return the raw body instead of a decoded envelope.
	Stream bool
	// Timeout overrides the client timeout when positive.
	Timeout time.Duration
}

// String returns "METHOD /path?query" for logs.
func (r Request) String() string {
	s := r.Method + " " + r.Path
	if len(r.Query) > 0 {
		s += "?" + r.Query.Encode()
	}
	return s
}

// Validate rejects a path with an empty or dot segment. Such segments come
// from blank or crafted ids and would address a different endpoint.
func (r Request) Validate() error {
	for _, seg := range strings.Split(strings.TrimPrefix(r.Path, "/"), "/") {
		if seg == "" || seg == "." || seg == ".." {
			return apperr.Validation(fmt.Sprintf("invalid request path %q", r.Path))
		}
	}
	return nil
}

// Response is the outcome of a successful call. Exactly one of Envelope and
// Raw is set.
type Response struct {
	Status   int
	Envelope *Envelope
	Raw      []byte
}

// Doer executes backend requests.
type Doer interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// Client talks to the backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *slog.Logger
}

// NewClient creates a client for baseURL. tokens may be nil for anonymous use.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		logger:     logger,
	}
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs req and decodes the response. Non-2xx statuses and
// success:false envelopes are returned as backend errors.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("backend call failed", "request", req.String(), "error", err)
		return nil, apperr.Transport("backend unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperr.Transport("read response body", err)
	}

	c.logger.Debug("backend call",
		"request", req.String(),
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start),
		"request_id", httpReq.Header.Get("X-Request-ID"))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, body)
	}

	out := &Response{Status: resp.StatusCode}
	if req.Stream && !isJSON(resp.Header.Get("Content-Type")) {
		out.Raw = body
		return out, nil
	}

	env, err := DecodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	if err := env.Err(); err != nil {
		return nil, err
	}
	if req.Stream {
		return nil, apperr.Decode("expected a document, got JSON", nil)
	}
	out.Envelope = env
	return out, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	u := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, apperr.Decode("encode request body", err)
		}
		body = bytes.NewReader(payload)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, apperr.Transport("build request", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			httpReq.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return httpReq, nil
}

func statusError(status int, body []byte) error {
	msg := http.StatusText(status)
	if env, err := DecodeEnvelope(body); err == nil && env.Message != "" {
		msg = env.Message
	}
	return apperr.Backend(msg, status)
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var e *apperr.Error
	return errors.As(err, &e) && e.Kind == apperr.KindBackend && e.Status == http.StatusUnauthorized
}

// DecodeInto unmarshals the response payload found under keys into v.
func DecodeInto(resp *Response, v any, keys ...string) error {
	if resp == nil || resp.Envelope == nil {
		return apperr.Decode("empty response", nil)
	}
	raw := resp.Envelope.Payload(keys...)
	if raw == nil {
		return apperr.Decode(fmt.Sprintf("missing payload %v", keys), nil)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return apperr.Decode("decode payload", err)
	}
	return nil
}
