// Package api implements the HTTP client used for every call to the
// NexusCare backend. It owns URL construction, bearer-token injection,
// timeout handling, body serialization, and the normalization of transport
// and application failures into a single APIError type.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nexuscare/nexuscare-cli/internal/logging"
)

// DefaultTimeout bounds a request when no per-call override is given.
const DefaultTimeout = 30 * time.Second

// TokenSource supplies the current bearer token. An empty string means no
// credential is available. The session store implements this; injecting it
// keeps the client free of process-wide token state.
type TokenSource interface {
	Token() string
}

// Options tunes a single request. The zero value is a plain authenticated
// JSON call with the default timeout.
type Options struct {
	// Params is rendered into the query string (see BuildQuery).
	Params map[string]any
	// Headers adds or overrides request headers.
	Headers map[string]string
	// Timeout overrides the client default for this call.
	Timeout time.Duration
	// RawBody sends the body unmodified; the caller has already prepared a
	// multipart or pre-encoded payload and set its Content-Type header.
	RawBody bool
	// SkipAuth omits the Authorization header even when a token exists.
	SkipAuth bool
	// IncludeCredentials routes the call through the cookie-carrying client.
	// Off by default so cross-site session cookies are never sent by accident.
	IncludeCredentials bool
}

// Client is the single choke point for backend calls.
type Client struct {
	baseURL        string
	defaultTimeout time.Duration
	tokens         TokenSource
	logger         logging.Logger

	// httpClient carries no cookie jar; credClient shares the transport and
	// adds one, used only for IncludeCredentials requests.
	httpClient *http.Client
	credClient *http.Client
}

// New builds a Client for the given base URL. A trailing slash on baseURL is
// trimmed. timeout <= 0 falls back to DefaultTimeout. tokens may be nil for
// a client that never authenticates.
func New(baseURL string, timeout time.Duration, tokens TokenSource, logger logging.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logging.NewDefault()
	}

	jar, _ := cookiejar.New(nil)
	transport := http.DefaultTransport

	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		defaultTimeout: timeout,
		tokens:         tokens,
		logger:         logger,
		// Timeouts are enforced per request via context deadlines, so the
		// http.Client timeout stays unset.
		httpClient: &http.Client{Transport: transport},
		credClient: &http.Client{Transport: transport, Jar: jar},
	}
}

// BaseURL returns the configured backend root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET request and decodes a JSON response into out (ignored
// when out is nil).
func (c *Client) Get(ctx context.Context, path string, out any, opt *Options) error {
	return c.do(ctx, http.MethodGet, path, nil, out, opt)
}

// Post issues a POST request with the given body.
func (c *Client) Post(ctx context.Context, path string, body, out any, opt *Options) error {
	return c.do(ctx, http.MethodPost, path, body, out, opt)
}

// Put issues a PUT request with the given body.
func (c *Client) Put(ctx context.Context, path string, body, out any, opt *Options) error {
	return c.do(ctx, http.MethodPut, path, body, out, opt)
}

// Patch issues a PATCH request with the given body.
func (c *Client) Patch(ctx context.Context, path string, body, out any, opt *Options) error {
	return c.do(ctx, http.MethodPatch, path, body, out, opt)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any, opt *Options) error {
	return c.do(ctx, http.MethodDelete, path, nil, out, opt)
}

// do builds, issues, and settles one request. Every failure path returns a
// *APIError: status 0 for anything that happened before a backend response,
// the HTTP status with the parsed body attached otherwise.
func (c *Client) do(ctx context.Context, method, path string, body, out any, opt *Options) error {
	if opt == nil {
		opt = &Options{}
	}

	timeout := c.defaultTimeout
	if opt.Timeout > 0 {
		timeout = opt.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := c.baseURL + path + BuildQuery(opt.Params)

	reader, contentType, err := encodeBody(body, opt.RawBody)
	if err != nil {
		return transportError("failed to encode request body: " + err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return transportError("failed to build request: " + err.Error())
	}

	req.Header.Set("Accept", "application/json")
	for k, v := range opt.Headers {
		req.Header.Set(k, v)
	}
	if !opt.SkipAuth && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	httpClient := c.httpClient
	if opt.IncludeCredentials {
		httpClient = c.credClient
	}

	res, err := httpClient.Do(req)
	if err != nil {
		apiErr := classifyTransportError(err)
		c.logger.Warn(ctx, "request failed before response",
			"method", method, "path", path, "request_id", requestID, "error", apiErr.Message)
		return apiErr
	}
	defer res.Body.Close()

	parsed, raw, err := parseBody(res)
	if err != nil {
		return transportError("failed to read response: " + err.Error())
	}

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		c.logger.Debug(ctx, "request finished",
			"method", method, "path", path, "status", res.StatusCode, "request_id", requestID)
		if out == nil || len(raw) == 0 {
			return nil
		}
		return decodeInto(parsed, raw, out)
	}

	c.logger.Warn(ctx, "request failed",
		"method", method, "path", path, "status", res.StatusCode, "request_id", requestID)

	message := "Request failed"
	if s, ok := parsed.(string); ok && s != "" {
		message = s
	}
	return &APIError{Message: message, Status: res.StatusCode, Data: parsed}
}

// classifyTransportError maps a failed round trip onto a status-0 APIError,
// distinguishing the deadline firing from a caller-initiated abort.
func classifyTransportError(err error) *APIError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return transportError("Request timeout")
	case errors.Is(err, context.Canceled):
		return transportError("Request aborted")
	default:
		return transportError(err.Error())
	}
}

// encodeBody turns the body value into a reader plus the Content-Type it
// implies. Raw bodies pass through untouched with no implied type (the
// caller's header carries the multipart boundary). Strings and byte slices
// go out as text/plain; any other non-nil value is marshalled to JSON.
func encodeBody(body any, raw bool) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}

	if raw {
		switch b := body.(type) {
		case io.Reader:
			return b, "", nil
		case []byte:
			return bytes.NewReader(b), "", nil
		case string:
			return strings.NewReader(b), "", nil
		default:
			return nil, "", errors.New("raw body must be an io.Reader, []byte, or string")
		}
	}

	switch b := body.(type) {
	case string:
		return strings.NewReader(b), "text/plain", nil
	case []byte:
		return bytes.NewReader(b), "text/plain", nil
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(buf), "application/json", nil
	}
}

// parseBody reads and interprets a response. A 204 yields (nil, nil, nil).
// JSON content types are parsed as JSON; anything else is read as text and
// opportunistically parsed, falling back to the raw string.
func parseBody(res *http.Response) (any, []byte, error) {
	if res.StatusCode == http.StatusNoContent {
		return nil, nil, nil
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, nil, err
	}
	if len(raw) == 0 {
		return nil, raw, nil
	}

	var v any
	if strings.Contains(res.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(raw, &v); err != nil {
			return string(raw), raw, nil
		}
		return v, raw, nil
	}
	if err := json.Unmarshal(raw, &v); err == nil {
		return v, raw, nil
	}
	return string(raw), raw, nil
}

// decodeInto maps a successful payload onto the caller's out pointer. Plain
// text only fits a *string; JSON payloads decode from the raw bytes so
// number precision and field types are preserved.
func decodeInto(parsed any, raw []byte, out any) error {
	if s, ok := parsed.(string); ok {
		if ps, ok := out.(*string); ok {
			*ps = s
			return nil
		}
		return transportError("unexpected non-JSON response")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return transportError("failed to decode response: " + err.Error())
	}
	return nil
}
