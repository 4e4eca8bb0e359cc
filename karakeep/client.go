package karakeep

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ahgraber/karakeep-client/logger"
)

// Environment variables consulted when NewClient is not given explicit
// credentials. Explicit arguments always win.
const (
	EnvAPIKey  = "KARAKEEP_API_KEY"
	EnvBaseURL = "KARAKEEP_BASEURL"
)

const (
	apiBasePath    = "/api/v1"
	defaultTimeout = 30 * time.Second
)

// Client is a Karakeep API client. It holds no state beyond its
// configuration; every entity it returns is a transient snapshot of
// server-side state.
type Client struct {
	apiURL     string // base URL with the /api/v1 prefix applied
	apiKey     string
	httpClient *http.Client
	validate   bool
	verbose    bool
	logger     logger.Logger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// NewClient creates a Karakeep API client. Empty baseURL or apiKey fall back
// to the KARAKEEP_BASEURL and KARAKEEP_API_KEY environment variables; it is
// an error if neither source provides a value. The configuration is resolved
// once here and never re-read.
func NewClient(baseURL, apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key must be provided or set in %s environment variable", EnvAPIKey)
	}

	if baseURL == "" {
		baseURL = os.Getenv(EnvBaseURL)
	}
	if baseURL == "" {
		return nil, fmt.Errorf("base URL must be provided or set in %s environment variable", EnvBaseURL)
	}

	c := &Client{
		apiURL:     resolveAPIURL(baseURL),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		validate:   true,
		logger:     logger.Noop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// resolveAPIURL normalizes the configured base URL and appends the /api/v1
// prefix unless the caller already included it.
func resolveAPIURL(baseURL string) string {
	u := strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(u, apiBasePath) {
		u += apiBasePath
	}
	return u
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the request timeout on the underlying HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger used for request visibility.
func WithLogger(l logger.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithVerbose enables debug logging of every request method, path, and
// response status through the configured logger.
func WithVerbose() ClientOption {
	return func(c *Client) {
		c.verbose = true
	}
}

// WithoutValidation disables response validation for the whole client:
// operations return whatever decoded best-effort, with the untouched body on
// the result's Raw field. Useful for forward compatibility when the server
// starts sending shapes this client does not know yet.
func WithoutValidation() ClientOption {
	return func(c *Client) {
		c.validate = false
	}
}

// do performs a single authenticated request and returns the response status
// and body. It never retries; callers own any retry policy.
//
// Status handling is centralized here: 401/403 map to ErrUnauthorized, 404
// to ErrNotFound, any other non-2xx to *APIError. Failures to reach the
// server at all come back as *NetworkError, except context cancellation
// which surfaces as the context's own error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, rawAccept bool) (int, []byte, error) {
	reqURL := c.apiURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if rawAccept {
		// asset payloads are arbitrary bytes, not JSON
		req.Header.Set("Accept", "*/*")
	} else {
		req.Header.Set("Accept", "application/json")
	}

	if c.verbose {
		c.logger.Debugf("%s %s", method, path)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
		return 0, nil, &NetworkError{Method: method, URL: reqURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }() // close error not actionable after body is read

	if c.verbose {
		c.logger.Debugf("%s %s -> %d", method, path, resp.StatusCode)
	}

	respBody, readErr := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return resp.StatusCode, nil, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return resp.StatusCode, nil, ErrNotFound
	case resp.StatusCode == http.StatusNoContent:
		return resp.StatusCode, nil, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		bodyStr := string(respBody)
		if readErr != nil {
			bodyStr += fmt.Sprintf(" (body read error: %v)", readErr)
		}
		return resp.StatusCode, nil, &APIError{StatusCode: resp.StatusCode, Body: bodyStr}
	}

	if readErr != nil {
		return resp.StatusCode, nil, &NetworkError{Method: method, URL: reqURL, Err: readErr}
	}
	return resp.StatusCode, respBody, nil
}

// doJSON marshals payload (when non-nil) and performs a JSON request.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	return c.do(ctx, method, path, query, body, "application/json", false)
}

// CheckConnectivity verifies the base URL and credentials with a cheap
// GET /users/me call.
func (c *Client) CheckConnectivity(ctx context.Context) error {
	_, _, err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, "", false)
	if err != nil {
		return fmt.Errorf("checking connectivity: %w", err)
	}
	return nil
}

// normalizeURL validates and canonicalizes a bookmark URL.
func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("url cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https", "ftp", "ftps":
	default:
		return "", fmt.Errorf("invalid url %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid url %q: missing host", raw)
	}
	return u.String(), nil
}
