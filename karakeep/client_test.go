package karakeep

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// captureLogger records formatted log lines for assertions.
type captureLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *captureLogger) logf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *captureLogger) Debugf(format string, args ...any) { l.logf(format, args...) }
func (l *captureLogger) Infof(format string, args ...any)  { l.logf(format, args...) }
func (l *captureLogger) Warnf(format string, args ...any)  { l.logf(format, args...) }
func (l *captureLogger) Errorf(format string, args ...any) { l.logf(format, args...) }

func TestNewClient_ConfigResolution(t *testing.T) {
	tests := map[string]struct {
		baseURL    string
		apiKey     string
		envBaseURL string
		envAPIKey  string
		wantErr    string
		wantAPIURL string
		wantKey    string
	}{
		"explicit arguments": {
			baseURL:    "https://keep.example.com",
			apiKey:     "key-arg",
			wantAPIURL: "https://keep.example.com/api/v1",
			wantKey:    "key-arg",
		},
		"environment fallback": {
			envBaseURL: "https://env.example.com",
			envAPIKey:  "key-env",
			wantAPIURL: "https://env.example.com/api/v1",
			wantKey:    "key-env",
		},
		"arguments win over environment": {
			baseURL:    "https://arg.example.com",
			apiKey:     "key-arg",
			envBaseURL: "https://env.example.com",
			envAPIKey:  "key-env",
			wantAPIURL: "https://arg.example.com/api/v1",
			wantKey:    "key-arg",
		},
		"missing api key": {
			baseURL: "https://keep.example.com",
			wantErr: "API key",
		},
		"missing base url": {
			apiKey:  "key-arg",
			wantErr: "base URL",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(EnvBaseURL, tc.envBaseURL)
			t.Setenv(EnvAPIKey, tc.envAPIKey)

			client, err := NewClient(tc.baseURL, tc.apiKey)

			if tc.wantErr != "" {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tc.wantErr) {
					t.Errorf("expected error to contain %q, got %q", tc.wantErr, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client.apiURL != tc.wantAPIURL {
				t.Errorf("apiURL = %q, want %q", client.apiURL, tc.wantAPIURL)
			}
			if client.apiKey != tc.wantKey {
				t.Errorf("apiKey = %q, want %q", client.apiKey, tc.wantKey)
			}
		})
	}
}

func TestResolveAPIURL(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"bare host":                {in: "https://keep.example.com", want: "https://keep.example.com/api/v1"},
		"trailing slash":           {in: "https://keep.example.com/", want: "https://keep.example.com/api/v1"},
		"prefix already present":   {in: "https://keep.example.com/api/v1", want: "https://keep.example.com/api/v1"},
		"prefix and slash present": {in: "https://keep.example.com/api/v1/", want: "https://keep.example.com/api/v1"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := resolveAPIURL(tc.in); got != tc.want {
				t.Errorf("resolveAPIURL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestClient_do_Headers(t *testing.T) {
	var capturedHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedHeaders = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "my-secret-key", WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	_, _, err = client.doJSON(context.Background(), http.MethodPost, "/bookmarks", nil, map[string]string{"type": "link"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := capturedHeaders.Get("Authorization"); got != "Bearer my-secret-key" {
		t.Errorf("Authorization header = %q, want %q", got, "Bearer my-secret-key")
	}
	if got := capturedHeaders.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type header = %q, want %q", got, "application/json")
	}
	if got := capturedHeaders.Get("Accept"); got != "application/json" {
		t.Errorf("Accept header = %q, want %q", got, "application/json")
	}

	// raw asset retrieval accepts anything
	_, _, err = client.do(context.Background(), http.MethodGet, "/assets/a-123", nil, nil, "", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := capturedHeaders.Get("Accept"); got != "*/*" {
		t.Errorf("Accept header for raw retrieval = %q, want %q", got, "*/*")
	}
}

func TestClient_do_StatusMapping(t *testing.T) {
	tests := map[string]struct {
		statusCode  int
		body        string
		errSentinel error
		wantAPIErr  bool
	}{
		"unauthorized (401)":      {statusCode: http.StatusUnauthorized, errSentinel: ErrUnauthorized},
		"forbidden (403)":         {statusCode: http.StatusForbidden, errSentinel: ErrUnauthorized},
		"not found (404)":         {statusCode: http.StatusNotFound, errSentinel: ErrNotFound},
		"bad request (400)":       {statusCode: http.StatusBadRequest, body: "nope", wantAPIErr: true},
		"server error (500)":      {statusCode: http.StatusInternalServerError, body: "boom", wantAPIErr: true},
		"no content (204) is ok":  {statusCode: http.StatusNoContent},
		"success (200) passes":    {statusCode: http.StatusOK, body: "{}"},
		"created (201) passes":    {statusCode: http.StatusCreated, body: "{}"},
		"rate limited (429) maps": {statusCode: http.StatusTooManyRequests, body: "slow down", wantAPIErr: true},
		"teapot (418) is api err": {statusCode: http.StatusTeapot, wantAPIErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client, err := NewClient(server.URL, "test-key", WithHTTPClient(server.Client()))
			if err != nil {
				t.Fatalf("creating client: %v", err)
			}

			status, body, err := client.do(context.Background(), http.MethodGet, "/test", nil, nil, "", false)

			if tc.errSentinel != nil {
				if !errors.Is(err, tc.errSentinel) {
					t.Fatalf("expected %v, got %v", tc.errSentinel, err)
				}
				return
			}
			if tc.wantAPIErr {
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected *APIError, got %v", err)
				}
				if apiErr.StatusCode != tc.statusCode {
					t.Errorf("APIError status = %d, want %d", apiErr.StatusCode, tc.statusCode)
				}
				if apiErr.Body != tc.body {
					t.Errorf("APIError body = %q, want %q", apiErr.Body, tc.body)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if status != tc.statusCode {
				t.Errorf("status = %d, want %d", status, tc.statusCode)
			}
			if string(body) != tc.body {
				t.Errorf("body = %q, want %q", body, tc.body)
			}
		})
	}
}

func TestClient_do_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := NewClient(server.URL, "test-key", WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	server.Close() // connection refused from here on

	_, _, err = client.do(context.Background(), http.MethodGet, "/bookmarks", nil, nil, "", false)

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %v", err)
	}
	if netErr.Method != http.MethodGet {
		t.Errorf("NetworkError method = %q, want GET", netErr.Method)
	}
	if netErr.Unwrap() == nil {
		t.Error("NetworkError should wrap the underlying error")
	}
}

func TestClient_do_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "test-key", WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	_, _, err = client.do(ctx, http.MethodGet, "/bookmarks", nil, nil, "", false)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestClient_VerboseLogging(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	t.Run("verbose logs method, path, and status", func(t *testing.T) {
		log := &captureLogger{}
		client, err := NewClient(server.URL, "test-key",
			WithHTTPClient(server.Client()),
			WithLogger(log),
			WithVerbose(),
		)
		if err != nil {
			t.Fatalf("creating client: %v", err)
		}

		if _, _, err := client.do(context.Background(), http.MethodGet, "/bookmarks", nil, nil, "", false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(log.lines) != 2 {
			t.Fatalf("expected 2 log lines, got %d: %v", len(log.lines), log.lines)
		}
		if log.lines[0] != "GET /bookmarks" {
			t.Errorf("request log = %q", log.lines[0])
		}
		if log.lines[1] != "GET /bookmarks -> 200" {
			t.Errorf("response log = %q", log.lines[1])
		}
	})

	t.Run("quiet by default", func(t *testing.T) {
		log := &captureLogger{}
		client, err := NewClient(server.URL, "test-key",
			WithHTTPClient(server.Client()),
			WithLogger(log),
		)
		if err != nil {
			t.Fatalf("creating client: %v", err)
		}

		if _, _, err := client.do(context.Background(), http.MethodGet, "/bookmarks", nil, nil, "", false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(log.lines) != 0 {
			t.Errorf("expected no log lines, got %v", log.lines)
		}
	})
}

func TestClient_CheckConnectivity(t *testing.T) {
	tests := map[string]struct {
		statusCode  int
		errSentinel error
	}{
		"success":      {statusCode: http.StatusOK},
		"unauthorized": {statusCode: http.StatusUnauthorized, errSentinel: ErrUnauthorized},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/v1/users/me" {
					t.Errorf("unexpected path: %s, want /api/v1/users/me", r.URL.Path)
				}
				if r.Method != http.MethodGet {
					t.Errorf("unexpected method: %s, want GET", r.Method)
				}
				w.WriteHeader(tc.statusCode)
			}))
			defer server.Close()

			client, err := NewClient(server.URL, "test-key", WithHTTPClient(server.Client()))
			if err != nil {
				t.Fatalf("creating client: %v", err)
			}

			err = client.CheckConnectivity(context.Background())
			if tc.errSentinel != nil {
				if !errors.Is(err, tc.errSentinel) {
					t.Fatalf("expected %v, got %v", tc.errSentinel, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    string
		wantErr bool
	}{
		"https url":           {in: "https://example.com/a", want: "https://example.com/a"},
		"http url":            {in: "http://example.com", want: "http://example.com"},
		"ftp url":             {in: "ftp://files.example.com/x", want: "ftp://files.example.com/x"},
		"surrounding space":   {in: "  https://example.com  ", want: "https://example.com"},
		"empty":               {in: "", wantErr: true},
		"blank":               {in: "   ", wantErr: true},
		"no scheme":           {in: "example.com/a", wantErr: true},
		"unsupported scheme":  {in: "mailto:a@example.com", wantErr: true},
		"scheme without host": {in: "https://", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := normalizeURL(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("normalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
