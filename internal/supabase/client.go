// Package supabase talks to a Supabase project over its REST, storage and
// auth HTTP APIs. It backs the "supabase" backend and the proxy server.
package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/mmcdole/moviedb/internal/auth"
	"github.com/mmcdole/moviedb/internal/domain"
	"github.com/mmcdole/moviedb/internal/metrics"
)

const (
	defaultTimeout = 30 * time.Second
	service        = "supabase"
)

// Options configures a Client
type Options struct {
	URL            string
	AnonKey        string
	ServiceKey     string // set on the server; bypasses row level security
	BookmarksTable string
	ContentTable   string
	AvatarBucket   string
}

// Client implements domain.BookmarkStore, domain.ContentSource,
// domain.AvatarStore and domain.Authenticator for one Supabase project
type Client struct {
	*auth.SessionState

	baseURL    string
	anonKey    string
	serviceKey string
	bookmarks  string
	content    string
	bucket     string
	httpClient *http.Client
	logger     *slog.Logger
}

var (
	_ domain.BookmarkStore = (*Client)(nil)
	_ domain.ContentSource = (*Client)(nil)
	_ domain.AvatarStore   = (*Client)(nil)
	_ domain.Authenticator = (*Client)(nil)
)

// NewClient creates a client seeded with a stored session (nil for none)
func NewClient(opts Options, session *domain.Session, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		SessionState: auth.NewSessionState(session),
		baseURL:      strings.TrimRight(opts.URL, "/"),
		anonKey:      opts.AnonKey,
		serviceKey:   opts.ServiceKey,
		bookmarks:    opts.BookmarksTable,
		content:      opts.ContentTable,
		bucket:       opts.AvatarBucket,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// request describes one call to the project
type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	headers     map[string]string
}

// response is a completed call; non-2xx statuses are not errors at this level
type response struct {
	status      int
	body        []byte
	contentType string
}

// bearer picks the credential for a request: the service key on the server,
// otherwise the signed-in user's token, otherwise the anon key
func (c *Client) bearer() string {
	if c.serviceKey != "" {
		return c.serviceKey
	}
	if token := c.AccessToken(); token != "" {
		return token
	}
	return c.anonKey
}

func (c *Client) apiKey() string {
	if c.serviceKey != "" {
		return c.serviceKey
	}
	return c.anonKey
}

func (c *Client) do(ctx context.Context, r request) (*response, error) {
	reqURL := c.baseURL + r.path
	if len(r.query) > 0 {
		reqURL += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey())
	req.Header.Set("Authorization", "Bearer "+c.bearer())
	if r.body != nil {
		ct := r.contentType
		if ct == "" {
			ct = "application/json"
		}
		req.Header.Set("Content-Type", ct)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug("supabase request", "method", r.method, "path", r.path)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstream(service, 0, time.Since(start))
		metrics.RecordUpstreamError(service, "transport")
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Error("supabase request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrServiceOffline, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	metrics.RecordUpstream(service, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		metrics.RecordUpstreamError(service, "status")
		c.logger.Warn("supabase request error", "method", r.method, "path", r.path, "status", resp.StatusCode, "body", string(data))
	}

	return &response{
		status:      resp.StatusCode,
		body:        data,
		contentType: resp.Header.Get("Content-Type"),
	}, nil
}

// apiError is the error body shape shared by PostgREST, storage and auth
type apiError struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Code             any    `json:"code"`
}

func (e apiError) text() string {
	for _, s := range []string{e.Message, e.Msg, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// errorText extracts a readable message from an error body
func errorText(resp *response) string {
	var e apiError
	if err := json.Unmarshal(resp.body, &e); err == nil && e.text() != "" {
		return e.text()
	}
	return fmt.Sprintf("status %d", resp.status)
}

// statusError converts a non-2xx response into an error
func statusError(resp *response) error {
	msg := errorText(resp)
	switch resp.status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrAuthFailed, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, msg)
	default:
		return fmt.Errorf("database error: %s", msg)
	}
}

func ok(status int) bool {
	return status >= 200 && status < 300
}
