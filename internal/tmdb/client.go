// Package tmdb is a client for the TMDB v3 API. It maps responses into
// domain media and serves as the MetadataSource for the supabase and
// local backends and for the proxy server.
package tmdb

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mmcdole/moviedb/internal/domain"
	"github.com/mmcdole/moviedb/internal/metrics"
)

const (
	defaultTimeout = 30 * time.Second
	maxRetries     = 2
	baseRetryDelay = 250 * time.Millisecond
	service        = "tmdb"
)

// Cache stores decoded responses between runs
type Cache interface {
	GetCached(key string, ttl time.Duration, dest any) bool
	PutCached(key string, value any) error
}

// Options configures a Client
type Options struct {
	BaseURL           string
	Token             string // v4 read access token, sent as a bearer token
	Language          string
	RequestsPerSecond float64 // 0 disables client-side rate limiting
	Cache             Cache   // optional
	CacheTTL          time.Duration
}

// Client implements domain.MetadataSource against TMDB
type Client struct {
	baseURL    string
	token      string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      Cache
	cacheTTL   time.Duration
	retryDelay time.Duration
	logger     *slog.Logger
}

var _ domain.MetadataSource = (*Client)(nil)

// NewClient creates a new TMDB API client
func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		token:    opts.Token,
		language: opts.Language,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		retryDelay: baseRetryDelay,
		logger:     logger,
	}
	if c.language == "" {
		c.language = "en-US"
	}
	if opts.RequestsPerSecond > 0 {
		burst := max(1, int(opts.RequestsPerSecond))
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return c
}

// doRequest performs an authenticated GET, retrying 5xx responses with backoff
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL = reqURL + "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1))
			c.logger.Debug("retrying request", "attempt", attempt, "delay", delay, "path", path)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		c.logger.Debug("tmdb request", "path", path, "attempt", attempt)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			metrics.RecordUpstream(service, 0, time.Since(start))
			metrics.RecordUpstreamError(service, "transport")
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Error("tmdb request failed", "error", err)
			return nil, fmt.Errorf("%w: %v", domain.ErrServiceOffline, err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		metrics.RecordUpstream(service, resp.StatusCode, time.Since(start))
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusUnauthorized:
			metrics.RecordUpstreamError(service, "auth")
			return nil, fmt.Errorf("%w: %s", domain.ErrAuthFailed, statusMessage(body, resp.StatusCode))
		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		case resp.StatusCode == http.StatusTooManyRequests:
			metrics.RecordUpstreamError(service, "status")
			return nil, domain.ErrRateLimited
		case resp.StatusCode >= 500:
			metrics.RecordUpstreamError(service, "status")
			lastErr = fmt.Errorf("HTTP error! status: %d", resp.StatusCode)
			c.logger.Warn("tmdb server error, will retry", "status", resp.StatusCode, "attempt", attempt, "path", path)
			continue
		default:
			metrics.RecordUpstreamError(service, "status")
			c.logger.Error("tmdb request error", "status", resp.StatusCode, "body", string(body))
			return nil, fmt.Errorf("HTTP error! status: %d", resp.StatusCode)
		}
	}

	c.logger.Error("tmdb request failed after retries", "error", lastErr, "path", path)
	return nil, lastErr
}

// getJSON decodes a response into dest, consulting the cache first
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest any) error {
	key := "tmdb:" + path
	if len(query) > 0 {
		key += "?" + query.Encode()
	}
	if c.cache != nil && c.cacheTTL > 0 && c.cache.GetCached(key, c.cacheTTL, dest) {
		return nil
	}

	body, err := c.doRequest(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		metrics.RecordUpstreamError(service, "decode")
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if c.cache != nil && c.cacheTTL > 0 {
		if err := c.cache.PutCached(key, dest); err != nil {
			c.logger.Warn("failed to cache tmdb response", "key", key, "error", err)
		}
	}
	return nil
}

func (c *Client) languageQuery() url.Values {
	q := url.Values{}
	q.Set("language", c.language)
	return q
}

// Upcoming returns the first page of upcoming movies
func (c *Client) Upcoming(ctx context.Context) ([]domain.Media, error) {
	q := c.languageQuery()
	q.Set("page", "1")

	var resp ListResponse
	if err := c.getJSON(ctx, "/movie/upcoming", q, &resp); err != nil {
		return nil, err
	}
	return MapResults(resp.Results, domain.MediaTypeMovie), nil
}

// TrailerKey returns the video key of the movie's first trailer
func (c *Client) TrailerKey(ctx context.Context, movieID int) (string, error) {
	if movieID <= 0 {
		return "", fmt.Errorf("invalid movie id %d: %w", movieID, domain.ErrNotFound)
	}

	var resp VideosResponse
	if err := c.getJSON(ctx, "/movie/"+strconv.Itoa(movieID)+"/videos", nil, &resp); err != nil {
		return "", err
	}
	key, ok := FirstTrailer(resp.Results)
	if !ok {
		return "", fmt.Errorf("%w for movie %d", domain.ErrNoTrailer, movieID)
	}
	return key, nil
}

// Trending returns this week's trending movies and series
func (c *Client) Trending(ctx context.Context) ([]domain.Media, error) {
	var resp ListResponse
	if err := c.getJSON(ctx, "/trending/all/week", nil, &resp); err != nil {
		return nil, err
	}
	return MapTrending(resp.Results), nil
}

// Recommendations fetches movie and series suggestions in parallel. An empty
// result list on either side is an error.
func (c *Client) Recommendations(ctx context.Context, movieID, seriesID int) (*domain.Recommendations, error) {
	var movies, series ListResponse

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.getJSON(gctx, "/movie/"+strconv.Itoa(movieID)+"/recommendations", nil, &movies)
	})
	g.Go(func() error {
		return c.getJSON(gctx, "/tv/"+strconv.Itoa(seriesID)+"/recommendations", nil, &series)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(movies.Results) == 0 || len(series.Results) == 0 {
		return nil, domain.ErrEmptyResults
	}

	return &domain.Recommendations{
		Movies:   MapResults(movies.Results, domain.MediaTypeMovie),
		TVSeries: MapResults(series.Results, domain.MediaTypeTV),
	}, nil
}

// TopRated returns one page of top rated titles of type t
func (c *Client) TopRated(ctx context.Context, t domain.MediaType, page int) ([]domain.Media, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidMediaType, t)
	}
	q := c.languageQuery()
	q.Set("page", strconv.Itoa(max(1, page)))

	var resp ListResponse
	if err := c.getJSON(ctx, "/"+string(t)+"/top_rated", q, &resp); err != nil {
		return nil, err
	}
	return MapResults(resp.Results, t), nil
}

// Search runs a multi search (movies and series only)
func (c *Client) Search(ctx context.Context, query string) ([]domain.Media, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Media{}, nil
	}
	q := c.languageQuery()
	q.Set("query", query)
	q.Set("include_adult", "false")
	q.Set("page", "1")

	var resp ListResponse
	if err := c.getJSON(ctx, "/search/multi", q, &resp); err != nil {
		return nil, err
	}
	return MapSearch(resp.Results), nil
}

// Details returns the title page payload with cast and similar titles
func (c *Client) Details(ctx context.Context, t domain.MediaType, id int) (*domain.MediaDetails, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidMediaType, t)
	}
	q := url.Values{}
	q.Set("append_to_response", "credits,similar")

	var resp DetailsResponse
	if err := c.getJSON(ctx, "/"+string(t)+"/"+strconv.Itoa(id), q, &resp); err != nil {
		return nil, err
	}
	return MapDetails(resp, t), nil
}

// Genres returns the union of the movie and TV genre lists
func (c *Client) Genres(ctx context.Context) ([]domain.Genre, error) {
	var movie, tv GenreListResponse
	if err := c.getJSON(ctx, "/genre/movie/list", c.languageQuery(), &movie); err != nil {
		return nil, err
	}
	if err := c.getJSON(ctx, "/genre/tv/list", c.languageQuery(), &tv); err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(movie.Genres)+len(tv.Genres))
	merged := make([]GenreDTO, 0, len(movie.Genres)+len(tv.Genres))
	for _, g := range append(movie.Genres, tv.Genres...) {
		if seen[g.ID] {
			continue
		}
		seen[g.ID] = true
		merged = append(merged, g)
	}
	return MapGenres(merged), nil
}

// statusMessage extracts TMDB's status_message, falling back to the code
func statusMessage(body []byte, status int) string {
	var e ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.StatusMessage != "" {
		return e.StatusMessage
	}
	return "status " + strconv.Itoa(status)
}

