package functions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/mmcdole/moviedb/internal/avatar"
	"github.com/mmcdole/moviedb/internal/domain"
	"github.com/mmcdole/moviedb/internal/metrics"
)

const (
	defaultTimeout = 30 * time.Second
	service        = "functions"
)

// TokenSource supplies the signed-in user's access token
type TokenSource interface {
	AccessToken() string
}

// Client calls a running proxy. It lets the "functions" backend serve
// bookmarks, content, avatars and metadata without holding any keys.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     *slog.Logger
}

var (
	_ domain.BookmarkStore  = (*Client)(nil)
	_ domain.ContentSource  = (*Client)(nil)
	_ domain.AvatarStore    = (*Client)(nil)
	_ domain.MetadataSource = (*Client)(nil)
)

// NewClient creates a proxy client. tokens may be nil.
func NewClient(baseURL string, tokens TokenSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// knownErrors are sentinels whose text survives the trip as a 500 body
var knownErrors = []error{
	domain.ErrEmptyResults,
	domain.ErrNoTrailer,
	domain.ErrServiceOffline,
	domain.ErrRateLimited,
}

func (c *Client) call(ctx context.Context, method, endpoint, actionName string, query url.Values, body any, dest any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("action", actionName)
	reqURL := c.baseURL + endpoint + "?" + query.Encode()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.logger.Debug("proxy request", "method", method, "endpoint", endpoint, "action", actionName)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstream(service, 0, time.Since(start))
		metrics.RecordUpstreamError(service, "transport")
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", domain.ErrServiceOffline, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	metrics.RecordUpstream(service, resp.StatusCode, time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.RecordUpstreamError(service, "status")
		return responseError(resp.StatusCode, data)
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		metrics.RecordUpstreamError(service, "decode")
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// responseError rebuilds an error from a proxy failure body, which is either
// {"error": "..."} or a bare JSON string
func responseError(status int, body []byte) error {
	msg := ""
	var e errorBody
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		msg = e.Error
	} else {
		var s string
		if err := json.Unmarshal(body, &s); err == nil {
			msg = s
		}
	}
	if msg == "" {
		msg = "status " + strconv.Itoa(status)
	}

	switch status {
	case http.StatusBadRequest:
		if msg == "Invalid action" {
			return domain.ErrInvalidAction
		}
		return fmt.Errorf("%w: %s", errBadRequest, msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrAuthFailed, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, msg)
	}
	for _, known := range knownErrors {
		if strings.Contains(msg, known.Error()) {
			return fmt.Errorf("%w: %s", known, msg)
		}
	}
	return errors.New(msg)
}

// === domain.BookmarkStore ===

func (c *Client) ReadBookmarks(ctx context.Context, userID string) ([]domain.BookmarkRecord, error) {
	var records []domain.BookmarkRecord
	q := url.Values{"userUid": {userID}}
	if err := c.call(ctx, http.MethodGet, "/database", "getUserBookmarks", q, nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.BookmarkRecord{}
	}
	return records, nil
}

func (c *Client) ReplaceBookmarks(ctx context.Context, userID string, records []domain.BookmarkRecord) error {
	if records == nil {
		records = []domain.BookmarkRecord{}
	}
	body := UpdateBookmarksRequest{UserUID: userID, UpdatedBookmarks: records}
	return c.call(ctx, http.MethodPost, "/database", "updateUserBookmarks", nil, body, nil)
}

// === domain.ContentSource ===

func (c *Client) Genres(ctx context.Context) ([]domain.Genre, error) {
	var genres []domain.Genre
	if err := c.call(ctx, http.MethodGet, "/database", "getGenres", nil, nil, &genres); err != nil {
		return nil, err
	}
	return genres, nil
}

func (c *Client) RandomMedia(ctx context.Context) (domain.MediaRef, error) {
	var ref domain.MediaRef
	err := c.call(ctx, http.MethodGet, "/database", "getRandomMedia", nil, nil, &ref)
	return ref, err
}

func (c *Client) CreateRecord(ctx context.Context, userID string) error {
	return c.call(ctx, http.MethodPost, "/database", "createRecord", nil, CreateRecordRequest{UserUID: userID}, nil)
}

// === domain.AvatarStore ===

func (c *Client) UploadAvatar(ctx context.Context, userID string, a domain.Avatar) error {
	body := UploadAvatarRequest{AvatarFileName: userID, Base64: avatar.EncodeDataURL(a)}
	return c.call(ctx, http.MethodPost, "/database", "uploadAvatar", nil, body, nil)
}

func (c *Client) DownloadAvatar(ctx context.Context, userID string) (*domain.Avatar, error) {
	var dataURL string
	q := url.Values{"userUid": {userID}}
	if err := c.call(ctx, http.MethodGet, "/database", "downloadAvatar", q, nil, &dataURL); err != nil {
		return nil, err
	}
	a, err := avatar.DecodeDataURL(dataURL)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// === domain.MetadataSource ===

func (c *Client) Upcoming(ctx context.Context) ([]domain.Media, error) {
	var items []domain.Media
	err := c.call(ctx, http.MethodGet, "/api", "fetchUpcomingMovies", nil, nil, &items)
	return items, err
}

func (c *Client) TrailerKey(ctx context.Context, movieID int) (string, error) {
	var key string
	q := url.Values{"movieId": {strconv.Itoa(movieID)}}
	err := c.call(ctx, http.MethodGet, "/api", "fetchTrailerSrcKey", q, nil, &key)
	return key, err
}

func (c *Client) Trending(ctx context.Context) ([]domain.Media, error) {
	var items []domain.Media
	err := c.call(ctx, http.MethodGet, "/api", "fetchTrending", nil, nil, &items)
	return items, err
}

func (c *Client) Recommendations(ctx context.Context, movieID, seriesID int) (*domain.Recommendations, error) {
	var recs domain.Recommendations
	q := url.Values{
		"movieId":  {strconv.Itoa(movieID)},
		"seriesId": {strconv.Itoa(seriesID)},
	}
	if err := c.call(ctx, http.MethodGet, "/api", "fetchRecommendations", q, nil, &recs); err != nil {
		return nil, err
	}
	return &recs, nil
}

func (c *Client) TopRated(ctx context.Context, t domain.MediaType, page int) ([]domain.Media, error) {
	var items []domain.Media
	q := url.Values{
		"type": {string(t)},
		"page": {strconv.Itoa(max(1, page))},
	}
	err := c.call(ctx, http.MethodGet, "/api", "fetchTopRated", q, nil, &items)
	return items, err
}

func (c *Client) Search(ctx context.Context, query string) ([]domain.Media, error) {
	var items []domain.Media
	q := url.Values{"searchQuery": {query}}
	err := c.call(ctx, http.MethodGet, "/api", "fetchSearchResults", q, nil, &items)
	return items, err
}

func (c *Client) Details(ctx context.Context, t domain.MediaType, id int) (*domain.MediaDetails, error) {
	var d domain.MediaDetails
	q := url.Values{
		"type":    {string(t)},
		"mediaId": {strconv.Itoa(id)},
	}
	if err := c.call(ctx, http.MethodGet, "/api", "fetchMediaDetails", q, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
