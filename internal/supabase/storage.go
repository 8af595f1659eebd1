package supabase

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mmcdole/moviedb/internal/avatar"
	"github.com/mmcdole/moviedb/internal/domain"
)

func (c *Client) objectPath(userID string) string {
	return "/storage/v1/object/" + url.PathEscape(c.bucket) + "/" + url.PathEscape(userID)
}

// UploadAvatar stores the image under the user's id, replacing any previous one
func (c *Client) UploadAvatar(ctx context.Context, userID string, a domain.Avatar) error {
	resp, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        c.objectPath(userID),
		body:        a.Data,
		contentType: a.MimeType,
		headers: map[string]string{
			"x-upsert":      "true",
			"cache-control": "no-cache",
		},
	})
	if err != nil {
		return err
	}
	if !ok(resp.status) {
		return statusError(resp)
	}
	return nil
}

// DownloadAvatar fetches the user's image. Storage reports a missing object
// as 400 or 404; both become domain.ErrNotFound.
func (c *Client) DownloadAvatar(ctx context.Context, userID string) (*domain.Avatar, error) {
	q := url.Values{}
	// defeat intermediary caches
	q.Set("t", strconv.FormatInt(time.Now().UnixMilli(), 10))

	resp, err := c.do(ctx, request{method: http.MethodGet, path: c.objectPath(userID), query: q})
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusBadRequest || resp.status == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if !ok(resp.status) {
		return nil, statusError(resp)
	}

	mime := resp.contentType
	if mime == "" || mime == "application/octet-stream" {
		mime = avatar.DefaultMimeType
	}
	return &domain.Avatar{Data: resp.body, MimeType: mime}, nil
}
