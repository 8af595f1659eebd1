package supabase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/mmcdole/moviedb/internal/domain"
)

// contentRowID is the single row of the content table
const contentRowID = "1"

type bookmarkRow struct {
	Bookmarked []domain.BookmarkRecord `json:"bookmarked"`
}

type contentRow struct {
	Genres    []domain.Genre    `json:"genres"`
	MediaPool []domain.MediaRef `json:"media_pool"`
}

func (c *Client) restPath(table string) string {
	return "/rest/v1/" + url.PathEscape(table)
}

// ReadBookmarks returns the user's list; a missing row or a null column is an empty list
func (c *Client) ReadBookmarks(ctx context.Context, userID string) ([]domain.BookmarkRecord, error) {
	q := url.Values{}
	q.Set("select", "bookmarked")
	q.Set("user_uid", "eq."+userID)

	resp, err := c.do(ctx, request{method: http.MethodGet, path: c.restPath(c.bookmarks), query: q})
	if err != nil {
		return nil, err
	}
	if !ok(resp.status) {
		return nil, statusError(resp)
	}

	var rows []bookmarkRow
	if err := json.Unmarshal(resp.body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse bookmarks: %w", err)
	}
	if len(rows) == 0 || rows[0].Bookmarked == nil {
		return []domain.BookmarkRecord{}, nil
	}
	return rows[0].Bookmarked, nil
}

// ReplaceBookmarks overwrites the bookmarked column of the user's row
func (c *Client) ReplaceBookmarks(ctx context.Context, userID string, records []domain.BookmarkRecord) error {
	if records == nil {
		records = []domain.BookmarkRecord{}
	}
	body, err := json.Marshal(bookmarkRow{Bookmarked: records})
	if err != nil {
		return err
	}

	q := url.Values{}
	q.Set("user_uid", "eq."+userID)
	resp, err := c.do(ctx, request{
		method:  http.MethodPatch,
		path:    c.restPath(c.bookmarks),
		query:   q,
		body:    body,
		headers: map[string]string{"Prefer": "return=minimal"},
	})
	if err != nil {
		return err
	}
	if !ok(resp.status) {
		return statusError(resp)
	}
	return nil
}

// CreateRecord inserts the user's empty bookmark row. An existing row is kept.
func (c *Client) CreateRecord(ctx context.Context, userID string) error {
	body, err := json.Marshal(map[string]string{"user_uid": userID})
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    c.restPath(c.bookmarks),
		body:    body,
		headers: map[string]string{"Prefer": "return=minimal"},
	})
	if err != nil {
		return err
	}
	if !ok(resp.status) {
		err := statusError(resp)
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil
		}
		return err
	}
	return nil
}

func (c *Client) readContent(ctx context.Context, column string) (*contentRow, error) {
	q := url.Values{}
	q.Set("select", column)
	q.Set("id", "eq."+contentRowID)

	resp, err := c.do(ctx, request{method: http.MethodGet, path: c.restPath(c.content), query: q})
	if err != nil {
		return nil, err
	}
	if !ok(resp.status) {
		return nil, statusError(resp)
	}

	var rows []contentRow
	if err := json.Unmarshal(resp.body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("content row: %w", domain.ErrNotFound)
	}
	return &rows[0], nil
}

// Genres returns the shared genre list
func (c *Client) Genres(ctx context.Context) ([]domain.Genre, error) {
	row, err := c.readContent(ctx, "genres")
	if err != nil {
		return nil, err
	}
	if row.Genres == nil {
		return []domain.Genre{}, nil
	}
	return row.Genres, nil
}

// RandomMedia picks one entry of the media pool uniformly at random
func (c *Client) RandomMedia(ctx context.Context) (domain.MediaRef, error) {
	row, err := c.readContent(ctx, "media_pool")
	if err != nil {
		return domain.MediaRef{}, err
	}
	if len(row.MediaPool) == 0 {
		return domain.MediaRef{}, fmt.Errorf("media pool: %w", domain.ErrNotFound)
	}
	return row.MediaPool[rand.IntN(len(row.MediaPool))], nil
}
