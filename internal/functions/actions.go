package functions

import (
	"cmp"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/mmcdole/moviedb/internal/avatar"
	"github.com/mmcdole/moviedb/internal/domain"
	"github.com/mmcdole/moviedb/internal/validation"
)

// maxBodyBytes bounds POST bodies; a 250 KB avatar grows by a third as base64
const maxBodyBytes = 512 * 1024

// action runs one dispatched request and returns the value to encode
type action func(r *http.Request) (any, error)

// UpdateBookmarksRequest is the body of POST /database?action=updateUserBookmarks
type UpdateBookmarksRequest struct {
	UserUID          string                  `json:"userUid" validate:"required"`
	UpdatedBookmarks []domain.BookmarkRecord `json:"updatedBookmarks"`
}

// CreateRecordRequest is the body of POST /database?action=createRecord
type CreateRecordRequest struct {
	UserUID string `json:"userUid" validate:"required"`
}

// UploadAvatarRequest is the body of POST /database?action=uploadAvatar.
// AvatarFileName is the user id.
type UploadAvatarRequest struct {
	AvatarFileName string `json:"avatarFileName" validate:"required"`
	Base64         string `json:"base64" validate:"required,dataurl"`
}

func (s *Server) apiActions() map[string]action {
	meta := s.backend.Metadata
	return map[string]action{
		"fetchUpcomingMovies": func(r *http.Request) (any, error) {
			return meta.Upcoming(r.Context())
		},
		"fetchTrailerSrcKey": func(r *http.Request) (any, error) {
			id, err := intParam(r.URL.Query(), "movieId", 0)
			if err != nil {
				return nil, err
			}
			return meta.TrailerKey(r.Context(), id)
		},
		"fetchTrending": func(r *http.Request) (any, error) {
			return meta.Trending(r.Context())
		},
		"fetchRecommendations": func(r *http.Request) (any, error) {
			q := r.URL.Query()
			movieID, err := intParam(q, "movieId", 0)
			if err != nil {
				return nil, err
			}
			seriesID, err := intParam(q, "seriesId", 0)
			if err != nil {
				return nil, err
			}
			return meta.Recommendations(r.Context(), movieID, seriesID)
		},
		"fetchTopRated": func(r *http.Request) (any, error) {
			q := r.URL.Query()
			t, err := domain.ParseMediaType(cmp.Or(q.Get("type"), string(domain.MediaTypeMovie)))
			if err != nil {
				return nil, err
			}
			page, err := intParam(q, "page", 1)
			if err != nil {
				return nil, err
			}
			return meta.TopRated(r.Context(), t, page)
		},
		"fetchSearchResults": func(r *http.Request) (any, error) {
			return meta.Search(r.Context(), r.URL.Query().Get("searchQuery"))
		},
		"fetchMediaDetails": func(r *http.Request) (any, error) {
			q := r.URL.Query()
			t, err := domain.ParseMediaType(q.Get("type"))
			if err != nil {
				return nil, err
			}
			id, err := intParam(q, "mediaId", 0)
			if err != nil {
				return nil, err
			}
			return meta.Details(r.Context(), t, id)
		},
	}
}

func (s *Server) databaseGetActions() map[string]action {
	return map[string]action{
		"getUserBookmarks": func(r *http.Request) (any, error) {
			userID, err := s.userParam(r, r.URL.Query().Get("userUid"))
			if err != nil {
				return nil, err
			}
			return s.backend.Bookmarks.ReadBookmarks(r.Context(), userID)
		},
		"getGenres": func(r *http.Request) (any, error) {
			return s.backend.Content.Genres(r.Context())
		},
		"getRandomMedia": func(r *http.Request) (any, error) {
			return s.backend.Content.RandomMedia(r.Context())
		},
		"downloadAvatar": func(r *http.Request) (any, error) {
			userID, err := s.userParam(r, r.URL.Query().Get("userUid"))
			if err != nil {
				return nil, err
			}
			a, err := s.backend.Avatars.DownloadAvatar(r.Context(), userID)
			if err != nil {
				return nil, err
			}
			return avatar.EncodeDataURL(*a), nil
		},
	}
}

func (s *Server) databasePostActions() map[string]action {
	return map[string]action{
		"updateUserBookmarks": func(r *http.Request) (any, error) {
			var req UpdateBookmarksRequest
			if err := decodeBody(r, &req); err != nil {
				return nil, err
			}
			userID, err := s.userParam(r, req.UserUID)
			if err != nil {
				return nil, err
			}
			for _, b := range req.UpdatedBookmarks {
				if !b.Type.Valid() {
					return nil, fmt.Errorf("%w: %q", domain.ErrInvalidMediaType, b.Type)
				}
			}
			records := req.UpdatedBookmarks
			if records == nil {
				records = []domain.BookmarkRecord{}
			}
			if err := s.backend.Bookmarks.ReplaceBookmarks(r.Context(), userID, records); err != nil {
				return nil, err
			}
			return records, nil
		},
		"createRecord": func(r *http.Request) (any, error) {
			var req CreateRecordRequest
			if err := decodeBody(r, &req); err != nil {
				return nil, err
			}
			userID, err := s.userParam(r, req.UserUID)
			if err != nil {
				return nil, err
			}
			if err := s.backend.Content.CreateRecord(r.Context(), userID); err != nil {
				return nil, err
			}
			return req, nil
		},
		"uploadAvatar": func(r *http.Request) (any, error) {
			var req UploadAvatarRequest
			if err := decodeBody(r, &req); err != nil {
				return nil, err
			}
			userID, err := s.userParam(r, req.AvatarFileName)
			if err != nil {
				return nil, err
			}
			decoded, err := avatar.DecodeDataURL(req.Base64)
			if err != nil {
				return nil, err
			}
			a, err := avatar.New(decoded.Data)
			if err != nil {
				return nil, err
			}
			if err := s.backend.Avatars.UploadAvatar(r.Context(), userID, a); err != nil {
				return nil, err
			}
			return map[string]string{"avatarFileName": userID, "mimeType": a.MimeType}, nil
		},
	}
}

// userParam requires a user id and, when tokens are verified, that it
// matches the caller
func (s *Server) userParam(r *http.Request, userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: userUid is required", errBadRequest)
	}
	if s.verifier == nil {
		return userID, nil
	}
	subject, err := s.verifier.Subject(r)
	if err != nil {
		return "", err
	}
	if subject != userID {
		return "", errForbidden
	}
	return userID, nil
}

func decodeBody(r *http.Request, dest any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("%w: body exceeds %d bytes", errBadRequest, maxBodyBytes)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return validation.ValidateStruct(dest)
}

// intParam parses a numeric query parameter; def is used when it is absent
// and zero means the parameter is required
func intParam(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		if def == 0 {
			return 0, fmt.Errorf("%w: %s is required", errBadRequest, name)
		}
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", errBadRequest, name)
	}
	return n, nil
}
