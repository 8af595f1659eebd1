package supabase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/mmcdole/moviedb/internal/domain"
	"github.com/mmcdole/moviedb/internal/logging"
	"github.com/mmcdole/moviedb/internal/validation"
)

// fakeProject imitates the slice of PostgREST, storage and auth the client uses
type fakeProject struct {
	mu        sync.Mutex
	rows      map[string]json.RawMessage // user id -> bookmarked column
	avatars   map[string][]byte
	mimes     map[string]string
	headers   http.Header
	signInErr int
	userBody  []byte
	userAuth  string
}

func newFakeProject(t *testing.T) (*fakeProject, *httptest.Server) {
	t.Helper()
	f := &fakeProject{
		rows:    map[string]json.RawMessage{},
		avatars: map[string][]byte{},
		mimes:   map[string]string{},
	}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /rest/v1/bookmarks", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.headers = r.Header.Clone()
		user := strings.TrimPrefix(r.URL.Query().Get("user_uid"), "eq.")
		col, ok := f.rows[user]
		if !ok {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[{"bookmarked":` + string(col) + `}]`))
	})
	mux.HandleFunc("PATCH /rest/v1/bookmarks", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		user := strings.TrimPrefix(r.URL.Query().Get("user_uid"), "eq.")
		var row struct {
			Bookmarked json.RawMessage `json:"bookmarked"`
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &row); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if user == "broken" {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"connection reset"}`))
			return
		}
		f.rows[user] = row.Bookmarked
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /rest/v1/bookmarks", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var row struct {
			UserUID string `json:"user_uid"`
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &row)
		if _, exists := f.rows[row.UserUID]; exists {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"code":"23505","message":"duplicate key value violates unique constraint"}`))
			return
		}
		f.rows[row.UserUID] = json.RawMessage(`null`)
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("GET /rest/v1/content", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("select") {
		case "genres":
			w.Write([]byte(`[{"genres":[{"id":18,"name":"Drama"},{"id":35,"name":"Comedy"}]}]`))
		case "media_pool":
			w.Write([]byte(`[{"media_pool":[{"id":278,"type":"movie"}]}]`))
		}
	})
	mux.HandleFunc("POST /storage/v1/object/user-avatars/{user}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if r.Header.Get("x-upsert") != "true" || r.Header.Get("cache-control") != "no-cache" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(r.Body)
		f.avatars[r.PathValue("user")] = data
		f.mimes[r.PathValue("user")] = r.Header.Get("Content-Type")
		w.Write([]byte(`{"Key":"user-avatars/x"}`))
	})
	mux.HandleFunc("GET /storage/v1/object/user-avatars/{user}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		data, ok := f.avatars[r.PathValue("user")]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"statusCode":"404","error":"not_found","message":"Object not found"}`))
			return
		}
		w.Header().Set("Content-Type", f.mimes[r.PathValue("user")])
		w.Write(data)
	})
	mux.HandleFunc("POST /auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("grant_type") != "password" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if f.signInErr != 0 {
			w.WriteHeader(f.signInErr)
			w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
			return
		}
		w.Write([]byte(`{"access_token":"jwt-token","refresh_token":"refresh","expires_in":3600,"user":{"id":"user-1","email":"viewer@example.com"}}`))
	})
	mux.HandleFunc("POST /auth/v1/signup", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"user-2","email":"new@example.com","user_metadata":{}}`))
	})
	mux.HandleFunc("PUT /auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.userBody, _ = io.ReadAll(r.Body)
		f.userAuth = r.Header.Get("Authorization")
		var in struct {
			Email string         `json:"email"`
			Data  map[string]any `json:"data"`
		}
		if err := json.Unmarshal(f.userBody, &in); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		out, _ := json.Marshal(map[string]any{"id": "user-1", "email": in.Email, "user_metadata": in.Data})
		w.Write(out)
	})
	mux.HandleFunc("POST /auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func newTestClient(srv *httptest.Server, session *domain.Session) *Client {
	return NewClient(Options{
		URL:            srv.URL,
		AnonKey:        "anon",
		BookmarksTable: "bookmarks",
		ContentTable:   "content",
		AvatarBucket:   "user-avatars",
	}, session, logging.NullLogger())
}

func TestBookmarksRoundTrip(t *testing.T) {
	_, srv := newFakeProject(t)
	c := newTestClient(srv, nil)
	ctx := context.Background()

	// unknown user: empty list
	list, err := c.ReadBookmarks(ctx, "user-1")
	if err != nil || list == nil || len(list) != 0 {
		t.Fatalf("ReadBookmarks() = %v, %v; want empty list", list, err)
	}

	if err := c.CreateRecord(ctx, "user-1"); err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}
	// second insert hits the unique constraint and is ignored
	if err := c.CreateRecord(ctx, "user-1"); err != nil {
		t.Fatalf("repeated CreateRecord() error = %v", err)
	}

	// null column reads as empty
	list, err = c.ReadBookmarks(ctx, "user-1")
	if err != nil || len(list) != 0 {
		t.Fatalf("ReadBookmarks() after create = %v, %v", list, err)
	}

	records := []domain.BookmarkRecord{
		{ID: 278, Type: domain.MediaTypeMovie, Title: "The Shawshank Redemption", ReleaseDate: "1994-09-23", GenreIDs: []int{18, 80}},
		{ID: 1396, Type: domain.MediaTypeTV, Title: "Breaking Bad", GenreIDs: []int{18}},
	}
	if err := c.ReplaceBookmarks(ctx, "user-1", records); err != nil {
		t.Fatalf("ReplaceBookmarks() error = %v", err)
	}

	list, err = c.ReadBookmarks(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != 278 || list[1].Type != domain.MediaTypeTV || list[0].ReleaseDate != "1994-09-23" {
		t.Errorf("ReadBookmarks() = %+v", list)
	}
}

func TestReplaceBookmarksFailure(t *testing.T) {
	_, srv := newFakeProject(t)
	c := newTestClient(srv, nil)

	err := c.ReplaceBookmarks(context.Background(), "broken", nil)
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("ReplaceBookmarks() error = %v, want database error", err)
	}
}

func TestRequestCredentials(t *testing.T) {
	f, srv := newFakeProject(t)
	ctx := context.Background()

	anon := newTestClient(srv, nil)
	anon.ReadBookmarks(ctx, "x")
	if got := f.headers.Get("Authorization"); got != "Bearer anon" {
		t.Errorf("anonymous Authorization = %q", got)
	}

	signedIn := newTestClient(srv, &domain.Session{AccessToken: "user-jwt", User: domain.User{ID: "x"}})
	signedIn.ReadBookmarks(ctx, "x")
	if got := f.headers.Get("Authorization"); got != "Bearer user-jwt" {
		t.Errorf("signed in Authorization = %q", got)
	}
	if got := f.headers.Get("apikey"); got != "anon" {
		t.Errorf("apikey = %q", got)
	}
}

func TestContent(t *testing.T) {
	_, srv := newFakeProject(t)
	c := newTestClient(srv, nil)
	ctx := context.Background()

	genres, err := c.Genres(ctx)
	if err != nil || len(genres) != 2 || genres[1].Name != "Comedy" {
		t.Errorf("Genres() = %+v, %v", genres, err)
	}
	ref, err := c.RandomMedia(ctx)
	if err != nil || ref.ID != 278 || ref.Type != domain.MediaTypeMovie {
		t.Errorf("RandomMedia() = %+v, %v", ref, err)
	}
}

func TestAvatarUploadDownload(t *testing.T) {
	_, srv := newFakeProject(t)
	c := newTestClient(srv, nil)
	ctx := context.Background()

	if _, err := c.DownloadAvatar(ctx, "user-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("DownloadAvatar() before upload error = %v, want ErrNotFound", err)
	}

	img := []byte{0x89, 'P', 'N', 'G'}
	if err := c.UploadAvatar(ctx, "user-1", domain.Avatar{Data: img, MimeType: "image/png"}); err != nil {
		t.Fatalf("UploadAvatar() error = %v", err)
	}
	got, err := c.DownloadAvatar(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Data, img) || got.MimeType != "image/png" {
		t.Errorf("DownloadAvatar() = %+v", got)
	}
}

func TestSignInAndOut(t *testing.T) {
	_, srv := newFakeProject(t)
	c := newTestClient(srv, nil)
	ctx := context.Background()

	session, err := c.SignIn(ctx, "viewer@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if session.AccessToken != "jwt-token" || session.User.ID != "user-1" {
		t.Errorf("SignIn() = %+v", session)
	}
	if u, _ := c.CurrentUser(ctx); u == nil || u.ID != "user-1" {
		t.Errorf("CurrentUser() = %+v", u)
	}

	if err := c.SignOut(ctx); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if u, _ := c.CurrentUser(ctx); u != nil {
		t.Errorf("CurrentUser() after SignOut = %+v", u)
	}
}

func TestSignInErrorMessages(t *testing.T) {
	tests := []struct {
		status  int
		want    string
		wantErr error
	}{
		{http.StatusBadRequest, "Invalid login credentials.", domain.ErrAuthFailed},
		{http.StatusUnauthorized, "Unauthorized access. Please check your credentials.", domain.ErrAuthFailed},
		{http.StatusTooManyRequests, "Too many login attempts. Please try again later.", domain.ErrRateLimited},
		{http.StatusInternalServerError, "unexpected error occurred: Invalid login credentials", nil},
	}
	for _, tt := range tests {
		f, srv := newFakeProject(t)
		f.signInErr = tt.status
		c := newTestClient(srv, nil)

		_, err := c.SignIn(context.Background(), "viewer@example.com", "secret1")
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("status %d: error = %v, want %q", tt.status, err, tt.want)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("status %d: error = %v, want %v", tt.status, err, tt.wantErr)
		}
	}
}

func TestSignUpCreatesRecord(t *testing.T) {
	f, srv := newFakeProject(t)
	c := newTestClient(srv, nil)

	user, err := c.SignUp(context.Background(), "new@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if user.ID != "user-2" {
		t.Errorf("SignUp() = %+v", user)
	}
	f.mu.Lock()
	_, ok := f.rows["user-2"]
	f.mu.Unlock()
	if !ok {
		t.Error("SignUp() did not create the bookmark row")
	}
}

func TestUpdateProfile(t *testing.T) {
	f, srv := newFakeProject(t)
	c := newTestClient(srv, &domain.Session{
		AccessToken: "jwt-token",
		User:        domain.User{ID: "user-1", Email: "viewer@example.com"},
	})
	ctx := context.Background()

	session, err := c.UpdateProfile(ctx, domain.ProfileUpdate{Email: " new@example.com ", Name: "Viewer"})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if session.AccessToken != "jwt-token" || session.User.Email != "new@example.com" || session.User.DisplayName != "Viewer" {
		t.Errorf("UpdateProfile() = %+v", session)
	}
	if u, _ := c.CurrentUser(ctx); u == nil || u.DisplayName != "Viewer" {
		t.Errorf("CurrentUser() = %+v", u)
	}

	f.mu.Lock()
	auth, body := f.userAuth, f.userBody
	f.mu.Unlock()
	if auth != "Bearer jwt-token" {
		t.Errorf("Authorization = %q", auth)
	}
	var sent map[string]any
	if err := json.Unmarshal(body, &sent); err != nil {
		t.Fatal(err)
	}
	if _, ok := sent["password"]; ok {
		t.Errorf("body %s carries a password when none was given", body)
	}
	if data, _ := sent["data"].(map[string]any); data["name"] != "Viewer" {
		t.Errorf("body %s, want data.name", body)
	}

	if _, err := c.UpdateProfile(ctx, domain.ProfileUpdate{Email: "new@example.com", Name: "Viewer", Password: "changed1"}); err != nil {
		t.Fatal(err)
	}
	f.mu.Lock()
	body = f.userBody
	f.mu.Unlock()
	if !strings.Contains(string(body), `"password":"changed1"`) {
		t.Errorf("body %s, want the new password", body)
	}
}

func TestUpdateProfileRejected(t *testing.T) {
	f, srv := newFakeProject(t)
	c := newTestClient(srv, nil)
	ctx := context.Background()

	if _, err := c.UpdateProfile(ctx, domain.ProfileUpdate{Email: "viewer@example.com"}); !errors.Is(err, domain.ErrNoSession) {
		t.Errorf("signed out error = %v, want ErrNoSession", err)
	}

	c.Set(&domain.Session{AccessToken: "jwt-token", User: domain.User{ID: "user-1"}})
	_, err := c.UpdateProfile(ctx, domain.ProfileUpdate{Email: "viewer@example.com", Name: "Viewer", Password: "abc"})
	if msgs := validation.Messages(err); len(msgs) != 1 || msgs[0] != "Incorrect password (min. 6 characters)" {
		t.Errorf("short password messages = %v", msgs)
	}

	c.Set(&domain.Session{AccessToken: "jwt-token", User: domain.User{ID: validation.TestAccountID}})
	if _, err := c.UpdateProfile(ctx, domain.ProfileUpdate{Email: "viewer@example.com", Name: "Viewer"}); !errors.Is(err, validation.ErrTestAccount) {
		t.Errorf("test account error = %v, want ErrTestAccount", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.userBody != nil {
		t.Errorf("rejected updates reached the server: %s", f.userBody)
	}
}
