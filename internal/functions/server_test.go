package functions

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/mmcdole/moviedb/internal/avatar"
	"github.com/mmcdole/moviedb/internal/domain"
	"github.com/mmcdole/moviedb/internal/logging"
	"github.com/mmcdole/moviedb/internal/store"
)

const testSecret = "super-secret-jwt-token"

// fakeMetadata serves canned lists and records the arguments it saw
type fakeMetadata struct {
	trending []domain.Media
	recsErr  error

	topRatedType domain.MediaType
	topRatedPage int
	searchQuery  string
}

func (f *fakeMetadata) Upcoming(ctx context.Context) ([]domain.Media, error) {
	return []domain.Media{{ID: 1, Type: domain.MediaTypeMovie, Title: "Soon"}}, nil
}

func (f *fakeMetadata) TrailerKey(ctx context.Context, movieID int) (string, error) {
	if movieID == 404 {
		return "", domain.ErrNoTrailer
	}
	return "yt-" + domain.MediaIDString(movieID), nil
}

func (f *fakeMetadata) Trending(ctx context.Context) ([]domain.Media, error) {
	return f.trending, nil
}

func (f *fakeMetadata) Recommendations(ctx context.Context, movieID, seriesID int) (*domain.Recommendations, error) {
	if f.recsErr != nil {
		return nil, f.recsErr
	}
	return &domain.Recommendations{
		Movies:   []domain.Media{{ID: movieID + 1, Type: domain.MediaTypeMovie}},
		TVSeries: []domain.Media{{ID: seriesID + 1, Type: domain.MediaTypeTV}},
	}, nil
}

func (f *fakeMetadata) TopRated(ctx context.Context, t domain.MediaType, page int) ([]domain.Media, error) {
	f.topRatedType, f.topRatedPage = t, page
	return []domain.Media{{ID: 278, Type: t, Title: "Top"}}, nil
}

func (f *fakeMetadata) Search(ctx context.Context, query string) ([]domain.Media, error) {
	f.searchQuery = query
	return []domain.Media{}, nil
}

func (f *fakeMetadata) Details(ctx context.Context, t domain.MediaType, id int) (*domain.MediaDetails, error) {
	if id == 404 {
		return nil, domain.ErrNotFound
	}
	return &domain.MediaDetails{
		Media:   domain.Media{ID: id, Type: t, Title: "Breaking Bad"},
		Runtime: 5,
	}, nil
}

func newTestServer(t *testing.T, opts Options) (*httptest.Server, *store.Store, *fakeMetadata) {
	t.Helper()
	st, err := store.Open("")
	if err != nil {
		t.Fatal(err)
	}
	meta := &fakeMetadata{
		trending: []domain.Media{
			{ID: 278, Type: domain.MediaTypeMovie, Title: "The Shawshank Redemption"},
			{ID: 1396, Type: domain.MediaTypeTV, Title: "Breaking Bad"},
		},
	}
	backend := Backend{Bookmarks: st, Content: st, Avatars: st, Metadata: meta}
	srv := httptest.NewServer(NewServer(backend, opts, logging.NullLogger()).Handler())
	t.Cleanup(srv.Close)
	return srv, st, meta
}

func doRequest(t *testing.T, method, url, token, body string) (int, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(data)
}

func signToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func TestUnknownAction(t *testing.T) {
	srv, _, _ := newTestServer(t, Options{})

	for _, target := range []string{
		"/api?action=dropTables",
		"/api",
		"/database?action=fetchTrending",
	} {
		status, body := doRequest(t, http.MethodGet, srv.URL+target, "", "")
		if status != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", target, status)
		}
		if body != `{"error":"Invalid action"}` {
			t.Errorf("GET %s body = %s", target, body)
		}
	}

	// read actions are not reachable by POST
	status, _ := doRequest(t, http.MethodPost, srv.URL+"/database?action=getGenres", "", "{}")
	if status != http.StatusBadRequest {
		t.Errorf("POST getGenres status = %d, want 400", status)
	}
}

func TestAPIActions(t *testing.T) {
	srv, _, meta := newTestServer(t, Options{})

	status, body := doRequest(t, http.MethodGet, srv.URL+"/api?action=fetchTrending", "", "")
	if status != http.StatusOK {
		t.Fatalf("fetchTrending status = %d, body = %s", status, body)
	}
	var items []domain.Media
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[1].Type != domain.MediaTypeTV {
		t.Errorf("fetchTrending = %+v", items)
	}

	status, body = doRequest(t, http.MethodGet, srv.URL+"/api?action=fetchTrailerSrcKey&movieId=550", "", "")
	if status != http.StatusOK || body != `"yt-550"` {
		t.Errorf("fetchTrailerSrcKey = %d %s", status, body)
	}

	status, _ = doRequest(t, http.MethodGet, srv.URL+"/api?action=fetchTopRated", "", "")
	if status != http.StatusOK {
		t.Fatalf("fetchTopRated status = %d", status)
	}
	if meta.topRatedType != domain.MediaTypeMovie || meta.topRatedPage != 1 {
		t.Errorf("fetchTopRated defaults = %s page %d, want movie page 1", meta.topRatedType, meta.topRatedPage)
	}

	doRequest(t, http.MethodGet, srv.URL+"/api?action=fetchSearchResults&searchQuery=the+wire", "", "")
	if meta.searchQuery != "the wire" {
		t.Errorf("search query = %q", meta.searchQuery)
	}

	status, body = doRequest(t, http.MethodGet, srv.URL+"/api?action=fetchMediaDetails&type=tv&mediaId=1396", "", "")
	if status != http.StatusOK || !strings.Contains(body, `"runTime":5`) {
		t.Errorf("fetchMediaDetails = %d %s", status, body)
	}
}

func TestAPIActionErrors(t *testing.T) {
	srv, _, meta := newTestServer(t, Options{})
	meta.recsErr = domain.ErrEmptyResults

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
	}{
		{"missing id", "/api?action=fetchTrailerSrcKey", http.StatusBadRequest, ""},
		{"bad id", "/api?action=fetchTrailerSrcKey&movieId=abc", http.StatusBadRequest, ""},
		{"bad type", "/api?action=fetchTopRated&type=anime", http.StatusBadRequest, ""},
		{"no trailer", "/api?action=fetchTrailerSrcKey&movieId=404", http.StatusInternalServerError, `"no trailer found"`},
		{"empty recommendations", "/api?action=fetchRecommendations&movieId=1&seriesId=2", http.StatusInternalServerError, `"data array is empty"`},
		{"unknown title", "/api?action=fetchMediaDetails&type=movie&mediaId=404", http.StatusNotFound, `"not found"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doRequest(t, http.MethodGet, srv.URL+tt.target, "", "")
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", status, tt.wantStatus, body)
			}
			if tt.wantBody != "" && body != tt.wantBody {
				t.Errorf("body = %s, want %s", body, tt.wantBody)
			}
		})
	}
}

func TestDatabaseBookmarks(t *testing.T) {
	srv, st, _ := newTestServer(t, Options{})
	ctx := context.Background()

	status, body := doRequest(t, http.MethodGet, srv.URL+"/database?action=getUserBookmarks&userUid=u1", "", "")
	if status != http.StatusOK || body != "[]" {
		t.Errorf("getUserBookmarks(new user) = %d %s, want 200 []", status, body)
	}

	update := `{"userUid":"u1","updatedBookmarks":[{"id":278,"type":"movie","title":"The Shawshank Redemption","backdropPath":"/s.jpg","releaseDate":"1994-09-23","genreIds":[18,80]}]}`
	status, body = doRequest(t, http.MethodPost, srv.URL+"/database?action=updateUserBookmarks", "", update)
	if status != http.StatusOK {
		t.Fatalf("updateUserBookmarks = %d %s", status, body)
	}

	stored, err := st.ReadBookmarks(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].ID != 278 || len(stored[0].GenreIDs) != 2 {
		t.Errorf("stored = %+v", stored)
	}

	status, _ = doRequest(t, http.MethodPost, srv.URL+"/database?action=updateUserBookmarks", "",
		`{"userUid":"u1","updatedBookmarks":[{"id":1,"type":"anime"}]}`)
	if status != http.StatusBadRequest {
		t.Errorf("invalid media type status = %d, want 400", status)
	}

	status, body = doRequest(t, http.MethodPost, srv.URL+"/database?action=updateUserBookmarks", "",
		`{"updatedBookmarks":[]}`)
	if status != http.StatusBadRequest || !strings.Contains(body, "UserUID is required") {
		t.Errorf("missing userUid = %d %s", status, body)
	}

	status, _ = doRequest(t, http.MethodPost, srv.URL+"/database?action=updateUserBookmarks", "", `{not json`)
	if status != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", status)
	}
}

func TestDatabaseContent(t *testing.T) {
	srv, st, _ := newTestServer(t, Options{})
	if err := st.SaveGenres([]domain.Genre{{ID: 18, Name: "Drama"}}); err != nil {
		t.Fatal(err)
	}

	status, body := doRequest(t, http.MethodGet, srv.URL+"/database?action=getGenres", "", "")
	if status != http.StatusOK || body != `[{"id":18,"name":"Drama"}]` {
		t.Errorf("getGenres = %d %s", status, body)
	}

	status, _ = doRequest(t, http.MethodGet, srv.URL+"/database?action=getRandomMedia", "", "")
	if status != http.StatusNotFound {
		t.Errorf("getRandomMedia(empty pool) status = %d, want 404", status)
	}

	if err := st.SaveMediaPool([]domain.MediaRef{{ID: 1396, Type: domain.MediaTypeTV}}); err != nil {
		t.Fatal(err)
	}
	status, body = doRequest(t, http.MethodGet, srv.URL+"/database?action=getRandomMedia", "", "")
	if status != http.StatusOK || body != `{"id":1396,"type":"tv"}` {
		t.Errorf("getRandomMedia = %d %s", status, body)
	}

	status, body = doRequest(t, http.MethodPost, srv.URL+"/database?action=createRecord", "", `{"userUid":"u2"}`)
	if status != http.StatusOK || body != `{"userUid":"u2"}` {
		t.Errorf("createRecord = %d %s", status, body)
	}
}

func TestDatabaseAvatar(t *testing.T) {
	srv, _, _ := newTestServer(t, Options{})

	status, _ := doRequest(t, http.MethodGet, srv.URL+"/database?action=downloadAvatar&userUid=u1", "", "")
	if status != http.StatusNotFound {
		t.Errorf("downloadAvatar(missing) status = %d, want 404", status)
	}

	upload, err := json.Marshal(UploadAvatarRequest{
		AvatarFileName: "u1",
		Base64:         avatar.EncodeDataURL(domain.Avatar{Data: pngBytes, MimeType: "image/png"}),
	})
	if err != nil {
		t.Fatal(err)
	}
	status, body := doRequest(t, http.MethodPost, srv.URL+"/database?action=uploadAvatar", "", string(upload))
	if status != http.StatusOK || !strings.Contains(body, `"mimeType":"image/png"`) {
		t.Fatalf("uploadAvatar = %d %s", status, body)
	}

	status, body = doRequest(t, http.MethodGet, srv.URL+"/database?action=downloadAvatar&userUid=u1", "", "")
	if status != http.StatusOK {
		t.Fatalf("downloadAvatar status = %d", status)
	}
	var dataURL string
	if err := json.Unmarshal([]byte(body), &dataURL); err != nil {
		t.Fatal(err)
	}
	got, err := avatar.DecodeDataURL(dataURL)
	if err != nil {
		t.Fatal(err)
	}
	if got.MimeType != "image/png" || len(got.Data) != len(pngBytes) {
		t.Errorf("downloaded %s, %d bytes", got.MimeType, len(got.Data))
	}

	text := `{"avatarFileName":"u1","base64":"data:text/plain;base64,aGVsbG8="}`
	status, _ = doRequest(t, http.MethodPost, srv.URL+"/database?action=uploadAvatar", "", text)
	if status != http.StatusBadRequest {
		t.Errorf("uploadAvatar(text) status = %d, want 400", status)
	}
}

func TestTokenScopedActions(t *testing.T) {
	srv, _, _ := newTestServer(t, Options{JWTSecret: testSecret})
	target := srv.URL + "/database?action=getUserBookmarks&userUid=u1"

	status, _ := doRequest(t, http.MethodGet, target, "", "")
	if status != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", status)
	}

	status, _ = doRequest(t, http.MethodGet, target, "not-a-jwt", "")
	if status != http.StatusUnauthorized {
		t.Errorf("garbage token status = %d, want 401", status)
	}

	status, _ = doRequest(t, http.MethodGet, target, signToken(t, "someone-else"), "")
	if status != http.StatusForbidden {
		t.Errorf("foreign token status = %d, want 403", status)
	}

	status, body := doRequest(t, http.MethodGet, target, signToken(t, "u1"), "")
	if status != http.StatusOK || body != "[]" {
		t.Errorf("own token = %d %s", status, body)
	}

	// shared content stays public
	status, _ = doRequest(t, http.MethodGet, srv.URL+"/database?action=getGenres", "", "")
	if status != http.StatusOK {
		t.Errorf("getGenres without token status = %d, want 200", status)
	}
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t, Options{})
	status, body := doRequest(t, http.MethodGet, srv.URL+"/health", "", "")
	if status != http.StatusOK || body != `{"status":"ok"}` {
		t.Errorf("health = %d %s", status, body)
	}
}

func TestRateLimit(t *testing.T) {
	srv, _, _ := newTestServer(t, Options{RateLimit: 2, RateWindow: time.Minute})
	target := srv.URL + "/api?action=fetchTrending"

	for i := range 2 {
		if status, _ := doRequest(t, http.MethodGet, target, "", ""); status != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, status)
		}
	}
	if status, _ := doRequest(t, http.MethodGet, target, "", ""); status != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", status)
	}
}
