package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmcdole/moviedb/internal/domain"
)

func openTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open(%q) error = %v", dir, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBookmarksPersistAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	records := []domain.BookmarkRecord{
		{ID: 278, Type: domain.MediaTypeMovie, Title: "The Shawshank Redemption", GenreIDs: []int{18, 80}},
		{ID: 1396, Type: domain.MediaTypeTV, Title: "Breaking Bad"},
	}

	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.ReplaceBookmarks(ctx, "u1", records); err != nil {
		t.Fatalf("ReplaceBookmarks() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened := openTestStore(t, dir)
	got, err := reopened.ReadBookmarks(ctx, "u1")
	if err != nil {
		t.Fatalf("ReadBookmarks() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != 278 || got[1].Type != domain.MediaTypeTV {
		t.Errorf("ReadBookmarks() = %+v", got)
	}
	if len(got[0].GenreIDs) != 2 {
		t.Errorf("GenreIDs = %v, want [18 80]", got[0].GenreIDs)
	}
}

func TestReadBookmarksUnknownUser(t *testing.T) {
	s := openTestStore(t, "")
	got, err := s.ReadBookmarks(context.Background(), "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ReadBookmarks() = %v, want empty non-nil list", got)
	}
}

func TestCreateRecordKeepsExistingList(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	ctx := context.Background()

	if err := s.ReplaceBookmarks(ctx, "u1", []domain.BookmarkRecord{{ID: 1, Type: domain.MediaTypeMovie}}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateRecord(ctx, "u1"); err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}
	got, _ := s.ReadBookmarks(ctx, "u1")
	if len(got) != 1 {
		t.Errorf("CreateRecord() overwrote existing list: %v", got)
	}
}

func TestRandomMedia(t *testing.T) {
	s := openTestStore(t, "")
	ctx := context.Background()

	if _, err := s.RandomMedia(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("RandomMedia() on empty pool error = %v, want ErrNotFound", err)
	}

	pool := []domain.MediaRef{{ID: 278, Type: domain.MediaTypeMovie}, {ID: 1396, Type: domain.MediaTypeTV}}
	if err := s.SaveMediaPool(pool); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		ref, err := s.RandomMedia(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if ref != pool[0] && ref != pool[1] {
			t.Fatalf("RandomMedia() = %+v, not in pool", ref)
		}
	}
}

func TestGenres(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	genres := []domain.Genre{{ID: 18, Name: "Drama"}, {ID: 80, Name: "Crime"}}
	if err := s.SaveGenres(genres); err != nil {
		t.Fatal(err)
	}
	got, err := s.Genres(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].Name != "Crime" {
		t.Errorf("Genres() = %v", got)
	}
}

func TestAvatarRoundTrip(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	ctx := context.Background()

	if _, err := s.DownloadAvatar(ctx, "u1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("DownloadAvatar() error = %v, want ErrNotFound", err)
	}

	avatar := domain.Avatar{Data: []byte{0x89, 'P', 'N', 'G'}, MimeType: "image/png"}
	if err := s.UploadAvatar(ctx, "u1", avatar); err != nil {
		t.Fatal(err)
	}
	got, err := s.DownloadAvatar(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.MimeType != "image/png" || string(got.Data) != string(avatar.Data) {
		t.Errorf("DownloadAvatar() = %+v", got)
	}
}

func TestMetadataCacheTTL(t *testing.T) {
	s := openTestStore(t, "")
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if err := s.PutCached("tmdb:trending", []domain.Media{{ID: 1, Title: "One"}}); err != nil {
		t.Fatal(err)
	}

	var got []domain.Media
	if !s.GetCached("tmdb:trending", time.Minute, &got) || len(got) != 1 {
		t.Fatalf("GetCached() miss on fresh entry, got %v", got)
	}

	now = now.Add(2 * time.Minute)
	if s.GetCached("tmdb:trending", time.Minute, &got) {
		t.Error("GetCached() hit on expired entry")
	}

	if err := s.InvalidateCached("tmdb:"); err != nil {
		t.Fatal(err)
	}
	if s.GetCached("tmdb:trending", time.Hour, &got) {
		t.Error("GetCached() hit after invalidation")
	}
}

func TestAccounts(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	ctx := context.Background()
	acct := Account{ID: "id-1", Email: "Viewer@Example.com", PasswordHash: []byte("hash")}

	if err := s.CreateAccount(ctx, acct); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	dup := Account{ID: "id-2", Email: "viewer@example.com"}
	if err := s.CreateAccount(ctx, dup); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("duplicate CreateAccount() error = %v, want ErrAlreadyExists", err)
	}

	got, err := s.AccountByEmail(ctx, " viewer@example.com ")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "id-1" {
		t.Errorf("AccountByEmail().ID = %q, want id-1", got.ID)
	}
	if _, err := s.AccountByID(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("AccountByID() error = %v, want ErrNotFound", err)
	}
}

func TestCanceledContext(t *testing.T) {
	s := openTestStore(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.ReplaceBookmarks(ctx, "u1", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("ReplaceBookmarks() error = %v, want context.Canceled", err)
	}
}
