package bookmark

import (
	"context"
	"errors"
	"testing"

	"github.com/mmcdole/moviedb/internal/domain"
)

type countingObserver struct{ calls int }

func (o *countingObserver) OnBookmarksChanged() { o.calls++ }

func TestControlClickNotifiesOthers(t *testing.T) {
	m, _ := newTestManager(t)
	trending := NewControl(m, "trending")
	bookmarks := NewControl(m, "bookmarks")

	trendingObs := &countingObserver{}
	bookmarksObs := &countingObserver{}
	trending.Attach(trendingObs)
	bookmarks.Attach(bookmarksObs)

	item := domain.Media{ID: 278, Type: domain.MediaTypeMovie, Title: "The Shawshank Redemption", GenreIDs: []int{18, 80}}
	present, err := trending.Click(context.Background(), item)
	if err != nil {
		t.Fatalf("Click() error = %v", err)
	}
	if !present {
		t.Error("Click() reported not bookmarked")
	}
	if trendingObs.calls != 0 {
		t.Errorf("clicking component notified %d times, want 0", trendingObs.calls)
	}
	if bookmarksObs.calls != 1 {
		t.Errorf("other component notified %d times, want 1", bookmarksObs.calls)
	}
	if !bookmarks.IsBookmarked(item) {
		t.Error("IsBookmarked() = false after click")
	}
}

func TestControlClickFailureDoesNotNotify(t *testing.T) {
	m, store := newTestManager(t)
	store.writeErr = errors.New("offline")

	clicker := NewControl(m, "title")
	other := NewControl(m, "bookmarks")
	obs := &countingObserver{}
	other.Attach(obs)

	_, err := clicker.Click(context.Background(), domain.Media{ID: 1, Type: domain.MediaTypeTV})
	if !errors.Is(err, domain.ErrRemoteSync) {
		t.Fatalf("Click() error = %v, want ErrRemoteSync", err)
	}
	if obs.calls != 0 {
		t.Errorf("failed click notified %d times, want 0", obs.calls)
	}
}

func TestControlDetach(t *testing.T) {
	m, _ := newTestManager(t)
	view := NewControl(m, "search")
	obs := &countingObserver{}
	view.Attach(obs)
	view.Attach(obs)

	view.Detach()
	m.NotifySubscribers("trending")

	if obs.calls != 0 {
		t.Errorf("detached view notified %d times", obs.calls)
	}
	if view.Component() != "search" {
		t.Errorf("Component() = %q", view.Component())
	}
}

func TestControlClickStoresBookmarkShape(t *testing.T) {
	m, store := newTestManager(t)
	view := NewControl(m, "top-rated")

	item := domain.Media{
		ID:            1396,
		Type:          domain.MediaTypeTV,
		Title:         "Breaking Bad",
		BackdropPath:  "/bb.jpg",
		ReleaseDate:   "2008-01-20",
		RatingAverage: 8.9,
		GenreIDs:      []int{18},
	}
	if _, err := view.Click(context.Background(), item); err != nil {
		t.Fatal(err)
	}

	stored := store.stored(testUser.ID)
	if len(stored) != 1 {
		t.Fatalf("stored %d records, want 1", len(stored))
	}
	want := domain.BookmarkRecord{ID: 1396, Type: domain.MediaTypeTV, Title: "Breaking Bad", BackdropPath: "/bb.jpg", ReleaseDate: "2008-01-20"}
	got := stored[0]
	if got.ID != want.ID || got.Type != want.Type || got.Title != want.Title ||
		got.BackdropPath != want.BackdropPath || got.ReleaseDate != want.ReleaseDate {
		t.Errorf("stored %+v, want %+v", got, want)
	}
	if len(got.GenreIDs) != 1 || got.GenreIDs[0] != 18 {
		t.Errorf("GenreIDs = %v, want [18]", got.GenreIDs)
	}
}
