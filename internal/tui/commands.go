package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/moviedb/internal/bookmark"
	"github.com/mmcdole/moviedb/internal/domain"
	"github.com/mmcdole/moviedb/internal/search"
)

// Command factories for async operations

const (
	loadTimeout   = 30 * time.Second
	toggleTimeout = 30 * time.Second
	statusTimeout = 4 * time.Second
	tickInterval  = 100 * time.Millisecond
	searchDelay   = 300 * time.Millisecond
)

// InitializeBookmarksCmd runs the manager's initial read
func InitializeBookmarksCmd(m *bookmark.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return BookmarksLoadedMsg{Err: m.Initialize(ctx)}
	}
}

// WaitForBookmarkChangeCmd blocks until an observer fires
func WaitForBookmarkChangeCmd(ch <-chan BookmarksChangedMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// ToggleBookmarkCmd toggles item through control. The write finishes even if
// the page that started it is closed in the meantime.
func ToggleBookmarkCmd(control *bookmark.Control, item domain.ListItem, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), toggleTimeout)
		defer cancel()

		present, err := control.Click(ctx, item)
		return BookmarkToggledMsg{
			pageMsg:   pageMsg{Gen: gen},
			Component: control.Component(),
			Key:       item.GetKey(),
			Title:     item.GetTitle(),
			Present:   present,
			Err:       err,
		}
	}
}

// LoadTrendingCmd loads the trending list
func LoadTrendingCmd(meta domain.MetadataSource, section string, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		items, err := meta.Trending(ctx)
		return MediaLoadedMsg{pageMsg: pageMsg{Gen: gen}, Section: section, Items: items, Err: err}
	}
}

// LoadTopRatedCmd loads one page of top rated titles
func LoadTopRatedCmd(meta domain.MetadataSource, t domain.MediaType, page int, section string, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		items, err := meta.TopRated(ctx, t, page)
		return MediaLoadedMsg{pageMsg: pageMsg{Gen: gen}, Section: section, Items: items, Err: err}
	}
}

// LoadRecommendationsCmd loads suggestions seeded from the given ids
func LoadRecommendationsCmd(meta domain.MetadataSource, movieID, seriesID, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		recs, err := meta.Recommendations(ctx, movieID, seriesID)
		return RecommendationsLoadedMsg{pageMsg: pageMsg{Gen: gen}, Recommendations: recs, Err: err}
	}
}

// LoadUpcomingCmd loads the first upcoming movie and its trailer. A missing
// trailer is not an error.
func LoadUpcomingCmd(meta domain.MetadataSource, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		msg := UpcomingLoadedMsg{pageMsg: pageMsg{Gen: gen}}
		movies, err := meta.Upcoming(ctx)
		if err != nil {
			msg.Err = err
			return msg
		}
		if len(movies) == 0 {
			return msg
		}
		msg.Movie = &movies[0]
		if key, err := meta.TrailerKey(ctx, movies[0].ID); err == nil {
			msg.TrailerKey = key
		}
		return msg
	}
}

// LoadDetailsCmd loads a title page
func LoadDetailsCmd(meta domain.MetadataSource, t domain.MediaType, id, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		details, err := meta.Details(ctx, t, id)
		return DetailsLoadedMsg{pageMsg: pageMsg{Gen: gen}, Details: details, Err: err}
	}
}

// LoadTrailerCmd loads the trailer key of a movie
func LoadTrailerCmd(meta domain.MetadataSource, movieID, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		key, err := meta.TrailerKey(ctx, movieID)
		return TrailerLoadedMsg{pageMsg: pageMsg{Gen: gen}, Key: key, Err: err}
	}
}

// LoadGenresCmd loads the genre list
func LoadGenresCmd(content domain.ContentSource, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		genres, err := content.Genres(ctx)
		return GenresLoadedMsg{pageMsg: pageMsg{Gen: gen}, Genres: genres, Err: err}
	}
}

// DebounceSearchCmd waits before searching so each keystroke does not hit the network
func DebounceSearchCmd(query string, seq, gen int) tea.Cmd {
	return tea.Tick(searchDelay, func(time.Time) tea.Msg {
		return SearchDebounceMsg{pageMsg: pageMsg{Gen: gen}, Seq: seq, Query: query}
	})
}

// SearchCmd runs a title search
func SearchCmd(svc *search.Service, query string, seq, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		results, err := svc.Search(ctx, query)
		return SearchResultsMsg{pageMsg: pageMsg{Gen: gen}, Seq: seq, Query: query, Results: results, Err: err}
	}
}

// NavigateCmd opens a route
func NavigateCmd(route Route) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Route: route}
	}
}

// StatusCmd shows a status message
func StatusCmd(message string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Message: message, IsError: isError}
	}
}

// ClearStatusCmd clears the status message with seq after a delay
func ClearStatusCmd(seq int) tea.Cmd {
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}

// LogoutCmd clears the stored session
func LogoutCmd(logout func() error) tea.Cmd {
	return func() tea.Msg {
		if logout == nil {
			return LogoutCompleteMsg{}
		}
		return LogoutCompleteMsg{Err: logout()}
	}
}

// TickCmd schedules the next spinner frame
func TickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}
