package tui

import (
	"github.com/mmcdole/moviedb/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error that is not tied to a page
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// pageMsg stamps async results with the page that requested them, so results
// that arrive after navigating away are dropped
type pageMsg struct {
	Gen int
}

func (m pageMsg) generation() int { return m.Gen }

type generational interface {
	generation() int
}

// BookmarksLoadedMsg signals that the manager finished its initial read
type BookmarksLoadedMsg struct {
	Err error
}

// BookmarksChangedMsg is sent when another component changed the bookmark list.
// Component is the subscriber being notified.
type BookmarksChangedMsg struct {
	Component string
}

// BookmarkToggledMsg carries the result of a toggle started by Component
type BookmarkToggledMsg struct {
	pageMsg
	Component string
	Key       domain.BookmarkKey
	Title     string
	Present   bool
	Err       error
}

// MediaLoadedMsg carries one list of titles. Section names which list it is for.
type MediaLoadedMsg struct {
	pageMsg
	Section string
	Items   []domain.Media
	Err     error
}

// RecommendationsLoadedMsg carries the recommended movies and series
type RecommendationsLoadedMsg struct {
	pageMsg
	Recommendations *domain.Recommendations
	Err             error
}

// UpcomingLoadedMsg carries the featured upcoming movie and its trailer
type UpcomingLoadedMsg struct {
	pageMsg
	Movie      *domain.Media
	TrailerKey string
	Err        error
}

// DetailsLoadedMsg carries a title page payload
type DetailsLoadedMsg struct {
	pageMsg
	Details *domain.MediaDetails
	Err     error
}

// TrailerLoadedMsg carries the trailer key of the title page movie
type TrailerLoadedMsg struct {
	pageMsg
	Key string
	Err error
}

// GenresLoadedMsg carries the genre list used to label bookmarks
type GenresLoadedMsg struct {
	pageMsg
	Genres []domain.Genre
	Err    error
}

// SearchDebounceMsg fires after the user paused typing
type SearchDebounceMsg struct {
	pageMsg
	Seq   int
	Query string
}

// SearchResultsMsg signals that search results are ready
type SearchResultsMsg struct {
	pageMsg
	Seq     int
	Query   string
	Results []domain.Media
	Err     error
}

// NavigateMsg asks the app to open a route
type NavigateMsg struct {
	Route Route
}

// NavigateBackMsg returns to the previous route
type NavigateBackMsg struct{}

// TickMsg drives spinners
type TickMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}

// ClearStatusMsg clears the status bar message if it is still the one with Seq
type ClearStatusMsg struct {
	Seq int
}

// LogoutCompleteMsg signals that the stored session was cleared
type LogoutCompleteMsg struct {
	Err error
}
