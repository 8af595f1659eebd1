package tui

import (
	"errors"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/moviedb/internal/bookmark"
	"github.com/mmcdole/moviedb/internal/domain"
	"github.com/mmcdole/moviedb/internal/search"
	"github.com/mmcdole/moviedb/internal/tui/components"
)

// Component names. Each is one subscriber of the bookmark manager.
const (
	ComponentTrending    = "trending"
	ComponentRecommended = "recommended"
	ComponentTopRated    = "top-rated"
	ComponentBookmarks   = "bookmarks"
	ComponentTitle       = "title"
	ComponentSimilar     = "similar"
	ComponentSearch      = "search"
)

// Deps are the services pages are built from
type Deps struct {
	Manager  *bookmark.Manager
	Metadata domain.MetadataSource
	Content  domain.ContentSource
	Search   *search.Service
	User     *domain.User
	Logger   *slog.Logger

	// Changes receives bookmark notifications for every attached section
	Changes chan<- BookmarksChangedMsg

	PageSize      int
	TrendingCount int
}

// Page is one route's screen
type Page interface {
	Route() Route
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetSize(width, height int)

	// Typing reports whether a text input is capturing keys
	Typing() bool

	// Help returns the page's key bindings for the footer
	Help() []key.Binding

	// Close detaches every bookmark subscription of the page
	Close()
}

// section is a media list bound to one bookmark control
type section struct {
	control *bookmark.Control
	list    *components.MediaList
	gen     int
}

func newSection(deps Deps, component, title string, gen int) *section {
	control := bookmark.NewControl(deps.Manager, component)
	list := components.NewMediaList(title, control.IsBookmarked)
	return &section{control: control, list: list, gen: gen}
}

// attach subscribes the section for notifications from other components
func (s *section) attach(ch chan<- BookmarksChangedMsg) {
	if ch == nil {
		return
	}
	s.control.Attach(NewChannelObserver(s.control.Component(), ch))
}

func (s *section) close() {
	s.control.Detach()
}

func (s *section) component() string {
	return s.control.Component()
}

// toggleSelected flips the marker of the selected row right away and starts
// the write
func (s *section) toggleSelected() tea.Cmd {
	item, ok := s.list.Selected()
	if !ok {
		return nil
	}
	return s.toggle(item)
}

func (s *section) toggle(item domain.ListItem) tea.Cmd {
	if !s.control.Ready() {
		return notLoadedStatus()
	}
	s.list.SetPending(item.GetKey(), !s.list.IsMarked(item))
	return ToggleBookmarkCmd(s.control, item, s.gen)
}

// toggled settles a toggle this section started. The marker falls back to
// the cache, which the manager already rolled back on failure.
func (s *section) toggled(msg BookmarkToggledMsg) tea.Cmd {
	s.list.ClearPending(msg.Key)
	return toggleStatus(msg)
}

// notLoadedStatus is shown for toggles before the bookmark list was read,
// which would otherwise overwrite the stored list
func notLoadedStatus() tea.Cmd {
	return StatusCmd("bookmarks not loaded (ctrl+r to retry)", true)
}

func toggleStatus(msg BookmarkToggledMsg) tea.Cmd {
	if msg.Err != nil {
		if errors.Is(msg.Err, domain.ErrRemoteSync) {
			return StatusCmd("could not save bookmark", true)
		}
		return StatusCmd(msg.Err.Error(), true)
	}
	if msg.Present {
		return StatusCmd("Bookmarked "+msg.Title, false)
	}
	return StatusCmd("Removed "+msg.Title+" from bookmarks", false)
}

func mediaItems(media []domain.Media) []domain.ListItem {
	items := make([]domain.ListItem, len(media))
	for i, m := range media {
		items[i] = m
	}
	return items
}

func bookmarkItems(records []domain.BookmarkRecord) []domain.ListItem {
	items := make([]domain.ListItem, len(records))
	for i, r := range records {
		items[i] = r
	}
	return items
}

// Bindings shared by pages
var (
	toggleKey = key.NewBinding(
		key.WithKeys("b", " "),
		key.WithHelp("b", "bookmark"),
	)
	openKey = key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open"),
	)
	focusKey = key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch list"),
	)
)

// openSelected navigates to the title page of the selected row
func openSelected(list *components.MediaList) tea.Cmd {
	item, ok := list.Selected()
	if !ok {
		return nil
	}
	return NavigateCmd(TitleRoute(item.GetKey()))
}
