package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/moviedb/internal/domain"
	"github.com/mmcdole/moviedb/internal/tui/components"
)

const bookmarkGenreLimit = 2

// bookmarksPage is /app/bookmarks: the user's saved titles of one type,
// split into local pages
type bookmarksPage struct {
	deps  Deps
	route Route
	gen   int

	list       *section
	types      components.TypeSwitch
	pager      components.Pager
	genres     []domain.Genre
	showingAll bool // the filter searches every record of the type, not one page

	width, height int
}

func newBookmarksPage(deps Deps, route Route, gen int) Page {
	p := &bookmarksPage{
		deps:  deps,
		route: route,
		gen:   gen,
		list:  newSection(deps, ComponentBookmarks, "Bookmarked", gen),
		types: components.NewTypeSwitch(),
		pager: components.NewPager(deps.PageSize),
	}
	if route.Query.Get("type") == "tv" {
		p.types.Toggle()
	}
	p.list.attach(deps.Changes)
	p.list.list.EnableFilter()
	p.list.list.SetFocused(true)
	p.list.list.SetDescribe(p.describe)
	p.rebuild()
	return p
}

func (p *bookmarksPage) Route() Route { return p.route }

func (p *bookmarksPage) Init() tea.Cmd {
	if p.deps.Content == nil {
		return nil
	}
	return LoadGenresCmd(p.deps.Content, p.gen)
}

func (p *bookmarksPage) describe(item domain.ListItem) string {
	desc := item.GetDescription()
	names := domain.GenreNames(item.GetGenreIDs(), p.genres, bookmarkGenreLimit)
	if len(names) == 0 {
		return desc
	}
	return desc + " · " + strings.Join(names, ", ")
}

// records returns the bookmarks of the active type in list order
func (p *bookmarksPage) records() []domain.BookmarkRecord {
	return domain.FilterBookmarks(p.deps.Manager.Bookmarks(), p.types.Active())
}

// rebuild reloads rows from the manager cache and clamps the active page.
// While a filter query is typed the rows are every record of the type.
func (p *bookmarksPage) rebuild() {
	records := p.records()
	p.pager.SetItems(len(records))
	p.list.list.SetEmptyText("You have no bookmarked " + p.emptyNoun() + ".")

	all := p.list.list.FilterQuery() != ""
	p.showingAll = all
	if all {
		p.list.list.SetItems(bookmarkItems(records))
		return
	}
	start, end := p.pager.Bounds(len(records))
	p.list.list.SetItems(bookmarkItems(records[start:end]))
}

func (p *bookmarksPage) emptyNoun() string {
	if p.types.Active() == domain.MediaTypeTV {
		return "TV series"
	}
	return "movies"
}

func (p *bookmarksPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if p.list.list.Typing() {
			cmd := p.list.list.Update(msg)
			if all := p.list.list.FilterQuery() != ""; all != p.showingAll {
				p.rebuild()
			}
			return cmd
		}
		switch {
		case key.Matches(msg, components.PagerKeys.SwitchType):
			p.types.Toggle()
			p.pager.Reset()
			p.list.list.ClearFilter()
			p.rebuild()
			return nil
		case key.Matches(msg, components.PagerKeys.NextPage):
			if p.pager.Next() {
				p.rebuild()
			}
			return nil
		case key.Matches(msg, components.PagerKeys.PrevPage):
			if p.pager.Prev() {
				p.rebuild()
			}
			return nil
		case key.Matches(msg, toggleKey):
			return p.list.toggleSelected()
		case key.Matches(msg, openKey):
			return openSelected(p.list.list)
		}
		cmd := p.list.list.Update(msg)
		if all := p.list.list.FilterQuery() != ""; all != p.showingAll {
			p.rebuild()
		}
		return cmd

	case GenresLoadedMsg:
		if msg.Err != nil {
			p.deps.Logger.Warn("failed to load genres", "error", msg.Err)
			return nil
		}
		p.genres = msg.Genres

	case BookmarksLoadedMsg:
		p.rebuild()

	case BookmarksChangedMsg:
		p.rebuild()

	case BookmarkToggledMsg:
		if msg.Component != ComponentBookmarks {
			return nil
		}
		cmd := p.list.toggled(msg)
		p.rebuild()
		return cmd
	}
	return nil
}

func (p *bookmarksPage) SetSize(width, height int) {
	p.width, p.height = width, height
	p.list.list.SetSize(width, max(3, height-2))
}

func (p *bookmarksPage) View() string {
	controls := p.types.View()
	if !p.showingAll {
		controls = lipgloss.JoinHorizontal(lipgloss.Center, controls, "  ", p.pager.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, controls, "", p.list.list.View())
}

// HandleBack closes an open filter
func (p *bookmarksPage) HandleBack() bool {
	if !p.list.list.Filtering() {
		return false
	}
	p.list.list.ClearFilter()
	p.rebuild()
	return true
}

func (p *bookmarksPage) Typing() bool { return p.list.list.Typing() }

func (p *bookmarksPage) Help() []key.Binding {
	return []key.Binding{
		openKey, toggleKey, components.ListKeys.Filter,
		components.PagerKeys.SwitchType,
		components.PagerKeys.PrevPage,
		components.PagerKeys.NextPage,
	}
}

func (p *bookmarksPage) Close() {
	p.list.close()
}
