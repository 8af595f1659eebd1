package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/moviedb/internal/tui/components"
)

// topRatedPage is /app/top-rated: remote pages of top rated movies or series
type topRatedPage struct {
	deps  Deps
	route Route
	gen   int

	list   *section
	types  components.TypeSwitch
	pager  components.RemotePager
	frame  int
	width  int
	height int
}

func newTopRatedPage(deps Deps, route Route, gen int) Page {
	p := &topRatedPage{
		deps:  deps,
		route: route,
		gen:   gen,
		list:  newSection(deps, ComponentTopRated, "Top Rated", gen),
		types: components.NewTypeSwitch(),
		pager: components.NewRemotePager(),
	}
	if route.Query.Get("type") == "tv" {
		p.types.Toggle()
	}
	p.list.attach(deps.Changes)
	p.list.list.SetFocused(true)
	return p
}

func (p *topRatedPage) Route() Route { return p.route }

func (p *topRatedPage) Init() tea.Cmd {
	return p.load()
}

func (p *topRatedPage) load() tea.Cmd {
	p.list.list.SetLoading(true)
	return LoadTopRatedCmd(p.deps.Metadata, p.types.Active(), p.pager.Page(), ComponentTopRated, p.gen)
}

func (p *topRatedPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, components.PagerKeys.SwitchType):
			p.types.Toggle()
			p.pager.Reset()
			return p.load()
		case key.Matches(msg, components.PagerKeys.NextPage):
			if p.pager.Next() {
				return p.load()
			}
			return nil
		case key.Matches(msg, components.PagerKeys.PrevPage):
			if p.pager.Prev() {
				return p.load()
			}
			return nil
		case key.Matches(msg, toggleKey):
			return p.list.toggleSelected()
		case key.Matches(msg, openKey):
			return openSelected(p.list.list)
		}
		return p.list.list.Update(msg)

	case MediaLoadedMsg:
		if msg.Section != ComponentTopRated {
			return nil
		}
		if msg.Err != nil {
			p.list.list.SetError(msg.Err)
			return nil
		}
		p.pager.Loaded(len(msg.Items))
		p.list.list.SetItems(mediaItems(msg.Items))

	case BookmarkToggledMsg:
		if msg.Component == ComponentTopRated {
			return p.list.toggled(msg)
		}

	case TickMsg:
		p.frame++
		p.list.list.SetSpinnerFrame(p.frame)
	}
	return nil
}

func (p *topRatedPage) SetSize(width, height int) {
	p.width, p.height = width, height
	p.list.list.SetSize(width, max(3, height-2))
}

func (p *topRatedPage) View() string {
	controls := lipgloss.JoinHorizontal(lipgloss.Center, p.types.View(), "  ", p.pager.View())
	return lipgloss.JoinVertical(lipgloss.Left, controls, "", p.list.list.View())
}

func (p *topRatedPage) Typing() bool { return false }

func (p *topRatedPage) Help() []key.Binding {
	return []key.Binding{
		openKey, toggleKey,
		components.PagerKeys.SwitchType,
		components.PagerKeys.PrevPage,
		components.PagerKeys.NextPage,
	}
}

func (p *topRatedPage) Close() {
	p.list.close()
}
