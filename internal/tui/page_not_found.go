package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/moviedb/internal/tui/styles"
)

// notFoundPage is shown for unknown routes
type notFoundPage struct {
	route Route
}

func newNotFoundPage(_ Deps, route Route, _ int) Page {
	return &notFoundPage{route: route}
}

func (p *notFoundPage) Route() Route { return p.route }
func (p *notFoundPage) Init() tea.Cmd { return nil }
func (p *notFoundPage) Update(tea.Msg) tea.Cmd { return nil }
func (p *notFoundPage) SetSize(int, int) {}
func (p *notFoundPage) Typing() bool { return false }
func (p *notFoundPage) Help() []key.Binding { return nil }
func (p *notFoundPage) Close() {}

func (p *notFoundPage) View() string {
	return styles.ErrorStyle.Render("Page not found: "+p.route.String()) + "\n\n" +
		styles.DimStyle.Render("Press 1 to go home.")
}
