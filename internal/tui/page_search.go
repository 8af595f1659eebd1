package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/moviedb/internal/search"
	"github.com/mmcdole/moviedb/internal/tui/styles"
)

// searchPage is /app/search?q=..: a debounced title search
type searchPage struct {
	deps  Deps
	route Route
	gen   int

	input   textinput.Model
	results *section
	seq     int    // increments per keystroke; stale results are dropped
	query   string // query of the results on screen

	frame         int
	width, height int
}

func newSearchPage(deps Deps, route Route, gen int) Page {
	ti := textinput.New()
	ti.Placeholder = fmt.Sprintf("Search movies and TV series (%d+ characters)", search.MinQueryLength)
	ti.Prompt = "Search: "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle
	ti.CharLimit = 100
	ti.SetValue(route.Query.Get("q"))
	ti.Focus()

	p := &searchPage{
		deps:    deps,
		route:   route,
		gen:     gen,
		input:   ti,
		results: newSection(deps, ComponentSearch, "Results", gen),
	}
	p.results.attach(deps.Changes)
	p.results.list.SetEmptyText("No results.")
	return p
}

func (p *searchPage) Route() Route { return p.route }

func (p *searchPage) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if q := p.input.Value(); search.Ready(q) {
		cmds = append(cmds, p.start(q))
	}
	return tea.Batch(cmds...)
}

func (p *searchPage) start(query string) tea.Cmd {
	p.results.list.SetLoading(true)
	return SearchCmd(p.deps.Search, query, p.seq, p.gen)
}

// focusInput moves keys between the query input and the result list
func (p *searchPage) focusInput(focused bool) tea.Cmd {
	p.results.list.SetFocused(!focused)
	if focused {
		return p.input.Focus()
	}
	p.input.Blur()
	return nil
}

func (p *searchPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, focusKey) {
			return p.focusInput(!p.input.Focused())
		}
		if p.input.Focused() {
			if msg.String() == "esc" {
				return func() tea.Msg { return NavigateBackMsg{} }
			}
			if key.Matches(msg, openKey) || msg.String() == "down" {
				if p.results.list.Len() > 0 {
					return p.focusInput(false)
				}
				return nil
			}
			before := p.input.Value()
			var cmd tea.Cmd
			p.input, cmd = p.input.Update(msg)
			if q := p.input.Value(); q != before {
				p.seq++
				if !search.Ready(q) {
					p.query = ""
					p.results.list.SetItems(nil)
					return cmd
				}
				return tea.Batch(cmd, DebounceSearchCmd(q, p.seq, p.gen))
			}
			return cmd
		}
		switch {
		case key.Matches(msg, toggleKey):
			return p.results.toggleSelected()
		case key.Matches(msg, openKey):
			return openSelected(p.results.list)
		case msg.String() == "/":
			return p.focusInput(true)
		}
		return p.results.list.Update(msg)

	case SearchDebounceMsg:
		if msg.Seq != p.seq {
			return nil
		}
		return p.start(msg.Query)

	case SearchResultsMsg:
		if msg.Seq != p.seq {
			return nil
		}
		p.query = msg.Query
		if msg.Err != nil {
			p.results.list.SetError(msg.Err)
			return nil
		}
		p.results.list.SetTitle(fmt.Sprintf("Results for %q", strings.TrimSpace(msg.Query)))
		p.results.list.SetItems(mediaItems(msg.Results))

	case BookmarkToggledMsg:
		if msg.Component == ComponentSearch {
			return p.results.toggled(msg)
		}

	case TickMsg:
		p.frame++
		p.results.list.SetSpinnerFrame(p.frame)
	}
	return nil
}

func (p *searchPage) SetSize(width, height int) {
	p.width, p.height = width, height
	p.input.Width = max(10, width-len(p.input.Prompt)-2)
	p.results.list.SetSize(width, max(3, height-2))
}

func (p *searchPage) View() string {
	var b strings.Builder
	b.WriteString(p.input.View())
	b.WriteString("\n\n")
	if p.query == "" && !p.results.list.IsLoading() {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("Type at least %d characters to search.", search.MinQueryLength)))
		return b.String()
	}
	b.WriteString(p.results.list.View())
	return b.String()
}

// HandleBack returns to the query input from the results
func (p *searchPage) HandleBack() bool {
	if p.input.Focused() {
		return false
	}
	p.focusInput(true)
	return true
}

func (p *searchPage) Typing() bool { return p.input.Focused() }

func (p *searchPage) Help() []key.Binding {
	return []key.Binding{focusKey, openKey, toggleKey}
}

func (p *searchPage) Close() {
	p.results.close()
}
