package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/moviedb/internal/bookmark"
	"github.com/mmcdole/moviedb/internal/domain"
	"github.com/mmcdole/moviedb/internal/tui/styles"
)

const titleCastLimit = 8

var titleToggleKey = key.NewBinding(
	key.WithKeys("B"),
	key.WithHelp("B", "bookmark title"),
)

// titlePage is /app/title?id=..&type=..: details of one movie or series with
// its similar titles
type titlePage struct {
	deps  Deps
	route Route
	gen   int
	key   domain.BookmarkKey

	control *bookmark.Control // the title itself
	pending *bool
	similar *section

	details    *domain.MediaDetails
	loading    bool
	err        error
	trailerKey string

	frame         int
	width, height int
}

func newTitlePage(deps Deps, route Route, gen int) Page {
	k, _ := route.TitleKey()
	p := &titlePage{
		deps:    deps,
		route:   route,
		gen:     gen,
		key:     k,
		control: bookmark.NewControl(deps.Manager, ComponentTitle),
		similar: newSection(deps, ComponentSimilar, "Similar", gen),
		loading: true,
	}
	if deps.Changes != nil {
		p.control.Attach(NewChannelObserver(ComponentTitle, deps.Changes))
	}
	p.similar.attach(deps.Changes)
	p.similar.list.SetFocused(true)
	p.similar.list.SetEmptyText("No similar titles.")
	return p
}

func (p *titlePage) Route() Route { return p.route }

func (p *titlePage) Init() tea.Cmd {
	p.similar.list.SetLoading(true)
	cmds := []tea.Cmd{LoadDetailsCmd(p.deps.Metadata, p.key.Type, p.key.ID, p.gen)}
	if p.key.Type == domain.MediaTypeMovie {
		cmds = append(cmds, LoadTrailerCmd(p.deps.Metadata, p.key.ID, p.gen))
	}
	return tea.Batch(cmds...)
}

// marked is the displayed bookmark state of the title
func (p *titlePage) marked() bool {
	if p.pending != nil {
		return *p.pending
	}
	return p.deps.Manager.IsBookmarked(p.key.ID, p.key.Type)
}

func (p *titlePage) toggleTitle() tea.Cmd {
	if p.details == nil || p.pending != nil {
		return nil
	}
	if !p.control.Ready() {
		return notLoadedStatus()
	}
	state := !p.marked()
	p.pending = &state
	return ToggleBookmarkCmd(p.control, p.details.Media, p.gen)
}

func (p *titlePage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, titleToggleKey):
			return p.toggleTitle()
		case key.Matches(msg, toggleKey):
			return p.similar.toggleSelected()
		case key.Matches(msg, openKey):
			return openSelected(p.similar.list)
		}
		return p.similar.list.Update(msg)

	case DetailsLoadedMsg:
		p.loading = false
		if msg.Err != nil {
			p.err = msg.Err
			p.similar.list.SetError(msg.Err)
			return nil
		}
		p.details = msg.Details
		p.similar.list.SetItems(mediaItems(msg.Details.Similar))

	case TrailerLoadedMsg:
		if msg.Err != nil && !errors.Is(msg.Err, domain.ErrNoTrailer) {
			p.deps.Logger.Warn("failed to load trailer", "id", p.key.ID, "error", msg.Err)
		}
		p.trailerKey = msg.Key

	case BookmarkToggledMsg:
		switch msg.Component {
		case ComponentTitle:
			p.pending = nil
			return toggleStatus(msg)
		case ComponentSimilar:
			return p.similar.toggled(msg)
		}

	case TickMsg:
		p.frame++
		p.similar.list.SetSpinnerFrame(p.frame)
	}
	return nil
}

func (p *titlePage) SetSize(width, height int) {
	p.width, p.height = width, height
	p.similar.list.SetSize(width, max(3, height-p.headerHeight()-1))
}

func (p *titlePage) headerHeight() int {
	return lipgloss.Height(p.header())
}

func (p *titlePage) header() string {
	switch {
	case p.loading:
		return styles.DimStyle.Render("Loading...")
	case p.err != nil:
		if errors.Is(p.err, domain.ErrNotFound) {
			return styles.ErrorStyle.Render("Title not found.")
		}
		return styles.ErrorStyle.Render(p.err.Error())
	}

	d := p.details
	var b strings.Builder

	mark := styles.UnbookmarkedMark
	if p.marked() {
		mark = styles.BookmarkedMark
	}
	b.WriteString(mark + " " + styles.TitleStyle.Render(d.Title))
	b.WriteString("\n")
	if d.Tagline != "" {
		b.WriteString(styles.SubtitleStyle.Render(d.Tagline))
		b.WriteString("\n")
	}

	year := d.Year()
	if year == "" {
		year = "N/A"
	}
	facts := []string{
		year,
		d.Type.Label(),
		styles.RatingStyle.Render("★ " + d.FormattedRating()),
		d.FormattedRuntime(),
	}
	b.WriteString(styles.DimStyle.Render(strings.Join(facts, " · ")))
	b.WriteString("\n")

	if len(d.Genres) > 0 {
		badges := make([]string, len(d.Genres))
		for i, g := range d.Genres {
			badges[i] = styles.DimBadgeStyle.Render(g.Name)
		}
		b.WriteString(strings.Join(badges, " "))
		b.WriteString("\n")
	}

	if d.Overview != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(max(20, p.width)).Render(d.Overview))
		b.WriteString("\n")
	}

	if len(d.Cast) > 0 {
		cast := make([]string, 0, titleCastLimit)
		for _, c := range d.Cast {
			if len(cast) == titleCastLimit {
				break
			}
			if c.Character != "" {
				cast = append(cast, fmt.Sprintf("%s (%s)", c.Name, c.Character))
			} else {
				cast = append(cast, c.Name)
			}
		}
		b.WriteString("\n")
		b.WriteString(styles.SectionTitleStyle.Render("Cast"))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(max(20, p.width)).Render(strings.Join(cast, ", ")))
		b.WriteString("\n")
	}

	if p.trailerKey != "" {
		b.WriteString(styles.AccentStyle.Render("▶ Trailer: " + youtubeWatchURL + p.trailerKey))
		b.WriteString("\n")
	}
	return b.String()
}

func (p *titlePage) View() string {
	header := p.header()
	if p.loading || p.err != nil {
		return header
	}
	return header + "\n" + p.similar.list.View()
}

func (p *titlePage) Typing() bool { return false }

func (p *titlePage) Help() []key.Binding {
	return []key.Binding{titleToggleKey, openKey, toggleKey}
}

func (p *titlePage) Close() {
	p.control.Detach()
	p.similar.close()
}
