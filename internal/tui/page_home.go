package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/moviedb/internal/bookmark"
	"github.com/mmcdole/moviedb/internal/domain"
	"github.com/mmcdole/moviedb/internal/tui/styles"
)

const youtubeWatchURL = "https://www.youtube.com/watch?v="

// homePage is /app: the featured upcoming movie, trending titles and
// recommendations seeded from the user's bookmarks
type homePage struct {
	deps  Deps
	route Route
	gen   int

	trending    *section
	recommended *section
	focus       int // 0 trending, 1 recommended

	upcoming   *domain.Media
	trailerKey string

	frame         int
	width, height int
}

func newHomePage(deps Deps, route Route, gen int) Page {
	p := &homePage{
		deps:        deps,
		route:       route,
		gen:         gen,
		trending:    newSection(deps, ComponentTrending, "Trending", gen),
		recommended: newSection(deps, ComponentRecommended, "Recommended for you", gen),
	}
	p.trending.attach(deps.Changes)
	p.recommended.attach(deps.Changes)
	p.trending.list.SetFocused(true)
	return p
}

func (p *homePage) Route() Route { return p.route }

func (p *homePage) Init() tea.Cmd {
	p.trending.list.SetLoading(true)
	return tea.Batch(
		LoadUpcomingCmd(p.deps.Metadata, p.gen),
		LoadTrendingCmd(p.deps.Metadata, ComponentTrending, p.gen),
		p.loadRecommendations(),
	)
}

// loadRecommendations seeds from a random bookmarked movie and series
func (p *homePage) loadRecommendations() tea.Cmd {
	p.recommended.list.SetLoading(true)
	movieID, seriesID := bookmark.Seeds(p.deps.Manager.Bookmarks(), nil)
	return LoadRecommendationsCmd(p.deps.Metadata, movieID, seriesID, p.gen)
}

func (p *homePage) active() *section {
	if p.focus == 1 {
		return p.recommended
	}
	return p.trending
}

func (p *homePage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, focusKey):
			p.focus = 1 - p.focus
			p.trending.list.SetFocused(p.focus == 0)
			p.recommended.list.SetFocused(p.focus == 1)
			return nil
		case key.Matches(msg, toggleKey):
			return p.active().toggleSelected()
		case key.Matches(msg, openKey):
			return openSelected(p.active().list)
		}
		return p.active().list.Update(msg)

	case MediaLoadedMsg:
		if msg.Err != nil {
			p.trending.list.SetError(msg.Err)
			return nil
		}
		items := msg.Items
		if n := p.deps.TrendingCount; n > 0 && len(items) > n {
			items = items[:n]
		}
		p.trending.list.SetItems(mediaItems(items))

	case RecommendationsLoadedMsg:
		if msg.Err != nil {
			p.recommended.list.SetError(msg.Err)
			return nil
		}
		var all []domain.Media
		if recs := msg.Recommendations; recs != nil {
			all = append(all, recs.Movies...)
			all = append(all, recs.TVSeries...)
		}
		p.recommended.list.SetItems(mediaItems(all))

	case UpcomingLoadedMsg:
		if msg.Err != nil {
			p.deps.Logger.Warn("failed to load upcoming movies", "error", msg.Err)
			return nil
		}
		p.upcoming = msg.Movie
		p.trailerKey = msg.TrailerKey

	case BookmarksLoadedMsg:
		// a reload may bring different seeds
		if msg.Err == nil {
			return p.loadRecommendations()
		}

	case BookmarkToggledMsg:
		switch msg.Component {
		case ComponentTrending:
			return p.trending.toggled(msg)
		case ComponentRecommended:
			return p.recommended.toggled(msg)
		}

	case TickMsg:
		p.frame++
		p.trending.list.SetSpinnerFrame(p.frame)
		p.recommended.list.SetSpinnerFrame(p.frame)
	}
	// BookmarksChangedMsg needs no work: markers are read from the cache on render
	return nil
}

func (p *homePage) SetSize(width, height int) {
	p.width, p.height = width, height
	listHeight := max(3, (height-3)/2)
	p.trending.list.SetSize(width, listHeight)
	p.recommended.list.SetSize(width, listHeight)
}

func (p *homePage) View() string {
	var b strings.Builder
	if p.upcoming != nil {
		b.WriteString(styles.BadgeStyle.Render("Coming soon"))
		b.WriteString(" ")
		b.WriteString(styles.TitleStyle.Render(p.upcoming.Title))
		if p.upcoming.ReleaseDate != "" {
			b.WriteString(styles.DimStyle.Render("  " + p.upcoming.ReleaseDate))
		}
		if p.trailerKey != "" {
			b.WriteString(styles.AccentStyle.Render("  ▶ " + youtubeWatchURL + p.trailerKey))
		}
	}
	b.WriteString("\n\n")
	return b.String() + lipgloss.JoinVertical(lipgloss.Left,
		p.trending.list.View(),
		"",
		p.recommended.list.View(),
	)
}

func (p *homePage) Typing() bool { return false }

func (p *homePage) Help() []key.Binding {
	return []key.Binding{openKey, toggleKey, focusKey}
}

func (p *homePage) Close() {
	p.trending.close()
	p.recommended.close()
}
