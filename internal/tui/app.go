package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/moviedb/internal/logging"
	"github.com/mmcdole/moviedb/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateHelp
	StateConfirmLogout
)

// Layout constants
const (
	// Header line, blank line and footer line
	ChromeHeight = 3

	// changesBuffer bounds the bookmark notifications queued between redraws
	changesBuffer = 32
)

// tab is one entry of the header navigation
type tab struct {
	label string
	path  string
}

var tabs = []tab{
	{"Home", PathHome},
	{"Top Rated", PathTopRated},
	{"Bookmarks", PathBookmarks},
	{"Search", PathSearch},
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	// Services
	deps   Deps
	router *Router
	logout func() error

	// Current page and the routes behind it
	page    Page
	history []Route
	gen     int
	start   Route

	// loading is set while a bookmark read is in flight
	loading bool

	// Bookmark notifications from every attached component
	changes chan BookmarksChangedMsg

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg    string
	StatusIsErr  bool
	statusSeq    int
	SpinnerFrame int
}

// NewModel creates the application model. start is the first route shown;
// logout clears the stored session and may be nil.
func NewModel(deps Deps, start Route, logout func() error) Model {
	if deps.Logger == nil {
		deps.Logger = logging.NullLogger()
	}
	changes := make(chan BookmarksChangedMsg, changesBuffer)
	deps.Changes = changes

	return Model{
		State:   StateBrowsing,
		deps:    deps,
		router:  NewRouter(deps),
		logout:  logout,
		start:   start,
		changes: changes,
		loading: true,
	}
}

// Page returns the page on screen
func (m Model) Page() Page {
	return m.page
}

// Init initializes the application. The start route opens once the
// bookmark list has been read.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		InitializeBookmarksCmd(m.deps.Manager),
		WaitForBookmarkChangeCmd(m.changes),
		TickCmd(),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Results requested by a page that is gone
	if g, ok := msg.(generational); ok && g.generation() != m.gen {
		// toggles still settle in the cache; only the status is shown
		if t, ok := msg.(BookmarkToggledMsg); ok && t.Err != nil {
			return m, toggleStatus(t)
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		return m, tea.Batch(m.forward(msg), TickCmd())

	case BookmarksLoadedMsg:
		m.loading = false
		var cmd tea.Cmd
		if msg.Err != nil {
			m.deps.Logger.Error("failed to load bookmarks", "error", msg.Err)
			m, cmd = m.setStatus("could not load bookmarks (ctrl+r to retry)", true)
		}
		if m.page == nil {
			next, navCmd := m.navigate(m.start, false)
			return next, tea.Batch(cmd, navCmd)
		}
		return m, tea.Batch(cmd, m.forward(msg))

	case BookmarksChangedMsg:
		return m, tea.Batch(m.forward(msg), WaitForBookmarkChangeCmd(m.changes))

	case NavigateMsg:
		return m.navigate(msg.Route, true)

	case NavigateBackMsg:
		return m.back()

	case StatusMsg:
		return m.setStatus(msg.Message, msg.IsError)

	case ClearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.StatusMsg = ""
			m.StatusIsErr = false
		}
		return m, nil

	case LogoutCompleteMsg:
		if msg.Err != nil {
			m.State = StateBrowsing
			return m.setStatus(fmt.Sprintf("Logout failed: %v", msg.Err), true)
		}
		return m, tea.Quit

	case ErrMsg:
		m.deps.Logger.Error("tui error", "error", msg)
		return m.setStatus(msg.Error(), true)
	}

	return m, m.forward(msg)
}

// forward hands msg to the current page
func (m Model) forward(msg tea.Msg) tea.Cmd {
	if m.page == nil {
		return nil
	}
	return m.page.Update(msg)
}

func (m Model) setStatus(message string, isErr bool) (Model, tea.Cmd) {
	m.statusSeq++
	m.StatusMsg = message
	m.StatusIsErr = isErr
	return m, ClearStatusCmd(m.statusSeq)
}

// navigate closes the current page and opens route. push records the old
// route for back navigation.
func (m Model) navigate(route Route, push bool) (tea.Model, tea.Cmd) {
	if m.page != nil {
		if push && m.page.Route().String() == route.String() {
			return m, nil
		}
		m.page.Close()
		if push {
			m.history = append(m.history, m.page.Route())
		}
	}

	m.gen++
	m.page = m.router.Build(route, m.gen)
	m.deps.Logger.Debug("navigate", "route", m.page.Route().String(), "gen", m.gen)
	m.updateLayout()
	return m, m.page.Init()
}

func (m Model) back() (tea.Model, tea.Cmd) {
	if len(m.history) == 0 {
		return m, nil
	}
	prev := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	return m.navigate(prev, false)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.State {
	case StateHelp:
		// Any key closes help
		m.State = StateBrowsing
		return m, nil

	case StateConfirmLogout:
		switch {
		case key.Matches(msg, Keys.Confirm):
			return m, LogoutCmd(m.logout)
		case key.Matches(msg, Keys.Deny):
			m.State = StateBrowsing
		}
		return m, nil
	}

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Nothing is on screen until the first read settles
	if m.page == nil {
		if key.Matches(msg, Keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	// Text inputs get every key
	if m.page != nil && m.page.Typing() {
		return m, m.page.Update(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil
	case key.Matches(msg, Keys.Reload):
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, InitializeBookmarksCmd(m.deps.Manager)
	case key.Matches(msg, Keys.Logout):
		if m.logout == nil {
			return m, nil
		}
		m.State = StateConfirmLogout
		return m, nil
	case key.Matches(msg, Keys.Home):
		return m.navigate(ParseRoute(PathHome), true)
	case key.Matches(msg, Keys.TopRated):
		return m.navigate(ParseRoute(PathTopRated), true)
	case key.Matches(msg, Keys.Bookmarks):
		return m.navigate(ParseRoute(PathBookmarks), true)
	case key.Matches(msg, Keys.Search):
		return m.navigate(ParseRoute(PathSearch), true)
	}

	if key.Matches(msg, Keys.Back) {
		// an open filter takes esc before history does
		if b, ok := m.page.(backHandler); ok && b.HandleBack() {
			return m, nil
		}
		return m.back()
	}
	return m, m.forward(msg)
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// backHandler is implemented by pages with state to unwind before leaving
type backHandler interface {
	HandleBack() bool
}

func (m *Model) updateLayout() {
	if m.page == nil || !m.Ready {
		return
	}
	m.page.SetSize(m.Width, max(1, m.Height-ChromeHeight))
}

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	switch m.State {
	case StateHelp:
		return m.renderHelp()
	case StateConfirmLogout:
		return m.renderLogoutConfirmation()
	}

	body := styles.SpinnerStyle.Render(spinnerFrames[m.SpinnerFrame%len(spinnerFrames)]) +
		styles.DimStyle.Render(" Loading bookmarks...")
	if m.page != nil {
		body = m.page.View()
	}
	body = lipgloss.NewStyle().
		Height(max(1, m.Height-ChromeHeight)).
		MaxHeight(max(1, m.Height-ChromeHeight)).
		Render(body)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		"",
		body,
		m.renderFooter(),
	)
}

// renderHeader renders the navigation tabs and the signed-in user
func (m Model) renderHeader() string {
	active := ""
	if m.page != nil {
		active = m.page.Route().Path
	}

	var b strings.Builder
	for i, t := range tabs {
		label := fmt.Sprintf("%d %s", i+1, t.label)
		if t.path == active {
			b.WriteString(styles.ActiveTabStyle.Render(label))
		} else {
			b.WriteString(styles.TabStyle.Render(label))
		}
	}
	left := b.String()

	right := ""
	if u := m.deps.User; u != nil {
		name := u.DisplayName
		if name == "" {
			name = u.Email
		}
		right = styles.DimStyle.Render(name)
	}

	gap := max(0, m.Width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

// renderFooter renders a single-line footer: status on the left, the page's
// key hints in the middle and the help hint on the right
func (m Model) renderFooter() string {
	var left string
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			left = styles.StatusErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.StatusBarStyle.Render(m.StatusMsg)
		}
	}

	var hints []string
	if m.page != nil {
		for _, b := range m.page.Help() {
			h := b.Help()
			hints = append(hints, styles.HelpKeyStyle.Render(h.Key)+" "+styles.HelpDescStyle.Render(h.Desc))
		}
	}
	center := strings.Join(hints, "  ")

	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")

	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center)
	rightWidth := lipgloss.Width(right)

	if leftWidth+centerWidth+rightWidth >= m.Width {
		// Not enough space - just left + right
		gap := max(0, m.Width-leftWidth-rightWidth)
		return left + strings.Repeat(" ", gap) + right
	}

	available := m.Width - leftWidth - rightWidth
	leftPad := (available - centerWidth) / 2
	rightPad := available - centerWidth - leftPad
	return left + strings.Repeat(" ", leftPad) + center + strings.Repeat(" ", rightPad) + right
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
NAVIGATION                      BOOKMARKS
  1          Home                  b/Space  Toggle selected
  2          Top rated             B        Toggle title (title page)
  3          Bookmarks             /        Filter bookmarks
  s/4        Search
  j/k        Up/down            LISTS
  Enter      Open title            Tab      Switch list / input
  Esc        Back                  t        Movies / TV series
                                   [ ]      Previous / next page
OTHER
  q          Quit                  L        Logout
  ?          This help             ctrl+r   Reload bookmarks

Press any key to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}

// renderLogoutConfirmation renders the logout confirmation modal
func (m Model) renderLogoutConfirmation() string {
	modal := `
           Log Out?

  This will clear your session
  and close the application.

       [Y] Yes      [N] No
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(modal))
}
