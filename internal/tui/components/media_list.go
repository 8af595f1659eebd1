package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/moviedb/internal/domain"
	"github.com/mmcdole/moviedb/internal/search"
	"github.com/mmcdole/moviedb/internal/tui/styles"
)

// Spinner frames for loading animation
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Lines used by the header and the filter prompt
const (
	headerLines = 2
	filterLines = 1
)

// MarkFunc reports whether a row is currently bookmarked
type MarkFunc func(domain.ListItem) bool

// DescribeFunc overrides the secondary text of a row
type DescribeFunc func(domain.ListItem) string

// MediaList is a scrollable list of titles with a bookmark marker per row.
// Rows whose toggle is still in flight show the pending state instead of
// the cached one.
type MediaList struct {
	title    string
	items    []domain.ListItem
	marked   MarkFunc
	describe DescribeFunc
	pending  map[domain.BookmarkKey]bool

	// Selection
	cursor int
	offset int

	// Dimensions
	width   int
	height  int
	focused bool

	// Loading and empty states
	loading      bool
	spinnerFrame int
	err          error
	emptyText    string

	// Filter state
	filterEnabled bool
	filterActive  bool
	filterInput   textinput.Model
	filtered      []search.FilterResult
}

// NewMediaList creates a list. marked may be nil for lists without markers.
func NewMediaList(title string, marked MarkFunc) *MediaList {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &MediaList{
		title:       title,
		marked:      marked,
		pending:     make(map[domain.BookmarkKey]bool),
		filterInput: ti,
		emptyText:   "Nothing here yet.",
		width:       60,
		height:      20,
	}
}

// SetItems replaces the rows, keeping the cursor in range
func (l *MediaList) SetItems(items []domain.ListItem) {
	l.items = items
	l.loading = false
	l.err = nil
	if l.filterActive {
		l.applyFilter()
	}
	l.clampCursor()
}

// Items returns every row, ignoring the filter
func (l *MediaList) Items() []domain.ListItem {
	return l.items
}

// Len returns the number of visible rows
func (l *MediaList) Len() int {
	if l.filterActive {
		return len(l.filtered)
	}
	return len(l.items)
}

// SetTitle changes the header text
func (l *MediaList) SetTitle(title string) {
	l.title = title
}

// SetLoading shows the spinner until the next SetItems or SetError
func (l *MediaList) SetLoading(loading bool) {
	l.loading = loading
	if loading {
		l.err = nil
	}
}

// IsLoading reports whether the list is waiting for rows
func (l *MediaList) IsLoading() bool {
	return l.loading
}

// SetError replaces the rows with an error message
func (l *MediaList) SetError(err error) {
	l.loading = false
	l.err = err
}

// SetEmptyText sets the text shown when there are no rows
func (l *MediaList) SetEmptyText(text string) {
	l.emptyText = text
}

// SetDescribe overrides the secondary text of each row
func (l *MediaList) SetDescribe(fn DescribeFunc) {
	l.describe = fn
}

// EnableFilter allows "/" to open the fuzzy filter
func (l *MediaList) EnableFilter() {
	l.filterEnabled = true
}

// SetSize sets the list dimensions
func (l *MediaList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.clampCursor()
}

// SetFocused sets whether the list receives keys
func (l *MediaList) SetFocused(focused bool) {
	l.focused = focused
}

// Focused reports whether the list receives keys
func (l *MediaList) Focused() bool {
	return l.focused
}

// SetSpinnerFrame advances the loading animation
func (l *MediaList) SetSpinnerFrame(frame int) {
	l.spinnerFrame = frame
}

// Typing reports whether the filter input is capturing keys
func (l *MediaList) Typing() bool {
	return l.filterActive && l.filterInput.Focused()
}

// Selected returns the row under the cursor
func (l *MediaList) Selected() (domain.ListItem, bool) {
	if l.Len() == 0 {
		return nil, false
	}
	if l.filterActive {
		return l.filtered[l.cursor].Item, true
	}
	return l.items[l.cursor], true
}

// Cursor returns the index of the selected visible row
func (l *MediaList) Cursor() int {
	return l.cursor
}

// SetPending shows state for key until ClearPending
func (l *MediaList) SetPending(key domain.BookmarkKey, state bool) {
	l.pending[key] = state
}

// ClearPending drops the override for key
func (l *MediaList) ClearPending(key domain.BookmarkKey) {
	delete(l.pending, key)
}

// IsMarked returns the displayed marker state of item
func (l *MediaList) IsMarked(item domain.ListItem) bool {
	if state, ok := l.pending[item.GetKey()]; ok {
		return state
	}
	return l.marked != nil && l.marked(item)
}

// Update handles navigation and filter keys
func (l *MediaList) Update(msg tea.Msg) tea.Cmd {
	if !l.focused {
		return nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)

	// Filter input captures everything while typing
	if l.Typing() {
		if ok {
			switch {
			case key.Matches(keyMsg, ListKeys.Escape):
				l.ClearFilter()
				return nil
			case key.Matches(keyMsg, ListKeys.Enter):
				l.filterInput.Blur()
				return nil
			case keyMsg.String() == "backspace" && l.filterInput.Value() == "":
				l.ClearFilter()
				return nil
			}
		}
		var cmd tea.Cmd
		l.filterInput, cmd = l.filterInput.Update(msg)
		l.applyFilter()
		return cmd
	}

	if !ok {
		return nil
	}

	switch {
	case key.Matches(keyMsg, ListKeys.Up):
		l.moveCursor(-1)
	case key.Matches(keyMsg, ListKeys.Down):
		l.moveCursor(1)
	case key.Matches(keyMsg, ListKeys.Home):
		l.cursor = 0
		l.offset = 0
	case key.Matches(keyMsg, ListKeys.End):
		l.cursor = max(0, l.Len()-1)
		l.ensureVisible()
	case key.Matches(keyMsg, ListKeys.HalfUp):
		l.moveCursor(-l.visibleRows() / 2)
	case key.Matches(keyMsg, ListKeys.HalfDown):
		l.moveCursor(l.visibleRows() / 2)
	case key.Matches(keyMsg, ListKeys.Filter) && l.filterEnabled:
		l.filterActive = true
		l.applyFilter()
		return l.filterInput.Focus()
	case key.Matches(keyMsg, ListKeys.Escape) && l.filterActive:
		l.ClearFilter()
	}
	return nil
}

// ClearFilter closes the filter and shows every row
func (l *MediaList) ClearFilter() {
	l.filterActive = false
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.filtered = nil
	l.clampCursor()
}

// Filtering reports whether the filter is open, typed into or not
func (l *MediaList) Filtering() bool {
	return l.filterActive
}

// FilterQuery returns the active filter text
func (l *MediaList) FilterQuery() string {
	if !l.filterActive {
		return ""
	}
	return l.filterInput.Value()
}

func (l *MediaList) applyFilter() {
	l.filtered = search.FilterLocal(l.filterInput.Value(), l.items)
	l.cursor = 0
	l.offset = 0
}

func (l *MediaList) moveCursor(delta int) {
	if l.Len() == 0 {
		return
	}
	l.cursor = min(max(l.cursor+delta, 0), l.Len()-1)
	l.ensureVisible()
}

func (l *MediaList) clampCursor() {
	if l.cursor >= l.Len() {
		l.cursor = max(0, l.Len()-1)
	}
	l.ensureVisible()
}

func (l *MediaList) visibleRows() int {
	rows := l.height - headerLines
	if l.filterActive {
		rows -= filterLines
	}
	return max(1, rows)
}

func (l *MediaList) ensureVisible() {
	rows := l.visibleRows()
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+rows {
		l.offset = l.cursor - rows + 1
	}
	if l.offset < 0 {
		l.offset = 0
	}
}

// View renders the list
func (l *MediaList) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(l.title))
	if count := l.Len(); count > 0 && !l.loading {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  %d", count)))
	}
	b.WriteString("\n\n")

	if l.filterActive {
		b.WriteString(l.filterInput.View())
		b.WriteString("\n")
	}

	switch {
	case l.loading:
		frame := spinnerFrames[l.spinnerFrame%len(spinnerFrames)]
		b.WriteString(styles.SpinnerStyle.Render(frame) + styles.DimStyle.Render(" Loading..."))
		return b.String()
	case l.err != nil:
		b.WriteString(styles.ErrorStyle.Render(l.err.Error()))
		return b.String()
	case l.Len() == 0:
		if l.filterActive {
			b.WriteString(styles.DimStyle.Render("No matches."))
		} else {
			b.WriteString(styles.DimStyle.Render(l.emptyText))
		}
		return b.String()
	}

	rows := l.visibleRows()
	end := min(l.offset+rows, l.Len())
	for i := l.offset; i < end; i++ {
		var item domain.ListItem
		var matched []int
		if l.filterActive {
			item = l.filtered[i].Item
			matched = l.filtered[i].MatchedIndexes
		} else {
			item = l.items[i]
		}
		b.WriteString(l.renderRow(item, matched, i == l.cursor && l.focused))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (l *MediaList) renderRow(item domain.ListItem, matched []int, selected bool) string {
	marker := " "
	if l.marked != nil || len(l.pending) > 0 {
		if l.IsMarked(item) {
			marker = styles.BookmarkedChar
		} else {
			marker = styles.UnbookmarkedChar
		}
	}

	desc := item.GetDescription()
	if l.describe != nil {
		desc = l.describe(item)
	}

	titleWidth := l.width - lipgloss.Width(desc) - 7
	title := styles.Truncate(item.GetTitle(), titleWidth)

	accent := styles.Accent
	dim := styles.DimGray
	markerColor := &dim
	if l.IsMarked(item) {
		markerColor = &accent
	}

	parts := []styles.RowPart{{Text: marker + " ", Foreground: markerColor}}
	parts = append(parts, highlight(title, matched, selected)...)
	parts = append(parts, styles.RowPart{Text: "  " + desc, Foreground: &dim})
	return styles.RenderListRow(parts, selected, l.width)
}

// highlight splits title into matched and unmatched runs. Indexes are byte
// offsets into the title.
func highlight(title string, matched []int, selected bool) []styles.RowPart {
	if len(matched) == 0 {
		return []styles.RowPart{{Text: title}}
	}
	set := make(map[int]bool, len(matched))
	for _, i := range matched {
		set[i] = true
	}

	matchStyle := &styles.MatchHighlightStyle
	if selected {
		matchStyle = &styles.MatchHighlightSelectedStyle
	}
	var parts []styles.RowPart
	var run strings.Builder
	inMatch := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		part := styles.RowPart{Text: run.String()}
		if inMatch {
			part.Style = matchStyle
		}
		parts = append(parts, part)
		run.Reset()
	}
	for i, r := range title {
		if set[i] != inMatch {
			flush()
			inMatch = set[i]
		}
		run.WriteRune(r)
	}
	flush()
	return parts
}
