package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/paginator"

	"github.com/mmcdole/moviedb/internal/domain"
	"github.com/mmcdole/moviedb/internal/tui/styles"
)

// Pager splits a local list into fixed-size pages. The active page is
// clamped whenever the item count shrinks, so removing the last row of the
// last page moves back one page.
type Pager struct {
	p paginator.Model
}

// NewPager creates a pager with perPage items per page
func NewPager(perPage int) Pager {
	p := paginator.New(paginator.WithPerPage(max(1, perPage)))
	p.Type = paginator.Arabic
	p.ArabicFormat = "page %d of %d"
	p.TotalPages = 1
	return Pager{p: p}
}

// SetItems recomputes the page count for n items and clamps the active page
func (p *Pager) SetItems(n int) {
	if n < 1 {
		p.p.TotalPages = 1
	} else {
		p.p.SetTotalPages(n)
	}
	if p.p.Page >= p.p.TotalPages {
		p.p.Page = p.p.TotalPages - 1
	}
}

// Bounds returns the slice bounds of the active page for a list of length n
func (p *Pager) Bounds(n int) (start, end int) {
	start, end = p.p.GetSliceBounds(n)
	start = min(start, n)
	return start, max(start, end)
}

// Next moves forward one page. It reports whether the page changed.
func (p *Pager) Next() bool {
	if p.p.OnLastPage() {
		return false
	}
	p.p.NextPage()
	return true
}

// Prev moves back one page. It reports whether the page changed.
func (p *Pager) Prev() bool {
	if p.p.OnFirstPage() {
		return false
	}
	p.p.PrevPage()
	return true
}

// Reset returns to the first page
func (p *Pager) Reset() {
	p.p.Page = 0
}

// Page returns the active page, starting at 1
func (p Pager) Page() int {
	return p.p.Page + 1
}

// TotalPages returns the number of pages (at least 1)
func (p Pager) TotalPages() int {
	return p.p.TotalPages
}

// View renders "page N of M"
func (p Pager) View() string {
	return styles.DimStyle.Render(p.p.View())
}

// RemotePager tracks pages of a remote list whose total is unknown.
// It only ever moves forward past pages that returned rows.
type RemotePager struct {
	page    int
	hasMore bool
}

// NewRemotePager starts at page 1
func NewRemotePager() RemotePager {
	return RemotePager{page: 1, hasMore: true}
}

// Page returns the page to request
func (p RemotePager) Page() int {
	return p.page
}

// Loaded records how many rows the current page returned
func (p *RemotePager) Loaded(n int) {
	p.hasMore = n > 0
}

// Next moves forward unless the last page came back empty
func (p *RemotePager) Next() bool {
	if !p.hasMore {
		return false
	}
	p.page++
	return true
}

// Prev moves back one page, never below 1
func (p *RemotePager) Prev() bool {
	if p.page <= 1 {
		return false
	}
	p.page--
	p.hasMore = true
	return true
}

// Reset returns to page 1
func (p *RemotePager) Reset() {
	p.page = 1
	p.hasMore = true
}

// View renders "page N"
func (p RemotePager) View() string {
	return styles.DimStyle.Render(fmt.Sprintf("page %d", p.page))
}

// TypeSwitch selects movies or TV series
type TypeSwitch struct {
	active domain.MediaType
}

// NewTypeSwitch starts on movies
func NewTypeSwitch() TypeSwitch {
	return TypeSwitch{active: domain.MediaTypeMovie}
}

// Active returns the selected type
func (s TypeSwitch) Active() domain.MediaType {
	return s.active
}

// Toggle flips between movies and TV series and returns the new type
func (s *TypeSwitch) Toggle() domain.MediaType {
	if s.active == domain.MediaTypeMovie {
		s.active = domain.MediaTypeTV
	} else {
		s.active = domain.MediaTypeMovie
	}
	return s.active
}

// View renders both options with the active one highlighted
func (s TypeSwitch) View() string {
	render := func(t domain.MediaType, label string) string {
		if s.active == t {
			return styles.ActiveTabStyle.Render(label)
		}
		return styles.TabStyle.Render(label)
	}
	return render(domain.MediaTypeMovie, "Movies") + render(domain.MediaTypeTV, "TV Series")
}
