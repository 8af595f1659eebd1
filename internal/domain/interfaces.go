package domain

import "strconv"

// ListItem is the polymorphic interface for rows that can be displayed in lists.
// Media and BookmarkRecord implement it so views can share one list component.
type ListItem interface {
	// GetKey returns the bookmark identity of the row
	GetKey() BookmarkKey

	// GetTitle returns the display title
	GetTitle() string

	// GetDescription returns secondary info for display (e.g. "2024 · Movie")
	GetDescription() string

	// GetGenreIDs returns the ordered genre ids
	GetGenreIDs() []int

	// AsBookmark returns the record stored when the row is bookmarked
	AsBookmark() BookmarkRecord
}

func (m Media) GetKey() BookmarkKey        { return BookmarkKey{ID: m.ID, Type: m.Type} }
func (m Media) GetTitle() string           { return m.Title }
func (m Media) GetGenreIDs() []int         { return m.GenreIDs }
func (m Media) AsBookmark() BookmarkRecord { return m.Bookmark() }

func (m Media) GetDescription() string {
	return describe(m.Year(), m.Type)
}

func (b BookmarkRecord) GetKey() BookmarkKey        { return b.Key() }
func (b BookmarkRecord) GetTitle() string           { return b.Title }
func (b BookmarkRecord) GetGenreIDs() []int         { return b.GenreIDs }
func (b BookmarkRecord) AsBookmark() BookmarkRecord { return b.Clone() }

func (b BookmarkRecord) GetDescription() string {
	return describe(b.Year(), b.Type)
}

func describe(year string, t MediaType) string {
	if year == "" {
		year = "N/A"
	}
	return year + " · " + t.Label()
}

// MediaIDString formats a numeric TMDB id for URLs and query strings
func MediaIDString(id int) string {
	return strconv.Itoa(id)
}
