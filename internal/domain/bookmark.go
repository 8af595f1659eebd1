package domain

import (
	"fmt"

	"github.com/goccy/go-json"
)

// BookmarkRecord is one saved title. Identity is the (ID, Type) pair;
// every other field is display data captured at bookmark time.
type BookmarkRecord struct {
	ID           int       `json:"id"`
	Type         MediaType `json:"type"`
	Title        string    `json:"title"`
	BackdropPath string    `json:"backdropPath"`
	ReleaseDate  string    `json:"releaseDate"`
	GenreIDs     []int     `json:"genreIds"`
}

// BookmarkKey is the identity of a bookmark record
type BookmarkKey struct {
	ID   int
	Type MediaType
}

func (k BookmarkKey) String() string {
	return fmt.Sprintf("%s:%d", k.Type, k.ID)
}

// Key returns the record identity
func (b BookmarkRecord) Key() BookmarkKey {
	return BookmarkKey{ID: b.ID, Type: b.Type}
}

// Same reports whether both records identify the same title
func (b BookmarkRecord) Same(other BookmarkRecord) bool {
	return b.ID == other.ID && b.Type == other.Type
}

// Clone returns a copy that shares no memory with b
func (b BookmarkRecord) Clone() BookmarkRecord {
	if b.GenreIDs != nil {
		genres := make([]int, len(b.GenreIDs))
		copy(genres, b.GenreIDs)
		b.GenreIDs = genres
	}
	return b
}

// Year returns the leading year component of the release date
func (b BookmarkRecord) Year() string {
	return ReleaseYear(b.ReleaseDate)
}

// Media converts the record back into a list entry
func (b BookmarkRecord) Media() Media {
	return Media{
		ID:           b.ID,
		Type:         b.Type,
		Title:        b.Title,
		BackdropPath: b.BackdropPath,
		ReleaseDate:  b.ReleaseDate,
		GenreIDs:     b.Clone().GenreIDs,
	}
}

// UnmarshalJSON accepts the legacy "releaseData" key written by the web client.
func (b *BookmarkRecord) UnmarshalJSON(data []byte) error {
	type plain BookmarkRecord
	var raw struct {
		plain
		LegacyReleaseDate string `json:"releaseData"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = BookmarkRecord(raw.plain)
	if b.ReleaseDate == "" {
		b.ReleaseDate = raw.LegacyReleaseDate
	}
	return nil
}

// CloneBookmarks deep-copies a bookmark list
func CloneBookmarks(records []BookmarkRecord) []BookmarkRecord {
	out := make([]BookmarkRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// FilterBookmarks returns the records of a single media type, preserving order
func FilterBookmarks(records []BookmarkRecord, t MediaType) []BookmarkRecord {
	out := make([]BookmarkRecord, 0, len(records))
	for _, r := range records {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}
