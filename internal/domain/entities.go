package domain

import (
	"fmt"
	"strings"
)

// MediaType distinguishes content types
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// ParseMediaType validates a raw type string ("movie" or "tv")
func ParseMediaType(s string) (MediaType, error) {
	switch t := MediaType(strings.ToLower(strings.TrimSpace(s))); t {
	case MediaTypeMovie, MediaTypeTV:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMediaType, s)
	}
}

// Valid reports whether t is one of the known media types
func (t MediaType) Valid() bool {
	return t == MediaTypeMovie || t == MediaTypeTV
}

// Label returns the display name for the type
func (t MediaType) Label() string {
	switch t {
	case MediaTypeMovie:
		return "Movie"
	case MediaTypeTV:
		return "TV Series"
	default:
		return string(t)
	}
}

// Media is a movie or TV series as returned by list endpoints
// (trending, top rated, recommendations, search, similar titles).
type Media struct {
	ID            int       `json:"id"`
	Type          MediaType `json:"type"`
	Title         string    `json:"title"`
	Overview      string    `json:"overview,omitempty"`
	PosterPath    string    `json:"posterPath,omitempty"`
	BackdropPath  string    `json:"backdropPath"`
	ReleaseDate   string    `json:"releaseDate"`
	RatingAverage float64   `json:"ratingAverage"`
	Popularity    float64   `json:"popularity,omitempty"`
	GenreIDs      []int     `json:"genreIds"`
}

// Year returns the leading year component of the release date
func (m Media) Year() string {
	return ReleaseYear(m.ReleaseDate)
}

// Bookmark converts the media into the record persisted in a bookmark list
func (m Media) Bookmark() BookmarkRecord {
	genres := make([]int, len(m.GenreIDs))
	copy(genres, m.GenreIDs)
	return BookmarkRecord{
		ID:           m.ID,
		Type:         m.Type,
		Title:        m.Title,
		BackdropPath: m.BackdropPath,
		ReleaseDate:  m.ReleaseDate,
		GenreIDs:     genres,
	}
}

// FormattedRating returns the vote average with two decimals, "N/A" when unrated
func (m Media) FormattedRating() string {
	if m.RatingAverage <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", m.RatingAverage)
}

// ReleaseYear extracts "2024" from "2024-03-01". Empty dates stay empty.
func ReleaseYear(date string) string {
	year, _, _ := strings.Cut(date, "-")
	return year
}

// Genre is a TMDB genre id/name pair
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreNames resolves up to limit genre ids against a genre list, skipping unknown ids
func GenreNames(ids []int, genres []Genre, limit int) []string {
	names := make([]string, 0, limit)
	for _, id := range ids {
		if limit > 0 && len(names) == limit {
			break
		}
		for _, g := range genres {
			if g.ID == id {
				names = append(names, g.Name)
				break
			}
		}
	}
	return names
}

// CastMember is one credited performer
type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profilePath,omitempty"`
}

// MediaDetails is the full title page payload
type MediaDetails struct {
	Media
	// Runtime is minutes for movies and number of seasons for TV series
	Runtime int          `json:"runTime"`
	Genres  []Genre      `json:"genres"`
	Tagline string       `json:"tagline"`
	Cast    []CastMember `json:"cast"`
	Similar []Media      `json:"similar"`
}

// FormattedRuntime renders Runtime according to the media type
func (d MediaDetails) FormattedRuntime() string {
	if d.Runtime <= 0 {
		return "N/A"
	}
	if d.Type == MediaTypeTV {
		if d.Runtime == 1 {
			return "1 season"
		}
		return fmt.Sprintf("%d seasons", d.Runtime)
	}
	h, m := d.Runtime/60, d.Runtime%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// Recommendations groups movie and TV suggestions
type Recommendations struct {
	Movies   []Media `json:"movies"`
	TVSeries []Media `json:"tv_series"`
}

// MediaRef identifies a title without any display data (media pool entries)
type MediaRef struct {
	ID   int       `json:"id"`
	Type MediaType `json:"type"`
}

// User is the signed-in account
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// ProfileUpdate is an edit of the signed-in user. An empty Password keeps the current one.
type ProfileUpdate struct {
	Email    string
	Name     string
	Password string
}

// Session holds the tokens returned by a successful sign in
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

// Avatar is a stored profile image
type Avatar struct {
	Data     []byte
	MimeType string
}
