package bookmark

import (
	"math/rand/v2"

	"github.com/mmcdole/moviedb/internal/domain"
)

// Fallback recommendation seeds for users without bookmarks of a type
const (
	DefaultSeedMovieID  = 278  // The Shawshank Redemption
	DefaultSeedSeriesID = 1396 // Breaking Bad
)

// Seeds picks one random bookmarked movie id and one random bookmarked series
// id to base recommendations on. intn may be nil to use math/rand.
func Seeds(records []domain.BookmarkRecord, intn func(n int) int) (movieID, seriesID int) {
	if intn == nil {
		intn = rand.IntN
	}
	movieID, seriesID = DefaultSeedMovieID, DefaultSeedSeriesID

	if movies := domain.FilterBookmarks(records, domain.MediaTypeMovie); len(movies) > 0 {
		movieID = movies[intn(len(movies))].ID
	}
	if series := domain.FilterBookmarks(records, domain.MediaTypeTV); len(series) > 0 {
		seriesID = series[intn(len(series))].ID
	}
	return movieID, seriesID
}
