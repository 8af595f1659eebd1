package bookmark

import (
	"testing"

	"github.com/mmcdole/moviedb/internal/domain"
)

func TestSeedsDefaults(t *testing.T) {
	movieID, seriesID := Seeds(nil, nil)
	if movieID != DefaultSeedMovieID || seriesID != DefaultSeedSeriesID {
		t.Errorf("Seeds(nil) = %d, %d", movieID, seriesID)
	}
}

func TestSeedsPicksPerType(t *testing.T) {
	records := []domain.BookmarkRecord{
		{ID: 1, Type: domain.MediaTypeTV},
		{ID: 2, Type: domain.MediaTypeMovie},
		{ID: 3, Type: domain.MediaTypeMovie},
	}
	last := func(n int) int { return n - 1 }

	movieID, seriesID := Seeds(records, last)
	if movieID != 3 || seriesID != 1 {
		t.Errorf("Seeds() = %d, %d, want 3, 1", movieID, seriesID)
	}

	movieID, seriesID = Seeds(records[1:], last)
	if movieID != 3 || seriesID != DefaultSeedSeriesID {
		t.Errorf("Seeds(movies only) = %d, %d, want 3, %d", movieID, seriesID, DefaultSeedSeriesID)
	}

	for range 20 {
		movieID, _ := Seeds(records, nil)
		if movieID != 2 && movieID != 3 {
			t.Fatalf("Seeds() picked movie %d", movieID)
		}
	}
}
