package tmdb

import (
	"cmp"
	"slices"

	"github.com/mmcdole/moviedb/internal/domain"
)

// MapResult converts a list result, using t when the result has no media_type
func MapResult(r Result, t domain.MediaType) domain.Media {
	if mt, err := domain.ParseMediaType(r.MediaType); err == nil {
		t = mt
	}
	genres := r.GenreIDs
	if genres == nil {
		genres = []int{}
	}
	return domain.Media{
		ID:            r.ID,
		Type:          t,
		Title:         cmp.Or(r.Title, r.Name),
		Overview:      r.Overview,
		PosterPath:    r.PosterPath,
		BackdropPath:  r.BackdropPath,
		ReleaseDate:   cmp.Or(r.ReleaseDate, r.FirstAirDate),
		RatingAverage: r.VoteAverage,
		Popularity:    r.Popularity,
		GenreIDs:      genres,
	}
}

// MapResults converts every result to t
func MapResults(results []Result, t domain.MediaType) []domain.Media {
	items := make([]domain.Media, 0, len(results))
	for _, r := range results {
		m := MapResult(r, t)
		m.Type = t
		items = append(items, m)
	}
	return items
}

// MapTrending keeps only movies and series, dropping people
func MapTrending(results []Result) []domain.Media {
	items := make([]domain.Media, 0, len(results))
	for _, r := range results {
		t, err := domain.ParseMediaType(r.MediaType)
		if err != nil {
			continue
		}
		items = append(items, MapResult(r, t))
	}
	return items
}

// MapSearch drops people and results without a backdrop, most popular first
func MapSearch(results []Result) []domain.Media {
	kept := make([]Result, 0, len(results))
	for _, r := range results {
		if r.MediaType == "person" || r.BackdropPath == "" {
			continue
		}
		if _, err := domain.ParseMediaType(r.MediaType); err != nil {
			continue
		}
		kept = append(kept, r)
	}
	slices.SortStableFunc(kept, func(a, b Result) int {
		return cmp.Compare(b.Popularity, a.Popularity)
	})

	items := make([]domain.Media, 0, len(kept))
	for _, r := range kept {
		items = append(items, MapResult(r, ""))
	}
	return items
}

// MapDetails converts a details response. Runtime is the season count for series.
func MapDetails(d DetailsResponse, t domain.MediaType) *domain.MediaDetails {
	media := MapResult(d.Result, t)
	media.Type = t

	genres := make([]domain.Genre, 0, len(d.Genres))
	ids := make([]int, 0, len(d.Genres))
	for _, g := range d.Genres {
		genres = append(genres, domain.Genre{ID: g.ID, Name: g.Name})
		ids = append(ids, g.ID)
	}
	media.GenreIDs = ids

	cast := make([]domain.CastMember, 0, len(d.Credits.Cast))
	for _, c := range d.Credits.Cast {
		cast = append(cast, domain.CastMember{
			ID:          c.ID,
			Name:        c.Name,
			Character:   c.Character,
			ProfilePath: c.ProfilePath,
		})
	}

	return &domain.MediaDetails{
		Media:   media,
		Runtime: cmp.Or(d.Runtime, d.NumberOfSeasons),
		Genres:  genres,
		Tagline: d.Tagline,
		Cast:    cast,
		Similar: MapResults(d.Similar.Results, t),
	}
}

// MapGenres converts a genre list
func MapGenres(list []GenreDTO) []domain.Genre {
	genres := make([]domain.Genre, 0, len(list))
	for _, g := range list {
		genres = append(genres, domain.Genre{ID: g.ID, Name: g.Name})
	}
	return genres
}

// FirstTrailer returns the key of the first video typed "Trailer"
func FirstTrailer(videos []Video) (string, bool) {
	for _, v := range videos {
		if v.Type == "Trailer" {
			return v.Key, true
		}
	}
	return "", false
}
