package search

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/moviedb/internal/domain"
)

// MinQueryLength is the shortest query sent to the metadata source.
// Anything shorter clears the results.
const MinQueryLength = 3

// Ready reports whether query is long enough to search
func Ready(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) >= MinQueryLength
}

// Service runs remote title searches and re-ranks the results
type Service struct {
	source domain.MetadataSource
	logger *slog.Logger
}

// NewService creates a new search service
func NewService(source domain.MetadataSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		source: source,
		logger: logger,
	}
}

// Search returns nil for queries shorter than MinQueryLength without
// touching the network
func (s *Service) Search(ctx context.Context, query string) ([]domain.Media, error) {
	query = strings.TrimSpace(query)
	if !Ready(query) {
		return nil, nil
	}

	results, err := s.source.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	ranked := Rerank(query, results)
	s.logger.Debug("search", "query", query, "results", len(ranked))
	return ranked, nil
}

// Rerank moves titles that contain every query character in order to the
// front, closest first. The rest keep the order they arrived in, which for
// remote results is popularity.
func Rerank(query string, items []domain.Media) []domain.Media {
	if len(items) == 0 {
		return items
	}

	titles := make([]string, len(items))
	for i, m := range items {
		titles[i] = m.Title
	}

	ranks := fuzzy.RankFindNormalizedFold(query, titles)
	slices.SortStableFunc(ranks, func(a, b fuzzy.Rank) int {
		if a.Distance != b.Distance {
			return a.Distance - b.Distance
		}
		return a.OriginalIndex - b.OriginalIndex
	})

	out := make([]domain.Media, 0, len(items))
	matched := make([]bool, len(items))
	for _, r := range ranks {
		matched[r.OriginalIndex] = true
		out = append(out, items[r.OriginalIndex])
	}
	for i, m := range items {
		if !matched[i] {
			out = append(out, m)
		}
	}
	return out
}
