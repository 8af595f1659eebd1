package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/moviedb/internal/domain"
)

// FilterResult is a row that matched a local filter
type FilterResult struct {
	Item           domain.ListItem
	MatchedIndexes []int // positions in the title, for highlighting
	Score          int
}

// titleSource adapts a row slice to fuzzy.Source
type titleSource []domain.ListItem

func (t titleSource) String(i int) string { return t[i].GetTitle() }
func (t titleSource) Len() int            { return len(t) }

// FilterLocal narrows rows already on screen (the bookmark page) by title.
// An empty query returns every row unscored, in order.
func FilterLocal(query string, items []domain.ListItem) []FilterResult {
	query = strings.TrimSpace(query)
	if query == "" {
		results := make([]FilterResult, len(items))
		for i, item := range items {
			results[i] = FilterResult{Item: item}
		}
		return results
	}

	matches := fuzzy.FindFrom(query, titleSource(items))
	results := make([]FilterResult, len(matches))
	for i, m := range matches {
		results[i] = FilterResult{
			Item:           items[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}
