package tmdb

import (
	"context"
	"log/slog"

	"github.com/mmcdole/moviedb/internal/breaker"
	"github.com/mmcdole/moviedb/internal/domain"
)

// GuardedSource wraps a MetadataSource with a circuit breaker so an
// unreachable API fails fast instead of stalling every view
type GuardedSource struct {
	source domain.MetadataSource
	cb     *breaker.Breaker
}

var _ domain.MetadataSource = (*GuardedSource)(nil)

// NewGuardedSource wraps source in a breaker named "tmdb-api"
func NewGuardedSource(source domain.MetadataSource, st breaker.Settings, logger *slog.Logger) *GuardedSource {
	return &GuardedSource{
		source: source,
		cb:     breaker.New("tmdb-api", st, logger),
	}
}

// State returns the breaker state
func (g *GuardedSource) State() string {
	return g.cb.State()
}

func (g *GuardedSource) Upcoming(ctx context.Context) ([]domain.Media, error) {
	return breaker.Execute(g.cb, func() ([]domain.Media, error) {
		return g.source.Upcoming(ctx)
	})
}

func (g *GuardedSource) TrailerKey(ctx context.Context, movieID int) (string, error) {
	return breaker.Execute(g.cb, func() (string, error) {
		return g.source.TrailerKey(ctx, movieID)
	})
}

func (g *GuardedSource) Trending(ctx context.Context) ([]domain.Media, error) {
	return breaker.Execute(g.cb, func() ([]domain.Media, error) {
		return g.source.Trending(ctx)
	})
}

func (g *GuardedSource) Recommendations(ctx context.Context, movieID, seriesID int) (*domain.Recommendations, error) {
	return breaker.Execute(g.cb, func() (*domain.Recommendations, error) {
		return g.source.Recommendations(ctx, movieID, seriesID)
	})
}

func (g *GuardedSource) TopRated(ctx context.Context, t domain.MediaType, page int) ([]domain.Media, error) {
	return breaker.Execute(g.cb, func() ([]domain.Media, error) {
		return g.source.TopRated(ctx, t, page)
	})
}

func (g *GuardedSource) Search(ctx context.Context, query string) ([]domain.Media, error) {
	return breaker.Execute(g.cb, func() ([]domain.Media, error) {
		return g.source.Search(ctx, query)
	})
}

func (g *GuardedSource) Details(ctx context.Context, t domain.MediaType, id int) (*domain.MediaDetails, error) {
	return breaker.Execute(g.cb, func() (*domain.MediaDetails, error) {
		return g.source.Details(ctx, t, id)
	})
}
