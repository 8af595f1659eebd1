package tui

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/moviedb/internal/domain"
)

// Route paths
const (
	PathHome      = "/app"
	PathTopRated  = "/app/top-rated"
	PathBookmarks = "/app/bookmarks"
	PathTitle     = "/app/title"
	PathSearch    = "/app/search"
)

// Route is a path plus query parameters, e.g. /app/title?id=278&type=movie
type Route struct {
	Path  string
	Query url.Values
}

// ParseRoute parses a route string. "" and "/" mean the home route.
func ParseRoute(raw string) Route {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return Route{Path: raw, Query: url.Values{}}
	}
	path := strings.TrimRight(u.Path, "/")
	if path == "" {
		path = PathHome
	}
	return Route{Path: path, Query: u.Query()}
}

// TitleRoute returns the route of a title page
func TitleRoute(key domain.BookmarkKey) Route {
	return Route{
		Path: PathTitle,
		Query: url.Values{
			"id":   {domain.MediaIDString(key.ID)},
			"type": {string(key.Type)},
		},
	}
}

// String renders the route back to path?query form
func (r Route) String() string {
	if len(r.Query) == 0 {
		return r.Path
	}
	return r.Path + "?" + r.Query.Encode()
}

// TitleKey extracts id and type from a title route
func (r Route) TitleKey() (domain.BookmarkKey, bool) {
	id, err := strconv.Atoi(r.Query.Get("id"))
	if err != nil || id <= 0 {
		return domain.BookmarkKey{}, false
	}
	t, err := domain.ParseMediaType(r.Query.Get("type"))
	if err != nil {
		return domain.BookmarkKey{}, false
	}
	return domain.BookmarkKey{ID: id, Type: t}, true
}

// pageFactory builds the page for a route. gen stamps its async results.
type pageFactory func(deps Deps, route Route, gen int) Page

// Router maps paths to page constructors
type Router struct {
	deps   Deps
	routes map[string]pageFactory
}

// NewRouter creates the route table
func NewRouter(deps Deps) *Router {
	return &Router{
		deps: deps,
		routes: map[string]pageFactory{
			PathHome:      newHomePage,
			PathTopRated:  newTopRatedPage,
			PathBookmarks: newBookmarksPage,
			PathTitle:     newTitlePage,
			PathSearch:    newSearchPage,
		},
	}
}

// Build constructs the page for route, or the not-found page
func (r *Router) Build(route Route, gen int) Page {
	if route.Query == nil {
		route.Query = url.Values{}
	}
	factory, ok := r.routes[route.Path]
	if !ok {
		return newNotFoundPage(r.deps, route, gen)
	}
	if route.Path == PathTitle {
		if _, ok := route.TitleKey(); !ok {
			return newNotFoundPage(r.deps, route, gen)
		}
	}
	return factory(r.deps, route, gen)
}
