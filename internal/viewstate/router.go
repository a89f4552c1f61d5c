package viewstate

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/quaksai/marketsview/internal/core"
)

// Page kinds used by the default route table.
const (
	KindStocksDashboard = "stocks_dashboard"
	KindNewsRelated     = "news_related"
	KindNewsItem        = "news_item"
	KindPerformance     = "performance"
	KindInsights        = "insights"
)

// Route maps a path pattern such as "/markets/stocks/{keyTicker}" to a page kind.
type Route struct {
	Pattern string
	Title   string
	Kind    string
}

type compiledRoute struct {
	Route
	segments []string
}

// Router resolves locations to snapshots. Routes are tried in order.
type Router struct {
	routes []compiledRoute
}

// DefaultRoutes returns the markets route table.
func DefaultRoutes() []Route {
	return []Route{
		{Pattern: "/insights/qse/{keyTicker}", Title: "Quaks Stocks Experts", Kind: KindInsights},
		{Pattern: "/markets/performance/{keyTicker}", Title: "Performance comparison", Kind: KindPerformance},
		{Pattern: "/markets/news/item/{indexName}/{newsItemId}", Title: "", Kind: KindNewsItem},
		{Pattern: "/markets/news/item/{newsItemId}", Title: "", Kind: KindNewsItem},
		{Pattern: "/markets/news/related/{keyTicker}", Title: "News feed", Kind: KindNewsRelated},
		{Pattern: "/markets/stocks/{keyTicker}", Title: "Stock Dashboard", Kind: KindStocksDashboard},
	}
}

// NewRouter compiles routes.
func NewRouter(routes []Route) *Router {
	r := &Router{routes: make([]compiledRoute, 0, len(routes))}
	for _, rt := range routes {
		r.routes = append(r.routes, compiledRoute{Route: rt, segments: splitPath(rt.Pattern)})
	}
	return r
}

// Resolve parses location and matches it against the route table. On a miss
// it still returns the location, path and query, with ErrRouteNotFound.
func (r *Router) Resolve(location string) (Snapshot, error) {
	u, err := url.Parse(location)
	if err != nil {
		return Snapshot{}, core.WrapError(core.ErrInvalidRequest, fmt.Errorf("parsing location: %w", err))
	}

	snap := Snapshot{
		Location: location,
		Path:     u.Path,
		Query:    u.Query(),
	}

	segments := splitPath(u.EscapedPath())
	for _, rt := range r.routes {
		params, ok := rt.match(segments)
		if !ok {
			continue
		}
		snap.PathParams = params
		snap.Title = rt.Title
		snap.Kind = rt.Kind
		return snap, nil
	}

	return snap, core.WrapError(core.ErrRouteNotFound, fmt.Errorf("path %q", u.Path))
}

func (rt compiledRoute) match(segments []string) (map[string]string, bool) {
	if len(segments) != len(rt.segments) {
		return nil, false
	}

	params := make(map[string]string)
	for i, seg := range rt.segments {
		if name, ok := placeholder(seg); ok {
			value, err := url.PathUnescape(segments[i])
			if err != nil || value == "" {
				return nil, false
			}
			params[name] = value
			continue
		}
		if seg != segments[i] {
			return nil, false
		}
	}
	return params, true
}

func placeholder(seg string) (string, bool) {
	if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") && len(seg) > 2 {
		return seg[1 : len(seg)-1], true
	}
	return "", false
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
