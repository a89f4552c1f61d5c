// Package page drives mounted market pages: it derives view state from
// navigation, publishes share links and keeps the data caches fresh.
package page

import (
	"github.com/quaksai/marketsview/internal/core"
	"github.com/quaksai/marketsview/internal/dashboard"
	"github.com/quaksai/marketsview/internal/interval"
	"github.com/quaksai/marketsview/internal/sharelink"
	"github.com/quaksai/marketsview/internal/viewstate"
)

// DefaultNewsTitle is the share title of a news item without a headline.
const DefaultNewsTitle = "Breaking news"

// Reactions is the set of effects a page runs when its state changes.
type Reactions uint8

const (
	// ReactShareLink publishes the share link on every view params change.
	ReactShareLink Reactions = 1 << iota
	// ReactShareOnNews publishes the share link when a news fetch completes.
	ReactShareOnNews
	// ReactEmbed recomputes the dashboard embed URL.
	ReactEmbed
	// ReactStats refreshes close stats.
	ReactStats
	// ReactNews refreshes the related news page.
	ReactNews
	// ReactNewsItem fetches the single news item named by the route.
	ReactNewsItem
)

// Has reports whether all of flags are set.
func (r Reactions) Has(flags Reactions) bool {
	return r&flags == flags
}

// View is what a page sees when building its share link.
type View struct {
	RouteTitle string
	Location   string
	Params     viewstate.ViewParams
	News       core.NewsList
	Clock      interval.Clock
}

// Page is one mountable page kind.
type Page interface {
	Kind() string
	DefaultTab() string
	Reactions() Reactions
	ShareLink(v View) sharelink.Link
}

// tickerPage covers the pages titled "<route title> <ticker>".
type tickerPage struct {
	kind       string
	defaultTab string
	reactions  Reactions
	policy     sharelink.Policy
}

func (p tickerPage) Kind() string         { return p.kind }
func (p tickerPage) DefaultTab() string   { return p.defaultTab }
func (p tickerPage) Reactions() Reactions { return p.reactions }

func (p tickerPage) ShareLink(v View) sharelink.Link {
	return sharelink.Link{
		Title: v.RouteTitle + " " + v.Params.TickerKey,
		URL:   p.policy.URL(v.Location, v.Params, v.Clock),
	}
}

// StocksDashboard shows the embedded dashboard with close stats. Its share
// link anchors relative intervals to absolute dates.
func StocksDashboard(defaultTab dashboard.Tab) Page {
	return tickerPage{
		kind:       viewstate.KindStocksDashboard,
		defaultTab: string(defaultTab),
		reactions:  ReactShareLink | ReactEmbed | ReactStats,
		policy:     sharelink.PolicyAnchorInterval,
	}
}

// NewsRelated lists news for a ticker.
func NewsRelated() Page {
	return tickerPage{
		kind:      viewstate.KindNewsRelated,
		reactions: ReactShareLink | ReactStats | ReactNews,
		policy:    sharelink.PolicyExplicitOrPath,
	}
}

// Performance compares a ticker against its index.
func Performance() Page {
	return tickerPage{
		kind:      viewstate.KindPerformance,
		reactions: ReactShareLink | ReactStats,
		policy:    sharelink.PolicyAnchorInterval,
	}
}

// Insights hosts expert commentary for a ticker.
func Insights() Page {
	return tickerPage{
		kind:      viewstate.KindInsights,
		reactions: ReactShareLink | ReactStats,
		policy:    sharelink.PolicyAnchorInterval,
	}
}

type newsItemPage struct{}

// NewsItem shows one article. Its share link is published once the article
// is fetched, titled with the headline.
func NewsItem() Page {
	return newsItemPage{}
}

func (newsItemPage) Kind() string         { return viewstate.KindNewsItem }
func (newsItemPage) DefaultTab() string   { return "" }
func (newsItemPage) Reactions() Reactions { return ReactShareOnNews | ReactNewsItem }

func (newsItemPage) ShareLink(v View) sharelink.Link {
	// only a missing item falls back; an empty headline is kept as is
	title := DefaultNewsTitle
	if len(v.News.Items) > 0 {
		title = v.News.Items[0].Headline
	}
	return sharelink.Link{
		Title: title,
		URL:   sharelink.PolicyPathOnly.URL(v.Location, v.Params, v.Clock),
	}
}

// DefaultPages returns every page kind of the default route table.
func DefaultPages(defaultTab dashboard.Tab) map[string]Page {
	pages := []Page{
		StocksDashboard(defaultTab),
		NewsRelated(),
		NewsItem(),
		Performance(),
		Insights(),
	}
	m := make(map[string]Page, len(pages))
	for _, p := range pages {
		m[p.Kind()] = p
	}
	return m
}
