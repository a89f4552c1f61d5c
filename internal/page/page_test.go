package page

import (
	"errors"
	"testing"

	"github.com/quaksai/marketsview/internal/core"
	"github.com/quaksai/marketsview/internal/dashboard"
	"github.com/quaksai/marketsview/internal/interval"
	"github.com/quaksai/marketsview/internal/viewstate"
	"github.com/stretchr/testify/assert"
)

func TestDefaultPages(t *testing.T) {
	pages := DefaultPages(dashboard.TabStockPrice)

	for _, r := range viewstate.DefaultRoutes() {
		p, ok := pages[r.Kind]
		if assert.True(t, ok, "no page for route %s", r.Pattern) {
			assert.Equal(t, r.Kind, p.Kind())
		}
	}
	assert.Equal(t, "stock_price", pages[viewstate.KindStocksDashboard].DefaultTab())
}

func TestReactions_Has(t *testing.T) {
	r := ReactShareLink | ReactStats

	assert.True(t, r.Has(ReactStats))
	assert.True(t, r.Has(ReactShareLink|ReactStats))
	assert.False(t, r.Has(ReactStats|ReactNews))
}

func TestShareLink_Policies(t *testing.T) {
	relative := View{
		RouteTitle: "Performance comparison",
		Location:   "https://quaks.ai/markets/performance/AAPL?foo=bar",
		Params:     viewstate.ViewParams{TickerKey: "AAPL", Interval: interval.Relative(90)},
		Clock:      fixedClock,
	}

	tests := []struct {
		name  string
		page  Page
		view  View
		title string
		url   string
	}{
		{
			name:  "performance anchors interval",
			page:  Performance(),
			view:  relative,
			title: "Performance comparison AAPL",
			url:   "https://quaks.ai/markets/performance/AAPL?interval=2024-04-16_2024-07-14",
		},
		{
			name:  "news related drops query",
			page:  NewsRelated(),
			view:  relative,
			title: "Performance comparison AAPL",
			url:   "https://quaks.ai/markets/performance/AAPL",
		},
		{
			name: "news item uses headline",
			page: NewsItem(),
			view: View{
				Location: "https://quaks.ai/markets/news/item/9?interval=2024-06-01_2024-06-10",
				News:     core.NewsList{Items: []core.NewsItem{{Headline: "Chips rally"}}},
			},
			title: "Chips rally",
			url:   "https://quaks.ai/markets/news/item/9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := tt.page.ShareLink(tt.view)
			assert.Equal(t, tt.title, link.Title)
			assert.Equal(t, tt.url, link.URL)
		})
	}
}

func TestDeps_Preview(t *testing.T) {
	deps := Deps{Clock: fixedClock}

	pv, err := deps.Preview("https://quaks.ai/markets/stocks/AAPL?utm=1", viewstate.Selection{Days: 15})
	assert.NoError(t, err)
	assert.Equal(t, "stocks_dashboard", pv.Page)
	assert.Equal(t, "stock_price", pv.Params.SelectedTab)
	assert.Equal(t, "Stock Dashboard AAPL", pv.ShareLink.Title)
	assert.Equal(t, "https://quaks.ai/markets/stocks/AAPL?interval=2024-06-30_2024-07-14", pv.ShareLink.URL)
	assert.NotEmpty(t, pv.EmbedURL)

	pv, err = deps.Preview("https://quaks.ai/markets/news/related/AAPL", viewstate.Selection{})
	assert.NoError(t, err)
	assert.Empty(t, pv.EmbedURL)

	_, err = deps.Preview("https://quaks.ai/unknown", viewstate.Selection{})
	assert.True(t, errors.Is(err, core.ErrRouteNotFound))
}
