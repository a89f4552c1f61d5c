package viewstate

import (
	"errors"
	"testing"

	"github.com/quaksai/marketsview/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_Resolve(t *testing.T) {
	r := NewRouter(DefaultRoutes())

	tests := []struct {
		location string
		kind     string
		title    string
		params   map[string]string
	}{
		{
			location: "https://quaks.ai/markets/stocks/AAPL",
			kind:     KindStocksDashboard,
			title:    "Stock Dashboard",
			params:   map[string]string{ParamKeyTicker: "AAPL"},
		},
		{
			location: "/markets/news/related/MSFT?interval=2024-06-01_2024-06-10",
			kind:     KindNewsRelated,
			title:    "News feed",
			params:   map[string]string{ParamKeyTicker: "MSFT"},
		},
		{
			location: "/markets/news/item/nasdaq_100/abc123",
			kind:     KindNewsItem,
			params:   map[string]string{ParamIndexName: "nasdaq_100", ParamNewsItemID: "abc123"},
		},
		{
			location: "/markets/news/item/abc123",
			kind:     KindNewsItem,
			params:   map[string]string{ParamNewsItemID: "abc123"},
		},
		{
			location: "/insights/qse/NVDA/",
			kind:     KindInsights,
			title:    "Quaks Stocks Experts",
			params:   map[string]string{ParamKeyTicker: "NVDA"},
		},
		{
			location: "/markets/stocks/BRK%2EB",
			kind:     KindStocksDashboard,
			title:    "Stock Dashboard",
			params:   map[string]string{ParamKeyTicker: "BRK.B"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.location, func(t *testing.T) {
			snap, err := r.Resolve(tc.location)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, snap.Kind)
			assert.Equal(t, tc.title, snap.Title)
			assert.Equal(t, tc.params, snap.PathParams)
			assert.Equal(t, tc.location, snap.Location)
		})
	}
}

func TestRouter_ResolveKeepsQuery(t *testing.T) {
	r := NewRouter(DefaultRoutes())

	snap, err := r.Resolve("/markets/stocks/AAPL?interval=2024-06-01_2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, "/markets/stocks/AAPL", snap.Path)
	assert.Equal(t, "2024-06-01_2024-06-10", snap.Query.Get(QueryInterval))
}

func TestRouter_Unmatched(t *testing.T) {
	r := NewRouter(DefaultRoutes())

	snap, err := r.Resolve("/terms")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrRouteNotFound))
	assert.Equal(t, "", snap.Kind)
	assert.Equal(t, "", snap.Param(ParamKeyTicker))
	assert.Equal(t, "/terms", snap.Path)
}

func TestRouter_InvalidLocation(t *testing.T) {
	r := NewRouter(DefaultRoutes())

	_, err := r.Resolve("http://[::1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidRequest))
}
