package cache

import (
	"context"

	"github.com/quaksai/marketsview/internal/core"
	"github.com/quaksai/marketsview/internal/interval"
	"github.com/quaksai/marketsview/internal/markets"
)

// DefaultNewsPageSize is the number of items requested per news page.
const DefaultNewsPageSize = 10

// StatsKey identifies one stats query.
type StatsKey struct {
	IndexName string
	Ticker    string
	Interval  interval.Encoding
}

// NewsKey identifies one news query. ItemID selects a single item instead of a page.
type NewsKey struct {
	IndexName string
	Ticker    string
	Cursor    string
	ItemID    string
}

// StatsCache holds the last close stats.
type StatsCache = Refresher[StatsKey, core.StatsClose]

// NewsCache holds the last news page.
type NewsCache = Refresher[NewsKey, core.NewsList]

// NewStatsCache creates a stats cache backed by f.
func NewStatsCache(f markets.StatsFetcher, opts Options) *StatsCache {
	fetch := func(ctx context.Context, k StatsKey) core.StatsClose {
		return f.StatsClose(ctx, k.IndexName, k.Ticker, k.Interval)
	}
	return NewRefresher(markets.ResourceStats, core.DefaultStatsClose(), fetch, opts)
}

// NewNewsCache creates a news cache backed by f. Pages include images.
func NewNewsCache(f markets.NewsFetcher, pageSize int, opts Options) *NewsCache {
	if pageSize <= 0 {
		pageSize = DefaultNewsPageSize
	}
	fetch := func(ctx context.Context, k NewsKey) core.NewsList {
		if k.ItemID != "" {
			return f.NewsItem(ctx, k.IndexName, k.ItemID)
		}
		return f.NewsList(ctx, markets.NewsQuery{
			IndexName:     k.IndexName,
			KeyTicker:     k.Ticker,
			Size:          pageSize,
			Cursor:        k.Cursor,
			IncludeImages: true,
		})
	}
	return NewRefresher(markets.ResourceNews, core.DefaultNewsList(), fetch, opts)
}
