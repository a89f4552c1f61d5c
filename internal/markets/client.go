// Package markets is the HTTP client for the markets API: close stats,
// news and the ticker directory. Every data call has a fixed timeout and
// resolves to a documented default value on failure.
package markets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/quaksai/marketsview/internal/core"
	"github.com/quaksai/marketsview/internal/interval"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds every outbound request.
	DefaultTimeout = 10 * time.Second

	// DirectoryPath is the static ticker directory document.
	DirectoryPath = "/json/indexed_key_ticker_list.json"
)

// Resource names used in logs and metrics.
const (
	ResourceStats     = "stats"
	ResourceNews      = "news"
	ResourceNewsItem  = "news_item"
	ResourceDirectory = "directory"
)

// Fetch outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeTimeout  = "timeout"
	OutcomeRejected = "rejected"
)

// Recorder observes fetch outcomes. metrics.Registry implements it.
type Recorder interface {
	RecordFetch(resource, outcome string, seconds float64)
}

// StatsFetcher fetches close stats.
type StatsFetcher interface {
	StatsClose(ctx context.Context, indexName, ticker string, enc interval.Encoding) core.StatsClose
}

// NewsFetcher fetches news pages and single items.
type NewsFetcher interface {
	NewsList(ctx context.Context, q NewsQuery) core.NewsList
	NewsItem(ctx context.Context, indexName, id string) core.NewsList
}

// NewsQuery selects a page of news for a ticker.
type NewsQuery struct {
	IndexName     string
	KeyTicker     string
	Size          int
	Cursor        string
	IncludeImages bool
}

// Config holds client settings.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	DirectoryURL string
}

// Client implements StatsFetcher and NewsFetcher over HTTP.
type Client struct {
	baseURL      string
	directoryURL string
	timeout      time.Duration
	httpClient   *http.Client
	recorder     Recorder
	logger       *zap.Logger
}

// New creates a client. A zero timeout uses DefaultTimeout.
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		directoryURL: cfg.DirectoryURL,
		timeout:      timeout,
		httpClient:   &http.Client{},
		logger:       logger,
	}
}

// SetRecorder attaches a metrics recorder.
func (c *Client) SetRecorder(r Recorder) {
	c.recorder = r
}

// StatsClose fetches close stats for ticker over enc. A malformed or
// reversed interval is rejected locally without a request.
func (c *Client) StatsClose(ctx context.Context, indexName, ticker string, enc interval.Encoding) core.StatsClose {
	if err := enc.Validate(); err != nil {
		c.logger.Warn("skipping stats fetch for invalid interval",
			zap.String("ticker", ticker),
			zap.String("index", indexName),
			zap.String("interval", string(enc)),
			zap.Error(err),
		)
		c.record(ResourceStats, OutcomeRejected, 0)
		return core.DefaultStatsClose()
	}

	start, end := enc.Split()
	path := fmt.Sprintf("/markets/stats_close/%s/%s", url.PathEscape(indexName), url.PathEscape(ticker))
	query := url.Values{
		"start_date": {start},
		"end_date":   {end},
	}

	var stats core.StatsClose
	if err := c.get(ctx, ResourceStats, c.baseURL+path, query, &stats); err != nil {
		c.logger.Error("failed to fetch latest close",
			zap.String("ticker", ticker),
			zap.String("index", indexName),
			zap.Error(err),
		)
		return core.DefaultStatsClose()
	}
	return stats
}

// NewsList fetches one page of news for a ticker.
func (c *Client) NewsList(ctx context.Context, q NewsQuery) core.NewsList {
	query := url.Values{
		"key_ticker":         {q.KeyTicker},
		"size":               {strconv.Itoa(q.Size)},
		"cursor":             {q.Cursor},
		"include_obj_images": {strconv.FormatBool(q.IncludeImages)},
	}

	var list core.NewsList
	if err := c.get(ctx, ResourceNews, c.newsURL(q.IndexName), query, &list); err != nil {
		c.logger.Error("failed to fetch news",
			zap.String("ticker", q.KeyTicker),
			zap.String("index", q.IndexName),
			zap.Error(err),
		)
		return core.DefaultNewsList()
	}
	return normalizeNews(list)
}

// NewsItem fetches a single news item with text content and images.
func (c *Client) NewsItem(ctx context.Context, indexName, id string) core.NewsList {
	query := url.Values{
		"id":                   {id},
		"size":                 {"1"},
		"include_text_content": {"true"},
		"include_obj_images":   {"true"},
	}

	var list core.NewsList
	if err := c.get(ctx, ResourceNewsItem, c.newsURL(indexName), query, &list); err != nil {
		c.logger.Error("failed to fetch news item",
			zap.String("id", id),
			zap.String("index", indexName),
			zap.Error(err),
		)
		return core.DefaultNewsList()
	}
	return normalizeNews(list)
}

// TickerDirectory fetches the ticker directory. Unlike the data calls it
// returns the error so the caller can decide whether startup should fail.
func (c *Client) TickerDirectory(ctx context.Context) ([]core.IndexedKeyTicker, error) {
	target := c.directoryURL
	if target == "" {
		target = c.baseURL + DirectoryPath
	}

	var tickers []core.IndexedKeyTicker
	if err := c.get(ctx, ResourceDirectory, target, nil, &tickers); err != nil {
		return nil, err
	}
	return tickers, nil
}

func (c *Client) newsURL(indexName string) string {
	return c.baseURL + "/markets/news/" + url.PathEscape(indexName)
}

// get performs a bounded GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, resource, target string, query url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	start := time.Now()
	err := c.do(ctx, target, out)
	elapsed := time.Since(start).Seconds()

	switch {
	case err == nil:
		c.record(resource, OutcomeOK, elapsed)
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		c.record(resource, OutcomeTimeout, elapsed)
		return core.WrapError(core.ErrFetchTimeout, err)
	default:
		c.record(resource, OutcomeError, elapsed)
		return core.WrapError(core.ErrFetchFailed, err)
	}
}

func (c *Client) do(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) record(resource, outcome string, seconds float64) {
	if c.recorder != nil {
		c.recorder.RecordFetch(resource, outcome, seconds)
	}
}

func normalizeNews(list core.NewsList) core.NewsList {
	if list.Items == nil {
		list.Items = []core.NewsItem{}
	}
	return list
}
