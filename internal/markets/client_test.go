package markets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/quaksai/marketsview/internal/core"
	"github.com/quaksai/marketsview/internal/interval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fetchRecord struct {
	resource, outcome string
}

type recorder struct {
	mu      sync.Mutex
	records []fetchRecord
}

func (r *recorder) RecordFetch(resource, outcome string, seconds float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, fetchRecord{resource, outcome})
}

func TestClient_StatsClose(t *testing.T) {
	var gotPath, gotStart, gotEnd string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotStart = r.URL.Query().Get("start_date")
		gotEnd = r.URL.Query().Get("end_date")
		json.NewEncoder(w).Encode(core.StatsClose{
			KeyTicker:       "AAPL",
			MostRecentClose: 190.5,
			MostRecentDate:  "2024-06-10",
			PercentVariance: 2.5,
		})
	}))
	defer srv.Close()

	rec := &recorder{}
	c := New(Config{BaseURL: srv.URL + "/"}, zap.NewNop())
	c.SetRecorder(rec)

	stats := c.StatsClose(context.Background(), "nasdaq_100", "AAPL", "2024-06-01_2024-06-10")

	assert.Equal(t, "/markets/stats_close/nasdaq_100/AAPL", gotPath)
	assert.Equal(t, "2024-06-01", gotStart)
	assert.Equal(t, "2024-06-10", gotEnd)
	assert.Equal(t, 190.5, stats.MostRecentClose)
	assert.Equal(t, []fetchRecord{{ResourceStats, OutcomeOK}}, rec.records)
}

func TestClient_StatsCloseTimeoutFallsBack(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	logCore, logs := observer.New(zap.ErrorLevel)
	rec := &recorder{}
	c := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, zap.New(logCore))
	c.SetRecorder(rec)

	stats := c.StatsClose(context.Background(), "nasdaq_100", "AAPL", "2024-06-01_2024-06-10")

	assert.True(t, stats.IsEmpty())
	assert.Equal(t, core.DefaultStatsClose(), stats)
	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, []fetchRecord{{ResourceStats, OutcomeTimeout}}, rec.records)
}

func TestClient_StatsCloseRejectsInvalidInterval(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	rec := &recorder{}
	c := New(Config{BaseURL: srv.URL}, nil)
	c.SetRecorder(rec)

	for _, enc := range []interval.Encoding{"garbage", "2024-06-10_2024-06-01", ""} {
		stats := c.StatsClose(context.Background(), "nasdaq_100", "AAPL", enc)
		assert.True(t, stats.IsEmpty(), "interval %q", enc)
	}

	assert.Equal(t, 0, calls)
	assert.Len(t, rec.records, 3)
	assert.Equal(t, OutcomeRejected, rec.records[0].outcome)
}

func TestClient_NonOKStatusFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	rec := &recorder{}
	c := New(Config{BaseURL: srv.URL}, nil)
	c.SetRecorder(rec)

	list := c.NewsList(context.Background(), NewsQuery{IndexName: "nasdaq_100", KeyTicker: "AAPL", Size: 10})

	assert.Equal(t, core.DefaultNewsList(), list)
	assert.Equal(t, []fetchRecord{{ResourceNews, OutcomeError}}, rec.records)
}

func TestClient_NewsList(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/markets/news/nasdaq_100", r.URL.Path)
		got = map[string]string{
			"key_ticker":         r.URL.Query().Get("key_ticker"),
			"size":               r.URL.Query().Get("size"),
			"cursor":             r.URL.Query().Get("cursor"),
			"include_obj_images": r.URL.Query().Get("include_obj_images"),
		}
		w.Write([]byte(`{"items":[{"headline":"Apple beats","date":"2024-06-10","source":"wire","summary":"s"}],"cursor":"next-1"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil)
	list := c.NewsList(context.Background(), NewsQuery{
		IndexName:     "nasdaq_100",
		KeyTicker:     "AAPL",
		Size:          10,
		Cursor:        "c0",
		IncludeImages: true,
	})

	assert.Equal(t, map[string]string{
		"key_ticker":         "AAPL",
		"size":               "10",
		"cursor":             "c0",
		"include_obj_images": "true",
	}, got)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Apple beats", list.Items[0].Headline)
	assert.Equal(t, "next-1", list.Cursor)
}

func TestClient_NewsItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "abc", q.Get("id"))
		assert.Equal(t, "1", q.Get("size"))
		assert.Equal(t, "true", q.Get("include_text_content"))
		w.Write([]byte(`{"items":null,"cursor":""}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil)
	list := c.NewsItem(context.Background(), "nasdaq_100", "abc")

	assert.NotNil(t, list.Items)
	assert.Empty(t, list.Items)
}

func TestClient_DecodeErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil)
	stats := c.StatsClose(context.Background(), "nasdaq_100", "AAPL", "2024-06-01_2024-06-10")

	assert.True(t, stats.IsEmpty())
}

func TestClient_TickerDirectory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DirectoryPath, r.URL.Path)
		w.Write([]byte(`[{"key_ticker":"AAPL","index":"nasdaq_100","name":"Apple Inc."}]`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil)
	tickers, err := c.TickerDirectory(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []core.IndexedKeyTicker{{KeyTicker: "AAPL", Index: "nasdaq_100", Name: "Apple Inc."}}, tickers)
}

func TestClient_TickerDirectoryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil)
	_, err := c.TickerDirectory(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrFetchFailed)
}
