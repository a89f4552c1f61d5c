package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/quaksai/marketsview/internal/api/middleware"
	"github.com/quaksai/marketsview/internal/api/session"
	"github.com/quaksai/marketsview/internal/core"
	"github.com/quaksai/marketsview/internal/directory"
	"github.com/quaksai/marketsview/internal/interval"
	"github.com/quaksai/marketsview/internal/markets"
	"github.com/quaksai/marketsview/internal/metrics"
	"github.com/quaksai/marketsview/internal/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMarkets struct{}

func (fakeMarkets) StatsClose(ctx context.Context, indexName, ticker string, enc interval.Encoding) core.StatsClose {
	return core.StatsClose{KeyTicker: ticker, MostRecentClose: 42}
}

func (fakeMarkets) NewsList(ctx context.Context, q markets.NewsQuery) core.NewsList {
	return core.DefaultNewsList()
}

func (fakeMarkets) NewsItem(ctx context.Context, indexName, id string) core.NewsList {
	return core.DefaultNewsList()
}

type tickerList []core.IndexedKeyTicker

func (l tickerList) Tickers(ctx context.Context) ([]core.IndexedKeyTicker, error) {
	return l, nil
}

func newTestServer(t *testing.T, apiKey string) *Server {
	t.Helper()

	dir := directory.New(tickerList{{KeyTicker: "AAPL", Index: "nasdaq_100", Name: "Apple Inc."}}, nil)
	require.NoError(t, dir.Load(context.Background()))

	deps := page.Deps{
		Stats:   fakeMarkets{},
		News:    fakeMarkets{},
		Tickers: dir,
		Clock:   interval.FixedClock(time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC)),
	}
	store := session.NewStore(10, time.Hour, func(id string) *page.Controller {
		return page.NewController(id, deps)
	}, nil)
	t.Cleanup(store.Close)

	reg := metrics.NewRegistry()
	srv, err := NewServer(Config{
		Host:           "localhost",
		Port:           0,
		APIKey:         apiKey,
		MetricsEnabled: true,
	}, Dependencies{
		Sessions: store,
		PageDeps: deps,
		Tickers:  dir,
		Metrics:  reg,
	}, zap.NewNop())
	require.NoError(t, err)
	return srv
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, "")

	w := serve(srv, httptest.NewRequest("GET", "/api/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(metrics.RequestIDHeader))
}

func TestServer_RequiresSessionStore(t *testing.T) {
	_, err := NewServer(Config{}, Dependencies{}, nil)
	assert.Error(t, err)
}

func TestServer_APIAuth_Required(t *testing.T) {
	srv := newTestServer(t, "test-key")

	w := serve(srv, httptest.NewRequest("GET", "/api/v1/sessions", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// health stays open
	w = serve(srv, httptest.NewRequest("GET", "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_APIAuth_ValidKey(t *testing.T) {
	srv := newTestServer(t, "test-key")

	req := httptest.NewRequest("GET", "/api/v1/sessions", nil)
	req.Header.Set(middleware.APIKeyHeader, "test-key")
	w := serve(srv, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_SessionLifecycle(t *testing.T) {
	srv := newTestServer(t, "")

	body := bytes.NewBufferString(`{"location": "https://quaks.ai/markets/stocks/AAPL"}`)
	w := serve(srv, httptest.NewRequest("POST", "/api/v1/sessions", body))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data page.State `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Data.SessionID
	require.NotEmpty(t, id)
	assert.Equal(t, "Apple Inc.", created.Data.CompanyName)

	w = serve(srv, httptest.NewRequest("POST", "/api/v1/sessions/"+id+"/interval", strings.NewReader(`{"days": 15}`)))
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(srv, httptest.NewRequest("GET", "/api/v1/sessions/"+id+"/share", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var share struct {
		Data struct {
			Title string `json:"title"`
			URL   string `json:"url"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &share))
	assert.Equal(t, "Stock Dashboard AAPL", share.Data.Title)
	assert.Equal(t, "https://quaks.ai/markets/stocks/AAPL?interval=2024-06-30_2024-07-14", share.Data.URL)

	w = serve(srv, httptest.NewRequest("DELETE", "/api/v1/sessions/"+id, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(srv, httptest.NewRequest("GET", "/api/v1/sessions/"+id, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// requests are labelled by route pattern, not by session id
	w = serve(srv, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `path="GET /api/v1/sessions/{id}"`)
	assert.NotContains(t, w.Body.String(), id)
}

func TestServer_StatelessRoutes(t *testing.T) {
	srv := newTestServer(t, "")

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"embed", "/api/v1/embed?ticker=AAPL&days=30", http.StatusOK},
		{"embed missing ticker", "/api/v1/embed", http.StatusBadRequest},
		{"embed tabs", "/api/v1/embed/tabs", http.StatusOK},
		{"share", "/api/v1/share?location=%2Fmarkets%2Fnews%2Frelated%2FAAPL", http.StatusOK},
		{"ticker", "/api/v1/tickers/AAPL", http.StatusOK},
		{"ticker case differs", "/api/v1/tickers/aapl", http.StatusNotFound},
		{"unknown ticker", "/api/v1/tickers/ZZZZ", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(srv, httptest.NewRequest("GET", tt.target, nil))
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}
