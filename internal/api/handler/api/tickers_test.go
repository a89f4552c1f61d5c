package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quaksai/marketsview/internal/core"
	"github.com/quaksai/marketsview/internal/directory"
)

type listSource []core.IndexedKeyTicker

func (l listSource) Tickers(ctx context.Context) ([]core.IndexedKeyTicker, error) {
	return l, nil
}

func TestTickersHandler_Get(t *testing.T) {
	dir := directory.New(listSource{{KeyTicker: "AAPL", Index: "nasdaq_100", Name: "Apple Inc."}}, nil)
	if err := dir.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	handler := NewTickersHandler(dir)

	w := httptest.NewRecorder()
	handler.Get(w, httptest.NewRequest("GET", "/api/v1/tickers/AAPL", nil), "AAPL")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.Get(w, httptest.NewRequest("GET", "/api/v1/tickers/ZZZZ", nil), "ZZZZ")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
