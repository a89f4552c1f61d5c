package api

import (
	"net/http"

	"github.com/quaksai/marketsview/internal/api/response"
	"github.com/quaksai/marketsview/internal/core"
)

// TickerLookup defines the interface needed from directory.Directory.
type TickerLookup interface {
	Find(keyTicker string) (core.IndexedKeyTicker, error)
}

// TickersHandler serves ticker directory lookups.
type TickersHandler struct {
	dir TickerLookup
}

// NewTickersHandler creates a new tickers handler.
func NewTickersHandler(dir TickerLookup) *TickersHandler {
	return &TickersHandler{dir: dir}
}

// Get returns the directory entry for keyTicker.
func (h *TickersHandler) Get(w http.ResponseWriter, r *http.Request, keyTicker string) {
	t, err := h.dir.Find(keyTicker)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, t)
}
