package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/quaksai/marketsview/internal/api/response"
	"github.com/quaksai/marketsview/internal/core"
	"github.com/quaksai/marketsview/internal/dashboard"
	"github.com/quaksai/marketsview/internal/viewstate"
)

// EmbedHandler builds dashboard embed URLs without a session.
type EmbedHandler struct {
	descriptor *dashboard.Descriptor
	deriver    viewstate.Deriver
}

// NewEmbedHandler creates a new embed handler.
func NewEmbedHandler(d *dashboard.Descriptor, deriver viewstate.Deriver) *EmbedHandler {
	return &EmbedHandler{descriptor: d, deriver: deriver}
}

// EmbedResult is the response body of Get.
type EmbedResult struct {
	Ticker      string               `json:"ticker"`
	Tab         dashboard.Tab        `json:"tab"`
	DashboardID string               `json:"dashboard_id"`
	URL         dashboard.TrustedURL `json:"url"`
}

// Get handles GET /api/v1/embed?ticker=&tab=&days=&interval=.
func (h *EmbedHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	ticker := q.Get("ticker")
	if ticker == "" {
		response.FromError(w, core.WrapError(core.ErrInvalidRequest, errors.New("ticker is required")))
		return
	}

	days := h.deriver.DefaultDays
	if raw := q.Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.FromError(w, core.WrapError(core.ErrInvalidRequest, errors.New("days must be a positive integer")))
			return
		}
		days = n
	}

	tab := dashboard.Tab(q.Get("tab"))
	if tab == "" {
		tab = h.descriptor.DefaultTab()
	}
	id, resolved := h.descriptor.Resolve(tab)

	snap := viewstate.Snapshot{
		PathParams: map[string]string{viewstate.ParamKeyTicker: ticker},
		Query:      q,
	}
	params := h.deriver.Derive(snap, viewstate.Selection{Days: days, Tab: string(resolved)})

	response.JSON(w, http.StatusOK, EmbedResult{
		Ticker:      ticker,
		Tab:         resolved,
		DashboardID: id,
		URL:         h.descriptor.BuildEmbedURL(ticker, params, resolved),
	})
}

// TabInfo describes one dashboard tab.
type TabInfo struct {
	Tab          dashboard.Tab `json:"tab"`
	HasDashboard bool          `json:"has_dashboard"`
	Default      bool          `json:"default"`
}

// Tabs handles GET /api/v1/embed/tabs. Tabs without their own dashboard
// render the default one.
func (h *EmbedHandler) Tabs(w http.ResponseWriter, r *http.Request) {
	tabs := make([]TabInfo, 0, len(dashboard.Tabs))
	for _, tab := range dashboard.Tabs {
		tabs = append(tabs, TabInfo{
			Tab:          tab,
			HasDashboard: h.descriptor.Has(tab),
			Default:      tab == h.descriptor.DefaultTab(),
		})
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"tabs":  tabs,
		"count": len(tabs),
	})
}
