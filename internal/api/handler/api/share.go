package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/quaksai/marketsview/internal/api/response"
	"github.com/quaksai/marketsview/internal/core"
	"github.com/quaksai/marketsview/internal/page"
	"github.com/quaksai/marketsview/internal/viewstate"
)

// Previewer defines the interface needed from page.Deps.
type Previewer interface {
	Preview(location string, sel viewstate.Selection) (page.Preview, error)
}

// ShareHandler computes share links for a location without a session.
type ShareHandler struct {
	previewer Previewer
}

// NewShareHandler creates a new share handler.
func NewShareHandler(p Previewer) *ShareHandler {
	return &ShareHandler{previewer: p}
}

// Get handles GET /api/v1/share?location=&days=&tab=.
func (h *ShareHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	location := q.Get("location")
	if location == "" {
		response.FromError(w, core.WrapError(core.ErrInvalidRequest, errors.New("location is required")))
		return
	}

	sel := viewstate.Selection{Tab: q.Get("tab")}
	if raw := q.Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.FromError(w, core.WrapError(core.ErrInvalidRequest, errors.New("days must be a positive integer")))
			return
		}
		sel.Days = n
	}

	pv, err := h.previewer.Preview(location, sel)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, pv)
}
