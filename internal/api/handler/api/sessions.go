package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/quaksai/marketsview/internal/api/response"
	"github.com/quaksai/marketsview/internal/api/session"
	"github.com/quaksai/marketsview/internal/core"
	"github.com/quaksai/marketsview/internal/page"
	"go.uber.org/zap"
)

// SessionStore defines the interface needed from session.Store.
type SessionStore interface {
	Create() *page.Controller
	Get(id string) (*page.Controller, error)
	Delete(id string) error
	List() []session.Info
}

// SessionsHandler handles page session API requests.
type SessionsHandler struct {
	store  SessionStore
	logger *zap.Logger
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(store SessionStore, logger *zap.Logger) *SessionsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionsHandler{store: store, logger: logger}
}

// CreateRequest optionally navigates the new session right away.
type CreateRequest struct {
	Location string `json:"location,omitempty"`
}

// NavigateRequest is the body of a navigation event.
type NavigateRequest struct {
	Location string `json:"location"`
}

// IntervalRequest selects a relative interval.
type IntervalRequest struct {
	Days int `json:"days"`
}

// TabRequest selects a dashboard tab.
type TabRequest struct {
	Tab string `json:"tab"`
}

// Create starts a session.
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := decode(r, &req, true); err != nil {
		response.FromError(w, err)
		return
	}

	ctrl := h.store.Create()
	if req.Location != "" {
		if err := ctrl.Navigate(req.Location); err != nil {
			if derr := h.store.Delete(ctrl.ID()); derr != nil {
				h.logger.Debug("removing failed session",
					zap.String("session", ctrl.ID()),
					zap.Error(derr),
				)
			}
			response.FromError(w, err)
			return
		}
	}

	h.logger.Debug("session created", zap.String("session", ctrl.ID()))
	response.JSON(w, http.StatusCreated, ctrl.State())
}

// List returns live sessions.
func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions := h.store.List()
	response.JSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// Get returns the session state.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	ctrl, err := h.store.Get(id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, ctrl.State())
}

// Navigate delivers a completed navigation to the session.
func (h *SessionsHandler) Navigate(w http.ResponseWriter, r *http.Request, id string) {
	var req NavigateRequest
	if err := decode(r, &req, false); err != nil {
		response.FromError(w, err)
		return
	}
	if req.Location == "" {
		response.FromError(w, core.WrapError(core.ErrInvalidRequest, errors.New("location is required")))
		return
	}

	h.withSession(w, id, func(ctrl *page.Controller) error {
		return ctrl.Navigate(req.Location)
	})
}

// SetInterval selects a relative interval in days.
func (h *SessionsHandler) SetInterval(w http.ResponseWriter, r *http.Request, id string) {
	var req IntervalRequest
	if err := decode(r, &req, false); err != nil {
		response.FromError(w, err)
		return
	}

	h.withSession(w, id, func(ctrl *page.Controller) error {
		return ctrl.SetIntervalDays(req.Days)
	})
}

// SetTab selects the dashboard tab.
func (h *SessionsHandler) SetTab(w http.ResponseWriter, r *http.Request, id string) {
	var req TabRequest
	if err := decode(r, &req, false); err != nil {
		response.FromError(w, err)
		return
	}

	h.withSession(w, id, func(ctrl *page.Controller) error {
		return ctrl.SetTab(req.Tab)
	})
}

// NextNews requests the next page of related news.
func (h *SessionsHandler) NextNews(w http.ResponseWriter, r *http.Request, id string) {
	ctrl, err := h.store.Get(id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusAccepted, map[string]any{
		"requested": ctrl.NextNews(),
	})
}

// EmbedLoaded reports that the embedded dashboard finished loading.
func (h *SessionsHandler) EmbedLoaded(w http.ResponseWriter, r *http.Request, id string) {
	ctrl, err := h.store.Get(id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"styled": ctrl.EmbedLoaded(r.Context()),
	})
}

// Share returns the current share link.
func (h *SessionsHandler) Share(w http.ResponseWriter, r *http.Request, id string) {
	ctrl, err := h.store.Get(id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, ctrl.Session().Registry.Current())
}

// Delete tears the session down.
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Delete(id); err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"id":      id,
		"deleted": true,
	})
}

func (h *SessionsHandler) withSession(w http.ResponseWriter, id string, fn func(*page.Controller) error) {
	ctrl, err := h.store.Get(id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	if err := fn(ctrl); err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, ctrl.State())
}

func decode(r *http.Request, v any, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return nil
	}
	return core.WrapError(core.ErrInvalidRequest, err)
}
