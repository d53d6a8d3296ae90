package handler

import (
	"net/http"

	"github.com/szytools/discount-label-service/internal/api"
	"github.com/szytools/discount-label-service/internal/middleware"
	"github.com/szytools/discount-label-service/internal/models"
	"github.com/szytools/discount-label-service/internal/service"
)

// SessionHandler handles the discount worklist
type SessionHandler struct {
	session *service.Session
	prints  *service.PrintService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(session *service.Session, prints *service.PrintService) *SessionHandler {
	return &SessionHandler{
		session: session,
		prints:  prints,
	}
}

type scanRequest struct {
	Code string `json:"code"`
}

// HandleSession handles requests under /session
func (h *SessionHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r, "/session")

	switch {
	case len(parts) == 0:
		if r.Method != http.MethodGet {
			api.MethodNotAllowed(w)
			return
		}
		api.RespondJSON(w, http.StatusOK, h.session.Snapshot())

	case len(parts) == 1 && parts[0] == "config":
		h.handleConfig(w, r)

	case len(parts) == 1 && parts[0] == "error":
		if r.Method != http.MethodDelete {
			api.MethodNotAllowed(w)
			return
		}
		h.session.ClearError()
		w.WriteHeader(http.StatusNoContent)

	case len(parts) == 1 && parts[0] == "items":
		h.handleItems(w, r)

	case len(parts) == 2 && parts[0] == "items":
		h.handleItem(w, r, parts[1])

	case len(parts) == 3 && parts[0] == "items" && parts[2] == "label":
		if r.Method != http.MethodGet {
			api.MethodNotAllowed(w)
			return
		}
		h.previewLabel(w, r, parts[1])

	case len(parts) == 3 && parts[0] == "items" && parts[2] == "print":
		if r.Method != http.MethodPost {
			api.MethodNotAllowed(w)
			return
		}
		h.printItem(w, r, parts[1])

	default:
		api.NotFound(w)
	}
}

func (h *SessionHandler) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cfg, ok := h.session.Config()
		if !ok {
			api.RespondJSON(w, http.StatusOK, struct {
				Config *models.DiscountConfig `json:"config"`
			}{})
			return
		}
		api.RespondJSON(w, http.StatusOK, struct {
			Config *models.DiscountConfig `json:"config"`
		}{Config: &cfg})

	case http.MethodPost, http.MethodPut:
		var cfg models.DiscountConfig
		if err := decodeJSON(r, &cfg); err != nil {
			api.BadRequest(w, "Invalid request body")
			return
		}
		if err := h.session.UpdateConfig(cfg); err != nil {
			api.RespondError(w, err, "")
			return
		}
		api.RespondJSON(w, http.StatusOK, h.session.Snapshot())

	default:
		api.MethodNotAllowed(w)
	}
}

func (h *SessionHandler) handleItems(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		api.RespondJSON(w, http.StatusOK, h.session.Snapshot().Items)

	case http.MethodPost:
		var req scanRequest
		if err := decodeJSON(r, &req); err != nil {
			api.BadRequest(w, "Invalid request body")
			return
		}
		item, err := h.session.ScanAndAdd(r.Context(), req.Code)
		if err != nil {
			api.RespondError(w, err, h.session.LastError())
			return
		}
		api.RespondJSON(w, http.StatusCreated, item)

	case http.MethodDelete:
		h.session.ClearItems()
		w.WriteHeader(http.StatusNoContent)

	default:
		api.MethodNotAllowed(w)
	}
}

func (h *SessionHandler) handleItem(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		item, ok := h.session.Item(id)
		if !ok {
			api.RespondError(w, service.ErrItemNotFound, "")
			return
		}
		api.RespondJSON(w, http.StatusOK, item)

	case http.MethodDelete:
		if !h.session.RemoveItem(id) {
			api.RespondError(w, service.ErrItemNotFound, "")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		api.MethodNotAllowed(w)
	}
}

func (h *SessionHandler) previewLabel(w http.ResponseWriter, r *http.Request, id string) {
	preview, err := h.prints.Preview(id)
	if err != nil {
		api.RespondError(w, err, "")
		return
	}
	api.RespondJSON(w, http.StatusOK, preview)
}

func (h *SessionHandler) printItem(w http.ResponseWriter, r *http.Request, id string) {
	username, _ := middleware.GetUsername(r.Context())

	result, err := h.prints.PrintItem(r.Context(), id, username)
	if err != nil {
		api.RespondError(w, err, h.session.LastError())
		return
	}
	api.RespondJSON(w, http.StatusOK, result)
}
