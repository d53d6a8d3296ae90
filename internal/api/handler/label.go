package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/szytools/discount-label-service/internal/api"
	"github.com/szytools/discount-label-service/internal/models"
)

const defaultHistoryLimit = 50

// LabelLister lists printed labels
type LabelLister interface {
	ListRecent(ctx context.Context, outlet string, limit int) ([]models.PrintRecord, error)
}

// LabelHandler handles print history requests
type LabelHandler struct {
	history LabelLister
}

// NewLabelHandler creates a new label handler
func NewLabelHandler(history LabelLister) *LabelHandler {
	return &LabelHandler{history: history}
}

// HandleHistory lists recently printed labels, optionally for one outlet
func (h *LabelHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.MethodNotAllowed(w)
		return
	}

	limit := defaultHistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			api.BadRequest(w, "limit must be a positive number")
			return
		}
		limit = n
	}

	records, err := h.history.ListRecent(r.Context(), r.URL.Query().Get("outlet"), limit)
	if err != nil {
		api.RespondError(w, err, "")
		return
	}
	api.RespondJSON(w, http.StatusOK, records)
}
