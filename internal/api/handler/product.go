package handler

import (
	"context"
	"net/http"

	"github.com/szytools/discount-label-service/internal/api"
	"github.com/szytools/discount-label-service/internal/models"
)

// ProductCatalog reads products and outlets from the tools backend
type ProductCatalog interface {
	ProductInfo(ctx context.Context, outlet, internal string) (models.ProductDetail, error)
	Outlets(ctx context.Context) ([]map[string]any, error)
}

// ProductHandler handles product and outlet lookups
type ProductHandler struct {
	catalog ProductCatalog
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalog ProductCatalog) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// HandleOutlets lists the outlets a discount can be configured for
func (h *ProductHandler) HandleOutlets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.MethodNotAllowed(w)
		return
	}

	outlets, err := h.catalog.Outlets(r.Context())
	if err != nil {
		api.RespondError(w, err, "")
		return
	}
	api.RespondJSON(w, http.StatusOK, outlets)
}

// HandleProducts serves GET /products/{outlet}/{internal}
func (h *ProductHandler) HandleProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.MethodNotAllowed(w)
		return
	}
	parts := pathParts(r, "/products")
	if len(parts) != 2 {
		api.NotFound(w)
		return
	}

	detail, err := h.catalog.ProductInfo(r.Context(), parts[0], parts[1])
	if err != nil {
		api.RespondError(w, err, "")
		return
	}
	api.RespondJSON(w, http.StatusOK, detail)
}
