package handler

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/szytools/discount-label-service/internal/api"
	"github.com/szytools/discount-label-service/internal/models"
	"github.com/szytools/discount-label-service/internal/service"
)

// PrinterConnections is the printer connection manager as seen by the API
type PrinterConnections interface {
	Available() bool
	Scan(ctx context.Context) []models.ClassicPrinterDevice
	Connect(ctx context.Context, address, name string) error
	Disconnect(ctx context.Context) error
	CurrentInfo() models.ConnectionInfo
	LastKnownInfo(ctx context.Context) models.ConnectionInfo
}

// DeviceForgetter drops the remembered printer
type DeviceForgetter interface {
	ForgetLastPrinter(ctx context.Context) bool
}

// PrinterHandler handles printer-related requests
type PrinterHandler struct {
	printers PrinterConnections
	memory   DeviceForgetter
	prints   *service.PrintService
}

// NewPrinterHandler creates a new printer handler
func NewPrinterHandler(printers PrinterConnections, memory DeviceForgetter, prints *service.PrintService) *PrinterHandler {
	return &PrinterHandler{
		printers: printers,
		memory:   memory,
		prints:   prints,
	}
}

// PrinterStatus describes the printer connection
type PrinterStatus struct {
	Available bool                  `json:"available"`
	Connected bool                  `json:"connected"`
	Printer   models.ConnectionInfo `json:"printer"`
}

type testPrintRequest struct {
	Label    *models.DiscountLabelData `json:"label"`
	Settings *models.PrinterSettings   `json:"settings"`
}

type settingsRequest struct {
	WideLabel bool `json:"wide_label"`
}

// HandlePrinters handles requests under /printers
func (h *PrinterHandler) HandlePrinters(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r, "/printers")
	if len(parts) != 1 {
		api.NotFound(w)
		return
	}

	switch route := parts[0]; {
	case route == "scan" && r.Method == http.MethodGet:
		api.RespondJSON(w, http.StatusOK, h.printers.Scan(r.Context()))

	case route == "connect" && r.Method == http.MethodPost:
		h.connect(w, r)

	case route == "disconnect" && r.Method == http.MethodPost:
		if err := h.printers.Disconnect(r.Context()); err != nil {
			api.RespondError(w, err, "")
			return
		}
		api.RespondJSON(w, http.StatusOK, h.status())

	case route == "current" && r.Method == http.MethodGet:
		api.RespondJSON(w, http.StatusOK, h.status())

	case route == "last" && r.Method == http.MethodGet:
		api.RespondJSON(w, http.StatusOK, h.printers.LastKnownInfo(r.Context()))

	case route == "last" && r.Method == http.MethodDelete:
		if h.memory != nil {
			h.memory.ForgetLastPrinter(r.Context())
		}
		w.WriteHeader(http.StatusNoContent)

	case route == "test" && r.Method == http.MethodPost:
		h.testPrint(w, r)

	case route == "settings" && r.Method == http.MethodGet:
		api.RespondJSON(w, http.StatusOK, h.prints.Settings())

	case route == "settings" && r.Method == http.MethodPut:
		var req settingsRequest
		if err := decodeJSON(r, &req); err != nil {
			api.BadRequest(w, "Invalid request body")
			return
		}
		api.RespondJSON(w, http.StatusOK, h.prints.SetWideLabel(req.WideLabel))

	case route == "scan", route == "connect", route == "disconnect", route == "current",
		route == "last", route == "test", route == "settings":
		api.MethodNotAllowed(w)

	default:
		api.NotFound(w)
	}
}

func (h *PrinterHandler) connect(w http.ResponseWriter, r *http.Request) {
	var req models.ConnectRequest
	if err := decodeJSON(r, &req); err != nil {
		api.BadRequest(w, "Invalid request body")
		return
	}
	if req.Address == "" {
		api.BadRequest(w, "address is required")
		return
	}

	if err := h.printers.Connect(r.Context(), req.Address, req.Name); err != nil {
		api.RespondError(w, err, "Gagal menghubungkan printer.")
		return
	}
	api.RespondJSON(w, http.StatusOK, h.status())
}

func (h *PrinterHandler) testPrint(w http.ResponseWriter, r *http.Request) {
	var req testPrintRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			api.BadRequest(w, "Invalid request body")
			return
		}
	}
	l := sampleLabel()
	if req.Label != nil {
		l = *req.Label
	}

	result, err := h.prints.PrintLabel(r.Context(), l, req.Settings)
	if err != nil {
		api.RespondError(w, err, "")
		return
	}
	api.RespondJSON(w, http.StatusOK, result)
}

func (h *PrinterHandler) status() PrinterStatus {
	info := h.printers.CurrentInfo()
	return PrinterStatus{
		Available: h.printers.Available(),
		Connected: info.Connected(),
		Printer:   info,
	}
}

// sampleLabel is printed when a test print names no label.
func sampleLabel() models.DiscountLabelData {
	return models.DiscountLabelData{
		ProductName:   "TEST PRINT",
		InternalCode:  "000000",
		Barcode:       "1234567890",
		UnitLabel:     "1 PCS",
		Quantity:      decimal.NewFromInt(1),
		NormalPrice:   decimal.NewFromInt(10000),
		DiscountPrice: decimal.NewFromInt(7500),
	}
}
