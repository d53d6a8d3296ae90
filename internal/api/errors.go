package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/szytools/discount-label-service/internal/barcode"
	"github.com/szytools/discount-label-service/internal/lookup"
	"github.com/szytools/discount-label-service/internal/printer"
	"github.com/szytools/discount-label-service/internal/service"
)

// ErrorResponse is the body of every failed request. Message is the
// operator-facing text, when there is one.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func BadRequest(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusBadRequest, ErrorResponse{Error: message})
}

func MethodNotAllowed(w http.ResponseWriter) {
	RespondJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
}

func NotFound(w http.ResponseWriter) {
	RespondJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found"})
}

// RespondJSON writes v as JSON with the given status.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// RespondError writes err with the status StatusFor picks. message may be empty.
func RespondError(w http.ResponseWriter, err error, message string) {
	RespondJSON(w, StatusFor(err), ErrorResponse{Error: err.Error(), Message: message})
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	var (
		unsupported *barcode.UnsupportedCharacterError
		digitPair   *barcode.InvalidDigitPairError
		invalidCfg  *service.InvalidConfigError
		recordErr   *service.DiscountRecordFailedError
		netErr      *lookup.NetworkError
	)

	switch {
	case errors.Is(err, barcode.ErrEmptyInput),
		errors.As(err, &unsupported),
		errors.As(err, &digitPair),
		errors.As(err, &invalidCfg),
		errors.Is(err, service.ErrConfigNotSet),
		errors.Is(err, service.ErrEmptyCode):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, printer.ErrNotConnected):
		return http.StatusConflict
	case errors.As(err, &recordErr),
		errors.As(err, &netErr):
		return http.StatusBadGateway
	case errors.Is(err, printer.ErrPeripheralUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
