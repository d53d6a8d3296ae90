package handler

import (
	"net/http"

	"github.com/szytools/discount-label-service/internal/api"
	"github.com/szytools/discount-label-service/internal/barcode"
)

type encodeRequest struct {
	Value string      `json:"value"`
	Set   barcode.Set `json:"set"`
}

type encodeResponse struct {
	Encoding barcode.Encoding `json:"encoding"`
	Checksum int              `json:"checksum"`
	Modules  []int            `json:"modules"`
}

// HandleEncode encodes a value as Code 128 for on-screen rendering
func HandleEncode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.MethodNotAllowed(w)
		return
	}

	var req encodeRequest
	if err := decodeJSON(r, &req); err != nil {
		api.BadRequest(w, "Invalid request body")
		return
	}
	switch req.Set {
	case "", barcode.SetA, barcode.SetB, barcode.SetC:
	default:
		api.BadRequest(w, "set must be A, B or C")
		return
	}

	enc, err := barcode.Encode(req.Value, req.Set)
	if err != nil {
		api.RespondError(w, err, "")
		return
	}
	api.RespondJSON(w, http.StatusOK, encodeResponse{
		Encoding: enc,
		Checksum: enc.Checksum(),
		Modules:  barcode.Modules(enc),
	})
}
