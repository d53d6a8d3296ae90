package handler

import (
	"net/http"

	"github.com/szytools/discount-label-service/internal/api"
	"github.com/szytools/discount-label-service/internal/middleware"
	"github.com/szytools/discount-label-service/internal/websockets"
)

type WebSocketHandler struct {
	hub *websockets.Hub
}

func NewWebSocketHandler(hub *websockets.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
	}
}

// ServeHTTP upgrades an authenticated request to an event stream
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.GetUsername(r.Context())

	clientType := websockets.ClientType(r.URL.Query().Get("client_type"))
	if clientType == "" {
		clientType = websockets.ClientTypeOperator
	}
	if !clientType.Valid() {
		api.BadRequest(w, "invalid client_type")
		return
	}

	conn, err := websockets.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the error response
		return
	}

	websockets.ServeWs(h.hub, conn, username, clientType)
}
