package websockets

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// Upgrader is the WebSocket upgrader configuration
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     SameHostOrLAN,
	Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
		http.Error(w, reason.Error(), status)
	},
}

// SameHostOrLAN accepts requests without an Origin, from the serving host, or
// from a private network address. Label stations are only reached on the
// shop's LAN.
func SameHostOrLAN(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if strings.EqualFold(u.Host, r.Host) || host == "localhost" || host == "127.0.0.1" {
		return true
	}
	return strings.HasPrefix(host, "192.168.") || strings.HasPrefix(host, "10.")
}

// SetCheckOrigin updates the CheckOrigin function
func SetCheckOrigin(checkOrigin func(r *http.Request) bool) {
	Upgrader.CheckOrigin = checkOrigin
}
