package websockets

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/szytools/discount-label-service/internal/models"
)

const broadcastBuffer = 64

// Hub fans events out to every connected UI client.
type Hub struct {
	clients map[*Client]bool

	register chan *Client

	unregister chan *Client

	broadcast chan []byte

	// requests carries client messages that need a reply.
	requests chan request

	// done is closed when Run returns.
	done chan struct{}

	// welcome, when set, builds the message sent to each new client.
	welcome func() Message

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		requests:   make(chan request),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// SetWelcome sets the builder of the state sync sent to new clients. Call
// before Run.
func (h *Hub) SetWelcome(fn func() Message) {
	h.welcome = fn
}

// Notify publishes an event to all clients. It never blocks; events are
// dropped when the hub is saturated.
func (h *Hub) Notify(event string, data any) {
	msg, err := Encode(MessageType(event), data)
	if err != nil {
		h.logger.Error("failed to encode event", zap.String("event", event), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("event dropped, hub saturated", zap.String("event", event))
	}
}

// PrinterStatusChanged publishes connection changes from the printer manager.
func (h *Hub) PrinterStatusChanged(info models.ConnectionInfo, connected bool) {
	h.Notify(string(TypePrinterStatus), PrinterStatus{
		Connected: connected,
		Address:   info.Address,
		Name:      info.Name,
	})
}

// Run serves registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			if msg, ok := h.reply(TypeSync); ok {
				h.deliver(client, msg)
			}
		case client := <-h.unregister:
			h.evict(client)
		case req := <-h.requests:
			if !h.clients[req.client] {
				break
			}
			if msg, ok := h.reply(req.msgType); ok {
				h.deliver(req.client, msg)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				h.deliver(client, message)
			}
		}
	}
}

// request is a client message the hub answers on the client's behalf.
type request struct {
	client  *Client
	msgType MessageType
}

// reply builds the answer to a client message of type t.
func (h *Hub) reply(t MessageType) ([]byte, bool) {
	var msg Message
	switch t {
	case TypePing:
		msg = Message{Type: TypePong}
	case TypeSync:
		if h.welcome == nil {
			return nil, false
		}
		msg = h.welcome()
	default:
		return nil, false
	}
	b, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode reply", zap.String("type", string(t)), zap.Error(err))
		return nil, false
	}
	return b, true
}

// deliver queues message for client, evicting it when its buffer is full.
// Only Run calls it, so a client's send channel is never written after close.
func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.send <- message:
	default:
		h.logger.Warn("evicting slow client", zap.String("username", client.username))
		h.evict(client)
	}
}

func (h *Hub) evict(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}
