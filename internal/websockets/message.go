package websockets

import (
	"encoding/json"
	"fmt"
)

type MessageType string

const (
	TypeSessionUpdated MessageType = "session.updated"
	TypeItemAdded      MessageType = "item.added"
	TypeItemRemoved    MessageType = "item.removed"
	TypePrinterStatus  MessageType = "printer.status"
	TypeLabelPrinted   MessageType = "label.printed"
	TypeSync           MessageType = "sync"
	TypeError          MessageType = "error"
	TypePing           MessageType = "ping"
	TypePong           MessageType = "pong"
)

type ClientType string

const (
	ClientTypeOperator ClientType = "operator"
	ClientTypeMonitor  ClientType = "monitor"
)

// Valid reports whether t is a known client type.
func (t ClientType) Valid() bool {
	return t == ClientTypeOperator || t == ClientTypeMonitor
}

type Message struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// PrinterStatus is the payload of printer.status events.
type PrinterStatus struct {
	Connected bool   `json:"connected"`
	Address   string `json:"address"`
	Name      string `json:"name"`
}

// NewMessage wraps data in a message of type t.
func NewMessage(t MessageType, data any) (Message, error) {
	msg := Message{Type: t}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return Message{}, fmt.Errorf("failed to marshal %s data: %w", t, err)
		}
		msg.Data = raw
	}
	return msg, nil
}

// Encode returns the wire form of a message of type t carrying data.
func Encode(t MessageType, data any) ([]byte, error) {
	msg, err := NewMessage(t, data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(msg)
}
