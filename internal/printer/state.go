package printer

import (
	"sync"
	"sync/atomic"

	"github.com/szytools/discount-label-service/internal/models"
)

// ConnectionState holds the identity of the single active printer connection.
// It is created once by the owner of the Manager and shared by reference.
type ConnectionState struct {
	mu      sync.RWMutex
	address string
	name    string

	connecting atomic.Bool
}

// NewConnectionState returns an empty, disconnected state.
func NewConnectionState() *ConnectionState {
	return &ConnectionState{}
}

// Info returns the current printer identity.
func (s *ConnectionState) Info() models.ConnectionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.ConnectionInfo{Address: s.address, Name: s.name}
}

// Connecting reports whether a connect attempt is in flight.
func (s *ConnectionState) Connecting() bool {
	return s.connecting.Load()
}

func (s *ConnectionState) set(address, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.address = address
	s.name = name
}

func (s *ConnectionState) clear() {
	s.set("", "")
}

// beginConnect claims the connect guard. It returns false when another
// attempt already holds it.
func (s *ConnectionState) beginConnect() bool {
	return s.connecting.CompareAndSwap(false, true)
}

func (s *ConnectionState) endConnect() {
	s.connecting.Store(false)
}
