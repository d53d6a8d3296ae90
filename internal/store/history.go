package store

import (
	"context"
	"sync"

	"github.com/szytools/discount-label-service/internal/models"
)

// DefaultHistorySize is how many print records a MemoryHistory keeps.
const DefaultHistorySize = 500

// MemoryHistory keeps the most recent print records in process memory. It
// backs the history endpoint when no database is configured.
type MemoryHistory struct {
	mu      sync.RWMutex
	records []models.PrintRecord
	size    int
}

func NewMemoryHistory(size int) *MemoryHistory {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &MemoryHistory{size: size}
}

func (h *MemoryHistory) Insert(ctx context.Context, rec models.PrintRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, rec)
	if over := len(h.records) - h.size; over > 0 {
		h.records = append(h.records[:0:0], h.records[over:]...)
	}
	return nil
}

// ListRecent returns up to limit records, newest first. An empty outlet
// matches every outlet.
func (h *MemoryHistory) ListRecent(ctx context.Context, outlet string, limit int) ([]models.PrintRecord, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if limit <= 0 || limit > h.size {
		limit = h.size
	}
	out := []models.PrintRecord{}
	for i := len(h.records) - 1; i >= 0 && len(out) < limit; i-- {
		if outlet == "" || h.records[i].Outlet == outlet {
			out = append(out, h.records[i])
		}
	}
	return out, nil
}
