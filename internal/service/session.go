package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/szytools/discount-label-service/internal/lookup"
	"github.com/szytools/discount-label-service/internal/models"
)

// Events published to the Notifier.
const (
	EventSessionUpdated = "session.updated"
	EventItemAdded      = "item.added"
	EventItemRemoved    = "item.removed"
	EventPrinterStatus  = "printer.status"
	EventLabelPrinted   = "label.printed"
	EventError          = "error"
)

// Operator-facing messages kept in the session error state.
const (
	MsgConfigNotSet    = "Config discount belum di-set. Silakan set config terlebih dahulu."
	MsgProductNotFound = "Produk tidak ditemukan."
	MsgScanFailed      = "Gagal scan produk"
)

var (
	// ErrConfigNotSet means a scan was attempted before any discount config.
	ErrConfigNotSet = errors.New("discount config is not set")
	// ErrProductNotFound means the lookup found no product for the code.
	ErrProductNotFound = lookup.ErrProductNotFound
	// ErrItemNotFound means no worklist item has the given id.
	ErrItemNotFound = errors.New("discount item not found")
	// ErrEmptyCode means a scan was attempted with a blank code.
	ErrEmptyCode = errors.New("product code is required")
)

// InvalidConfigError reports a rejected discount config.
type InvalidConfigError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid discount config: %s %s", e.Field, e.Reason)
}

// ProductLookup resolves a scanned code to a product.
type ProductLookup interface {
	ScanProduct(ctx context.Context, req lookup.ScanRequest) (models.ProductDetail, error)
}

// Notifier receives session and printer events for connected UI clients.
type Notifier interface {
	Notify(event string, data any)
}

// SessionSnapshot is a consistent copy of the session state.
type SessionSnapshot struct {
	Config    *models.DiscountConfig `json:"config"`
	Items     []models.DiscountItem  `json:"items"`
	IsLoading bool                   `json:"is_loading"`
	Error     *string                `json:"error"`
}

// Session is the discount worklist: the active config and the scanned items,
// newest first.
type Session struct {
	mu       sync.RWMutex
	config   *models.DiscountConfig
	items    []models.DiscountItem
	inFlight int
	errMsg   string

	lookup   ProductLookup
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewSession creates an empty session. notifier may be nil.
func NewSession(products ProductLookup, notifier Notifier, logger *zap.Logger) *Session {
	return &Session{
		items:    []models.DiscountItem{},
		lookup:   products,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// UpdateConfig replaces the discount config.
func (s *Session) UpdateConfig(cfg models.DiscountConfig) error {
	cfg.Outlet = strings.TrimSpace(cfg.Outlet)
	cfg.DiscountPercent = strings.TrimSpace(cfg.DiscountPercent)
	cfg.Description = strings.TrimSpace(cfg.Description)

	if cfg.Outlet == "" {
		return &InvalidConfigError{Field: "outlet", Reason: "is required"}
	}
	if _, err := decimal.NewFromString(cfg.DiscountPercent); err != nil {
		return &InvalidConfigError{Field: "discount_percent", Reason: "must be a number"}
	}

	s.mu.Lock()
	s.config = &cfg
	s.mu.Unlock()

	s.logger.Info("discount config updated",
		zap.String("outlet", cfg.Outlet),
		zap.String("discount_percent", cfg.DiscountPercent))
	s.notify(EventSessionUpdated, s.Snapshot())
	return nil
}

// Config returns the active config.
func (s *Session) Config() (models.DiscountConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.config == nil {
		return models.DiscountConfig{}, false
	}
	return *s.config, true
}

// ScanAndAdd looks code up and prepends the product to the worklist. On
// failure nothing is added and the operator message is kept in the session.
func (s *Session) ScanAndAdd(ctx context.Context, code string) (models.DiscountItem, error) {
	s.mu.Lock()
	if s.config == nil {
		s.errMsg = MsgConfigNotSet
		s.mu.Unlock()
		s.notify(EventError, MsgConfigNotSet)
		return models.DiscountItem{}, ErrConfigNotSet
	}
	code = strings.TrimSpace(code)
	if code == "" {
		s.mu.Unlock()
		return models.DiscountItem{}, ErrEmptyCode
	}
	cfg := *s.config
	s.inFlight++
	s.errMsg = ""
	s.mu.Unlock()

	detail, err := s.lookup.ScanProduct(ctx, lookup.ScanRequest{
		Code:     code,
		Outlet:   cfg.Outlet,
		Discount: cfg.DiscountPercent,
	})

	s.mu.Lock()
	s.inFlight--
	if err != nil {
		msg := scanErrorMessage(err)
		s.errMsg = msg
		s.mu.Unlock()

		s.logger.Warn("scan failed", zap.String("code", code), zap.Error(err))
		s.notify(EventError, msg)
		return models.DiscountItem{}, err
	}

	item := models.DiscountItem{
		ID:        s.nextID(code),
		Code:      code,
		Detail:    detail,
		CreatedAt: s.now(),
	}
	s.items = append([]models.DiscountItem{item}, s.items...)
	s.mu.Unlock()

	s.logger.Info("item added", zap.String("id", item.ID), zap.String("internal", detail.Internal))
	s.notify(EventItemAdded, item)
	return item, nil
}

// RemoveItem drops the item with id. It reports whether an item was removed.
func (s *Session) RemoveItem(id string) bool {
	s.mu.Lock()
	removed := false
	for i, it := range s.items {
		if it.ID == id {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			removed = true
			break
		}
	}
	s.mu.Unlock()

	if removed {
		s.notify(EventItemRemoved, id)
	}
	return removed
}

// ClearItems empties the worklist.
func (s *Session) ClearItems() {
	s.mu.Lock()
	s.items = []models.DiscountItem{}
	s.mu.Unlock()
	s.notify(EventSessionUpdated, s.Snapshot())
}

// Item returns the worklist item with id.
func (s *Session) Item(id string) (models.DiscountItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return models.DiscountItem{}, false
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := SessionSnapshot{
		Items:     append([]models.DiscountItem{}, s.items...),
		IsLoading: s.inFlight > 0,
	}
	if s.config != nil {
		cfg := *s.config
		snap.Config = &cfg
	}
	if s.errMsg != "" {
		msg := s.errMsg
		snap.Error = &msg
	}
	return snap
}

// IsLoading reports whether any scan is in flight.
func (s *Session) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

// LastError returns the operator message of the most recent failure.
func (s *Session) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// SetError records an operator message, e.g. from a failed print.
func (s *Session) SetError(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()
	s.notify(EventError, msg)
}

// ClearError drops the stored operator message.
func (s *Session) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
}

// nextID returns code-millis, bumped until unique. Caller holds mu.
func (s *Session) nextID(code string) string {
	ms := s.now().UnixMilli()
	for {
		id := fmt.Sprintf("%s-%d", code, ms)
		taken := false
		for _, it := range s.items {
			if it.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
		ms++
	}
}

func (s *Session) notify(event string, data any) {
	if s.notifier != nil {
		s.notifier.Notify(event, data)
	}
}

func scanErrorMessage(err error) string {
	if errors.Is(err, lookup.ErrProductNotFound) {
		return MsgProductNotFound
	}
	var netErr *lookup.NetworkError
	if errors.As(err, &netErr) && netErr.Message != "" {
		return netErr.Message
	}
	return MsgScanFailed
}
