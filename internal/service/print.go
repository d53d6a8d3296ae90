package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/szytools/discount-label-service/internal/barcode"
	"github.com/szytools/discount-label-service/internal/label"
	"github.com/szytools/discount-label-service/internal/lookup"
	"github.com/szytools/discount-label-service/internal/models"
	"github.com/szytools/discount-label-service/internal/printer"
)

// Operator-facing print messages.
const (
	MsgPrinterNotConnected = "Printer belum terhubung."
	MsgRecordFailed        = "Gagal menyimpan data diskon."
	MsgPrintFailed         = "Gagal mencetak label."
)

// DiscountRecordFailedError means the discount could not be registered, so
// the label was not printed.
type DiscountRecordFailedError struct {
	Err error
}

func (e *DiscountRecordFailedError) Error() string {
	return fmt.Sprintf("failed to record discount: %v", e.Err)
}

func (e *DiscountRecordFailedError) Unwrap() error {
	return e.Err
}

// PrinterManager is the part of the connection manager used for printing.
type PrinterManager interface {
	Available() bool
	CurrentInfo() models.ConnectionInfo
	Execute(ctx context.Context, cmds []printer.Command) error
}

// DiscountRegistrar records a discount with the backend.
type DiscountRegistrar interface {
	CreateDiscount(ctx context.Context, p models.CreateDiscountPayload) error
}

// LabelHistory stores printed labels.
type LabelHistory interface {
	Insert(ctx context.Context, rec models.PrintRecord) error
}

// PrintResult tells whether a label reached the printer.
type PrintResult struct {
	Printed bool                `json:"printed"`
	Record  *models.PrintRecord `json:"record,omitempty"`
}

// LabelPreview is what the operator sees for an item before printing.
type LabelPreview struct {
	Label     models.DiscountLabelData `json:"label"`
	Headline  string                   `json:"headline"`
	PriceLine string                   `json:"price_line"`
	Encoding  barcode.Encoding         `json:"barcode_encoding"`
	Modules   []int                    `json:"modules"`
}

// PrintService turns worklist items into printed labels
type PrintService struct {
	session   *Session
	printers  PrinterManager
	registrar DiscountRegistrar
	history   LabelHistory
	devices   *DeviceIDService
	notifier  Notifier
	logger    *zap.Logger

	mu       sync.RWMutex
	settings models.PrinterSettings

	now func() time.Time
}

// NewPrintService creates a print service. history and notifier may be nil.
func NewPrintService(
	session *Session,
	printers PrinterManager,
	registrar DiscountRegistrar,
	history LabelHistory,
	devices *DeviceIDService,
	notifier Notifier,
	settings models.PrinterSettings,
	logger *zap.Logger,
) *PrintService {
	return &PrintService{
		session:   session,
		printers:  printers,
		registrar: registrar,
		history:   history,
		devices:   devices,
		notifier:  notifier,
		settings:  settings,
		logger:    logger,
		now:       time.Now,
	}
}

// Settings returns the label layout settings
func (s *PrintService) Settings() models.PrinterSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetWideLabel switches between 58mm and 88mm label layout
func (s *PrintService) SetWideLabel(wide bool) models.PrinterSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = s.settings.WithWideLabel(wide)
	return s.settings
}

// Preview derives the label of a worklist item
func (s *PrintService) Preview(itemID string) (LabelPreview, error) {
	item, ok := s.session.Item(itemID)
	if !ok {
		return LabelPreview{}, ErrItemNotFound
	}
	l := label.FromItem(item)
	job, err := label.PrepareJob(l, s.Settings())
	if err != nil {
		return LabelPreview{}, err
	}
	return LabelPreview{
		Label:     l,
		Headline:  label.Headline(l.NormalPrice, l.DiscountPrice),
		PriceLine: label.PriceLine(l.NormalPrice, l.DiscountPrice),
		Encoding:  job.BarcodeEncoding,
		Modules:   barcode.Modules(job.BarcodeEncoding),
	}, nil
}

// PrintItem registers the discount for a worklist item and prints its label.
// Registration must succeed before anything is sent to the printer.
func (s *PrintService) PrintItem(ctx context.Context, itemID, username string) (PrintResult, error) {
	item, ok := s.session.Item(itemID)
	if !ok {
		return PrintResult{}, ErrItemNotFound
	}
	cfg, ok := s.session.Config()
	if !ok {
		s.session.SetError(MsgConfigNotSet)
		return PrintResult{}, ErrConfigNotSet
	}

	l := label.FromItem(item)
	job, err := label.PrepareJob(l, s.Settings())
	if err != nil {
		return PrintResult{}, fmt.Errorf("failed to prepare label: %w", err)
	}

	if !s.printers.Available() {
		s.logger.Warn("label not printed", zap.String("item", itemID), zap.Error(printer.ErrPeripheralUnavailable))
		return PrintResult{Printed: false}, nil
	}
	info := s.printers.CurrentInfo()
	if !info.Connected() {
		s.session.SetError(MsgPrinterNotConnected)
		return PrintResult{}, printer.ErrNotConnected
	}

	payload, err := s.discountPayload(ctx, item, l, cfg, username)
	if err != nil {
		return PrintResult{}, err
	}
	if err := s.registrar.CreateDiscount(ctx, payload); err != nil {
		s.session.SetError(recordErrorMessage(err))
		s.logger.Error("discount registration failed, label not printed",
			zap.String("item", itemID), zap.Error(err))
		return PrintResult{}, &DiscountRecordFailedError{Err: err}
	}

	if err := s.printers.Execute(ctx, label.BuildCommands(job)); err != nil {
		s.session.SetError(MsgPrintFailed)
		return PrintResult{}, fmt.Errorf("failed to print label: %w", err)
	}

	rec := models.PrintRecord{
		ID:            uuid.New(),
		ItemCode:      item.Code,
		Internal:      l.InternalCode,
		ProductName:   l.ProductName,
		Barcode:       l.Barcode,
		UnitLabel:     l.UnitLabel,
		Outlet:        cfg.Outlet,
		NormalPrice:   l.NormalPrice,
		DiscountPrice: l.DiscountPrice,
		DeviceID:      payload.DeviceID,
		PrinterAddr:   info.Address,
		PrintedAt:     s.now().UTC(),
	}
	if s.history != nil {
		if err := s.history.Insert(ctx, rec); err != nil {
			s.logger.Warn("failed to store print history", zap.String("item", itemID), zap.Error(err))
		}
	}

	s.logger.Info("label printed",
		zap.String("item", itemID),
		zap.String("barcode", l.Barcode),
		zap.String("printer", info.Address))
	if s.notifier != nil {
		s.notifier.Notify(EventLabelPrinted, rec)
	}
	return PrintResult{Printed: true, Record: &rec}, nil
}

// PrintLabel prints a label without registering a discount, for test prints.
func (s *PrintService) PrintLabel(ctx context.Context, l models.DiscountLabelData, settings *models.PrinterSettings) (PrintResult, error) {
	st := s.Settings()
	if settings != nil {
		st = *settings
	}
	job, err := label.PrepareJob(l, st)
	if err != nil {
		return PrintResult{}, fmt.Errorf("failed to prepare label: %w", err)
	}

	if !s.printers.Available() {
		s.logger.Warn("test label not printed", zap.Error(printer.ErrPeripheralUnavailable))
		return PrintResult{Printed: false}, nil
	}
	if !s.printers.CurrentInfo().Connected() {
		return PrintResult{}, printer.ErrNotConnected
	}
	if err := s.printers.Execute(ctx, label.BuildCommands(job)); err != nil {
		return PrintResult{}, fmt.Errorf("failed to print label: %w", err)
	}
	return PrintResult{Printed: true}, nil
}

func (s *PrintService) discountPayload(ctx context.Context, item models.DiscountItem, l models.DiscountLabelData, cfg models.DiscountConfig, username string) (models.CreateDiscountPayload, error) {
	percent, err := decimal.NewFromString(cfg.DiscountPercent)
	if err != nil {
		return models.CreateDiscountPayload{}, &InvalidConfigError{Field: "discount_percent", Reason: "must be a number"}
	}

	deviceID := ""
	if s.devices != nil {
		if strings.TrimSpace(username) != "" {
			deviceID = s.devices.GetOrCreate(ctx, username)
		} else {
			deviceID = s.devices.Global(ctx)
		}
	}

	uom := strings.TrimSpace(item.Detail.UnitOfSale)
	if uom == "" {
		uom = "PCS"
	}
	retail := l.NormalPrice
	if item.Detail.RetailPrice != nil {
		retail = *item.Detail.RetailPrice
	}

	return models.CreateDiscountPayload{
		Internal:        l.InternalCode,
		NameProduct:     l.ProductName,
		CodeBarcodeLama: item.Code,
		CodeBarcodeBaru: l.Barcode,
		RetailPrice:     retail,
		HargaAwal:       l.NormalPrice,
		Discount:        percent,
		Qty:             l.Quantity,
		UOMSales:        uom,
		HargaDiscount:   l.DiscountPrice,
		Description:     cfg.Description,
		Outlet:          cfg.Outlet,
		DeviceID:        deviceID,
	}, nil
}

func recordErrorMessage(err error) string {
	var netErr *lookup.NetworkError
	if errors.As(err, &netErr) && netErr.Message != "" {
		return netErr.Message
	}
	return MsgRecordFailed
}
