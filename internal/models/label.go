package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/szytools/discount-label-service/internal/barcode"
)

const (
	// LabelWidthNarrow is the printable width in dots of a 58mm head.
	LabelWidthNarrow = 384
	// LabelWidthWide is the printable width in dots of an 80/88mm head.
	LabelWidthWide = 576
)

// DiscountLabelData is everything printed on one discount label.
type DiscountLabelData struct {
	ProductName   string          `json:"product_name"`
	InternalCode  string          `json:"internal_code"`
	Barcode       string          `json:"barcode"`
	UnitLabel     string          `json:"unit_label"`
	Quantity      decimal.Decimal `json:"quantity"`
	NormalPrice   decimal.Decimal `json:"normal_price"`
	DiscountPrice decimal.Decimal `json:"discount_price"`
}

// PrinterSettings controls label layout.
type PrinterSettings struct {
	StrikeThroughPrice bool `json:"strike_through_price" yaml:"strike_through_price"`
	StrikeOffsetY      int  `json:"strike_offset_y" yaml:"strike_offset_y"`
	FontSizeNormal     int  `json:"font_size_normal" yaml:"font_size_normal"`
	FontSizePrice      int  `json:"font_size_price" yaml:"font_size_price"`
	LineSpacing        int  `json:"line_spacing" yaml:"line_spacing"`
	LabelWidth         int  `json:"label_width" yaml:"label_width"`
}

// DefaultPrinterSettings returns the layout used for a 58mm printer.
func DefaultPrinterSettings() PrinterSettings {
	return PrinterSettings{
		StrikeThroughPrice: true,
		StrikeOffsetY:      0,
		FontSizeNormal:     12,
		FontSizePrice:      14,
		LineSpacing:        4,
		LabelWidth:         LabelWidthNarrow,
	}
}

// WithWideLabel returns a copy of s sized for an 88mm printer when wide is set.
func (s PrinterSettings) WithWideLabel(wide bool) PrinterSettings {
	if wide {
		s.LabelWidth = LabelWidthWide
	} else {
		s.LabelWidth = LabelWidthNarrow
	}
	return s
}

// IsWide reports whether the settings target an 88mm printer.
func (s PrinterSettings) IsWide() bool {
	return s.LabelWidth >= LabelWidthWide
}

// PreparedPrintJob is a fully resolved label ready to be turned into printer
// commands. It is never persisted.
type PreparedPrintJob struct {
	Settings        PrinterSettings   `json:"settings"`
	Label           DiscountLabelData `json:"label"`
	BarcodeEncoding barcode.Encoding  `json:"barcode_encoding"`
}

// PrintRecord is a history entry for a printed discount label.
type PrintRecord struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	ItemCode      string          `db:"item_code" json:"item_code"`
	Internal      string          `db:"internal" json:"internal"`
	ProductName   string          `db:"product_name" json:"product_name"`
	Barcode       string          `db:"barcode" json:"barcode"`
	UnitLabel     string          `db:"unit_label" json:"unit_label"`
	Outlet        string          `db:"outlet" json:"outlet"`
	NormalPrice   decimal.Decimal `db:"normal_price" json:"normal_price"`
	DiscountPrice decimal.Decimal `db:"discount_price" json:"discount_price"`
	DeviceID      string          `db:"device_id" json:"device_id"`
	PrinterAddr   string          `db:"printer_address" json:"printer_address"`
	PrintedAt     time.Time       `db:"printed_at" json:"printed_at"`
}
