// Package printer owns the connection to the label printer and turns
// printer directives into driver calls.
package printer

import (
	"context"
	"errors"

	"github.com/szytools/discount-label-service/internal/models"
)

var (
	// ErrPeripheralUnavailable means no printer driver is loaded.
	ErrPeripheralUnavailable = errors.New("printer driver is not available")
	// ErrNotConnected means an operation needed an active printer connection.
	ErrNotConnected = errors.New("no printer is connected")
	// ErrBarcodeUnsupported is returned by drivers that cannot render a barcode.
	ErrBarcodeUnsupported = errors.New("printer cannot render barcodes")
)

// Alignment is the horizontal justification of printed content.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// TextStyle mirrors the style options accepted by ESC/POS class printers.
// WidthTimes and HeightTimes are magnification steps, 0 meaning normal size.
type TextStyle struct {
	CodePage    int  `json:"codepage"`
	WidthTimes  int  `json:"widthtimes"`
	HeightTimes int  `json:"heighttimes"`
	FontType    int  `json:"fonttype"`
	Bold        bool `json:"bold,omitempty"`
}

// Symbology identifies a barcode symbology by its ESC/POS function number.
type Symbology int

const SymbologyCode128 Symbology = 73

// HRIPosition is where the human readable barcode text is printed.
type HRIPosition int

const (
	HRINone HRIPosition = iota
	HRIAbove
	HRIBelow
	HRIBoth
)

// BarcodeSpec describes one barcode directive.
type BarcodeSpec struct {
	Data         string      `json:"data"`
	Symbology    Symbology   `json:"symbology"`
	Width        int         `json:"width"`
	Height       int         `json:"height"`
	Alignment    Alignment   `json:"alignment"`
	TextPosition HRIPosition `json:"text_position"`
}

// ScanResult lists devices reported by a driver scan.
type ScanResult struct {
	Paired []models.ClassicPrinterDevice
	Found  []models.ClassicPrinterDevice
}

// Driver is a line printer reachable over a persistent connection.
type Driver interface {
	Scan(ctx context.Context) (ScanResult, error)
	Connect(ctx context.Context, address string) error
	Disconnect(ctx context.Context, address string) error

	Initialize(ctx context.Context) error
	SetAlignment(ctx context.Context, a Alignment) error
	PrintText(ctx context.Context, text string, style TextStyle) error
	Feed(ctx context.Context, units int) error
}

// BarcodePrinter is implemented by drivers that can render barcodes natively.
type BarcodePrinter interface {
	PrintBarcode(ctx context.Context, spec BarcodeSpec) error
}
