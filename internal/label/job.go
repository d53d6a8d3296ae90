package label

import (
	"bytes"

	"github.com/szytools/discount-label-service/internal/barcode"
	"github.com/szytools/discount-label-service/internal/models"
	"github.com/szytools/discount-label-service/internal/printer"
)

const (
	// FeedUnits moves the price line past the tear bar before the next label.
	FeedUnits = 80

	BarcodeHeight = 80

	narrowModuleWidth = 2
	wideModuleWidth   = 3
)

var (
	headlineStyle = printer.TextStyle{WidthTimes: 1, HeightTimes: 1, Bold: true}
	bodyStyle     = printer.TextStyle{}
)

// PrepareJob encodes the label barcode. Encoder errors are returned as is.
func PrepareJob(l models.DiscountLabelData, s models.PrinterSettings) (models.PreparedPrintJob, error) {
	enc, err := barcode.Encode(l.Barcode, barcode.SetC)
	if err != nil {
		return models.PreparedPrintJob{}, err
	}
	return models.PreparedPrintJob{
		Settings:        s,
		Label:           l,
		BarcodeEncoding: enc,
	}, nil
}

// BuildCommands returns the directive sequence for one label.
func BuildCommands(job models.PreparedPrintJob) []printer.Command {
	l := job.Label

	width := narrowModuleWidth
	if job.Settings.IsWide() {
		width = wideModuleWidth
	}

	return []printer.Command{
		printer.Initialize(),
		printer.SetAlignment(printer.AlignCenter),
		printer.PrintText(Headline(l.NormalPrice, l.DiscountPrice)+"\n", headlineStyle),
		printer.PrintText(l.ProductName+"\n", bodyStyle),
		printer.PrintText("Qty : "+l.UnitLabel+"\n", bodyStyle),
		printer.PrintBarcode(printer.BarcodeSpec{
			Data:         l.Barcode,
			Symbology:    printer.SymbologyCode128,
			Width:        width,
			Height:       BarcodeHeight,
			Alignment:    printer.AlignCenter,
			TextPosition: printer.HRIBelow,
		}),
		printer.PrintText(PriceLine(l.NormalPrice, l.DiscountPrice)+"\n", bodyStyle),
		printer.Feed(FeedUnits),
	}
}

// PlainText renders the label as bare lines for drivers without structured
// text support.
func PlainText(job models.PreparedPrintJob) []byte {
	l := job.Label
	lines := []string{
		l.ProductName,
		l.InternalCode,
		l.Barcode,
		"",
		"Harga normal : Rp " + FormatRupiah(l.NormalPrice),
		"Harga diskon : Rp " + FormatRupiah(l.DiscountPrice),
	}
	var buf bytes.Buffer
	for i, line := range lines {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(printer.EncodeText(line))
	}
	return buf.Bytes()
}
