// Package label turns product records into discount labels and printer
// directive sequences.
package label

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/szytools/discount-label-service/internal/models"
)

const defaultUnit = "PCS"

var rupiah = message.NewPrinter(language.Indonesian)

// IsWeighable reports whether the product is sold by weight: the unit of sale
// mentions KG and a size is present.
func IsWeighable(d models.ProductDetail) bool {
	return d.Size != nil && strings.Contains(strings.ToUpper(d.UnitOfSale), "KG")
}

// FromProduct derives the label for a product. It is the only place the
// weighable and unit-based price rules live.
func FromProduct(d models.ProductDetail) models.DiscountLabelData {
	l := models.DiscountLabelData{
		ProductName:  d.Description,
		InternalCode: d.Internal,
		Barcode:      d.Barcode,
	}

	if IsWeighable(d) {
		weight := *d.Size
		l.Quantity = weight
		l.UnitLabel = weight.String() + " KG"
		switch {
		case d.TotalPrice != nil:
			l.NormalPrice = *d.TotalPrice
		case d.RetailPrice != nil:
			l.NormalPrice = d.RetailPrice.Mul(weight)
		}
		l.DiscountPrice = valueOr(d.DiscountPrice, l.NormalPrice)
		return l
	}

	unit := strings.TrimSpace(d.UnitOfSale)
	if unit == "" {
		unit = defaultUnit
	}
	l.Quantity = decimal.NewFromInt(1)
	l.UnitLabel = "1 " + unit
	l.NormalPrice = valueOr(d.RetailPrice, decimal.Zero)
	l.DiscountPrice = valueOr(d.DiscountPrice, l.NormalPrice)
	return l
}

// FromItem derives the label for a worklist item. The scanned code stands in
// for a product without a barcode.
func FromItem(item models.DiscountItem) models.DiscountLabelData {
	l := FromProduct(item.Detail)
	if l.Barcode == "" {
		l.Barcode = item.Code
	}
	return l
}

// DiscountPercent returns the saving as a whole percentage of normal. ok is
// false when normal is not positive or the result is not strictly between
// 0 and 100.
func DiscountPercent(normal, discount decimal.Decimal) (int64, bool) {
	if !normal.IsPositive() {
		return 0, false
	}
	p := normal.Sub(discount).Div(normal).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if p <= 0 || p >= 100 {
		return 0, false
	}
	return p, true
}

// Headline is the first printed line, e.g. "HEMAT 30%".
func Headline(normal, discount decimal.Decimal) string {
	if p, ok := DiscountPercent(normal, discount); ok {
		return fmt.Sprintf("HEMAT %d%%", p)
	}
	return "HEMAT"
}

// FormatRupiah rounds v to whole rupiah and groups digits the Indonesian
// way, e.g. 60000 -> "60.000".
func FormatRupiah(v decimal.Decimal) string {
	return rupiah.Sprintf("%d", v.Round(0).IntPart())
}

// PriceLine is the combined old and new price line.
func PriceLine(normal, discount decimal.Decimal) string {
	return "Harga : Rp " + FormatRupiah(normal) + " Rp. " + FormatRupiah(discount)
}

func valueOr(v *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if v == nil {
		return fallback
	}
	return *v
}
