// Package lookup talks to the product lookup and discount registration
// backend and normalizes its loosely shaped product records.
package lookup

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/szytools/discount-label-service/internal/models"
)

// Field aliases in priority order. The first present, non-empty value wins.
var (
	internalFields    = []string{"internal"}
	descriptionFields = []string{"descript"}
	retailFields      = []string{"rrtlprc", "harga", "retail_price"}
	totalFields       = []string{"harga"}
	discountFields    = []string{"harga_diskon", "harga_promo"}
	barcodeFields     = []string{"code_barcode_baru", "barcode"}
	unitFields        = []string{"uomsales"}
	sizeFields        = []string{"ukuran"}
)

// productFields is every field that marks an object as a product record.
var productFields = concat(internalFields, descriptionFields, retailFields,
	discountFields, barcodeFields, unitFields, sizeFields)

// NormalizeResponse extracts the product record from a lookup response. The
// first element of a non-empty results array is used; otherwise the response
// itself when it carries any product field. ok is false when neither applies.
func NormalizeResponse(raw map[string]any) (models.ProductDetail, bool) {
	if raw == nil {
		return models.ProductDetail{}, false
	}

	if results, isList := raw["results"].([]any); isList {
		if len(results) == 0 {
			return models.ProductDetail{}, false
		}
		first, isObject := results[0].(map[string]any)
		if !isObject {
			return models.ProductDetail{}, false
		}
		return NormalizeProduct(first), true
	}

	for _, f := range productFields {
		if present(raw[f]) {
			return NormalizeProduct(raw), true
		}
	}
	return models.ProductDetail{}, false
}

// NormalizeProduct maps a raw product object onto ProductDetail.
func NormalizeProduct(raw map[string]any) models.ProductDetail {
	return models.ProductDetail{
		Internal:      firstString(raw, internalFields),
		Description:   firstString(raw, descriptionFields),
		Barcode:       firstString(raw, barcodeFields),
		UnitOfSale:    firstString(raw, unitFields),
		Size:          firstDecimal(raw, sizeFields),
		RetailPrice:   firstDecimal(raw, retailFields),
		TotalPrice:    firstDecimal(raw, totalFields),
		DiscountPrice: firstDecimal(raw, discountFields),
		Raw:           raw,
	}
}

func firstString(raw map[string]any, fields []string) string {
	for _, f := range fields {
		if s, ok := asString(raw[f]); ok && s != "" {
			return s
		}
	}
	return ""
}

func firstDecimal(raw map[string]any, fields []string) *decimal.Decimal {
	for _, f := range fields {
		if d, ok := asDecimal(raw[f]); ok {
			return &d
		}
	}
	return nil
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	default:
		return "", false
	}
}

func asDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	default:
		return decimal.Decimal{}, false
	}
}

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	default:
		return true
	}
}

func concat(lists ...[]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, l := range lists {
		for _, f := range l {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}
