package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountConfig is the operator's active discount setup. It is required
// before any product can be scanned.
type DiscountConfig struct {
	Outlet          string `json:"outlet"`
	DiscountPercent string `json:"discount_percent"`
	Description     string `json:"description"`
}

// ProductDetail is the normalized product record returned by the lookup
// service. Optional numeric fields are nil when the backend omitted them.
type ProductDetail struct {
	Internal      string           `json:"internal"`
	Description   string           `json:"descript"`
	Barcode       string           `json:"barcode"`
	UnitOfSale    string           `json:"uomsales"`
	Size          *decimal.Decimal `json:"ukuran,omitempty"`
	RetailPrice   *decimal.Decimal `json:"retail_price,omitempty"`
	TotalPrice    *decimal.Decimal `json:"harga,omitempty"`
	DiscountPrice *decimal.Decimal `json:"harga_diskon,omitempty"`
	Raw           map[string]any   `json:"raw,omitempty"`
}

// DiscountItem is one scanned product in the worklist.
type DiscountItem struct {
	ID        string        `json:"id"`
	Code      string        `json:"code"`
	Detail    ProductDetail `json:"data"`
	CreatedAt time.Time     `json:"created_at"`
}

// CreateDiscountPayload is sent to the discount-registration service before a
// label is printed.
type CreateDiscountPayload struct {
	Internal        string          `json:"internal"`
	NameProduct     string          `json:"name_product"`
	CodeBarcodeLama string          `json:"code_barcode_lama"`
	CodeBarcodeBaru string          `json:"code_barcode_baru"`
	RetailPrice     decimal.Decimal `json:"retail_price"`
	HargaAwal       decimal.Decimal `json:"harga_awal"`
	Discount        decimal.Decimal `json:"discount"`
	Qty             decimal.Decimal `json:"qty"`
	UOMSales        string          `json:"uomsales"`
	HargaDiscount   decimal.Decimal `json:"harga_discount"`
	Description     string          `json:"description"`
	Outlet          string          `json:"outlet"`
	DeviceID        string          `json:"device_id"`
}
