package label

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/szytools/discount-label-service/internal/models"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestFromProduct_Weighable(t *testing.T) {
	l := FromProduct(models.ProductDetail{
		Internal:      "100200",
		Description:   "DAGING SAPI",
		Barcode:       "2100200",
		UnitOfSale:    "KG",
		Size:          dec("2.5"),
		TotalPrice:    dec("50000"),
		DiscountPrice: dec("40000"),
	})

	assert.Equal(t, "2.5 KG", l.UnitLabel)
	assert.True(t, l.NormalPrice.Equal(decimal.NewFromInt(50000)), l.NormalPrice.String())
	assert.True(t, l.DiscountPrice.Equal(decimal.NewFromInt(40000)), l.DiscountPrice.String())
	assert.True(t, l.Quantity.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, "DAGING SAPI", l.ProductName)
	assert.Equal(t, "100200", l.InternalCode)
}

func TestFromProduct_WeighableWithoutTotalMultipliesRetail(t *testing.T) {
	l := FromProduct(models.ProductDetail{
		UnitOfSale:  "kg",
		Size:        dec("1.5"),
		RetailPrice: dec("20000"),
	})

	assert.Equal(t, "1.5 KG", l.UnitLabel)
	assert.True(t, l.NormalPrice.Equal(decimal.NewFromInt(30000)), l.NormalPrice.String())
	assert.True(t, l.DiscountPrice.Equal(l.NormalPrice))
}

func TestFromProduct_Unit(t *testing.T) {
	l := FromProduct(models.ProductDetail{
		UnitOfSale:    "PCS",
		RetailPrice:   dec("10000"),
		DiscountPrice: dec("8000"),
	})

	assert.Equal(t, "1 PCS", l.UnitLabel)
	assert.True(t, l.NormalPrice.Equal(decimal.NewFromInt(10000)))
	assert.True(t, l.DiscountPrice.Equal(decimal.NewFromInt(8000)))
	assert.True(t, l.Quantity.Equal(decimal.NewFromInt(1)))
}

func TestFromProduct_KGWithoutSizeIsUnitBased(t *testing.T) {
	l := FromProduct(models.ProductDetail{UnitOfSale: "KG", RetailPrice: dec("12000")})
	assert.Equal(t, "1 KG", l.UnitLabel)
	assert.True(t, l.NormalPrice.Equal(decimal.NewFromInt(12000)))
}

func TestFromProduct_DefaultUnit(t *testing.T) {
	l := FromProduct(models.ProductDetail{})
	assert.Equal(t, "1 PCS", l.UnitLabel)
	assert.True(t, l.NormalPrice.IsZero())
	assert.True(t, l.DiscountPrice.IsZero())
}

func TestHeadline(t *testing.T) {
	tests := []struct {
		name             string
		normal, discount int64
		want             string
	}{
		{"thirty percent", 60000, 42000, "HEMAT 30%"},
		{"zero normal", 0, 0, "HEMAT"},
		{"no saving", 10000, 10000, "HEMAT"},
		{"free", 10000, 0, "HEMAT"},
		{"price went up", 10000, 12000, "HEMAT"},
		{"rounds half up", 3000, 2985, "HEMAT 1%"},
		{"rounds down", 10000, 6666, "HEMAT 33%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Headline(decimal.NewFromInt(tt.normal), decimal.NewFromInt(tt.discount))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatRupiah(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"999", "999"},
		{"60000", "60.000"},
		{"1250000", "1.250.000"},
		{"8999.6", "9.000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRupiah(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestPriceLine(t *testing.T) {
	got := PriceLine(decimal.NewFromInt(60000), decimal.NewFromInt(42000))
	assert.Equal(t, "Harga : Rp 60.000 Rp. 42.000", got)
}

func TestFromItem_FallsBackToScannedCode(t *testing.T) {
	item := models.DiscountItem{Code: "8991234567890", Detail: models.ProductDetail{RetailPrice: dec("5000")}}
	assert.Equal(t, "8991234567890", FromItem(item).Barcode)

	item.Detail.Barcode = "1777010251"
	assert.Equal(t, "1777010251", FromItem(item).Barcode)
}
