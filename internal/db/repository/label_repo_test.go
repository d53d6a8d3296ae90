package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szytools/discount-label-service/internal/models"
)

var recordColumns = []string{
	"id", "item_code", "internal", "product_name", "barcode", "unit_label", "outlet",
	"normal_price", "discount_price", "device_id", "printer_address", "printed_at",
}

func TestLabelRepository_Insert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLabelRepository(db)

	rec := models.PrintRecord{
		ID:            uuid.New(),
		ItemCode:      "1777010251",
		Internal:      "100200",
		ProductName:   "SUSU UHT 1L",
		Barcode:       "1777010251",
		UnitLabel:     "1 PCS",
		Outlet:        "12",
		NormalPrice:   decimal.NewFromInt(60000),
		DiscountPrice: decimal.NewFromInt(42000),
		DeviceID:      "dev-1",
		PrinterAddr:   "192.168.1.50:9100",
		PrintedAt:     time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC),
	}

	mock.ExpectExec(`INSERT INTO print_records`).
		WithArgs(rec.ID, "1777010251", "100200", "SUSU UHT 1L", "1777010251", "1 PCS", "12",
			sqlmock.AnyArg(), sqlmock.AnyArg(), "dev-1", "192.168.1.50:9100", rec.PrintedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLabelRepository_ListRecent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLabelRepository(db)

	id := uuid.New()
	at := time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .* FROM print_records .* ORDER BY printed_at DESC`).
		WithArgs("12", 20).
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow(id.String(), "2300400", "300400", "DAGING SAPI", "2300400", "2.5 KG", "12",
				"50000.00", "40000.00", "dev-1", "00:11:22:33:44:55", at))

	records, err := repo.ListRecent(context.Background(), "12", 20)
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "2.5 KG", got.UnitLabel)
	assert.True(t, got.NormalPrice.Equal(decimal.NewFromInt(50000)))
	assert.True(t, got.DiscountPrice.Equal(decimal.NewFromInt(40000)))
	assert.Equal(t, at, got.PrintedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLabelRepository_ListRecentClampsLimit(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLabelRepository(db)

	mock.ExpectQuery(`SELECT .* FROM print_records`).
		WithArgs("", maxHistoryLimit).
		WillReturnRows(sqlmock.NewRows(recordColumns))

	records, err := repo.ListRecent(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NotNil(t, records)
}
