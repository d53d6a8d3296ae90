package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/szytools/discount-label-service/internal/lookup"
	"github.com/szytools/discount-label-service/internal/models"
	"github.com/szytools/discount-label-service/internal/printer"
	"github.com/szytools/discount-label-service/internal/store"
)

type printFixture struct {
	session   *Session
	printers  *fakePrinters
	registrar *fakeRegistrar
	history   *fakeHistory
	notifier  *recordingNotifier
	devices   *DeviceIDService
	svc       *PrintService
	item      models.DiscountItem
}

func newPrintFixture(t *testing.T, detail models.ProductDetail) *printFixture {
	t.Helper()

	fl := newFakeLookup()
	fl.products[detail.Barcode] = detail
	f := &printFixture{
		printers:  &fakePrinters{available: true, info: models.ConnectionInfo{Address: "192.168.1.50:9100", Name: "Kasir 1"}},
		registrar: &fakeRegistrar{},
		history:   &fakeHistory{},
		notifier:  &recordingNotifier{},
		devices:   NewDeviceIDService(store.NewPrefs(store.NewMemoryStore(), zap.NewNop())),
	}
	f.session = newTestSession(fl, nil)
	require.NoError(t, f.session.UpdateConfig(testConfig))

	item, err := f.session.ScanAndAdd(context.Background(), detail.Barcode)
	require.NoError(t, err)
	f.item = item

	f.svc = NewPrintService(f.session, f.printers, f.registrar, f.history, f.devices,
		f.notifier, models.DefaultPrinterSettings(), zap.NewNop())
	return f
}

func TestPrintItem_RegistersThenPrints(t *testing.T) {
	f := newPrintFixture(t, susu())

	res, err := f.svc.PrintItem(context.Background(), f.item.ID, "Kasir")
	require.NoError(t, err)
	assert.True(t, res.Printed)
	require.NotNil(t, res.Record)

	require.Len(t, f.registrar.payloads, 1)
	p := f.registrar.payloads[0]
	assert.Equal(t, "100200", p.Internal)
	assert.Equal(t, "SUSU UHT 1L", p.NameProduct)
	assert.Equal(t, "1777010251", p.CodeBarcodeLama)
	assert.Equal(t, "1777010251", p.CodeBarcodeBaru)
	assert.True(t, p.RetailPrice.Equal(decimal.NewFromInt(60000)))
	assert.True(t, p.HargaAwal.Equal(decimal.NewFromInt(60000)))
	assert.True(t, p.HargaDiscount.Equal(decimal.NewFromInt(42000)))
	assert.True(t, p.Discount.Equal(decimal.NewFromInt(30)))
	assert.True(t, p.Qty.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "PCS", p.UOMSales)
	assert.Equal(t, "12", p.Outlet)
	assert.Equal(t, "Promo", p.Description)
	assert.Equal(t, f.devices.GetOrCreate(context.Background(), "kasir"), p.DeviceID)

	require.Len(t, f.printers.executed, 1)
	cmds := f.printers.executed[0]
	assert.Equal(t, printer.OpInitialize, cmds[0].Op)
	assert.Equal(t, printer.OpFeed, cmds[len(cmds)-1].Op)

	require.Len(t, f.history.records, 1)
	rec := f.history.records[0]
	assert.Equal(t, "192.168.1.50:9100", rec.PrinterAddr)
	assert.Equal(t, "12", rec.Outlet)
	assert.Equal(t, p.DeviceID, rec.DeviceID)
	assert.Equal(t, []string{EventLabelPrinted}, f.notifier.names())
}

func TestPrintItem_WeighablePayload(t *testing.T) {
	f := newPrintFixture(t, daging())

	_, err := f.svc.PrintItem(context.Background(), f.item.ID, "")
	require.NoError(t, err)

	require.Len(t, f.registrar.payloads, 1)
	p := f.registrar.payloads[0]
	assert.True(t, p.Qty.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, p.HargaAwal.Equal(decimal.NewFromInt(50000)))
	// no retail price in the lookup, so the normal price is sent
	assert.True(t, p.RetailPrice.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, "KG", p.UOMSales)
	assert.Equal(t, f.devices.Global(context.Background()), p.DeviceID)
}

func TestPrintItem_RegistrationFailureSkipsPrint(t *testing.T) {
	f := newPrintFixture(t, susu())
	f.registrar.err = &lookup.NetworkError{Op: "create discount", Status: 409, Message: "Diskon sudah ada"}

	_, err := f.svc.PrintItem(context.Background(), f.item.ID, "kasir")

	var recErr *DiscountRecordFailedError
	require.True(t, errors.As(err, &recErr))
	assert.Empty(t, f.printers.executed)
	assert.Empty(t, f.history.records)
	assert.Equal(t, "Diskon sudah ada", f.session.LastError())
}

func TestPrintItem_RegistrationFailureGenericMessage(t *testing.T) {
	f := newPrintFixture(t, susu())
	f.registrar.err = errors.New("connection reset")

	_, err := f.svc.PrintItem(context.Background(), f.item.ID, "kasir")

	require.Error(t, err)
	assert.Equal(t, MsgRecordFailed, f.session.LastError())
	assert.Empty(t, f.printers.executed)
}

func TestPrintItem_NotConnected(t *testing.T) {
	f := newPrintFixture(t, susu())
	f.printers.info = models.ConnectionInfo{}

	_, err := f.svc.PrintItem(context.Background(), f.item.ID, "kasir")

	assert.ErrorIs(t, err, printer.ErrNotConnected)
	assert.Equal(t, MsgPrinterNotConnected, f.session.LastError())
	assert.Empty(t, f.registrar.payloads)
}

func TestPrintItem_DriverUnavailable(t *testing.T) {
	f := newPrintFixture(t, susu())
	f.printers.available = false

	res, err := f.svc.PrintItem(context.Background(), f.item.ID, "kasir")

	require.NoError(t, err)
	assert.False(t, res.Printed)
	assert.Empty(t, f.registrar.payloads)
	assert.Empty(t, f.printers.executed)
}

func TestPrintItem_PrinterError(t *testing.T) {
	f := newPrintFixture(t, susu())
	f.printers.err = errors.New("broken pipe")

	_, err := f.svc.PrintItem(context.Background(), f.item.ID, "kasir")

	require.Error(t, err)
	assert.Equal(t, MsgPrintFailed, f.session.LastError())
	assert.Len(t, f.registrar.payloads, 1)
	assert.Empty(t, f.history.records)
}

func TestPrintItem_HistoryFailureStillPrints(t *testing.T) {
	f := newPrintFixture(t, susu())
	f.history.err = errors.New("db down")

	res, err := f.svc.PrintItem(context.Background(), f.item.ID, "kasir")

	require.NoError(t, err)
	assert.True(t, res.Printed)
}

func TestPrintItem_UnknownItem(t *testing.T) {
	f := newPrintFixture(t, susu())
	_, err := f.svc.PrintItem(context.Background(), "nope", "kasir")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestPreview(t *testing.T) {
	f := newPrintFixture(t, susu())

	p, err := f.svc.Preview(f.item.ID)
	require.NoError(t, err)

	assert.Equal(t, "HEMAT 30%", p.Headline)
	assert.Equal(t, "Harga : Rp 60.000 Rp. 42.000", p.PriceLine)
	assert.Equal(t, []int{105, 17, 77, 1, 2, 51}, p.Encoding.Codes[:6])
	assert.NotEmpty(t, p.Modules)
}

func TestSetWideLabel(t *testing.T) {
	f := newPrintFixture(t, susu())

	got := f.svc.SetWideLabel(true)
	assert.True(t, got.IsWide())
	assert.True(t, f.svc.Settings().IsWide())

	assert.False(t, f.svc.SetWideLabel(false).IsWide())
}

func TestPrintLabel_DoesNotRegister(t *testing.T) {
	f := newPrintFixture(t, susu())

	res, err := f.svc.PrintLabel(context.Background(), models.DiscountLabelData{
		ProductName:   "TEST",
		Barcode:       "12345678",
		UnitLabel:     "1 PCS",
		NormalPrice:   decimal.NewFromInt(1000),
		DiscountPrice: decimal.NewFromInt(500),
	}, nil)

	require.NoError(t, err)
	assert.True(t, res.Printed)
	assert.Empty(t, f.registrar.payloads)
	assert.Len(t, f.printers.executed, 1)
}
