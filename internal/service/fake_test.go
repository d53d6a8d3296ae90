package service

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/szytools/discount-label-service/internal/lookup"
	"github.com/szytools/discount-label-service/internal/models"
	"github.com/szytools/discount-label-service/internal/printer"
)

type fakeLookup struct {
	mu       sync.Mutex
	products map[string]models.ProductDetail
	err      error
	requests []lookup.ScanRequest

	// gate, when set, blocks ScanProduct until closed
	gate    chan struct{}
	entered chan struct{}
}

func newFakeLookup() *fakeLookup {
	return &fakeLookup{products: map[string]models.ProductDetail{}}
}

func (f *fakeLookup) ScanProduct(ctx context.Context, req lookup.ScanRequest) (models.ProductDetail, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return models.ProductDetail{}, f.err
	}
	d, ok := f.products[req.Code]
	if !ok {
		return models.ProductDetail{}, lookup.ErrProductNotFound
	}
	return d, nil
}

type event struct {
	name string
	data any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []event
}

func (r *recordingNotifier) Notify(name string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{name, data})
}

func (r *recordingNotifier) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.name
	}
	return out
}

type fakePrinters struct {
	available bool
	info      models.ConnectionInfo
	err       error
	executed  [][]printer.Command
}

func (f *fakePrinters) Available() bool {
	return f.available
}

func (f *fakePrinters) CurrentInfo() models.ConnectionInfo {
	return f.info
}

func (f *fakePrinters) Execute(ctx context.Context, cmds []printer.Command) error {
	if f.err != nil {
		return f.err
	}
	f.executed = append(f.executed, cmds)
	return nil
}

type fakeRegistrar struct {
	payloads []models.CreateDiscountPayload
	err      error
}

func (f *fakeRegistrar) CreateDiscount(ctx context.Context, p models.CreateDiscountPayload) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, p)
	return nil
}

type fakeHistory struct {
	records []models.PrintRecord
	err     error
}

func (f *fakeHistory) Insert(ctx context.Context, rec models.PrintRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func susu() models.ProductDetail {
	return models.ProductDetail{
		Internal:      "100200",
		Description:   "SUSU UHT 1L",
		Barcode:       "1777010251",
		UnitOfSale:    "PCS",
		RetailPrice:   price("60000"),
		DiscountPrice: price("42000"),
	}
}

func daging() models.ProductDetail {
	return models.ProductDetail{
		Internal:      "300400",
		Description:   "DAGING SAPI",
		Barcode:       "2300400",
		UnitOfSale:    "KG",
		Size:          price("2.5"),
		TotalPrice:    price("50000"),
		DiscountPrice: price("40000"),
	}
}
