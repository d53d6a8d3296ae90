package printer

import (
	"context"
	"fmt"
	"sync"

	"github.com/szytools/discount-label-service/internal/models"
)

// fakeDriver records every call. connectGate, when set, blocks Connect until
// it is closed, and connectEntered is signalled when Connect starts.
type fakeDriver struct {
	mu sync.Mutex

	scan       ScanResult
	scanErr    error
	connectErr error
	discErr    error

	connectGate    chan struct{}
	connectEntered chan struct{}

	connects    []string
	disconnects []string
	calls       []string
}

func (f *fakeDriver) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeDriver) Scan(ctx context.Context) (ScanResult, error) {
	return f.scan, f.scanErr
}

func (f *fakeDriver) Connect(ctx context.Context, address string) error {
	if f.connectEntered != nil {
		f.connectEntered <- struct{}{}
	}
	if f.connectGate != nil {
		<-f.connectGate
	}
	f.mu.Lock()
	f.connects = append(f.connects, address)
	f.mu.Unlock()
	return f.connectErr
}

func (f *fakeDriver) Disconnect(ctx context.Context, address string) error {
	f.mu.Lock()
	f.disconnects = append(f.disconnects, address)
	f.mu.Unlock()
	return f.discErr
}

func (f *fakeDriver) Initialize(ctx context.Context) error {
	f.record("initialize")
	return nil
}

func (f *fakeDriver) SetAlignment(ctx context.Context, a Alignment) error {
	f.record("align:" + a.String())
	return nil
}

func (f *fakeDriver) PrintText(ctx context.Context, text string, style TextStyle) error {
	f.record("text:" + text)
	return nil
}

func (f *fakeDriver) Feed(ctx context.Context, units int) error {
	f.record(fmt.Sprintf("feed:%d", units))
	return nil
}

// barcodeDriver adds barcode support to fakeDriver.
type barcodeDriver struct {
	fakeDriver
	barcodeErr error
}

func (b *barcodeDriver) PrintBarcode(ctx context.Context, spec BarcodeSpec) error {
	if b.barcodeErr != nil {
		return b.barcodeErr
	}
	b.record("barcode:" + spec.Data)
	return nil
}

type memoryDevice struct {
	mu    sync.Mutex
	info  models.ConnectionInfo
	saved bool
	fail  bool
}

func (m *memoryDevice) SaveLastPrinter(ctx context.Context, info models.ConnectionInfo) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return false
	}
	m.info = info
	m.saved = true
	return true
}

func (m *memoryDevice) LastPrinter(ctx context.Context) (models.ConnectionInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.info, m.saved
}
