package printer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/szytools/discount-label-service/internal/models"
)

// DeviceMemory remembers the last printer used so it can be offered again
// after a restart. Failures are reported as false, never as errors.
type DeviceMemory interface {
	SaveLastPrinter(ctx context.Context, info models.ConnectionInfo) bool
	LastPrinter(ctx context.Context) (models.ConnectionInfo, bool)
}

// StatusListener is told about connection changes.
type StatusListener interface {
	PrinterStatusChanged(info models.ConnectionInfo, connected bool)
}

// Manager owns the lifecycle of the printer connection.
type Manager struct {
	driver Driver
	state  *ConnectionState
	memory DeviceMemory
	logger *zap.Logger

	// printMu keeps label jobs from interleaving on the wire.
	printMu sync.Mutex

	listenerMu sync.RWMutex
	listener   StatusListener
}

// NewManager creates a connection manager. driver may be nil when no printer
// driver is available on this host; every operation then degrades to a logged
// no-op. memory may be nil.
func NewManager(driver Driver, state *ConnectionState, memory DeviceMemory, logger *zap.Logger) *Manager {
	if state == nil {
		state = NewConnectionState()
	}
	return &Manager{
		driver: driver,
		state:  state,
		memory: memory,
		logger: logger,
	}
}

// SetListener registers a listener for connection changes.
func (m *Manager) SetListener(l StatusListener) {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.listener = l
}

// Available reports whether a printer driver is loaded.
func (m *Manager) Available() bool {
	return m.driver != nil
}

// Scan lists paired and discovered printers, de-duplicated by address.
// It never fails: an unavailable driver or a scan error yields an empty list.
func (m *Manager) Scan(ctx context.Context) []models.ClassicPrinterDevice {
	if m.driver == nil {
		m.logger.Warn("printer scan skipped", zap.Error(ErrPeripheralUnavailable))
		return []models.ClassicPrinterDevice{}
	}

	result, err := m.driver.Scan(ctx)
	if err != nil {
		m.logger.Warn("printer scan failed", zap.Error(err))
	}

	seen := make(map[string]bool)
	devices := []models.ClassicPrinterDevice{}
	add := func(list []models.ClassicPrinterDevice, source models.PrinterSource) {
		for _, dev := range list {
			if dev.Address == "" || seen[dev.Address] {
				continue
			}
			seen[dev.Address] = true
			if dev.Name == "" {
				dev.Name = dev.Address
			}
			if dev.Source == "" {
				dev.Source = source
			}
			devices = append(devices, dev)
		}
	}
	add(result.Paired, models.PrinterSourcePaired)
	add(result.Found, models.PrinterSourceDiscovered)

	m.logger.Info("printer scan finished", zap.Int("devices", len(devices)))
	return devices
}

// Connect opens the printer at address. While one attempt is in flight any
// further call returns immediately without touching the state. On failure
// the previous state is kept and the driver error is returned.
func (m *Manager) Connect(ctx context.Context, address, name string) error {
	if m.driver == nil {
		m.logger.Warn("printer connect skipped", zap.String("address", address), zap.Error(ErrPeripheralUnavailable))
		return nil
	}
	if address == "" {
		return fmt.Errorf("printer address is required")
	}
	if !m.state.beginConnect() {
		m.logger.Info("printer connect already in progress", zap.String("address", address))
		return nil
	}
	defer m.state.endConnect()

	if err := m.driver.Connect(ctx, address); err != nil {
		m.logger.Error("printer connect failed", zap.String("address", address), zap.Error(err))
		return err
	}

	if name == "" {
		name = address
	}
	m.state.set(address, name)
	info := models.ConnectionInfo{Address: address, Name: name}

	if m.memory != nil && !m.memory.SaveLastPrinter(ctx, info) {
		m.logger.Warn("could not remember last printer", zap.String("address", address))
	}

	m.logger.Info("printer connected", zap.String("address", address), zap.String("name", name))
	m.notify(info, true)
	return nil
}

// Disconnect closes the active connection. With nothing connected it only
// logs. The state is always cleared, even when the driver reports an error.
func (m *Manager) Disconnect(ctx context.Context) error {
	info := m.state.Info()
	if !info.Connected() {
		m.logger.Info("printer disconnect ignored", zap.Error(ErrNotConnected))
		return nil
	}

	defer func() {
		m.state.clear()
		m.notify(info, false)
	}()

	if m.driver == nil {
		m.logger.Warn("printer disconnect without driver", zap.Error(ErrPeripheralUnavailable))
		return nil
	}

	if err := m.driver.Disconnect(ctx, info.Address); err != nil && !errors.Is(err, ErrNotConnected) {
		m.logger.Warn("printer disconnect failed", zap.String("address", info.Address), zap.Error(err))
		return err
	}
	m.logger.Info("printer disconnected", zap.String("address", info.Address))
	return nil
}

// CurrentInfo returns the in-memory connection identity.
func (m *Manager) CurrentInfo() models.ConnectionInfo {
	return m.state.Info()
}

// LastKnownInfo returns the current printer, or the one remembered from an
// earlier run. A remembered printer is not connected; call Connect to use it.
func (m *Manager) LastKnownInfo(ctx context.Context) models.ConnectionInfo {
	if info := m.state.Info(); info.Connected() {
		return info
	}
	if m.memory == nil {
		return models.ConnectionInfo{}
	}
	info, ok := m.memory.LastPrinter(ctx)
	if !ok {
		return models.ConnectionInfo{}
	}
	return info
}

// Execute runs a directive sequence on the connected printer.
func (m *Manager) Execute(ctx context.Context, cmds []Command) error {
	if m.driver == nil {
		m.logger.Warn("print skipped", zap.Error(ErrPeripheralUnavailable))
		return nil
	}
	if !m.state.Info().Connected() {
		return ErrNotConnected
	}

	m.printMu.Lock()
	defer m.printMu.Unlock()
	return Execute(ctx, m.driver, cmds, m.logger)
}

// Close disconnects the active printer, if any.
func (m *Manager) Close(ctx context.Context) error {
	return m.Disconnect(ctx)
}

func (m *Manager) notify(info models.ConnectionInfo, connected bool) {
	m.listenerMu.RLock()
	l := m.listener
	m.listenerMu.RUnlock()
	if l != nil {
		l.PrinterStatusChanged(info, connected)
	}
}
