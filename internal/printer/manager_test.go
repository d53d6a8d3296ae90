package printer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/szytools/discount-label-service/internal/models"
)

func newTestManager(d Driver, mem DeviceMemory) *Manager {
	return NewManager(d, NewConnectionState(), mem, zap.NewNop())
}

func TestManager_ScanDeduplicatesByAddress(t *testing.T) {
	d := &fakeDriver{scan: ScanResult{
		Paired: []models.ClassicPrinterDevice{
			{Name: "RPP02N", Address: "00:11:22:33:44:55"},
			{Name: "", Address: "66:77:88:99:AA:BB"},
		},
		Found: []models.ClassicPrinterDevice{
			{Name: "RPP02N (found)", Address: "00:11:22:33:44:55"},
			{Name: "Kitchen", Address: "10.0.0.9:9100"},
			{Name: "ghost", Address: ""},
		},
	}}
	m := newTestManager(d, nil)

	devices := m.Scan(context.Background())

	require.Len(t, devices, 3)
	assert.Equal(t, "RPP02N", devices[0].Name)
	assert.Equal(t, models.PrinterSourcePaired, devices[0].Source)
	assert.Equal(t, "66:77:88:99:AA:BB", devices[1].Name)
	assert.Equal(t, "10.0.0.9:9100", devices[2].Address)
	assert.Equal(t, models.PrinterSourceDiscovered, devices[2].Source)
}

func TestManager_ScanFailsSoft(t *testing.T) {
	m := newTestManager(nil, nil)
	devices := m.Scan(context.Background())
	assert.NotNil(t, devices)
	assert.Empty(t, devices)

	m = newTestManager(&fakeDriver{scanErr: errors.New("adapter off")}, nil)
	assert.Empty(t, m.Scan(context.Background()))
}

func TestManager_ConnectSetsStateAndRemembersDevice(t *testing.T) {
	d := &fakeDriver{}
	mem := &memoryDevice{}
	m := newTestManager(d, mem)

	require.NoError(t, m.Connect(context.Background(), "00:11:22:33:44:55", "RPP02N"))

	assert.Equal(t, models.ConnectionInfo{Address: "00:11:22:33:44:55", Name: "RPP02N"}, m.CurrentInfo())
	assert.Equal(t, m.CurrentInfo(), mem.info)
	assert.False(t, m.state.Connecting())
}

func TestManager_ConnectDefaultsNameToAddress(t *testing.T) {
	m := newTestManager(&fakeDriver{}, nil)
	require.NoError(t, m.Connect(context.Background(), "10.0.0.9:9100", ""))
	assert.Equal(t, "10.0.0.9:9100", m.CurrentInfo().Name)
}

func TestManager_ConnectFailureKeepsState(t *testing.T) {
	d := &fakeDriver{}
	m := newTestManager(d, nil)
	require.NoError(t, m.Connect(context.Background(), "A", "first"))

	d.connectErr = errors.New("socket refused")
	err := m.Connect(context.Background(), "B", "second")

	require.Error(t, err)
	assert.Equal(t, models.ConnectionInfo{Address: "A", Name: "first"}, m.CurrentInfo())
	assert.False(t, m.state.Connecting())
}

func TestManager_ConcurrentConnectIsNoOp(t *testing.T) {
	d := &fakeDriver{
		connectGate:    make(chan struct{}),
		connectEntered: make(chan struct{}, 1),
	}
	m := newTestManager(d, nil)

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = m.Connect(context.Background(), "A", "first")
	}()

	<-d.connectEntered
	assert.True(t, m.state.Connecting())

	// second call while the first is pending
	require.NoError(t, m.Connect(context.Background(), "B", "second"))
	assert.Equal(t, models.ConnectionInfo{}, m.CurrentInfo())

	close(d.connectGate)
	wg.Wait()

	require.NoError(t, firstErr)
	assert.Equal(t, []string{"A"}, d.connects)
	assert.Equal(t, models.ConnectionInfo{Address: "A", Name: "first"}, m.CurrentInfo())
}

func TestManager_DisconnectWithoutConnection(t *testing.T) {
	d := &fakeDriver{}
	m := newTestManager(d, nil)

	require.NoError(t, m.Disconnect(context.Background()))
	assert.Equal(t, models.ConnectionInfo{}, m.CurrentInfo())
	assert.Empty(t, d.disconnects)
}

func TestManager_DisconnectClearsStateOnDriverError(t *testing.T) {
	d := &fakeDriver{discErr: errors.New("link lost")}
	m := newTestManager(d, nil)
	require.NoError(t, m.Connect(context.Background(), "A", "first"))

	err := m.Disconnect(context.Background())

	require.Error(t, err)
	assert.Equal(t, []string{"A"}, d.disconnects)
	assert.Equal(t, models.ConnectionInfo{}, m.CurrentInfo())
}

func TestManager_UnavailableDriverIsNoOp(t *testing.T) {
	m := newTestManager(nil, nil)

	assert.False(t, m.Available())
	assert.NoError(t, m.Connect(context.Background(), "A", "first"))
	assert.Equal(t, models.ConnectionInfo{}, m.CurrentInfo())
	assert.NoError(t, m.Execute(context.Background(), []Command{Initialize()}))
}

func TestManager_LastKnownInfo(t *testing.T) {
	mem := &memoryDevice{info: models.ConnectionInfo{Address: "A", Name: "remembered"}, saved: true}
	m := newTestManager(&fakeDriver{}, mem)

	// rehydrated from storage, not connected
	assert.Equal(t, "remembered", m.LastKnownInfo(context.Background()).Name)
	assert.False(t, m.CurrentInfo().Connected())

	require.NoError(t, m.Connect(context.Background(), "B", "live"))
	assert.Equal(t, "live", m.LastKnownInfo(context.Background()).Name)

	empty := newTestManager(&fakeDriver{}, &memoryDevice{})
	assert.Equal(t, models.ConnectionInfo{}, empty.LastKnownInfo(context.Background()))
}

func TestManager_ConnectSucceedsWhenMemoryFails(t *testing.T) {
	m := newTestManager(&fakeDriver{}, &memoryDevice{fail: true})
	require.NoError(t, m.Connect(context.Background(), "A", "first"))
	assert.True(t, m.CurrentInfo().Connected())
}

func TestManager_ExecuteRequiresConnection(t *testing.T) {
	m := newTestManager(&fakeDriver{}, nil)
	err := m.Execute(context.Background(), []Command{Initialize()})
	assert.ErrorIs(t, err, ErrNotConnected)
}

type recordingListener struct {
	events []bool
}

func (r *recordingListener) PrinterStatusChanged(info models.ConnectionInfo, connected bool) {
	r.events = append(r.events, connected)
}

func TestManager_NotifiesListener(t *testing.T) {
	l := &recordingListener{}
	m := newTestManager(&fakeDriver{}, nil)
	m.SetListener(l)

	require.NoError(t, m.Connect(context.Background(), "A", "first"))
	require.NoError(t, m.Disconnect(context.Background()))

	assert.Equal(t, []bool{true, false}, l.events)
}
