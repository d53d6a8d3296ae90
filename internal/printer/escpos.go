package printer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"github.com/szytools/discount-label-service/internal/barcode"
	"github.com/szytools/discount-label-service/internal/models"
)

// ESC/POS control bytes
const (
	ESC byte = 0x1B
	GS  byte = 0x1D
	NL  byte = 0x0A
)

const (
	defaultPrinterPort = "9100"
	defaultIOTimeout   = 5 * time.Second

	// codePage437 is the ESC t argument selecting the code page EncodeText targets.
	codePage437 = 0
)

var macAddress = regexp.MustCompile(`^([0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}$`)

// Dialer opens the byte stream to a printer address.
type Dialer func(ctx context.Context, address string) (io.ReadWriteCloser, error)

// ESCPOSConfig configures an ESCPOSDriver.
type ESCPOSConfig struct {
	// Paired lists devices already bonded with this host.
	Paired []models.ClassicPrinterDevice
	// RFCOMM maps Bluetooth addresses to their bound serial device, e.g. /dev/rfcomm0.
	RFCOMM    map[string]string
	IOTimeout time.Duration
	Dialer    Dialer
	// Discoverer finds network printers during Scan. Optional.
	Discoverer *Discoverer
}

// ESCPOSDriver talks ESC/POS to a single printer over a serial RFCOMM device
// or a raw TCP socket.
type ESCPOSDriver struct {
	mu      sync.Mutex
	conn    io.ReadWriteCloser
	address string

	cfg    ESCPOSConfig
	logger *zap.Logger
}

var (
	_ Driver         = (*ESCPOSDriver)(nil)
	_ BarcodePrinter = (*ESCPOSDriver)(nil)
)

// NewESCPOSDriver creates a driver. Nothing is opened until Connect.
func NewESCPOSDriver(cfg ESCPOSConfig, logger *zap.Logger) *ESCPOSDriver {
	if cfg.IOTimeout <= 0 {
		cfg.IOTimeout = defaultIOTimeout
	}
	d := &ESCPOSDriver{cfg: cfg, logger: logger}
	if d.cfg.Dialer == nil {
		d.cfg.Dialer = d.dial
	}
	return d
}

// Scan returns the paired devices from configuration and, when a discoverer
// is configured, printers answering on the network.
func (d *ESCPOSDriver) Scan(ctx context.Context) (ScanResult, error) {
	result := ScanResult{Paired: append([]models.ClassicPrinterDevice(nil), d.cfg.Paired...)}
	if d.cfg.Discoverer != nil {
		found, err := d.cfg.Discoverer.Discover(ctx)
		if err != nil {
			return result, fmt.Errorf("discover printers: %w", err)
		}
		result.Found = found
	}
	return result, nil
}

// Connect opens a stream to address, replacing any previous connection.
func (d *ESCPOSDriver) Connect(ctx context.Context, address string) error {
	conn, err := d.cfg.Dialer(ctx, address)
	if err != nil {
		return fmt.Errorf("connect %s: %w", address, err)
	}

	d.mu.Lock()
	prev := d.conn
	d.conn = conn
	d.address = address
	d.mu.Unlock()

	if prev != nil {
		if err := prev.Close(); err != nil {
			d.logger.Warn("closing previous printer connection", zap.Error(err))
		}
	}
	return nil
}

// Disconnect closes the open stream.
func (d *ESCPOSDriver) Disconnect(ctx context.Context, address string) error {
	d.mu.Lock()
	conn := d.conn
	current := d.address
	d.conn = nil
	d.address = ""
	d.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}
	if address != "" && address != current {
		d.logger.Warn("disconnect address differs from open connection",
			zap.String("requested", address), zap.String("open", current))
	}
	return conn.Close()
}

// Initialize resets the printer and selects the code page used by EncodeText.
func (d *ESCPOSDriver) Initialize(ctx context.Context) error {
	return d.write(ctx, []byte{ESC, '@', ESC, 't', codePage437})
}

func (d *ESCPOSDriver) SetAlignment(ctx context.Context, a Alignment) error {
	return d.write(ctx, alignBytes(a))
}

// PrintText prints text with the given magnification and font.
func (d *ESCPOSDriver) PrintText(ctx context.Context, text string, style TextStyle) error {
	var buf []byte
	buf = append(buf, GS, '!', sizeByte(style.WidthTimes, style.HeightTimes))
	buf = append(buf, ESC, 'M', byte(style.FontType&0x01))
	buf = append(buf, ESC, 'E', boolByte(style.Bold))
	buf = append(buf, EncodeText(text)...)
	// reset size so following directives are unaffected
	buf = append(buf, GS, '!', 0, ESC, 'E', 0)
	return d.write(ctx, buf)
}

// PrintBarcode prints a Code 128 barcode using GS k function B.
func (d *ESCPOSDriver) PrintBarcode(ctx context.Context, spec BarcodeSpec) error {
	if spec.Symbology != SymbologyCode128 {
		return fmt.Errorf("symbology %d: %w", spec.Symbology, ErrBarcodeUnsupported)
	}
	data, err := code128Data(spec.Data)
	if err != nil {
		return err
	}
	if len(data) > 255 {
		return fmt.Errorf("barcode data too long (%d bytes): %w", len(data), ErrBarcodeUnsupported)
	}

	var buf []byte
	buf = append(buf, alignBytes(spec.Alignment)...)
	buf = append(buf, GS, 'H', byte(spec.TextPosition))
	buf = append(buf, GS, 'h', clampByte(spec.Height, 1, 255))
	buf = append(buf, GS, 'w', clampByte(spec.Width, 2, 6))
	buf = append(buf, GS, 'k', byte(SymbologyCode128), byte(len(data)))
	buf = append(buf, data...)
	buf = append(buf, NL)
	return d.write(ctx, buf)
}

// Feed prints the buffer and advances the paper by units dots.
func (d *ESCPOSDriver) Feed(ctx context.Context, units int) error {
	var buf []byte
	for units > 0 {
		n := units
		if n > 255 {
			n = 255
		}
		buf = append(buf, ESC, 'J', byte(n))
		units -= n
	}
	if len(buf) == 0 {
		return nil
	}
	return d.write(ctx, buf)
}

// Close releases the open stream, if any.
func (d *ESCPOSDriver) Close() error {
	err := d.Disconnect(context.Background(), "")
	if errors.Is(err, ErrNotConnected) {
		return nil
	}
	return err
}

func (d *ESCPOSDriver) write(ctx context.Context, b []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return ErrNotConnected
	}

	if dl, ok := d.conn.(interface{ SetWriteDeadline(time.Time) error }); ok {
		deadline := time.Now().Add(d.cfg.IOTimeout)
		if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
			deadline = ctxDeadline
		}
		if err := dl.SetWriteDeadline(deadline); err != nil && !errors.Is(err, os.ErrNoDeadline) {
			return fmt.Errorf("set write deadline: %w", err)
		}
	}

	if _, err := d.conn.Write(b); err != nil {
		return fmt.Errorf("write to printer: %w", err)
	}
	return nil
}

// dial opens an RFCOMM serial device for Bluetooth addresses and device paths,
// and a TCP socket for anything else.
func (d *ESCPOSDriver) dial(ctx context.Context, address string) (io.ReadWriteCloser, error) {
	address = strings.TrimSpace(address)
	switch {
	case address == "":
		return nil, fmt.Errorf("printer address is empty")
	case strings.HasPrefix(address, "/"):
		return os.OpenFile(address, os.O_RDWR, 0)
	case macAddress.MatchString(address):
		path, ok := d.cfg.RFCOMM[strings.ToUpper(address)]
		if !ok {
			path, ok = d.cfg.RFCOMM[strings.ToLower(address)]
		}
		if !ok {
			return nil, fmt.Errorf("no rfcomm device bound for %s", address)
		}
		return os.OpenFile(path, os.O_RDWR, 0)
	}

	host := strings.TrimPrefix(address, "tcp://")
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, defaultPrinterPort)
	}
	dialer := net.Dialer{Timeout: d.cfg.IOTimeout}
	return dialer.DialContext(ctx, "tcp", host)
}

// EncodeText converts text to the single-byte code page selected by
// Initialize. Runes outside the code page become '?'.
func EncodeText(text string) []byte {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		if r < 0x80 {
			out = append(out, byte(r))
			continue
		}
		b, ok := charmap.CodePage437.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return out
}

// code128Data builds the GS k payload, which starts with a code set selector.
func code128Data(value string) ([]byte, error) {
	enc, err := barcode.Encode(value, barcode.SetB)
	if err != nil {
		return nil, err
	}
	if enc.StartSet == barcode.SetC {
		// Pairs are taken from the value itself; an odd last digit goes out
		// in Set B so the printed data never gains a leading zero.
		digits, tail := value, ""
		if len(digits)%2 == 1 {
			digits, tail = value[:len(value)-1], value[len(value)-1:]
		}
		data := []byte{'{', 'C'}
		for i := 0; i < len(digits); i += 2 {
			data = append(data, (digits[i]-'0')*10+(digits[i+1]-'0'))
		}
		if tail != "" {
			data = append(data, '{', 'B', tail[0])
		}
		return data, nil
	}
	prefix := []byte{'{', 'B'}
	if enc.StartSet == barcode.SetA {
		prefix = []byte{'{', 'A'}
	}
	data := prefix
	for i := 0; i < len(value); i++ {
		if value[i] == '{' {
			data = append(data, '{')
		}
		data = append(data, value[i])
	}
	return data, nil
}

func alignBytes(a Alignment) []byte {
	n := byte(0)
	switch a {
	case AlignCenter:
		n = 1
	case AlignRight:
		n = 2
	}
	return []byte{ESC, 'a', n}
}

func sizeByte(width, height int) byte {
	return clampByte(width, 0, 7)<<4 | clampByte(height, 0, 7)
}

func clampByte(v, lo, hi int) byte {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return byte(v)
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
