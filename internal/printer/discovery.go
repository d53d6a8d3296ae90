package printer

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/szytools/discount-label-service/internal/models"
)

const (
	defaultProbeWorkers = 50
	defaultProbeTimeout = 300 * time.Millisecond
)

// Discoverer finds network printers by probing the raw printing port on every
// host of a /24 subnet.
type Discoverer struct {
	// Subnet is the first three octets, e.g. "192.168.1". Empty means the
	// subnet of the first non-loopback IPv4 interface.
	Subnet       string
	Port         int
	Workers      int
	ProbeTimeout time.Duration

	// Probe reports whether addr accepts connections. Defaults to a TCP dial.
	Probe func(ctx context.Context, addr string, timeout time.Duration) bool

	Logger *zap.Logger
}

// Discover probes hosts .1 through .254 and returns the ones that answered,
// ordered by host number.
func (d *Discoverer) Discover(ctx context.Context) ([]models.ClassicPrinterDevice, error) {
	subnet := strings.TrimSpace(d.Subnet)
	if subnet == "" {
		localIP, err := detectLocalIP()
		if err != nil {
			return nil, err
		}
		parts := strings.Split(localIP, ".")
		subnet = strings.Join(parts[:3], ".")
	}

	port := d.Port
	if port == 0 {
		port = 9100
	}
	workers := d.Workers
	if workers <= 0 {
		workers = defaultProbeWorkers
	}
	timeout := d.ProbeTimeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	probe := d.Probe
	if probe == nil {
		probe = tcpProbe
	}

	if d.Logger != nil {
		d.Logger.Info("scanning subnet for printers", zap.String("subnet", subnet+".0/24"), zap.Int("port", port))
	}

	hosts := make(chan int)
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		found = make([]bool, 255)
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for host := range hosts {
				addr := net.JoinHostPort(fmt.Sprintf("%s.%d", subnet, host), strconv.Itoa(port))
				if probe(ctx, addr, timeout) {
					mu.Lock()
					found[host] = true
					mu.Unlock()
				}
			}
		}()
	}

feed:
	for host := 1; host <= 254; host++ {
		select {
		case hosts <- host:
		case <-ctx.Done():
			break feed
		}
	}
	close(hosts)
	wg.Wait()

	var devices []models.ClassicPrinterDevice
	for host, ok := range found {
		if !ok {
			continue
		}
		addr := net.JoinHostPort(fmt.Sprintf("%s.%d", subnet, host), strconv.Itoa(port))
		devices = append(devices, models.ClassicPrinterDevice{
			Name:    "ESC/POS " + addr,
			Address: addr,
			Source:  models.PrinterSourceDiscovered,
		})
	}
	return devices, ctx.Err()
}

func tcpProbe(ctx context.Context, addr string, timeout time.Duration) bool {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func detectLocalIP() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			return ipnet.IP.String(), nil
		}
	}
	return "", fmt.Errorf("no local IPv4 address found")
}
