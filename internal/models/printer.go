package models

// PrinterSource tells where a device entry came from during a scan.
type PrinterSource string

const (
	PrinterSourcePaired     PrinterSource = "paired"
	PrinterSourceDiscovered PrinterSource = "discovered"
)

// ClassicPrinterDevice is a printer found by a peripheral scan. Address is the
// stable identity of the device.
type ClassicPrinterDevice struct {
	Name    string        `json:"name" yaml:"name"`
	Address string        `json:"address" yaml:"address"`
	Source  PrinterSource `json:"source,omitempty" yaml:"-"`
}

// ConnectionInfo describes the printer identity held by the connection
// manager. Both fields are empty when nothing is connected.
type ConnectionInfo struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// Connected reports whether the info names a printer.
func (c ConnectionInfo) Connected() bool {
	return c.Address != ""
}

// ConnectRequest is used to open a printer connection.
type ConnectRequest struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}
