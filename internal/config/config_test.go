package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szytools/discount-label-service/internal/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
lookup:
  base_url: http://tools.local/api
jwt:
  secret: s3cret
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 15*time.Second, cfg.Lookup.Timeout)
	assert.Equal(t, PrinterESCPOS, cfg.Printer.Driver)
	assert.Equal(t, 5*time.Second, cfg.Printer.IOTimeout)
	assert.Equal(t, 9100, cfg.Printer.Discovery.Port)
	assert.Equal(t, models.DefaultPrinterSettings(), cfg.Printer.Settings)
	assert.Equal(t, StorageFile, cfg.Storage.Driver)
	assert.Equal(t, "file://migrations", cfg.Storage.Migrations)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFile_Full(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":9000"
  mode: production
lookup:
  base_url: http://tools.local/api
  timeout: 3s
jwt:
  secret: s3cret
  expires_in: 8
printer:
  driver: none
  io_timeout: 2s
  wide_label: true
  paired:
    - name: Kasir 1
      address: "00:11:22:33:44:55"
  rfcomm:
    "00:11:22:33:44:55": /dev/rfcomm0
  discovery:
    enabled: true
    subnet: 192.168.10
    probe_timeout: 150ms
storage:
  driver: postgres
database:
  host: db
  user: label
  dbname: labels
log:
  level: debug
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Server.Mode)
	assert.Equal(t, 3*time.Second, cfg.Lookup.Timeout)
	assert.Equal(t, 8, cfg.JWT.ExpiresIn)
	assert.Equal(t, PrinterNone, cfg.Printer.Driver)
	assert.Equal(t, 2*time.Second, cfg.Printer.IOTimeout)
	require.Len(t, cfg.Printer.Paired, 1)
	assert.Equal(t, "Kasir 1", cfg.Printer.Paired[0].Name)
	assert.Equal(t, "/dev/rfcomm0", cfg.Printer.RFCOMM["00:11:22:33:44:55"])
	assert.True(t, cfg.Printer.Discovery.Enabled)
	assert.Equal(t, 150*time.Millisecond, cfg.Printer.Discovery.ProbeTimeout)
	assert.True(t, cfg.Printer.Settings.IsWide())
	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing base url", "jwt:\n  secret: x\n"},
		{"missing secret", "lookup:\n  base_url: http://x\n"},
		{"bad storage", "lookup:\n  base_url: http://x\njwt:\n  secret: x\nstorage:\n  driver: redis\n"},
		{"bad printer", "lookup:\n  base_url: http://x\njwt:\n  secret: x\nprinter:\n  driver: zebra\n"},
		{"not yaml", "lookup: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	path := writeConfig(t, "lookup:\n  base_url: http://x\njwt:\n  secret: x\n")
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://x", cfg.Lookup.BaseURL)
}
