package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/szytools/discount-label-service/internal/models"
)

const defaultConfigPath = "configs/development.yaml"

// Storage drivers
const (
	StoragePostgres = "postgres"
	StorageFile     = "file"
	StorageMemory   = "memory"
)

// Printer drivers
const (
	PrinterESCPOS = "escpos"
	PrinterNone   = "none"
)

type Config struct {
	Server Server `yaml:"server"`

	Database Database `yaml:"database"`

	JWT JWT `yaml:"jwt"`

	Lookup Lookup `yaml:"lookup"`

	Printer Printer `yaml:"printer"`

	Storage Storage `yaml:"storage"`

	Log Log `yaml:"log"`
}

type Server struct {
	Address string `yaml:"address"`
	Mode    string `yaml:"mode"`
}

type JWT struct {
	Secret    string `yaml:"secret"`
	ExpiresIn int    `yaml:"expires_in"` // In Hours
}

type Database struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// Lookup points at the tools backend used for product lookup and discount
// registration.
type Lookup struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type Printer struct {
	// Driver is "escpos" or "none". With "none" every printer operation is a no-op.
	Driver    string                        `yaml:"driver"`
	Paired    []models.ClassicPrinterDevice `yaml:"paired"`
	RFCOMM    map[string]string             `yaml:"rfcomm"`
	IOTimeout time.Duration                 `yaml:"io_timeout"`
	Discovery Discovery                     `yaml:"discovery"`
	WideLabel bool                          `yaml:"wide_label"`
	Settings  models.PrinterSettings        `yaml:"settings"`
}

type Discovery struct {
	Enabled      bool          `yaml:"enabled"`
	Subnet       string        `yaml:"subnet"`
	Port         int           `yaml:"port"`
	Workers      int           `yaml:"workers"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

type Storage struct {
	Driver     string `yaml:"driver"`
	FilePath   string `yaml:"file_path"`
	Migrations string `yaml:"migrations"`
}

type Log struct {
	Level string `yaml:"level"`
}

// Load reads the config file named by CONFIG_PATH, or configs/development.yaml.
func Load() (*Config, error) {
	configPath := defaultConfigPath
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	return LoadFile(configPath)
}

// LoadFile reads and validates the config at path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "development"
	}
	if c.JWT.ExpiresIn == 0 {
		c.JWT.ExpiresIn = 12
	}
	if c.Lookup.Timeout <= 0 {
		c.Lookup.Timeout = 15 * time.Second
	}
	if c.Printer.Driver == "" {
		c.Printer.Driver = PrinterESCPOS
	}
	if c.Printer.IOTimeout <= 0 {
		c.Printer.IOTimeout = 5 * time.Second
	}
	if c.Printer.Discovery.Port == 0 {
		c.Printer.Discovery.Port = 9100
	}
	if c.Printer.Settings == (models.PrinterSettings{}) {
		c.Printer.Settings = models.DefaultPrinterSettings()
	}
	if c.Printer.WideLabel {
		c.Printer.Settings = c.Printer.Settings.WithWideLabel(true)
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageFile
	}
	if c.Storage.Migrations == "" {
		c.Storage.Migrations = "file://migrations"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) validate() error {
	if c.Lookup.BaseURL == "" {
		return fmt.Errorf("lookup.base_url is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	switch c.Storage.Driver {
	case StoragePostgres, StorageFile, StorageMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Printer.Driver {
	case PrinterESCPOS, PrinterNone:
	default:
		return fmt.Errorf("unknown printer driver %q", c.Printer.Driver)
	}
	return nil
}
