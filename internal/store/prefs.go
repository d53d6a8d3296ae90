package store

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/szytools/discount-label-service/internal/models"
)

const (
	KeyLastPrinterAddress = "lastPrinterAddress"
	KeyLastPrinterName    = "lastPrinterName"
	KeyDeviceIDByUsername = "device_id_by_username"
)

// Prefs wraps a KV with best-effort semantics: storage failures are logged
// and reported as false instead of being returned to callers.
type Prefs struct {
	kv     KV
	logger *zap.Logger
}

func NewPrefs(kv KV, logger *zap.Logger) *Prefs {
	return &Prefs{kv: kv, logger: logger}
}

// GetString returns the value for key. ok is false when the key is missing
// or the store could not be read.
func (p *Prefs) GetString(ctx context.Context, key string) (string, bool) {
	v, ok, err := p.kv.Get(ctx, key)
	if err != nil {
		p.logger.Warn("store read failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return v, ok
}

func (p *Prefs) SetString(ctx context.Context, key, value string) bool {
	if err := p.kv.Set(ctx, key, value); err != nil {
		p.logger.Warn("store write failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (p *Prefs) Remove(ctx context.Context, key string) bool {
	if err := p.kv.Remove(ctx, key); err != nil {
		p.logger.Warn("store remove failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// GetJSON decodes the JSON value stored under key into v. A missing key or
// an undecodable value reports false and leaves v untouched.
func (p *Prefs) GetJSON(ctx context.Context, key string, v any) bool {
	raw, ok := p.GetString(ctx, key)
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		p.logger.Warn("stored value is not valid json", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (p *Prefs) SetJSON(ctx context.Context, key string, v any) bool {
	raw, err := json.Marshal(v)
	if err != nil {
		p.logger.Warn("encode stored value", zap.String("key", key), zap.Error(err))
		return false
	}
	return p.SetString(ctx, key, string(raw))
}

// SaveLastPrinter remembers the printer used most recently.
func (p *Prefs) SaveLastPrinter(ctx context.Context, info models.ConnectionInfo) bool {
	if !p.SetString(ctx, KeyLastPrinterAddress, info.Address) {
		return false
	}
	return p.SetString(ctx, KeyLastPrinterName, info.Name)
}

// LastPrinter returns the remembered printer. ok is false when no address
// was stored.
func (p *Prefs) LastPrinter(ctx context.Context) (models.ConnectionInfo, bool) {
	address, ok := p.GetString(ctx, KeyLastPrinterAddress)
	if !ok || address == "" {
		return models.ConnectionInfo{}, false
	}
	name, _ := p.GetString(ctx, KeyLastPrinterName)
	if name == "" {
		name = address
	}
	return models.ConnectionInfo{Address: address, Name: name}, true
}

// ForgetLastPrinter drops the remembered printer.
func (p *Prefs) ForgetLastPrinter(ctx context.Context) bool {
	a := p.Remove(ctx, KeyLastPrinterAddress)
	n := p.Remove(ctx, KeyLastPrinterName)
	return a && n
}
