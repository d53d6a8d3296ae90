package service

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/szytools/discount-label-service/internal/store"
)

// GlobalDeviceUser is the username used for the shared device id.
const GlobalDeviceUser = "_global"

// DeviceIDService hands out a stable random device id per username. Ids are
// cached in the preference store; a lost store only means new ids.
type DeviceIDService struct {
	prefs *store.Prefs
	mu    sync.Mutex
}

// NewDeviceIDService creates a device id service
func NewDeviceIDService(prefs *store.Prefs) *DeviceIDService {
	return &DeviceIDService{prefs: prefs}
}

// GetOrCreate returns the device id for username, creating and storing one
// on first use. A blank username gets a fresh id that is not stored.
func (s *DeviceIDService) GetOrCreate(ctx context.Context, username string) string {
	name := strings.ToLower(strings.TrimSpace(username))
	if name == "" {
		return uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := map[string]string{}
	if !s.prefs.GetJSON(ctx, store.KeyDeviceIDByUsername, &ids) || ids == nil {
		ids = map[string]string{}
	}
	if id, ok := ids[name]; ok && id != "" {
		return id
	}

	id := uuid.NewString()
	ids[name] = id
	s.prefs.SetJSON(ctx, store.KeyDeviceIDByUsername, ids)
	return id
}

// Global returns the device id shared by all users of this host.
func (s *DeviceIDService) Global(ctx context.Context) string {
	return s.GetOrCreate(ctx, GlobalDeviceUser)
}
