package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// KeyPrefix names the durable record holding a tenant's settings and theme.
const KeyPrefix = "colloki-settings-storage"

const stateVersion = 1

// ErrNoState is returned by a Persister when nothing was stored under the key.
var ErrNoState = errors.New("settings: no persisted state")

// Persister is durable key-value storage for the settings blob.
type Persister interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
}

// Snapshot is the full store state: the settings record plus the theme.
type Snapshot struct {
	TenantSettings
	Theme Theme `json:"theme"`
}

type envelope struct {
	Version int             `json:"version"`
	State   json.RawMessage `json:"state"`
}

// StorageKey returns the persistence key for tenantID.
func StorageKey(tenantID string) string {
	return KeyPrefix + ":" + tenantID
}

// Store holds one tenant's settings. Every mutation is written through to the persister;
// a failed write leaves the previous state in place.
type Store struct {
	mu        sync.Mutex
	tenantID  string
	state     Snapshot
	persister Persister
}

// Open restores the tenant's store, falling back to defaults when nothing is persisted.
// A corrupted or unknown-version blob is an error.
func Open(ctx context.Context, tenantID string, persister Persister) (*Store, error) {
	if tenantID == "" {
		return nil, errors.New("settings: tenant id required")
	}
	if persister == nil {
		return nil, errors.New("settings: persister required")
	}
	s := &Store{
		tenantID:  tenantID,
		state:     Snapshot{TenantSettings: Defaults(tenantID), Theme: ThemeLight},
		persister: persister,
	}
	blob, err := persister.Load(ctx, StorageKey(tenantID))
	switch {
	case errors.Is(err, ErrNoState):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("settings: load %s: %w", tenantID, err)
	}
	state, err := decodeState(blob, s.state)
	if err != nil {
		return nil, fmt.Errorf("settings: restore %s: %w", tenantID, err)
	}
	state.TenantID = tenantID
	s.state = state
	return s, nil
}

// decodeState overlays the persisted state on base so fields missing from older blobs keep their defaults.
func decodeState(blob []byte, base Snapshot) (Snapshot, error) {
	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return Snapshot{}, err
	}
	if env.Version != stateVersion {
		return Snapshot{}, fmt.Errorf("unsupported state version %d", env.Version)
	}
	if len(env.State) == 0 {
		return Snapshot{}, errors.New("empty state")
	}
	state := base
	if err := json.Unmarshal(env.State, &state); err != nil {
		return Snapshot{}, err
	}
	if state.Theme != ThemeLight && state.Theme != ThemeDark {
		state.Theme = ThemeLight
	}
	return state, nil
}

func encodeState(state Snapshot) ([]byte, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Version: stateVersion, State: raw})
}

// TenantID returns the tenant the store belongs to.
func (s *Store) TenantID() string { return s.tenantID }

// Get returns a copy of the current state.
func (s *Store) Get() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Set merges patch into the settings. Values are not validated here.
func (s *Store) Set(ctx context.Context, patch Patch) (Snapshot, error) {
	return s.mutate(ctx, func(cur Snapshot) Snapshot {
		cur.TenantSettings = patch.Apply(cur.TenantSettings)
		return cur
	})
}

// ResetToDefaults replaces every field except the tenant id with the default table.
// The theme is kept.
func (s *Store) ResetToDefaults(ctx context.Context) (Snapshot, error) {
	return s.mutate(ctx, func(cur Snapshot) Snapshot {
		cur.TenantSettings = Defaults(s.tenantID)
		return cur
	})
}

// ToggleTheme flips light and dark.
func (s *Store) ToggleTheme(ctx context.Context) (Snapshot, error) {
	return s.mutate(ctx, func(cur Snapshot) Snapshot {
		cur.Theme = cur.Theme.Toggle()
		return cur
	})
}

func (s *Store) mutate(ctx context.Context, fn func(Snapshot) Snapshot) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := fn(s.state)
	next.TenantID = s.tenantID
	blob, err := encodeState(next)
	if err != nil {
		return s.state, fmt.Errorf("settings: encode: %w", err)
	}
	if err := s.persister.Save(ctx, StorageKey(s.tenantID), blob); err != nil {
		return s.state, fmt.Errorf("settings: persist %s: %w", s.tenantID, err)
	}
	s.state = next
	return next, nil
}

// Registry opens one Store per tenant on first use.
type Registry struct {
	mu        sync.Mutex
	persister Persister
	stores    map[string]*Store
}

// NewRegistry builds a Registry backed by persister.
func NewRegistry(persister Persister) *Registry {
	return &Registry{persister: persister, stores: make(map[string]*Store)}
}

// For returns the tenant's store, opening it if needed. The persister is read without
// holding the registry lock; when two callers race, the first store inserted wins.
func (r *Registry) For(ctx context.Context, tenantID string) (*Store, error) {
	r.mu.Lock()
	s, ok := r.stores[tenantID]
	r.mu.Unlock()
	if ok {
		return s, nil
	}
	opened, err := Open(ctx, tenantID, r.persister)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[tenantID]; ok {
		return s, nil
	}
	r.stores[tenantID] = opened
	return opened, nil
}
