package settings

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memoryPersister struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	failErr error
}

func newMemoryPersister() *memoryPersister {
	return &memoryPersister{blobs: make(map[string][]byte)}
}

func (m *memoryPersister) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[key]
	if !ok {
		return nil, ErrNoState
	}
	return append([]byte(nil), blob...), nil
}

func (m *memoryPersister) Save(_ context.Context, key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.blobs[key] = append([]byte(nil), blob...)
	return nil
}

func strPtr(s string) *string { return &s }

func TestOpenWithoutStateUsesDefaults(t *testing.T) {
	store, err := Open(context.Background(), "tenant-9", newMemoryPersister())
	require.NoError(t, err)

	snap := store.Get()
	require.Equal(t, Defaults("tenant-9"), snap.TenantSettings)
	require.Equal(t, ThemeLight, snap.Theme)
}

func TestSetMergesPartially(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, "tenant-123", newMemoryPersister())
	require.NoError(t, err)
	before := store.Get()

	after, err := store.Set(ctx, Patch{PrimaryColor: strPtr("#000000")})
	require.NoError(t, err)
	require.Equal(t, "#000000", after.PrimaryColor)

	expected := before
	expected.PrimaryColor = "#000000"
	require.Equal(t, expected, after)
	require.Equal(t, []string{"primaryColor"}, Diff(before.TenantSettings, after.TenantSettings))
}

func TestResetRestoresDefaultsAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, "tenant-123", newMemoryPersister())
	require.NoError(t, err)

	yes := true
	_, err = store.Set(ctx, Patch{
		AppName:       strPtr("Acme"),
		SupportEmail:  strPtr("help@acme.io"),
		Enforce2FA:    &yes,
		Notifications: &Notifications{},
	})
	require.NoError(t, err)
	_, err = store.ToggleTheme(ctx)
	require.NoError(t, err)

	once, err := store.ResetToDefaults(ctx)
	require.NoError(t, err)
	require.Equal(t, Defaults("tenant-123"), once.TenantSettings)
	require.Equal(t, ThemeDark, once.Theme)

	twice, err := store.ResetToDefaults(ctx)
	require.NoError(t, err)
	require.Equal(t, once, twice)
}

func TestToggleThemeFlips(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, "tenant-123", newMemoryPersister())
	require.NoError(t, err)

	snap, err := store.ToggleTheme(ctx)
	require.NoError(t, err)
	require.Equal(t, ThemeDark, snap.Theme)
	snap, err = store.ToggleTheme(ctx)
	require.NoError(t, err)
	require.Equal(t, ThemeLight, snap.Theme)
}

func TestStateSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	persister := newMemoryPersister()
	store, err := Open(ctx, "tenant-123", persister)
	require.NoError(t, err)
	_, err = store.Set(ctx, Patch{AppName: strPtr("Reopened")})
	require.NoError(t, err)
	_, err = store.ToggleTheme(ctx)
	require.NoError(t, err)

	again, err := Open(ctx, "tenant-123", persister)
	require.NoError(t, err)
	require.Equal(t, store.Get(), again.Get())
	require.Contains(t, string(persister.blobs[StorageKey("tenant-123")]), `"version":1`)
}

func TestOpenFillsFieldsMissingFromOlderBlob(t *testing.T) {
	persister := newMemoryPersister()
	persister.blobs[StorageKey("tenant-123")] = []byte(`{"version":1,"state":{"appName":"Legacy","theme":"dark"}}`)

	store, err := Open(context.Background(), "tenant-123", persister)
	require.NoError(t, err)
	snap := store.Get()
	require.Equal(t, "Legacy", snap.AppName)
	require.Equal(t, ThemeDark, snap.Theme)
	require.Equal(t, "#3b82f6", snap.PrimaryColor)
	require.Equal(t, "tenant-123", snap.TenantID)
}

func TestOpenRejectsCorruptedState(t *testing.T) {
	cases := map[string]string{
		"garbage":         `{not json`,
		"unknown version": `{"version":7,"state":{}}`,
		"missing state":   `{"version":1}`,
		"bad field type":  `{"version":1,"state":{"sessionTimeout":"soon"}}`,
	}
	for name, blob := range cases {
		t.Run(name, func(t *testing.T) {
			persister := newMemoryPersister()
			persister.blobs[StorageKey("tenant-123")] = []byte(blob)
			_, err := Open(context.Background(), "tenant-123", persister)
			require.Error(t, err)
		})
	}
}

func TestFailedPersistKeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	persister := newMemoryPersister()
	store, err := Open(ctx, "tenant-123", persister)
	require.NoError(t, err)

	persister.failErr = errors.New("disk full")
	_, err = store.Set(ctx, Patch{AppName: strPtr("Lost")})
	require.Error(t, err)
	require.Equal(t, "Colloki", store.Get().AppName)
}

func TestRegistryIsolatesTenants(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(newMemoryPersister())

	a, err := reg.For(ctx, "tenant-a")
	require.NoError(t, err)
	b, err := reg.For(ctx, "tenant-b")
	require.NoError(t, err)
	_, err = a.Set(ctx, Patch{AppName: strPtr("Alpha")})
	require.NoError(t, err)

	require.Equal(t, "Colloki", b.Get().AppName)
	same, err := reg.For(ctx, "tenant-a")
	require.NoError(t, err)
	require.Same(t, a, same)
}

// slowPersister parks Load calls for one key until release is closed.
type slowPersister struct {
	*memoryPersister
	key     string
	entered chan struct{}
	release chan struct{}
}

func (p *slowPersister) Load(ctx context.Context, key string) ([]byte, error) {
	if key == p.key {
		p.entered <- struct{}{}
		<-p.release
	}
	return p.memoryPersister.Load(ctx, key)
}

func TestRegistryOpensOutsideLock(t *testing.T) {
	ctx := context.Background()
	persister := &slowPersister{
		memoryPersister: newMemoryPersister(),
		key:             StorageKey("tenant-slow"),
		entered:         make(chan struct{}, 2),
		release:         make(chan struct{}),
	}
	reg := NewRegistry(persister)

	stores := make([]*Store, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stores[i], errs[i] = reg.For(ctx, "tenant-slow")
		}(i)
	}
	<-persister.entered

	fast, err := reg.For(ctx, "tenant-fast")
	require.NoError(t, err)
	require.Equal(t, "tenant-fast", fast.Get().TenantID)

	close(persister.release)
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	require.Same(t, stores[0], stores[1])
	again, err := reg.For(ctx, "tenant-slow")
	require.NoError(t, err)
	require.Same(t, stores[0], again)
}

func TestRedisPersisterRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()
	persister := NewRedisPersister(client)

	_, err := persister.Load(ctx, "missing")
	require.ErrorIs(t, err, ErrNoState)

	store, err := Open(ctx, "tenant-123", persister)
	require.NoError(t, err)
	_, err = store.Set(ctx, Patch{SecondaryColor: strPtr("#111111")})
	require.NoError(t, err)
	require.True(t, mr.Exists("colloki-settings-storage:tenant-123"))

	again, err := Open(ctx, "tenant-123", persister)
	require.NoError(t, err)
	require.Equal(t, "#111111", again.Get().SecondaryColor)
}
