package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/colloki/console/internal/rbac"
	"github.com/colloki/console/internal/shared"
)

// RemotePort is the backend holding the tenant's authoritative settings.
type RemotePort interface {
	FetchTenantSettings(ctx context.Context, tenantID string) (TenantSettings, error)
	UpdateTenantSettings(ctx context.Context, tenantID string, patch Patch) (TenantSettings, error)
}

// View is what the settings form renders. Dirty is recomputed from the baseline on every call.
type View struct {
	Settings    TenantSettings `json:"settings"`
	Theme       Theme          `json:"theme"`
	Dirty       bool           `json:"dirty"`
	DirtyFields []string       `json:"dirtyFields"`
}

// baseline is the last remote-confirmed record of one tenant plus the sequence
// bookkeeping used to drop out-of-order responses.
type baseline struct {
	settings TenantSettings
	issued   uint64
	applied  uint64
}

// Service is the settings form layer: local edits go to the Store, Save and Sync talk to the
// remote backend and move the baseline.
type Service struct {
	stores    *Registry
	remote    RemotePort
	engine    *rbac.Engine
	audit     *shared.AuditLogger
	validator *shared.Validator
	logger    *slog.Logger

	mu        sync.Mutex
	baselines map[string]*baseline
}

// NewService builds Service instance.
func NewService(stores *Registry, remote RemotePort, engine *rbac.Engine, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		stores:    stores,
		remote:    remote,
		engine:    engine,
		audit:     audit,
		validator: shared.NewValidator(),
		logger:    logger,
		baselines: make(map[string]*baseline),
	}
}

// Current returns a tenant's local snapshot without an authorization check.
// Used by internal collaborators such as the second-factor gate.
func (s *Service) Current(ctx context.Context, tenantID string) (Snapshot, error) {
	store, err := s.stores.For(ctx, tenantID)
	if err != nil {
		return Snapshot{}, err
	}
	return store.Get(), nil
}

// View returns the caller tenant's settings and dirty state.
func (s *Service) View(ctx context.Context) (View, error) {
	store, _, err := s.open(ctx, shared.PermSettingsView)
	if err != nil {
		return View{}, err
	}
	return s.view(store.Get()), nil
}

// Update merges patch into the local record. Nothing is sent to the backend.
func (s *Service) Update(ctx context.Context, patch Patch) (View, error) {
	store, _, err := s.open(ctx, shared.PermSettingsManage)
	if err != nil {
		return View{}, err
	}
	if err := s.validator.Struct(patch); err != nil {
		return View{}, err
	}
	snap, err := store.Set(ctx, patch)
	if err != nil {
		return View{}, err
	}
	return s.view(snap), nil
}

// Save pushes the full local record to the backend and re-baselines on success.
// A response overtaken by a later Save or Sync is dropped.
func (s *Service) Save(ctx context.Context) (View, error) {
	store, actor, err := s.open(ctx, shared.PermSettingsManage)
	if err != nil {
		return View{}, err
	}
	tenantID := store.TenantID()
	snap := store.Get()
	changed := s.dirtyFields(snap.TenantSettings)

	seq := s.issue(tenantID)
	saved, err := s.remote.UpdateTenantSettings(ctx, tenantID, PatchFrom(snap.TenantSettings))
	if err != nil {
		return View{}, err
	}
	if !s.accept(tenantID, seq, saved) {
		s.logger.Info("settings: dropped stale save response", slog.String("tenant", tenantID), slog.Uint64("seq", seq))
		return s.view(store.Get()), nil
	}
	s.record(ctx, actor, shared.ActionSettingsUpdate, fmt.Sprintf("Updated tenant settings (%s).", describe(changed)))
	return s.view(store.Get()), nil
}

// Sync replaces the local record and baseline with the backend's record.
func (s *Service) Sync(ctx context.Context) (View, error) {
	store, _, err := s.open(ctx, shared.PermSettingsView)
	if err != nil {
		return View{}, err
	}
	tenantID := store.TenantID()
	seq := s.issue(tenantID)
	remote, err := s.remote.FetchTenantSettings(ctx, tenantID)
	if err != nil {
		return View{}, err
	}
	if !s.accept(tenantID, seq, remote) {
		s.logger.Info("settings: dropped stale sync response", slog.String("tenant", tenantID), slog.Uint64("seq", seq))
		return s.view(store.Get()), nil
	}
	snap, err := store.Set(ctx, PatchFrom(remote))
	if err != nil {
		return View{}, err
	}
	return s.view(snap), nil
}

// Reset restores the default table locally. It is destructive, so callers must confirm.
func (s *Service) Reset(ctx context.Context, confirmed bool) (View, error) {
	store, actor, err := s.open(ctx, shared.PermSettingsManage)
	if err != nil {
		return View{}, err
	}
	if !confirmed {
		return View{}, &shared.ValidationError{
			Message: "settings: reset must be confirmed",
			Fields:  map[string]string{"confirm": "required"},
		}
	}
	snap, err := store.ResetToDefaults(ctx)
	if err != nil {
		return View{}, err
	}
	s.record(ctx, actor, shared.ActionSettingsReset, "Reset tenant settings to defaults.")
	return s.view(snap), nil
}

// ToggleTheme flips the caller tenant's theme. Any signed-in user may do this.
func (s *Service) ToggleTheme(ctx context.Context) (View, error) {
	store, _, err := s.open(ctx)
	if err != nil {
		return View{}, err
	}
	snap, err := store.ToggleTheme(ctx)
	if err != nil {
		return View{}, err
	}
	return s.view(snap), nil
}

func (s *Service) open(ctx context.Context, perms ...shared.Permission) (*Store, rbac.Principal, error) {
	actor := rbac.PrincipalFromContext(ctx)
	if err := s.engine.Authorize(actor, perms...); err != nil {
		return nil, nil, err
	}
	store, err := s.stores.For(ctx, actor.GetTenantID())
	if err != nil {
		return nil, nil, err
	}
	s.mu.Lock()
	s.baselineLocked(store.TenantID(), store.Get().TenantSettings)
	s.mu.Unlock()
	return store, actor, nil
}

func (s *Service) view(snap Snapshot) View {
	fields := s.dirtyFields(snap.TenantSettings)
	if fields == nil {
		fields = []string{}
	}
	return View{
		Settings:    snap.TenantSettings,
		Theme:       snap.Theme,
		Dirty:       len(fields) > 0,
		DirtyFields: fields,
	}
}

// dirtyFields diffs current against the tenant baseline. A tenant seen for the first time
// takes its record as it was before the first edit as baseline.
func (s *Service) dirtyFields(current TenantSettings) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.baselineLocked(current.TenantID, current)
	return Diff(b.settings, current)
}

func (s *Service) baselineLocked(tenantID string, seed TenantSettings) *baseline {
	b, ok := s.baselines[tenantID]
	if !ok {
		b = &baseline{settings: seed}
		s.baselines[tenantID] = b
	}
	return b
}

func (s *Service) issue(tenantID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.baselineLocked(tenantID, Defaults(tenantID))
	b.issued++
	return b.issued
}

// accept moves the baseline to confirmed when seq is newer than anything applied so far.
func (s *Service) accept(tenantID string, seq uint64, confirmed TenantSettings) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.baselines[tenantID]
	if seq <= b.applied {
		return false
	}
	b.applied = seq
	b.settings = confirmed
	return true
}

func (s *Service) record(ctx context.Context, actor rbac.Principal, action, details string) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, actor.GetTenantID(), shared.AuditLog{
		UserID:   actor.GetID(),
		UserName: rbac.DisplayName(actor),
		Action:   action,
		Details:  details,
	})
	if err != nil {
		s.logger.Warn("settings: audit record", slog.String("action", action), slog.Any("error", err))
	}
}

func describe(fields []string) string {
	if len(fields) == 0 {
		return "no changes"
	}
	return strings.Join(fields, ", ")
}
