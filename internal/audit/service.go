package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/colloki/console/internal/rbac"
	"github.com/colloki/console/internal/shared"
	"github.com/colloki/console/internal/users"
)

// LogSource menyediakan audit trail per tenant.
type LogSource interface {
	FetchAuditLogs(ctx context.Context, tenantID string) ([]shared.AuditLog, error)
}

// Directory menyediakan daftar pengguna untuk resolusi nama.
type Directory interface {
	FetchUsers(ctx context.Context, tenantID string) ([]users.User, error)
}

// UserOption adalah pilihan pengguna untuk filter.
type UserOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Result membungkus hasil query audit.
type Result struct {
	Entries []shared.AuditLog `json:"entries"`
	Total   int               `json:"total"`
	Users   []UserOption      `json:"users"`
}

// Service mengoordinasikan pengambilan dan penyaringan audit log.
type Service struct {
	logs      LogSource
	directory Directory
	engine    *rbac.Engine
	logger    *slog.Logger
}

// NewService membuat service audit baru.
func NewService(logs LogSource, directory Directory, engine *rbac.Engine, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logs: logs, directory: directory, engine: engine, logger: logger}
}

// Query mengambil audit log tenant pemanggil yang sudah difilter.
func (s *Service) Query(ctx context.Context, c Criteria) (Result, error) {
	actor := rbac.PrincipalFromContext(ctx)
	if err := s.engine.Authorize(actor, shared.PermAuditLogsView); err != nil {
		return Result{}, err
	}
	entries, people, err := s.load(ctx, actor.GetTenantID())
	if err != nil {
		return Result{}, err
	}
	filtered := Filter(entries, c)
	return Result{Entries: filtered, Total: len(entries), Users: options(people)}, nil
}

// Export mengambil entri untuk diekspor; membutuhkan izin ekspor.
func (s *Service) Export(ctx context.Context, c Criteria) ([]shared.AuditLog, error) {
	actor := rbac.PrincipalFromContext(ctx)
	if err := s.engine.Authorize(actor, shared.PermAuditLogsExport); err != nil {
		return nil, err
	}
	entries, _, err := s.load(ctx, actor.GetTenantID())
	if err != nil {
		return nil, err
	}
	return Filter(entries, c), nil
}

// load mengambil log dan direktori secara paralel lalu memperbarui nama yang sudah usang.
// Pengguna yang sudah dihapus tetap memakai nama yang tersimpan di log.
func (s *Service) load(ctx context.Context, tenantID string) ([]shared.AuditLog, []users.User, error) {
	var (
		entries []shared.AuditLog
		people  []users.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = s.logs.FetchAuditLogs(gctx, tenantID)
		if err != nil {
			return fmt.Errorf("audit: fetch logs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		people, err = s.directory.FetchUsers(gctx, tenantID)
		if err != nil {
			return fmt.Errorf("audit: fetch users: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("audit: load", slog.String("tenant", tenantID), slog.Any("error", err))
		return nil, nil, err
	}
	names := make(map[string]string, len(people))
	for _, u := range people {
		names[u.ID] = u.Name
	}
	for i := range entries {
		if name, ok := names[entries[i].UserID]; ok && name != "" {
			entries[i].UserName = name
		}
	}
	return entries, people, nil
}

func options(people []users.User) []UserOption {
	out := make([]UserOption, 0, len(people))
	for _, u := range people {
		out = append(out, UserOption{ID: u.ID, Name: u.Name})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
