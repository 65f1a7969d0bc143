package files

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/colloki/console/internal/rbac"
	"github.com/colloki/console/internal/shared"
)

// RepositoryPort defines data access methods for files.
type RepositoryPort interface {
	FetchFiles(ctx context.Context, tenantID string) ([]TenantFile, error)
	DeleteFile(ctx context.Context, tenantID, fileID string) (shared.Outcome, error)
}

// Service handles file listing and removal.
type Service struct {
	repo   RepositoryPort
	engine *rbac.Engine
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, engine *rbac.Engine, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, engine: engine, audit: audit, logger: logger}
}

// List returns the tenant's files. Records failing validation are skipped and logged.
func (s *Service) List(ctx context.Context) ([]TenantFile, error) {
	actor := rbac.PrincipalFromContext(ctx)
	if err := s.engine.Authorize(actor, shared.PermFilesView); err != nil {
		return nil, err
	}
	all, err := s.repo.FetchFiles(ctx, actor.GetTenantID())
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, f := range all {
		if err := f.Validate(); err != nil {
			s.logger.Warn("files: skipping invalid record", slog.String("id", f.ID), slog.Any("error", err))
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// Delete removes a file. A missing id yields OutcomeNotFound.
func (s *Service) Delete(ctx context.Context, id string) (shared.Outcome, error) {
	actor := rbac.PrincipalFromContext(ctx)
	if err := s.engine.Authorize(actor, shared.PermFilesManage); err != nil {
		return "", err
	}
	outcome, err := s.repo.DeleteFile(ctx, actor.GetTenantID(), id)
	if err != nil {
		return "", err
	}
	if outcome == shared.OutcomeDeleted && s.audit != nil {
		err := s.audit.Record(ctx, actor.GetTenantID(), shared.AuditLog{
			UserID:   actor.GetID(),
			UserName: rbac.DisplayName(actor),
			Action:   shared.ActionFileDelete,
			Details:  fmt.Sprintf("Deleted file %s.", id),
		})
		if err != nil {
			s.logger.Warn("files: audit record", slog.Any("error", err))
		}
	}
	return outcome, nil
}
