package roles

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/colloki/console/internal/rbac"
	"github.com/colloki/console/internal/shared"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	FetchRoles(ctx context.Context, tenantID string) ([]rbac.Role, error)
	UpdateRole(ctx context.Context, tenantID string, role rbac.Role) (rbac.Role, error)
}

// Service handles role business logic and keeps the engine catalog in step with the backend.
type Service struct {
	repo      RepositoryPort
	engine    *rbac.Engine
	audit     *shared.AuditLogger
	validator *shared.Validator
	logger    *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, engine *rbac.Engine, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, engine: engine, audit: audit, validator: shared.NewValidator(), logger: logger}
}

// List returns the caller tenant's roles.
func (s *Service) List(ctx context.Context) ([]rbac.Role, error) {
	actor := rbac.PrincipalFromContext(ctx)
	if err := s.engine.Authorize(actor, shared.PermRolesView); err != nil {
		return nil, err
	}
	return s.repo.FetchRoles(ctx, actor.GetTenantID())
}

// Refresh loads tenantID's catalog from the backend into the engine.
func (s *Service) Refresh(ctx context.Context, tenantID string) error {
	list, err := s.repo.FetchRoles(ctx, tenantID)
	if err != nil {
		return err
	}
	s.engine.LoadTenant(tenantID, list)
	return nil
}

// UpdatePermissions replaces the permission set of roleID. The engine sees the new set
// as soon as the backend accepts it.
func (s *Service) UpdatePermissions(ctx context.Context, roleID string, input PermissionsInput) (rbac.Role, error) {
	actor := rbac.PrincipalFromContext(ctx)
	if err := s.engine.Authorize(actor, shared.PermRolesManage); err != nil {
		return rbac.Role{}, err
	}
	if err := s.validator.Struct(input); err != nil {
		return rbac.Role{}, err
	}
	perms, verr := input.normalise()
	if verr != nil {
		return rbac.Role{}, verr
	}
	tenantID := actor.GetTenantID()
	list, err := s.repo.FetchRoles(ctx, tenantID)
	if err != nil {
		return rbac.Role{}, err
	}
	var target *rbac.Role
	for i := range list {
		if list[i].ID == roleID {
			target = &list[i]
			break
		}
	}
	if target == nil {
		return rbac.Role{}, shared.ErrNotFound("roles: %s not found", roleID)
	}
	if target.Name == actor.GetRole() && target.Name != rbac.SuperUser && !contains(perms, shared.PermRolesManage) {
		return rbac.Role{}, shared.ErrValidation("roles: cannot remove %s from your own role", shared.PermRolesManage)
	}
	target.Permissions = perms
	updated, err := s.repo.UpdateRole(ctx, tenantID, *target)
	if err != nil {
		return rbac.Role{}, err
	}
	s.engine.ReplaceRole(tenantID, updated)

	if s.audit != nil {
		err := s.audit.Record(ctx, tenantID, shared.AuditLog{
			UserID:   actor.GetID(),
			UserName: rbac.DisplayName(actor),
			Action:   shared.ActionRoleUpdate,
			Details:  fmt.Sprintf("Updated permissions for role %s (%d granted).", updated.Name, len(updated.Permissions)),
		})
		if err != nil {
			s.logger.Warn("roles: audit record", slog.Any("error", err))
		}
	}
	return updated, nil
}

func contains(list []shared.Permission, p shared.Permission) bool {
	for _, item := range list {
		if item == p {
			return true
		}
	}
	return false
}
