package users

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/colloki/console/internal/rbac"
	"github.com/colloki/console/internal/shared"
)

// Outcome reports what a delete did.
type Outcome = shared.Outcome

// Delete outcomes.
const (
	OutcomeDeleted  = shared.OutcomeDeleted
	OutcomeNotFound = shared.OutcomeNotFound
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	FetchUsers(ctx context.Context, tenantID string) ([]User, error)
	CreateUser(ctx context.Context, tenantID string, input CreateInput) (User, error)
	UpdateUser(ctx context.Context, tenantID string, user User) (User, error)
	DeleteUser(ctx context.Context, tenantID, userID string) (Outcome, error)
}

// Service handles user business logic. Every call is authorised against the principal in ctx.
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

// List returns the users of the caller's tenant.
func (s *Service) List(ctx context.Context) ([]User, error) {
	actor, err := s.authorize(ctx, shared.PermUsersView)
	if err != nil {
		return nil, err
	}
	return s.repo.FetchUsers(ctx, actor.GetTenantID())
}

// Create adds a user to the caller's tenant.
func (s *Service) Create(ctx context.Context, input CreateInput) (User, error) {
	actor, err := s.authorize(ctx, shared.PermUsersManage)
	if err != nil {
		return User{}, err
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if err := s.validator.Struct(input); err != nil {
		return User{}, err
	}
	created, err := s.repo.CreateUser(ctx, actor.GetTenantID(), input)
	if err != nil {
		return User{}, err
	}
	s.record(ctx, actor, shared.ActionUserCreate, fmt.Sprintf("Created user %s (%s).", created.Name, created.Role))
	return created, nil
}

// Update changes name, email or role of an existing user.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (User, error) {
	actor, err := s.authorize(ctx, shared.PermUsersManage)
	if err != nil {
		return User{}, err
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if err := s.validator.Struct(input); err != nil {
		return User{}, err
	}
	current, err := s.find(ctx, actor.GetTenantID(), id)
	if err != nil {
		return User{}, err
	}
	current.Name, current.Email, current.Role = input.Name, input.Email, input.Role
	updated, err := s.repo.UpdateUser(ctx, actor.GetTenantID(), current)
	if err != nil {
		return User{}, err
	}
	s.record(ctx, actor, shared.ActionUserUpdate, fmt.Sprintf("Updated profile for user %s.", updated.Name))
	return updated, nil
}

// Delete removes a user. A missing id is reported as OutcomeNotFound, not an error.
func (s *Service) Delete(ctx context.Context, id string) (Outcome, error) {
	actor, err := s.authorize(ctx, shared.PermUsersManage)
	if err != nil {
		return "", err
	}
	if id == actor.GetID() {
		return "", shared.ErrValidation("users: cannot delete the signed-in user")
	}
	outcome, err := s.repo.DeleteUser(ctx, actor.GetTenantID(), id)
	if err != nil {
		return "", err
	}
	if outcome == OutcomeDeleted {
		s.record(ctx, actor, shared.ActionUserDelete, fmt.Sprintf("Deleted user %s.", id))
	}
	return outcome, nil
}

// UpdateProfile lets the caller edit their own record. Role and tenant cannot change here.
func (s *Service) UpdateProfile(ctx context.Context, input ProfileInput) (User, error) {
	actor, err := s.authorize(ctx, shared.PermOwnProfileManage)
	if err != nil {
		return User{}, err
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if err := s.validator.Struct(input); err != nil {
		return User{}, err
	}
	current, err := s.find(ctx, actor.GetTenantID(), actor.GetID())
	if err != nil {
		return User{}, err
	}
	current.Name, current.Email = input.Name, input.Email
	if input.AvatarURL != "" {
		current.AvatarURL = input.AvatarURL
	}
	updated, err := s.repo.UpdateUser(ctx, actor.GetTenantID(), current)
	if err != nil {
		return User{}, err
	}
	s.record(ctx, actor, shared.ActionProfileUpdate, "Updated own profile.")
	return updated, nil
}

func (s *Service) find(ctx context.Context, tenantID, id string) (User, error) {
	all, err := s.repo.FetchUsers(ctx, tenantID)
	if err != nil {
		return User{}, err
	}
	for _, u := range all {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, shared.ErrNotFound("users: %s not found", id)
}

func (s *Service) authorize(ctx context.Context, perm shared.Permission) (rbac.Principal, error) {
	actor := rbac.PrincipalFromContext(ctx)
	if err := s.engine.Authorize(actor, perm); err != nil {
		return nil, err
	}
	return actor, nil
}

// record is best effort: a failed audit write never undoes the change.
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
		s.logger.Warn("users: audit record", slog.String("action", action), slog.Any("error", err))
	}
}
