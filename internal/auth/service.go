package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/colloki/console/internal/shared"
	"github.com/colloki/console/internal/users"
)

// Service binds console accounts to sessions. It does not check credentials: the identity
// provider in front of the console has already done so.
type Service struct {
	directory     Directory
	sessions      *shared.SessionManager
	audit         *shared.AuditLogger
	validator     *shared.Validator
	defaultTenant string
	logger        *slog.Logger
}

// NewService constructs a new Service.
func NewService(directory Directory, sessions *shared.SessionManager, audit *shared.AuditLogger, defaultTenant string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		directory:     directory,
		sessions:      sessions,
		audit:         audit,
		validator:     shared.NewValidator(),
		defaultTenant: defaultTenant,
		logger:        logger,
	}
}

// Login resolves the account and stores the authentication record in sess.
// The session id is rotated and any CSRF token issued before login is dropped.
func (s *Service) Login(ctx context.Context, sess *shared.Session, input LoginInput) (Record, error) {
	if sess == nil {
		return Record{}, shared.ErrUnauthenticated
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.TenantID = strings.TrimSpace(input.TenantID)
	if err := s.validator.Struct(input); err != nil {
		return Record{}, err
	}
	tenantID := input.TenantID
	if tenantID == "" {
		tenantID = s.defaultTenant
	}

	user, err := s.directory.FindUserByEmail(ctx, tenantID, input.Email)
	if err != nil {
		var notFound *shared.NotFoundError
		if errors.As(err, &notFound) {
			return Record{}, shared.ErrUnauthenticated
		}
		return Record{}, err
	}

	if err := s.sessions.Renew(ctx, sess); err != nil {
		return Record{}, err
	}
	sess.ClearUser()
	rec := Record{IsAuthenticated: true, User: &user, TenantID: tenantID}
	if err := writeRecord(sess, rec); err != nil {
		return Record{}, err
	}
	sess.SetUser(user.ID, tenantID)

	if err := s.audit.Record(ctx, tenantID, shared.AuditLog{
		UserID:   user.ID,
		UserName: user.Name,
		Action:   shared.ActionUserLogin,
		Details:  "User logged in",
	}); err != nil {
		s.logger.Warn("audit login", slog.String("user_id", user.ID), slog.Any("error", err))
	}
	return rec, nil
}

// Logout drops the authentication record and destroys the session.
func (s *Service) Logout(ctx context.Context, sess *shared.Session) {
	if sess == nil {
		return
	}
	sess.ClearUser()
	s.sessions.Destroy(sess)
}

// RefreshUser replaces the user held in the session of ctx, typically after a profile edit.
func (s *Service) RefreshUser(ctx context.Context, user users.User) error {
	sess := shared.SessionFromContext(ctx)
	rec, ok := ReadRecord(sess)
	if !ok {
		return shared.ErrUnauthenticated
	}
	if rec.User.ID != user.ID || user.TenantID != rec.TenantID {
		return shared.ErrAccessDenied("session belongs to another user")
	}
	rec.User = &user
	return writeRecord(sess, rec)
}
