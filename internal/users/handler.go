package users

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/colloki/console/internal/platform/httpx"
	"github.com/colloki/console/internal/rbac"
	"github.com/colloki/console/internal/shared"
)

const idempotencyModule = "users.create"

// IdempotencyChecker rejects replayed create submissions.
type IdempotencyChecker interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key, module string) error
}

// ProfileRefresher updates the caller's stored authentication record after a profile edit.
type ProfileRefresher interface {
	RefreshUser(ctx context.Context, user User) error
}

// Handler manages user management endpoints.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	idempotency IdempotencyChecker
	refresher   ProfileRefresher
	rbac        rbac.Middleware
}

// NewHandler builds Handler instance. idempotency and refresher may be nil.
func NewHandler(logger *slog.Logger, service *Service, idempotency IdempotencyChecker, refresher ProfileRefresher, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, idempotency: idempotency, refresher: refresher, rbac: rbac}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermUsersView))
		r.Get("/", h.listUsers)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermUsersManage))
		r.Post("/", h.createUser)
		r.Put("/{id}", h.updateUser)
		r.Delete("/{id}", h.deleteUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermOwnProfileManage))
		r.Put("/me", h.updateProfile)
	})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, "list users", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": list})
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var input CreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key != "" && h.idempotency != nil {
		if err := h.idempotency.CheckAndInsert(r.Context(), key, idempotencyModule); err != nil {
			h.fail(w, "create user idempotency", err)
			return
		}
	}
	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		if key != "" && h.idempotency != nil {
			if delErr := h.idempotency.Delete(r.Context(), key, idempotencyModule); delErr != nil {
				h.logger.Warn("release idempotency key", slog.Any("error", delErr))
			}
		}
		h.fail(w, "create user", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var input UpdateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.fail(w, "update user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "delete user", err)
		return
	}
	status := http.StatusOK
	if outcome == OutcomeNotFound {
		status = http.StatusNotFound
	}
	httpx.JSON(w, status, map[string]any{"outcome": outcome})
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var input ProfileInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	updated, err := h.service.UpdateProfile(r.Context(), input)
	if err != nil {
		h.fail(w, "update profile", err)
		return
	}
	if h.refresher != nil {
		if err := h.refresher.RefreshUser(r.Context(), updated); err != nil {
			h.logger.Warn("refresh session user", slog.Any("error", err))
		}
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	var transport *shared.TransportError
	if errors.As(err, &transport) || !isExpected(err) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func isExpected(err error) bool {
	var (
		validation *shared.ValidationError
		notFound   *shared.NotFoundError
		denied     *shared.AccessDeniedError
		conflict   *shared.ConflictError
	)
	return errors.As(err, &validation) || errors.As(err, &notFound) || errors.As(err, &denied) ||
		errors.As(err, &conflict) || errors.Is(err, shared.ErrIdempotencyConflict)
}
