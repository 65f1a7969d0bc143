package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/colloki/console/internal/platform/httpx"
	"github.com/colloki/console/internal/rbac"
	"github.com/colloki/console/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	twoFactor *TwoFactor
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, twoFactor *TwoFactor, csrf *shared.CSRFManager, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, twoFactor: twoFactor, csrf: csrf, rbac: rbac}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/csrf", h.handleCSRF)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAuthenticated())
		r.Get("/me", h.handleMe)
		r.Post("/2fa/enroll", h.handleEnroll)
		r.Post("/2fa/verify", h.handleVerify)
	})
}

type sessionView struct {
	Record
	CSRFToken string `json:"csrfToken"`
}

func (h *Handler) handleCSRF(w http.ResponseWriter, r *http.Request) {
	token, err := h.csrf.EnsureToken(r.Context(), shared.SessionFromContext(r.Context()))
	if err != nil {
		h.fail(w, "csrf token", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var input LoginInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	rec, err := h.service.Login(r.Context(), sess, input)
	if err != nil {
		h.fail(w, "login", err)
		return
	}
	token, err := h.csrf.EnsureToken(r.Context(), sess)
	if err != nil {
		h.fail(w, "csrf token", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sessionView{Record: rec, CSRFToken: token})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(r.Context(), shared.SessionFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	rec, ok := ReadRecord(shared.SessionFromContext(r.Context()))
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) handleEnroll(w http.ResponseWriter, r *http.Request) {
	enrollment, err := h.twoFactor.Enroll(r.Context(), shared.SessionFromContext(r.Context()))
	if err != nil {
		h.fail(w, "enroll second factor", err)
		return
	}
	httpx.JSON(w, http.StatusOK, enrollment)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var input VerifyInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.twoFactor.Verify(r.Context(), shared.SessionFromContext(r.Context()), input); err != nil {
		h.fail(w, "verify second factor", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	var (
		validation *shared.ValidationError
		denied     *shared.AccessDeniedError
		conflict   *shared.ConflictError
	)
	if !errors.As(err, &validation) && !errors.As(err, &denied) && !errors.As(err, &conflict) &&
		!errors.Is(err, shared.ErrUnauthenticated) {
		h.logger.Error(msg, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
