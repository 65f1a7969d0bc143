package settings

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/colloki/console/internal/platform/httpx"
	"github.com/colloki/console/internal/rbac"
	"github.com/colloki/console/internal/shared"
)

// Handler exposes the tenant settings form.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermSettingsView))
		r.Get("/", h.show)
		r.Post("/sync", h.sync)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermSettingsManage))
		r.Patch("/", h.update)
		r.Post("/save", h.save)
		r.Post("/reset", h.reset)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAuthenticated())
		r.Post("/theme", h.toggleTheme)
	})
}

type resetRequest struct {
	Confirm bool `json:"confirm"`
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.View(r.Context())
	h.respond(w, "view settings", view, err)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var patch Patch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := h.service.Update(r.Context(), patch)
	h.respond(w, "update settings", view, err)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Save(r.Context())
	h.respond(w, "save settings", view, err)
}

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Sync(r.Context())
	h.respond(w, "sync settings", view, err)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := h.service.Reset(r.Context(), req.Confirm)
	h.respond(w, "reset settings", view, err)
}

func (h *Handler) toggleTheme(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.ToggleTheme(r.Context())
	h.respond(w, "toggle theme", view, err)
}

func (h *Handler) respond(w http.ResponseWriter, op string, view View, err error) {
	if err != nil {
		h.logger.Warn(op, slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}
