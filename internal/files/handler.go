package files

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/colloki/console/internal/platform/httpx"
	"github.com/colloki/console/internal/rbac"
	"github.com/colloki/console/internal/shared"
)

// Handler manages file system endpoints.
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

// MountRoutes registers file routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermFilesView))
		r.Get("/", h.listFiles)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermFilesManage))
		r.Delete("/{id}", h.deleteFile)
	})
}

type fileView struct {
	TenantFile
	SizeLabel string `json:"sizeLabel"`
}

func (h *Handler) listFiles(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list files", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]fileView, 0, len(list))
	for _, f := range list {
		views = append(views, fileView{TenantFile: f, SizeLabel: FormatSize(f.Size)})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"files": views})
}

func (h *Handler) deleteFile(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("delete file", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	status := http.StatusOK
	if outcome == shared.OutcomeNotFound {
		status = http.StatusNotFound
	}
	httpx.JSON(w, status, map[string]any{"outcome": outcome})
}
