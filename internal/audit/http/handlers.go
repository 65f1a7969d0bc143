package audithttp

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/colloki/console/internal/audit"
	"github.com/colloki/console/internal/platform/httpx"
	"github.com/colloki/console/internal/rbac"
	"github.com/colloki/console/internal/shared"
)

// QueryService defines the business contract for audit log reads.
type QueryService interface {
	Query(ctx context.Context, c audit.Criteria) (audit.Result, error)
	Export(ctx context.Context, c audit.Criteria) ([]shared.AuditLog, error)
}

// Handler menangani permintaan audit log.
type Handler struct {
	logger  *slog.Logger
	service QueryService
	rbac    rbac.Middleware
	now     func() time.Time
}

// NewHandler membuat handler audit baru.
func NewHandler(logger *slog.Logger, service QueryService, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:  logger,
		service: service,
		rbac:    rbac,
		now:     time.Now,
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.Query(r.Context(), criteria)
	if err != nil {
		h.handleError(w, "query audit logs", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entries, err := h.service.Export(r.Context(), criteria)
	if err != nil {
		h.handleError(w, "export audit logs", err)
		return
	}
	filename := "audit_logs_" + h.now().UTC().Format("20060102") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := audit.WriteCSV(w, entries); err != nil {
		h.logger.Warn("write csv", slog.Any("error", err))
	}
}

// parseCriteria membaca filter dari query string. Tanggal menerima RFC3339 atau
// YYYY-MM-DD (tengah malam UTC).
func parseCriteria(r *http.Request) (audit.Criteria, error) {
	q := r.URL.Query()
	c := audit.Criteria{
		UserID: strings.TrimSpace(q.Get("user")),
		Action: strings.TrimSpace(q.Get("action")),
	}
	var err error
	if c.From, err = parseInstant(q.Get("startDate")); err != nil {
		return audit.Criteria{}, fieldError("startDate")
	}
	if c.To, err = parseInstant(q.Get("endDate")); err != nil {
		return audit.Criteria{}, fieldError("endDate")
	}
	if !c.From.IsZero() && !c.To.IsZero() && c.From.After(c.To) {
		return audit.Criteria{}, fieldError("endDate")
	}
	return c, nil
}

func parseInstant(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func fieldError(field string) error {
	return &shared.ValidationError{Message: "invalid filter", Fields: map[string]string{field: "datetime"}}
}

func (h *Handler) handleError(w http.ResponseWriter, message string, err error) {
	h.logger.Error(message, slog.Any("error", err))
	httpx.RespondError(w, err)
}
