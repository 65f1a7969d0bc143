// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/colloki/console/internal/shared"
)

// ValidationProblem extends ProblemDetail with per-field messages.
type ValidationProblem struct {
	ProblemDetail
	Fields map[string]string `json:"fields,omitempty"`
}

// RespondError maps the console error taxonomy to RFC7807 responses.
func RespondError(w http.ResponseWriter, err error) {
	var (
		validation *shared.ValidationError
		notFound   *shared.NotFoundError
		transport  *shared.TransportError
		denied     *shared.AccessDeniedError
		conflict   *shared.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		JSON(w, http.StatusBadRequest, ValidationProblem{
			ProblemDetail: ProblemDetail{Title: "Validation Failed", Status: http.StatusBadRequest, Detail: validation.Message},
			Fields:        validation.Fields,
		})
	case errors.As(err, &notFound):
		Problem(w, http.StatusNotFound, "Not Found", notFound.Message)
	case errors.As(err, &denied):
		Problem(w, http.StatusForbidden, "Forbidden", denied.Message)
	case errors.As(err, &conflict):
		Problem(w, http.StatusConflict, "Conflict", conflict.Message)
	case errors.Is(err, shared.ErrIdempotencyConflict):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.As(err, &transport):
		Problem(w, http.StatusBadGateway, "Upstream Unavailable", "")
	case errors.Is(err, shared.ErrUnauthenticated):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "")
	case errors.Is(err, shared.ErrCSRFTokenMissing), errors.Is(err, shared.ErrCSRFTokenMismatch):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
