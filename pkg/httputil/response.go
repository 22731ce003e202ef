package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/summerbooks/backend/pkg/errors"
	"github.com/summerbooks/backend/pkg/logger"
	"github.com/summerbooks/backend/pkg/validator"
)

// ErrorBody is the JSON error shape of the storefront API: a product-facing
// message plus the form field it applies to, so the client can render the
// message inline. Detail carries the underlying error text for 500s and is
// only populated outside production.
type ErrorBody struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Code    string `json:"code,omitempty"`
	Detail  string `json:"error,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorWriter maps application errors onto the storefront error contract.
type ErrorWriter struct {
	fallback *slog.Logger
	// exposeDetail controls whether 500 responses carry the underlying error
	// text. Enabled everywhere except production.
	exposeDetail bool
}

// NewErrorWriter creates an ErrorWriter. exposeDetail should be false in
// production deployments.
func NewErrorWriter(fallback *slog.Logger, exposeDetail bool) *ErrorWriter {
	return &ErrorWriter{fallback: fallback, exposeDetail: exposeDetail}
}

// Write renders err as a JSON error response. AppErrors keep their status,
// code, field tag, and message; everything else becomes a generic 500 with
// "Lỗi server" and gets logged with the request-scoped logger.
func (ew *ErrorWriter) Write(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Status != http.StatusInternalServerError {
		WriteJSON(w, appErr.Status, ErrorBody{
			Message: appErr.Message,
			Field:   appErr.Field,
			Code:    appErr.Code,
		})
		return
	}

	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = ew.fallback
	}
	l.ErrorContext(r.Context(), "internal error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	body := ErrorBody{Message: "Lỗi server"}
	if ew.exposeDetail {
		body.Detail = err.Error()
	}
	WriteJSON(w, http.StatusInternalServerError, body)
}

// WriteValidationError renders a request-shape validation failure as a 400.
// Field-level business rules use ErrorWriter; this covers malformed DTOs.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		fields := valErr.Fields()
		body := ErrorBody{Message: err.Error(), Code: "VALIDATION_ERROR"}
		// Single-field failures keep the inline-display contract.
		if len(fields) == 1 {
			for f := range fields {
				body.Field = f
			}
		}
		WriteJSON(w, http.StatusBadRequest, body)
		return
	}

	WriteJSON(w, http.StatusBadRequest, ErrorBody{Message: err.Error(), Code: "INVALID_INPUT"})
}
