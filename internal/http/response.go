package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"viveka/internal/core"
	vlog "viveka/internal/log"
)

type errorResponse struct {
	Error  string                 `json:"error"`
	Errors []core.ValidationError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// badRequestError marks malformed input that never reached the services.
type badRequestError struct {
	msg string
}

func (e badRequestError) Error() string { return e.msg }

func badRequest(msg string) error { return badRequestError{msg: msg} }

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) (int, string) {
	var verrs core.ValidationErrors
	var bad badRequestError
	var storage *core.StorageError
	switch {
	case errors.As(err, &verrs):
		return http.StatusUnprocessableEntity, vlog.ErrorTypeValidation
	case errors.As(err, &bad):
		return http.StatusBadRequest, vlog.ErrorTypeBadRequest
	case errors.Is(err, core.ErrLoanNotFound):
		return http.StatusNotFound, vlog.ErrorTypeNotFound
	case core.IsStateConflict(err):
		return http.StatusConflict, vlog.ErrorTypeConflict
	case errors.As(err, &storage):
		return http.StatusInternalServerError, vlog.ErrorTypeDatabase
	default:
		return http.StatusInternalServerError, vlog.ErrorTypeInternal
	}
}

// writeError logs err and writes the JSON error body. Internal details are
// not sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, errorType := statusFor(err)
	ctx := r.Context()
	logger := vlog.FromContext(ctx)

	resp := errorResponse{Error: err.Error()}
	switch {
	case status >= 500:
		vlog.LogError(ctx, "Request failed", err, vlog.ComponentHTTP, errorType, vlog.NewFields().WithHTTP(r.Method, r.URL.Path, status))
		resp.Error = http.StatusText(status)
	default:
		logger.InfoContext(ctx, "Request rejected", "status_code", status, "error_type", errorType, "error", err)
	}

	var verrs core.ValidationErrors
	if errors.As(err, &verrs) {
		resp.Error = "validation failed"
		resp.Errors = verrs
	}
	writeJSON(w, status, resp)
}
