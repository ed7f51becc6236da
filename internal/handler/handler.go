package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"price-table/internal/model"
	"price-table/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// The status line is already sent; nothing useful left to do.
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeInvalidJSON writes the 400 response for a request body that
// could not be decoded.
func writeInvalidJSON(w http.ResponseWriter, logger zerolog.Logger) {
	logger.Warn().Msg("rejected malformed request body")
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error: "invalid JSON body",
		Code:  model.ErrCodeInvalidJSON,
	})
}

// writeServiceError maps service-layer errors onto HTTP responses:
// input validation to 400 with per-field messages, duplicate name to
// 409, not-found domain errors to 404, malformed imports to 400 and
// everything else to 500.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var validationErrs validator.ValidationErrors
	var domainErr *model.DomainError

	switch {
	case errors.As(err, &validationErrs):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "validation failed",
			Code:   model.ErrCodeInvalidInput,
			Fields: fieldErrors(validationErrs),
		})

	case errors.As(err, &domainErr):
		status := http.StatusInternalServerError
		switch domainErr.Code {
		case model.ErrCodeDuplicateName:
			status = http.StatusConflict
		case model.ErrCodeProductNotFound, model.ErrCodeRecordNotFound:
			status = http.StatusNotFound
		}
		logger.Warn().Str("code", domainErr.Code).Int("status", status).Msg(domainErr.Message)
		writeJSON(w, status, ErrorResponse{Error: domainErr.Message, Code: domainErr.Code})

	case errors.Is(err, storage.ErrInvalidImport):
		logger.Warn().Err(err).Msg("rejected import payload")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  model.ErrCodeInvalidImport,
		})

	default:
		logger.Error().Err(err).Msg("internal error")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  model.ErrCodeInternalError,
		})
	}
}

// fieldErrors converts validator errors into a field -> message map.
func fieldErrors(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, e := range errs {
		name := strings.ToLower(e.Field()[:1]) + e.Field()[1:]
		switch e.Tag() {
		case "required":
			fields[name] = "is required"
		case "max":
			fields[name] = fmt.Sprintf("must be at most %s characters", e.Param())
		case "gt":
			fields[name] = fmt.Sprintf("must be greater than %s", e.Param())
		default:
			fields[name] = fmt.Sprintf("failed %s validation", e.Tag())
		}
	}
	return fields
}

// pathSegment returns the path segment following prefix, up to the next
// slash. It returns "" when the path has no such segment.
func pathSegment(path, prefix string) string {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[:i]
	}
	return rest
}
