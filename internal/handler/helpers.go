package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// decodeBody reads a JSON body. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return &domain.ErrValidation{Field: "body", Message: "invalid JSON"}
	}
	return nil
}

func listResponse[T any](items []T) domain.ListResponse[T] {
	return domain.ListResponse[T]{Data: items, Total: len(items)}
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var circuitOpen *domain.ErrCircuitOpen
	var timeout *domain.ErrTimeout
	var validation *domain.ErrValidation
	var unauthorized *domain.ErrUnauthorized
	var external *domain.ErrExternalService

	status := http.StatusInternalServerError
	code := domain.CodeOf(err)
	msg := err.Error()

	switch {
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", msg))
		status = http.StatusNotFound
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		status = http.StatusServiceUnavailable
	case errors.As(err, &timeout):
		logger.Error("request timeout", zap.Error(err))
		status = http.StatusGatewayTimeout
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("field", validation.Field), zap.String("error", msg))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Code: validation.Code(), Field: validation.Field})
		return
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", msg))
		status = http.StatusUnauthorized
	case errors.As(err, &external):
		logger.Error("external service error", zap.String("service", external.Service), zap.Error(err))
		status = http.StatusBadGateway
	default:
		logger.Error("unhandled error", zap.Error(err))
		code = domain.CodeInternal
		msg = "internal server error"
	}

	writeError(w, status, code, msg)
}
