package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/pkg/logger"
)

// Result is the envelope of every API response.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

const (
	statusSuccess = "success"
	statusError   = "error"
)

// JSON writes a JSON response with the given status code. If encoding fails
// the error is logged; headers are already sent by then.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("httputil: json encode", "error", err)
	}
}

// OK writes a 200 success envelope around data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Result{Status: statusSuccess, Data: data})
}

// Created writes a 201 success envelope.
func Created(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusCreated, Result{Status: statusSuccess, Message: message, Data: data})
}

// Success writes a 200 success envelope with a message.
func Success(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, Result{Status: statusSuccess, Message: message, Data: data})
}

// Error writes an error envelope.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Result{Status: statusError, Message: message})
}

// BadRequest writes a 400 error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// NotFound writes a 404 error.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// Unauthorized writes a 401 error.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// InternalError logs the real error and returns a generic message.
func InternalError(w http.ResponseWriter, err error) {
	logger.Error("httputil: internal error", "error", err)
	Error(w, http.StatusInternalServerError, "internal server error")
}

// Degraded answers a read whose store was unreachable: the zero value is
// still returned so views render, alongside the error message.
func Degraded(w http.ResponseWriter, zero any, err error) {
	logger.Warn("httputil: degraded response", "error", err)
	JSON(w, http.StatusServiceUnavailable, Result{Status: statusError, Message: err.Error(), Data: zero})
}

// FromError maps a service error onto a status code using the domain
// sentinels. Validation, conflict and not-found messages are user-facing;
// anything unrecognised is logged and hidden.
func FromError(w http.ResponseWriter, err error) {
	FromErrorWithData(w, err, nil)
}

// FromErrorWithData is FromError for operations that made partial progress
// before failing; data is returned alongside the error message.
func FromErrorWithData(w http.ResponseWriter, err error, data any) {
	status, message := classify(err)
	JSON(w, status, Result{Status: statusError, Message: message, Data: data})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalid):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrDisabled):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrMailAPI):
		logger.Error("httputil: mail api", "error", err)
		return http.StatusBadGateway, err.Error()
	case errors.Is(err, domain.ErrUnavailable):
		logger.Error("httputil: store unavailable", "error", err)
		return http.StatusServiceUnavailable, "store unavailable"
	default:
		logger.Error("httputil: internal error", "error", err)
		return http.StatusInternalServerError, "internal server error"
	}
}

// Decode reads JSON from the request body into dst.
// Returns false and writes a 400 response if parsing fails.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		BadRequest(w, "invalid JSON: "+err.Error())
		return false
	}
	return true
}
