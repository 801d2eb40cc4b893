// Package response writes JSON envelopes for handlers that run outside huma,
// such as multipart uploads and router-level middleware.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/lifocus/lifocus-server/internal/errors"
	"github.com/lifocus/lifocus-server/internal/store"
)

// Envelope is the JSON body of every non-streaming response.
// Code repeats the HTTP status; Error carries the machine-readable error code.
type Envelope struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Data     any    `json:"data,omitempty"`
	PageData any    `json:"page_data,omitempty"`
	Error    string `json:"error,omitempty"`
	Details  any    `json:"details,omitempty"`
}

// MessageSuccess is the message of successful responses.
const MessageSuccess = "success"

func write(w http.ResponseWriter, status int, envelope Envelope, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(envelope); err != nil && logger != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

// JSON writes data in a success envelope with the given status code.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	write(w, status, Envelope{Code: status, Message: MessageSuccess, Data: data}, logger)
}

// Success writes a successful JSON response (200 OK).
func Success(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusOK, data, logger)
}

// SuccessWithMessage writes a 200 OK envelope carrying message instead of
// the default one.
func SuccessWithMessage(w http.ResponseWriter, message string, data any, logger *slog.Logger) {
	write(w, http.StatusOK, Envelope{Code: http.StatusOK, Message: message, Data: data}, logger)
}

// Created writes a created response (201 Created).
func Created(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusCreated, data, logger)
}

// Error writes an error envelope.
func Error(w http.ResponseWriter, status int, code domainerrors.Code, message string, logger *slog.Logger) {
	write(w, status, Envelope{Code: status, Message: message, Error: string(code)}, logger)
}

// BadRequest writes a 400 Bad Request response.
func BadRequest(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusBadRequest, domainerrors.CodeValidation, message, logger)
}

// Unauthorized writes a 401 Unauthorized response.
func Unauthorized(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusUnauthorized, domainerrors.CodeUnauthorized, message, logger)
}

// TooManyRequests writes a 429 Too Many Requests response.
func TooManyRequests(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusTooManyRequests, "RATE_LIMITED", message, logger)
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusInternalServerError, domainerrors.CodeInternal, message, logger)
}

// HandleError writes the response for err. Domain and store errors keep
// their status and message; anything else is logged and becomes a 500.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		write(w, domainErr.HTTPStatus(), Envelope{
			Code:    domainErr.HTTPStatus(),
			Message: domainErr.Message,
			Error:   string(domainErr.Code),
			Details: domainErr.Details,
		}, logger)
		return
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		code := domainerrors.CodeInternal
		switch {
		case errors.Is(err, store.ErrNotFound):
			code = domainerrors.CodeNotFound
		case errors.Is(err, store.ErrAlreadyExists):
			code = domainerrors.CodeAlreadyExists
		}
		Error(w, storeErr.HTTPCode(), code, storeErr.Message, logger)
		return
	}

	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	InternalError(w, "internal server error", logger)
}
