package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/lifocus/lifocus-server/internal/errors"
	"github.com/lifocus/lifocus-server/internal/store"
)

// APIError is the error body of every failed request. It implements
// huma.StatusError so handlers can return it directly.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status    int
	Code      int    `json:"code" doc:"HTTP status code"`
	ErrorCode string `json:"error" doc:"Machine-readable error code"`
	Message   string `json:"message" doc:"Human-readable error message"`
	Details   any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

func newAPIError(status int, code, message string, details any) *APIError {
	return &APIError{status: status, Code: status, ErrorCode: code, Message: message, Details: details}
}

// FieldError describes one rejected request field.
type FieldError struct {
	Location string `json:"location,omitempty"`
	Message  string `json:"message"`
}

// RegisterErrorHandler configures huma to produce APIError bodies.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler(logger *slog.Logger) {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			if apiErr := mapError(err); apiErr != nil {
				if apiErr.status >= http.StatusInternalServerError && logger != nil {
					logger.Error("Request failed", "error", err)
				}
				return apiErr
			}
		}

		// Schema and parse failures from huma itself are client errors.
		if status == http.StatusUnprocessableEntity || status == http.StatusBadRequest {
			var details []FieldError
			for _, err := range errs {
				var detailer huma.ErrorDetailer
				if errors.As(err, &detailer) {
					d := detailer.ErrorDetail()
					details = append(details, FieldError{Location: d.Location, Message: d.Message})
				}
			}
			var anyDetails any
			if len(details) > 0 {
				anyDetails = details
			}
			return newAPIError(http.StatusBadRequest, string(domainerrors.CodeValidation), message, anyDetails)
		}

		if status >= http.StatusInternalServerError {
			if logger != nil {
				logger.Error("Request failed", "status", status, "message", message, "errors", errs)
			}
			message = "internal server error"
		}

		return newAPIError(status, statusToCode(status), message, nil)
	}
}

// mapError converts domain, store and body-size errors. Anything else
// returns nil.
func mapError(err error) *APIError {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return newAPIError(domainErr.HTTPStatus(), string(domainErr.Code), domainErr.Message, domainErr.Details)
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return newAPIError(http.StatusNotFound, string(domainerrors.CodeNotFound), storeErr.Message, nil)
		case errors.Is(err, store.ErrAlreadyExists):
			return newAPIError(http.StatusConflict, string(domainerrors.CodeAlreadyExists), storeErr.Message, nil)
		}
	}

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return newAPIError(http.StatusRequestEntityTooLarge, string(domainerrors.CodeTooLarge), "request body too large", nil)
	}

	return nil
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(domainerrors.CodeValidation)
	case http.StatusUnauthorized:
		return string(domainerrors.CodeUnauthorized)
	case http.StatusForbidden:
		return string(domainerrors.CodeForbidden)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeConflict)
	case http.StatusRequestEntityTooLarge:
		return string(domainerrors.CodeTooLarge)
	default:
		return string(domainerrors.CodeInternal)
	}
}
