// Package httputil holds the JSON response and request helpers shared by the
// HTTP handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "taxcalc/pkg/domain-errors"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// the status line is already out, an encoding error cannot be reported
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError translates a domain error into its HTTP status and body. Anything
// that is not a domain error is reported as an opaque internal error.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), ErrorResponse{
			Error:            DomainCodeToHTTPCode(domainErr.Code),
			ErrorDescription: domainErr.Message,
		})
		return
	}

	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: DomainCodeToHTTPCode(dErrors.CodeInternal),
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToHTTPCode translates domain error codes to the "error" field of
// the JSON body.
func DomainCodeToHTTPCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeNotFound:
		return "not_found"
	case dErrors.CodeBadRequest:
		return "bad_request"
	case dErrors.CodeValidation, dErrors.CodeInvariantViolation:
		return "validation_error"
	case dErrors.CodeTimeout:
		return "timeout"
	case dErrors.CodeUnavailable:
		return "service_unavailable"
	default:
		return "internal_error"
	}
}
