package error

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode represents a unique error code
type ErrorCode string

// Kind groups codes by how a caller is expected to react.
type Kind string

const (
	KindTransport         Kind = "transport"
	KindAuthentication    Kind = "authentication"
	KindAuthorization     Kind = "authorization"
	KindValidation        Kind = "validation"
	KindMalformedResponse Kind = "malformed_response"
	KindStorage           Kind = "storage"
	KindConfiguration     Kind = "configuration"
)

const (
	// Authentication Errors (1xxx)
	ErrCodeInvalidCredentials ErrorCode = "AUTH_1001"
	ErrCodeUnauthenticated    ErrorCode = "AUTH_1002"

	// Authorization Errors (2xxx)
	ErrCodeForbidden ErrorCode = "AUTHZ_2001"

	// Validation Errors (3xxx)
	ErrCodeInvalidRequest ErrorCode = "VALID_3001"

	// Transport Errors (4xxx)
	ErrCodeTransportFailure ErrorCode = "NET_4001"
	ErrCodeRequestBuild     ErrorCode = "NET_4002"

	// API Errors (5xxx)
	ErrCodeAPIStatus         ErrorCode = "API_5001"
	ErrCodeMalformedResponse ErrorCode = "API_5002"

	// Storage Errors (6xxx)
	ErrCodeStorageFailure ErrorCode = "STORE_6001"

	// Configuration Errors (7xxx)
	ErrCodeConfigurationError ErrorCode = "CONF_7001"
)

// AppError represents a structured application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on code so sentinel AppErrors work with errors.Is.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, kind Kind, message string, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

var (
	ErrUnauthenticated = NewAppError(ErrCodeUnauthenticated, KindAuthorization, "Login required", "", nil)
	ErrForbidden       = NewAppError(ErrCodeForbidden, KindAuthorization, "Admin access required", "", nil)
)

func ErrInvalidRequest(details string, cause error) *AppError {
	return NewAppError(ErrCodeInvalidRequest, KindValidation, "Invalid request", details, cause)
}

func ErrTransport(details string, cause error) *AppError {
	return NewAppError(ErrCodeTransportFailure, KindTransport, "API unreachable", details, cause)
}

func ErrRequestBuild(details string, cause error) *AppError {
	return NewAppError(ErrCodeRequestBuild, KindTransport, "Failed to build request", details, cause)
}

func ErrMalformedResponse(details string, cause error) *AppError {
	return NewAppError(ErrCodeMalformedResponse, KindMalformedResponse, "Unexpected API response", details, cause)
}

func ErrStorage(operation string, cause error) *AppError {
	return NewAppError(ErrCodeStorageFailure, KindStorage, "Session storage failed", fmt.Sprintf("Operation: %s", operation), cause)
}

func ErrConfiguration(config string, cause error) *AppError {
	return NewAppError(ErrCodeConfigurationError, KindConfiguration, "Configuration error", fmt.Sprintf("Config: %s", config), cause)
}

// KindOf returns the Kind of the first AppError in the chain, or "" if none.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind()
	}
	return ""
}

// APIError is a non-2xx response from the REST API, passed through to callers.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
	Body       []byte
}

func (e *APIError) Error() string {
	detail := e.Detail
	if detail == "" {
		detail = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, detail)
}

func (e *APIError) Kind() Kind {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return KindAuthentication
	case http.StatusForbidden:
		return KindAuthorization
	default:
		return ""
	}
}

// IsAuthFailure reports rejections of a login or register call, such as bad
// credentials or a duplicate email.
func (e *APIError) IsAuthFailure() bool {
	switch e.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusConflict, http.StatusUnprocessableEntity:
		return true
	}
	return false
}

// NewAPIError builds an APIError, pulling a message out of FastAPI-style
// {"detail": ...} bodies when present.
func NewAPIError(method, path string, status int, body []byte) *APIError {
	return &APIError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Detail:     extractDetail(body),
		Body:       body,
	}
}

func extractDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return strings.TrimSpace(string(body))
	}
	if len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			return s
		}
		// validation errors arrive as a list of {loc, msg}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(payload.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
		return string(payload.Detail)
	}
	return payload.Message
}

// StatusCode returns the HTTP status of an APIError in the chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
