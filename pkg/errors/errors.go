package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError into the taxonomy shared by every workflow.
type Kind string

const (
	KindUnauthenticated  Kind = "UNAUTHENTICATED"
	KindPermissionDenied Kind = "PERMISSION_DENIED"
	KindNotFound         Kind = "NOT_FOUND"
	KindConflict         Kind = "CONFLICT"
	KindExpired          Kind = "EXPIRED"
	KindValidation       Kind = "VALIDATION_ERROR"
	KindInternal         Kind = "INTERNAL"
	KindRateLimited      Kind = "RATE_LIMITED"
)

// AppError provides a structured error that can be rendered to API consumers.
type AppError struct {
	Kind       Kind   `json:"kind"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}

	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// Is reports whether target is an AppError carrying the same code. Copies produced by
// WithInternal therefore still match the sentinel they were derived from.
func (e *AppError) Is(target error) bool {
	if e == nil {
		return false
	}
	var other *AppError
	if !errors.As(target, &other) || other == nil {
		return false
	}
	return e.Code == other.Code
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// WithMessage returns a copy of the AppError with a different public message.
func (e *AppError) WithMessage(message string) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Message = message
	return &cpy
}

// Taxonomy sentinels. Workflow specific errors are derived from these with New.
var (
	ErrUnauthenticated = &AppError{
		Kind:       KindUnauthenticated,
		Code:       "UNAUTHENTICATED",
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	ErrPermissionDenied = &AppError{
		Kind:       KindPermissionDenied,
		Code:       "PERMISSION_DENIED",
		Message:    "Permission denied",
		StatusCode: http.StatusForbidden,
	}

	ErrNotFound = &AppError{
		Kind:       KindNotFound,
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrConflict = &AppError{
		Kind:       KindConflict,
		Code:       "CONFLICT",
		Message:    "Resource state conflict",
		StatusCode: http.StatusConflict,
	}

	ErrExpired = &AppError{
		Kind:       KindExpired,
		Code:       "EXPIRED",
		Message:    "Resource has expired",
		StatusCode: http.StatusGone,
	}

	ErrValidation = &AppError{
		Kind:       KindValidation,
		Code:       "VALIDATION_ERROR",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrInternal = &AppError{
		Kind:       KindInternal,
		Code:       "INTERNAL",
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}

	ErrRateLimit = &AppError{
		Kind:       KindRateLimited,
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests, please slow down",
		StatusCode: http.StatusTooManyRequests,
	}
)

var statusByKind = map[Kind]int{
	KindUnauthenticated:  http.StatusUnauthorized,
	KindPermissionDenied: http.StatusForbidden,
	KindNotFound:         http.StatusNotFound,
	KindConflict:         http.StatusConflict,
	KindExpired:          http.StatusGone,
	KindValidation:       http.StatusBadRequest,
	KindInternal:         http.StatusInternalServerError,
	KindRateLimited:      http.StatusTooManyRequests,
}

// New builds an application error of the given kind. The HTTP status follows the kind.
func New(kind Kind, code, message string) *AppError {
	status, ok := statusByKind[kind]
	if !ok {
		kind = KindInternal
		status = http.StatusInternalServerError
	}
	return &AppError{
		Kind:       kind,
		Code:       code,
		Message:    message,
		StatusCode: status,
	}
}

// NewValidation wraps validation failures with a helpful message.
func NewValidation(message string) *AppError {
	return ErrValidation.WithMessage(message)
}

// Wrap turns any error into an internal AppError while keeping the original error for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Kind:       KindInternal,
		Code:       ErrInternal.Code,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

// FromError converts a generic error into an AppError, defaulting to ErrInternal.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternal.WithInternal(err)
}

// KindOf returns the taxonomy kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != "" {
		return appErr.Kind
	}
	return KindInternal
}
