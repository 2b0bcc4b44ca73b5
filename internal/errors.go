package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation         ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound           ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized       ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden          ErrorType = "FORBIDDEN"
	ErrorTypeConflict           ErrorType = "CONFLICT"
	ErrorTypeStorageUnavailable ErrorType = "STORAGE_UNAVAILABLE"
	ErrorTypeRateLimited        ErrorType = "RATE_LIMITED"
	ErrorTypeInternal           ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidID        ErrorCode = "INVALID_ID"
	ErrCodeInvalidPage      ErrorCode = "INVALID_PAGE"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"
	ErrCodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	ErrCodeInvalidBody      ErrorCode = "INVALID_REQUEST_BODY"

	ErrCodeUserNotFound         ErrorCode = "USER_NOT_FOUND"
	ErrCodeWorkItemNotFound     ErrorCode = "WORK_ITEM_NOT_FOUND"
	ErrCodeRecordNotFound       ErrorCode = "RECORD_NOT_FOUND"
	ErrCodeAssignedUserNotFound ErrorCode = "ASSIGNED_USER_NOT_FOUND"

	ErrCodeEmailExists   ErrorCode = "EMAIL_ALREADY_EXISTS"
	ErrCodeDuplicateKey  ErrorCode = "DUPLICATE_KEY"
	ErrCodeAccessDenied  ErrorCode = "ACCESS_DENIED"
	ErrCodeMissingIdent  ErrorCode = "MISSING_IDENTITY"
	ErrCodeInvalidIdent  ErrorCode = "INVALID_IDENTITY"
	ErrCodeStorageFailed ErrorCode = "STORAGE_UNAVAILABLE"
	ErrCodeTooManyCalls  ErrorCode = "TOO_MANY_REQUESTS"
)

// AccessDeniedMessage is shared by every Forbidden outcome, whether it came
// from the permission gate or from an ownership rule.
const AccessDeniedMessage = "you are not allowed to perform this action"

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
		messages := make([]string, len(validationErrors.Errors))
		for i, err := range validationErrors.Errors {
			messages[i] = err.Message
		}
		return strings.Join(messages, "; ")
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on type and, when the target carries one, on code. Sentinels
// declared below can therefore be compared with errors.Is against fresh
// instances built by the constructors.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if t.Type != e.Type {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// Retryable reports whether a caller may retry the failed operation.
// Only transient storage failures qualify.
func (e *AppError) Retryable() bool {
	return e.Type == ErrorTypeStorageUnavailable
}

// WithCause returns a copy carrying cause, so shared sentinels stay untouched.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewStorageUnavailableError(cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeStorageUnavailable,
		Code:       ErrCodeStorageFailed,
		Message:    "storage is temporarily unavailable",
		StatusCode: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrInvalidID       = NewValidationError("id must be greater than zero", ErrCodeInvalidID)
	ErrInvalidPage     = NewValidationError("pageIndex must be >= 0 and pageSize must be >= 1", ErrCodeInvalidPage)
	ErrInvalidRole     = NewValidationError("invalid user role", ErrCodeInvalidRole)
	ErrInvalidStatus   = NewValidationError("invalid work item status", ErrCodeInvalidStatus)
	ErrInvalidBody     = NewValidationError("invalid request body", ErrCodeInvalidBody)
	ErrRecordNotFound  = NewNotFoundError("record not found", ErrCodeRecordNotFound)
	ErrUserNotFound    = NewNotFoundError("user not found", ErrCodeUserNotFound)
	ErrWorkItemMissing = NewNotFoundError("work item not found", ErrCodeWorkItemNotFound)
	ErrAssigneeMissing = NewValidationError("assigned user does not exist", ErrCodeAssignedUserNotFound)
	ErrEmailExists     = NewConflictError("email already exists", ErrCodeEmailExists)
	ErrDuplicateKey    = NewConflictError("record already exists", ErrCodeDuplicateKey)
	ErrForbidden       = NewForbiddenError(AccessDeniedMessage, ErrCodeAccessDenied)
	ErrMissingIdentity = NewUnauthorizedError("caller identity is missing", ErrCodeMissingIdent)
	ErrInvalidIdentity = NewUnauthorizedError("caller identity is invalid", ErrCodeInvalidIdent)
	ErrStorage         = &AppError{Type: ErrorTypeStorageUnavailable}
	ErrRateLimited     = &AppError{
		Type:       ErrorTypeRateLimited,
		Code:       ErrCodeTooManyCalls,
		Message:    "too many requests, try again later",
		StatusCode: http.StatusTooManyRequests,
	}
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	status := e.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return status, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      ErrorType   `json:"type"`
		Code      ErrorCode   `json:"code"`
		Message   string      `json:"message"`
		Details   interface{} `json:"details,omitempty"`
		Retryable bool        `json:"retryable,omitempty"`
	}{
		Type:      e.Type,
		Code:      e.Code,
		Message:   e.Message,
		Details:   e.Details,
		Retryable: e.Retryable(),
	})
}
