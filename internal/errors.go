package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation       ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound         ErrorType = "NOT_FOUND"
	ErrorTypeInvalidReference ErrorType = "INVALID_REFERENCE"
	ErrorTypeConflict         ErrorType = "CONFLICT"
	ErrorTypeUnauthorized     ErrorType = "UNAUTHORIZED"
	ErrorTypePersistence      ErrorType = "PERSISTENCE_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeQueryTooShort    ErrorCode = "QUERY_TOO_SHORT"
	ErrCodeInvalidPage      ErrorCode = "INVALID_PAGINATION"

	ErrCodeDepartmentNotFound     ErrorCode = "DEPARTMENT_NOT_FOUND"
	ErrCodeServiceNotFound        ErrorCode = "SERVICE_NOT_FOUND"
	ErrCodeParentServiceNotFound  ErrorCode = "PARENT_SERVICE_NOT_FOUND"
	ErrCodeFunctionNotFound       ErrorCode = "FUNCTION_NOT_FOUND"
	ErrCodeUserNotFound           ErrorCode = "USER_NOT_FOUND"
	ErrCodeInstructionNotFound    ErrorCode = "INSTRUCTION_NOT_FOUND"
	ErrCodeCorrespondenceNotFound ErrorCode = "CORRESPONDENCE_NOT_FOUND"

	ErrCodeServiceSelfParent ErrorCode = "SERVICE_SELF_PARENT"
	ErrCodeBadRecipient      ErrorCode = "RECIPIENT_NOT_RESOLVED"

	ErrCodeFunctionAlreadyBound ErrorCode = "FUNCTION_ALREADY_BOUND"
	ErrCodeDuplicateCode        ErrorCode = "DUPLICATE_DEPARTMENT_CODE"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"

	ErrCodeStorageFailure ErrorCode = "STORAGE_FAILURE"
)

// AppError is the structured failure surfaced to callers. The transport
// layer maps StatusCode directly; services only pick the constructor.
type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
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

// NewInvalidReferenceError covers structurally valid ids that violate a
// relational invariant, like a service parented to itself or a routing
// recipient that does not resolve.
func NewInvalidReferenceError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidReference,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
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

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewPersistenceError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypePersistence,
		Code:       ErrCodeStorageFailure,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrDepartmentNotFound     = NewNotFoundError("department not found", ErrCodeDepartmentNotFound)
	ErrServiceNotFound        = NewNotFoundError("service not found", ErrCodeServiceNotFound)
	ErrParentServiceNotFound  = NewNotFoundError("parent service not found", ErrCodeParentServiceNotFound)
	ErrFunctionNotFound       = NewNotFoundError("function not found", ErrCodeFunctionNotFound)
	ErrUserNotFound           = NewNotFoundError("user not found", ErrCodeUserNotFound)
	ErrInstructionNotFound    = NewNotFoundError("instruction not found", ErrCodeInstructionNotFound)
	ErrCorrespondenceNotFound = NewNotFoundError("correspondence not found", ErrCodeCorrespondenceNotFound)

	ErrServiceSelfParent = NewInvalidReferenceError("service cannot be its own parent", ErrCodeServiceSelfParent)
	ErrBadRecipient      = NewInvalidReferenceError("recipient user or instruction does not resolve", ErrCodeBadRecipient)

	ErrFunctionAlreadyBound = NewConflictError("function is already bound to a user", ErrCodeFunctionAlreadyBound)
	ErrDuplicateCode        = NewConflictError("department code already in use", ErrCodeDuplicateCode)

	ErrSearchQueryTooShort = NewValidationError("search query must be at least 3 characters", ErrCodeQueryTooShort)

	ErrInvalidCredentials = NewUnauthorizedError("invalid email or password", ErrCodeInvalidCredentials)
	ErrInvalidToken       = NewUnauthorizedError("invalid token", ErrCodeInvalidToken)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
