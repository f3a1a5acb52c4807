package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"gocleanse/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
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

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of a wrapped
// AppError or deriving one from the domain error it wraps
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    CodeOf(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid        = "CONFIG_INVALID"
	CodeStorageError         = "STORAGE_ERROR"
	CodeValidationError      = "VALIDATION_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeInternalError        = "INTERNAL_ERROR"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeLookupError          = "LOOKUP_ERROR"
	CodeConversionError      = "CONVERSION_ERROR"
	CodeUnsupportedOperation = "UNSUPPORTED_OPERATION"
	CodeUnsupportedFormat    = "UNSUPPORTED_FORMAT"
	CodeUnknownCategory      = "UNKNOWN_CATEGORY"
	CodeRowOutOfRange        = "ROW_OUT_OF_RANGE"
)

// CodeOf returns the code of the outermost AppError, or maps the domain
// sentinel the error wraps to a code
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	switch {
	case stderrors.Is(err, core.ErrConfiguration):
		return CodeConfigInvalid
	case stderrors.Is(err, core.ErrUnsupportedFormat):
		return CodeUnsupportedFormat
	case stderrors.Is(err, core.ErrValidation):
		return CodeValidationError
	case stderrors.Is(err, core.ErrLookup):
		return CodeLookupError
	case stderrors.Is(err, core.ErrConversion):
		return CodeConversionError
	case stderrors.Is(err, core.ErrUnsupportedOperation):
		return CodeUnsupportedOperation
	case stderrors.Is(err, core.ErrUnknownCategory):
		return CodeUnknownCategory
	case stderrors.Is(err, core.ErrRowOutOfRange):
		return CodeRowOutOfRange
	case stderrors.Is(err, core.ErrNotFound):
		return CodeNotFound
	}
	return CodeInternalError
}

// HTTPStatus maps an error to the status code the API answers with
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeValidationError, CodeInvalidInput, CodeLookupError, CodeConversionError,
		CodeUnsupportedFormat, CodeUnsupportedOperation, CodeConfigInvalid:
		return http.StatusBadRequest
	case CodeUnknownCategory, CodeRowOutOfRange:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func StorageError(message string, cause error) *AppError {
	return &AppError{Code: CodeStorageError, Message: message, Cause: cause}
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
