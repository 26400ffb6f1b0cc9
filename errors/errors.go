package errors

import (
	stderrors "errors"
	"fmt"
)

// UnknownReason is used when a collaborator reports a failure without any text.
const UnknownReason = "unknown error"

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is the raw reason, e.g. the error text returned by a remote API.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new, non-retryable AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// --- Stage constructors ---

// FetchFailed creates an error for a failed download of url.
func FetchFailed(url string, cause error) *AppError {
	msg := UnknownReason
	if cause != nil {
		msg = cause.Error()
	}
	return &AppError{
		Code: ErrCodeFetchFailed, Message: msg,
		Details: map[string]any{"url": url}, Cause: cause,
	}
}

// SubmissionFailed creates an error for a conversion job that could not be
// created. An empty reason becomes UnknownReason.
func SubmissionFailed(reason string) *AppError {
	return &AppError{Code: ErrCodeSubmissionFailed, Message: orUnknown(reason)}
}

// ConversionFailed creates an error for a conversion job that reached its
// error state.
func ConversionFailed(jobID, reason string) *AppError {
	e := &AppError{Code: ErrCodeConversionFailed, Message: orUnknown(reason)}
	if jobID != "" {
		e.WithDetail("job_id", jobID)
	}
	return e
}

// OutputMissing creates an error for a finished conversion that produced no
// usable artifact.
func OutputMissing(what string) *AppError {
	return &AppError{
		Code: ErrCodeOutputMissing, Message: "file missing",
		Details: map[string]any{"artifact": what},
	}
}

// DecoderInit creates an error for audio that cannot be opened for decoding.
func DecoderInit(reason string, cause error) *AppError {
	return &AppError{Code: ErrCodeDecoderInit, Message: orUnknown(reason), Cause: cause}
}

// InvalidInput creates an error for invalid caller input.
func InvalidInput(field, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("invalid %s: %s", field, reason),
		Details: map[string]any{"field": field},
	}
}

// Validation creates an error for failed struct validation.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// Internal wraps an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: "unexpected error", Cause: cause}
}

// --- Classification ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

func orUnknown(reason string) string {
	if reason == "" {
		return UnknownReason
	}
	return reason
}

// IsFetchFailed reports whether err is a fetch failure.
func IsFetchFailed(err error) bool { return HasCode(err, ErrCodeFetchFailed) }

// IsSubmissionFailed reports whether err is a submission failure.
func IsSubmissionFailed(err error) bool { return HasCode(err, ErrCodeSubmissionFailed) }

// IsConversionFailed reports whether err is a failed conversion job.
func IsConversionFailed(err error) bool { return HasCode(err, ErrCodeConversionFailed) }

// IsOutputMissing reports whether err is a missing converted artifact.
func IsOutputMissing(err error) bool { return HasCode(err, ErrCodeOutputMissing) }

// IsDecoderInit reports whether err is a decoder initialization failure.
func IsDecoderInit(err error) bool { return HasCode(err, ErrCodeDecoderInit) }
