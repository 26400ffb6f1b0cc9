package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies a failed call.
type ErrorCode string

const (
	ErrCodeTimeout    ErrorCode = "timeout"
	ErrCodeConnection ErrorCode = "connection"
	ErrCodeAuth       ErrorCode = "auth"
	ErrCodeNotFound   ErrorCode = "not_found"
	ErrCodeRateLimit  ErrorCode = "rate_limit"
	// ErrCodeValidation covers 4xx statuses not listed above and requests
	// that could not be built.
	ErrCodeValidation ErrorCode = "validation"
	ErrCodeServer     ErrorCode = "server"
	// ErrCodeTooLarge means the body exceeded Config.MaxResponseBytes.
	ErrCodeTooLarge ErrorCode = "too_large"
)

// Error is returned by Adapter.Do for every failure. StatusCode is zero
// when no response arrived.
type Error struct {
	Code       ErrorCode
	StatusCode int
	Message    string
	Retryable  bool
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("httpclient: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("httpclient: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Reason is a short, URL-free description fit for users: "HTTP 404" for
// status failures, the code otherwise.
func (e *Error) Reason() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return string(e.Code)
}

func NewTimeoutError(err error) *Error {
	return &Error{Code: ErrCodeTimeout, Message: err.Error(), Retryable: true, Err: err}
}

func NewConnectionError(err error) *Error {
	return &Error{Code: ErrCodeConnection, Message: err.Error(), Retryable: true, Err: err}
}

func NewValidationError(msg string) *Error {
	return &Error{Code: ErrCodeValidation, Message: msg}
}

func NewTooLargeError(limit int64) *Error {
	return &Error{Code: ErrCodeTooLarge, Message: fmt.Sprintf("response body exceeds %d bytes", limit)}
}

// ClassifyStatusCode maps a non-2xx status to an *Error; 2xx gives nil.
func ClassifyStatusCode(status int, body []byte) *Error {
	if status/100 == 2 {
		return nil
	}

	e := &Error{StatusCode: status, Message: http.StatusText(status), Body: body, Code: ErrCodeServer}
	if e.Message == "" {
		e.Message = fmt.Sprintf("HTTP %d", status)
	}
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		e.Code = ErrCodeAuth
	case status == http.StatusNotFound:
		e.Code = ErrCodeNotFound
	case status == http.StatusTooManyRequests:
		e.Code, e.Retryable = ErrCodeRateLimit, true
	case status >= 400 && status < 500:
		e.Code = ErrCodeValidation
	case status >= 500:
		e.Retryable = true
	}
	return e
}

// CodeOf finds an *Error in err's chain and returns its code.
func CodeOf(err error) (ErrorCode, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

func IsTimeout(err error) bool {
	code, _ := CodeOf(err)
	return code == ErrCodeTimeout
}

func IsNotFound(err error) bool {
	code, _ := CodeOf(err)
	return code == ErrCodeNotFound
}

// IsStatusError reports whether err came from a non-2xx response.
func IsStatusError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.StatusCode > 0
}
