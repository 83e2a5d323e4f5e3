// Package errors classifies pipeline errors for retry and degradation
// decisions. The model backend is a remote call; its failures are either
// transient (retry), permanent (give up) or degraded (fall back to the
// keyword tier and keep going).
package errors

import (
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorType represents the classification of errors for retry logic.
type ErrorType int

const (
	// ErrorTypeTransient - retry-able errors
	ErrorTypeTransient ErrorType = iota
	// ErrorTypePermanent - non-retry-able errors
	ErrorTypePermanent
	// ErrorTypeDegraded - can continue with reduced functionality
	ErrorTypeDegraded
)

// TransientError represents an error that can be retried.
type TransientError struct {
	Err        error
	StatusCode int // HTTP status code if applicable
	Message    string
}

func (e *TransientError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("transient error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// PermanentError represents an error that should not be retried.
type PermanentError struct {
	Err        error
	StatusCode int
	Message    string
}

func (e *PermanentError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("permanent error: %v", e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// DegradedError represents an error where the pipeline can continue with
// reduced functionality, e.g. the learned classifier being unavailable.
type DegradedError struct {
	Err      error
	Fallback string // name of the fallback path taken
	Message  string
}

func (e *DegradedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("degraded error: %v", e.Err)
}

func (e *DegradedError) Unwrap() error {
	return e.Err
}

// IsTransient checks if an error is retry-able.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var transientErr *TransientError
	if errors.As(err, &transientErr) {
		return true
	}
	var permanentErr *PermanentError
	if errors.As(err, &permanentErr) {
		return false
	}

	if isNetworkError(err) {
		return true
	}
	return false
}

// IsDegraded checks whether the pipeline should fall back rather than fail.
func IsDegraded(err error) bool {
	if err == nil {
		return false
	}
	var degradedErr *DegradedError
	return errors.As(err, &degradedErr)
}

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypePermanent:
		return "permanent"
	case ErrorTypeDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Classify returns the error type for an arbitrary error.
func Classify(err error) ErrorType {
	switch {
	case IsDegraded(err):
		return ErrorTypeDegraded
	case IsTransient(err):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}

// IsTransientHTTPStatus reports whether an HTTP status code warrants a retry.
func IsTransientHTTPStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
