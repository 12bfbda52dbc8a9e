package domain

import (
	"errors"
	"fmt"
	"strings"
)

// FailureKind tags a payer-gateway failure so callers can branch on the kind
// of failure without inspecting concrete error types.
type FailureKind string

const (
	AuthFailure       FailureKind = "AUTH_FAILURE"
	ValidationFailure FailureKind = "VALIDATION_FAILURE"
	TransportFailure  FailureKind = "TRANSPORT_FAILURE"
	TimeoutFailure    FailureKind = "TIMEOUT"
)

// GatewayError is a tagged payer-gateway error. The engine propagates these
// unchanged; it never recovers from or translates a submission failure.
type GatewayError struct {
	Kind       FailureKind `json:"kind"`
	Message    string      `json:"message"`
	StatusCode int         `json:"status_code,omitempty"`
	Violations []string    `json:"violations,omitempty"`
	Err        error       `json:"-"`
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	if len(e.Violations) > 0 {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, strings.Join(e.Violations, "; "))
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As chains.
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewAuthError reports a failed authentication handshake with the gateway.
func NewAuthError(message string, cause error) *GatewayError {
	return &GatewayError{Kind: AuthFailure, Message: message, Err: cause}
}

// NewValidationError reports a claim payload rejected before transmission.
func NewValidationError(message string, violations []string) *GatewayError {
	return &GatewayError{Kind: ValidationFailure, Message: message, Violations: violations}
}

// NewTransportError reports an HTTP or network level failure.
func NewTransportError(message string, statusCode int, cause error) *GatewayError {
	return &GatewayError{Kind: TransportFailure, Message: message, StatusCode: statusCode, Err: cause}
}

// NewTimeoutError reports a gateway call that exceeded its deadline.
func NewTimeoutError(message string, cause error) *GatewayError {
	return &GatewayError{Kind: TimeoutFailure, Message: message, Err: cause}
}

// IsFailureKind reports whether err is (or wraps) a GatewayError of the given
// kind.
func IsFailureKind(err error, kind FailureKind) bool {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Kind == kind
	}
	return false
}
