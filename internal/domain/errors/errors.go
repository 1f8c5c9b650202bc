// Package errors provides standardized error types for the domain layer.
// These errors provide consistent error handling across all services
// and enable proper error categorization for HTTP responses.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Standard error categories
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput indicates invalid input was provided
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates a conflict with the current state
	ErrConflict = errors.New("conflict")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")

	// ErrServiceUnavailable indicates an external collaborator is unavailable
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrUnsupportedChain indicates the chain is not in the registry
	ErrUnsupportedChain = errors.New("unsupported chain")

	// ErrRejected indicates the signer refused to sign the transaction
	ErrRejected = errors.New("transaction rejected by signer")

	// ErrAttestationTimeout indicates the attestation poll budget was
	// exhausted without a complete attestation. Recoverable: the stored
	// transfer stays resumable.
	ErrAttestationTimeout = errors.New("attestation polling timed out")

	// ErrChainMismatch indicates the RPC endpoint reported a chain ID that
	// does not match the configured one. Hard error, never retried silently.
	ErrChainMismatch = errors.New("chain id mismatch")

	// ErrTransferNotFound indicates no bridge transfer exists for the ID
	ErrTransferNotFound = errors.New("bridge transfer not found")

	// ErrTokenNotFound indicates no imported token matched the lookup
	ErrTokenNotFound = errors.New("imported token not found")
)

// DomainError represents a domain-specific error with additional context
type DomainError struct {
	Err       error
	Code      string
	Message   string
	Details   map[string]interface{}
	Retryable bool
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target
func (e *DomainError) Is(target error) bool {
	if e.Err != nil {
		return errors.Is(e.Err, target)
	}
	return false
}

// NewDomainError creates a new domain error
func NewDomainError(err error, code, message string) *DomainError {
	return &DomainError{
		Err:     err,
		Code:    code,
		Message: message,
	}
}

// WithDetails adds details to the error
func (e *DomainError) WithDetails(details map[string]interface{}) *DomainError {
	e.Details = details
	return e
}

// WithRetryable marks the error as retryable
func (e *DomainError) WithRetryable(retryable bool) *DomainError {
	e.Retryable = retryable
	return e
}

// IsRetryable returns true if the error is retryable
func (e *DomainError) IsRetryable() bool {
	return e.Retryable
}

// NotFoundError creates a not found error
func NotFoundError(resource string) *DomainError {
	return &DomainError{
		Err:     ErrNotFound,
		Code:    fmt.Sprintf("%s_NOT_FOUND", strings.ToUpper(resource)),
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// AlreadyExistsError creates an already exists error
func AlreadyExistsError(resource string) *DomainError {
	return &DomainError{
		Err:     ErrAlreadyExists,
		Code:    fmt.Sprintf("%s_ALREADY_EXISTS", strings.ToUpper(resource)),
		Message: fmt.Sprintf("%s already exists", resource),
	}
}

// ValidationError creates a validation error
func ValidationError(field, message string) *DomainError {
	return &DomainError{
		Err:     ErrInvalidInput,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("%s: %s", field, message),
		Details: map[string]interface{}{"field": field},
	}
}

// ConflictError creates a conflict error
func ConflictError(message string) *DomainError {
	return &DomainError{
		Err:     ErrConflict,
		Code:    "CONFLICT",
		Message: message,
	}
}

// signerRejectionFragments are substrings seen in signer/node rejection
// errors across wallet backends and JSON-RPC providers.
var signerRejectionFragments = []string{
	"user rejected",
	"user denied",
	"rejected by signer",
	"transaction declined",
}

// IsRejection reports whether err looks like a signer refusal rather than a
// transport failure. Rejections are surfaced verbatim and never retried.
func IsRejection(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRejected) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range signerRejectionFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
