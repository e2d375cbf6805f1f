package util

import (
	"errors"
	"fmt"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Error codes used across the bot.
const (
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeSessionExpired   = "SESSION_EXPIRED"
	CodeTaxonomyMismatch = "TAXONOMY_MISMATCH"
	CodeTransportFailed  = "TRANSPORT_FAILED"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeInternal         = "INTERNAL_ERROR"
)

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, Details: details}
}

// NewUnauthorized reports that the acting user does not own the session.
func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, nil)
}

// NewSessionExpired reports that no in-progress session exists for the user.
func NewSessionExpired(message string) error {
	return NewDomainError(CodeSessionExpired, message, nil)
}

// NewTaxonomyMismatch reports a category outside the fixed taxonomy. Option
// sets are only ever offered from the taxonomy itself, so hitting this is a
// programming-contract violation rather than a user error.
func NewTaxonomyMismatch(category string) error {
	return NewDomainError(CodeTaxonomyMismatch, fmt.Sprintf("unknown category %q", category), map[string]any{"category": category})
}

// NewTransportError wraps a failed chat-platform call.
func NewTransportError(op string, err error) error {
	return &DomainError{Code: CodeTransportFailed, Message: fmt.Sprintf("gateway %s failed", op), Err: err}
}

// NewPermissionDenied wraps a platform permission failure.
func NewPermissionDenied(op string, err error) error {
	return &DomainError{Code: CodePermissionDenied, Message: fmt.Sprintf("missing permission for %s", op), Err: err}
}

func NewInternalError(err error) error {
	return &DomainError{Code: CodeInternal, Message: "internal error", Err: err}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{Code: CodeInternal, Message: "internal error", Err: err}
}

// HasCode reports whether err carries the given domain error code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// IsUnauthorized reports whether err is an ownership rejection.
func IsUnauthorized(err error) bool { return HasCode(err, CodeUnauthorized) }

// IsSessionExpired reports whether err is a missing-session rejection.
func IsSessionExpired(err error) bool { return HasCode(err, CodeSessionExpired) }

// IsPermissionDenied reports whether err is a platform permission failure.
func IsPermissionDenied(err error) bool { return HasCode(err, CodePermissionDenied) }
