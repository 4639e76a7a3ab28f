package types

import (
	"errors"
	"fmt"
)

// ErrorCode classifies reward engine failures so API handlers and
// callers can react without string matching.
type ErrorCode string

const (
	// ErrCodeValidation indicates a structurally invalid request.
	ErrCodeValidation ErrorCode = "VALIDATION_FAILURE"
	// ErrCodePolicyDenied indicates a well-formed request rejected by a
	// business rule (cooldown, proximity, caps, insufficient credits).
	ErrCodePolicyDenied ErrorCode = "POLICY_DENIED"
	// ErrCodeConflict indicates the operation lost a concurrency race and
	// may be retried.
	ErrCodeConflict ErrorCode = "CONFLICT"
	// ErrCodeNotFound indicates a referenced entity does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeExpired indicates the target prize passed its expiry.
	ErrCodeExpired ErrorCode = "EXPIRED"
	// ErrCodeAlreadyRedeemed indicates the prize was redeemed before.
	ErrCodeAlreadyRedeemed ErrorCode = "ALREADY_REDEEMED"
	// ErrCodeStoreUnavailable indicates the persistence layer failed.
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
)

// RewardError is the error type returned by all reward engine services.
type RewardError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *RewardError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *RewardError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a VALIDATION_FAILURE error.
func NewValidationError(format string, args ...interface{}) *RewardError {
	return &RewardError{Code: ErrCodeValidation, Message: fmt.Sprintf(format, args...)}
}

// NewPolicyDenied creates a POLICY_DENIED error.
func NewPolicyDenied(format string, args ...interface{}) *RewardError {
	return &RewardError{Code: ErrCodePolicyDenied, Message: fmt.Sprintf(format, args...)}
}

// NewConflict creates a retryable CONFLICT error.
func NewConflict(format string, args ...interface{}) *RewardError {
	return &RewardError{Code: ErrCodeConflict, Message: fmt.Sprintf(format, args...)}
}

// NewNotFound creates a NOT_FOUND error.
func NewNotFound(format string, args ...interface{}) *RewardError {
	return &RewardError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewExpired creates an EXPIRED error.
func NewExpired(format string, args ...interface{}) *RewardError {
	return &RewardError{Code: ErrCodeExpired, Message: fmt.Sprintf(format, args...)}
}

// NewAlreadyRedeemed creates an ALREADY_REDEEMED error.
func NewAlreadyRedeemed(format string, args ...interface{}) *RewardError {
	return &RewardError{Code: ErrCodeAlreadyRedeemed, Message: fmt.Sprintf(format, args...)}
}

// NewStoreUnavailable wraps a storage failure as STORE_UNAVAILABLE.
func NewStoreUnavailable(msg string, err error) *RewardError {
	return &RewardError{Code: ErrCodeStoreUnavailable, Message: msg, Err: err}
}

// CodeOf extracts the ErrorCode from err, or "" when err carries none.
func CodeOf(err error) ErrorCode {
	var re *RewardError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsConflict reports whether err is a retryable concurrency conflict.
func IsConflict(err error) bool {
	return IsCode(err, ErrCodeConflict)
}
