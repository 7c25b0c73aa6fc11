package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Sentinels used with Mark. Each maps to one class of the console's error taxonomy:
// validation, balance, lifecycle and remote.
var (
	ErrNotFound             = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists        = new(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation           = new(ErrCodeValidation, "validation error")
	ErrInvalidAmount        = new(ErrCodeInvalidAmount, "invalid amount")
	ErrExceedsBalance       = new(ErrCodeExceedsBalance, "amount exceeds remaining balance")
	ErrPaymentIncomplete    = new(ErrCodePaymentIncomplete, "invoice is not fully paid")
	ErrMissingBillingTarget = new(ErrCodeMissingBillingTarget, "client or post site is not resolved")
	ErrInvalidOperation     = new(ErrCodeInvalidOperation, "invalid operation")
	ErrHTTPClient           = new(ErrCodeHTTPClient, "http client error")
	ErrSystem               = new(ErrCodeSystemError, "system error")

	// maps errors to http status codes, checked in order
	statusCodes = []struct {
		err    error
		status int
	}{
		{ErrInvalidAmount, http.StatusBadRequest},
		{ErrValidation, http.StatusBadRequest},
		{ErrMissingBillingTarget, http.StatusConflict},
		{ErrPaymentIncomplete, http.StatusConflict},
		{ErrExceedsBalance, http.StatusUnprocessableEntity},
		{ErrNotFound, http.StatusNotFound},
		{ErrAlreadyExists, http.StatusConflict},
		{ErrInvalidOperation, http.StatusBadRequest},
		{ErrHTTPClient, http.StatusBadGateway},
		{ErrSystem, http.StatusInternalServerError},
	}
)

const (
	ErrCodeNotFound             = "not_found"
	ErrCodeAlreadyExists        = "already_exists"
	ErrCodeValidation           = "validation_error"
	ErrCodeInvalidAmount        = "invalid_amount"
	ErrCodeExceedsBalance       = "exceeds_balance"
	ErrCodePaymentIncomplete    = "payment_incomplete"
	ErrCodeMissingBillingTarget = "missing_billing_target"
	ErrCodeInvalidOperation     = "invalid_operation"
	ErrCodeHTTPClient           = "http_client_error"
	ErrCodeSystemError          = "system_error"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

// New creates an InternalError with the given code. Used by transports that
// need a typed error value rather than a marked chain.
func New(code string, message string) *InternalError {
	return new(code, message)
}

// FromCode returns the sentinel for a machine-readable code, or nil when the
// code is unknown. The REST collaborator uses it to turn the backend's error
// envelope into the same sentinels the domain marks.
func FromCode(code string) *InternalError {
	switch code {
	case ErrCodeNotFound:
		return ErrNotFound
	case ErrCodeAlreadyExists:
		return ErrAlreadyExists
	case ErrCodeValidation:
		return ErrValidation
	case ErrCodeInvalidAmount:
		return ErrInvalidAmount
	case ErrCodeExceedsBalance:
		return ErrExceedsBalance
	case ErrCodePaymentIncomplete:
		return ErrPaymentIncomplete
	case ErrCodeMissingBillingTarget:
		return ErrMissingBillingTarget
	case ErrCodeInvalidOperation:
		return ErrInvalidOperation
	}
	return nil
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is reports whether err is marked with, or wraps, target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation covers malformed input, non-positive payment amounts and
// previewing without a billing target.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrMissingBillingTarget)
}

// IsBalance checks if a payment was rejected for exceeding the remaining balance
func IsBalance(err error) bool {
	return errors.Is(err, ErrExceedsBalance)
}

// IsLifecycle checks if a state transition was blocked by a lifecycle gate
func IsLifecycle(err error) bool {
	return errors.Is(err, ErrPaymentIncomplete) ||
		errors.Is(err, ErrMissingBillingTarget)
}

// IsRemote checks if an error came from a collaborator call
func IsRemote(err error) bool {
	return errors.Is(err, ErrHTTPClient)
}

// IsInvalidOperation checks if an error is an invalid operation error
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

func HTTPStatusFromErr(err error) int {
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			return sc.status
		}
	}
	return http.StatusInternalServerError
}
