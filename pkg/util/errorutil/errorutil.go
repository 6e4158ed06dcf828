package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
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

// Error codes for the workflow core. DUPLICATE_NUMBER is the only
// retryable one; the caller decides whether to retry.
const (
	CodeValidation           = "VALIDATION_FAILED"
	CodeNotFound             = "NOT_FOUND"
	CodeConflict             = "CONFLICT"
	CodeUnresolvedDepartment = "DEPARTMENT_UNRESOLVED"
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeDuplicateNumber      = "DUPLICATE_NUMBER"
	CodeReferentialIntegrity = "REFERENTIAL_INTEGRITY"
	CodeInternal             = "INTERNAL_ERROR"
)

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

// NewUnresolvedDepartment signals ticket creation that could not
// determine a department from either the input or the creator.
func NewUnresolvedDepartment(operatorID string) error {
	return NewDomainError(CodeUnresolvedDepartment,
		"department could not be resolved for ticket creation",
		http.StatusUnprocessableEntity,
		map[string]any{"operator_id": operatorID})
}

// NewInvalidTransition signals a workflow action whose precondition on
// the current status does not hold.
func NewInvalidTransition(action string, current string) error {
	return NewDomainError(CodeInvalidTransition,
		fmt.Sprintf("%s not allowed from status %q", action, current),
		http.StatusConflict,
		map[string]any{"action": action, "current_status": current})
}

// NewDuplicateNumber signals a sequence collision despite the counter
// guard. Surfaced as a retryable conflict, never silently resolved.
func NewDuplicateNumber(number string) error {
	return NewDomainError(CodeDuplicateNumber,
		fmt.Sprintf("number %s already exists", number),
		http.StatusConflict,
		map[string]any{"number": number})
}

// NewReferentialIntegrity signals deletion of a record still referenced
// by protected rows.
func NewReferentialIntegrity(resource string, details map[string]any) error {
	return NewDomainError(CodeReferentialIntegrity,
		fmt.Sprintf("%s is still referenced and cannot be deleted", resource),
		http.StatusConflict,
		details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err is a DomainError carrying the given code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
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
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
