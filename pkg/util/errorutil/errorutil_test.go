package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError_Passthrough(t *testing.T) {
	orig := NewInvalidTransition("Approve", "DRAFT")
	mapped := ToDomainError(orig)
	assert.Equal(t, CodeInvalidTransition, mapped.Code)
	assert.Equal(t, http.StatusConflict, mapped.HTTPStatus)
}

func TestToDomainError_WrappedDomainError(t *testing.T) {
	wrapped := fmt.Errorf("approve request: %w", NewInvalidTransition("Approve", "DRAFT"))
	mapped := ToDomainError(wrapped)
	assert.Equal(t, CodeInvalidTransition, mapped.Code)
}

func TestToDomainError_NoRowsBecomesNotFound(t *testing.T) {
	mapped := ToDomainError(pgx.ErrNoRows)
	assert.Equal(t, CodeNotFound, mapped.Code)
	assert.Equal(t, http.StatusNotFound, mapped.HTTPStatus)
}

func TestToDomainError_UnknownBecomesInternal(t *testing.T) {
	mapped := ToDomainError(errors.New("boom"))
	assert.Equal(t, CodeInternal, mapped.Code)
	assert.Equal(t, http.StatusInternalServerError, mapped.HTTPStatus)
}

func TestHasCode(t *testing.T) {
	err := NewDuplicateNumber("TICKET-20250601-00004")
	assert.True(t, HasCode(err, CodeDuplicateNumber))
	assert.False(t, HasCode(err, CodeInvalidTransition))
	assert.False(t, HasCode(nil, CodeDuplicateNumber))
}

func TestNewUnresolvedDepartment(t *testing.T) {
	err := NewUnresolvedDepartment("op-1")
	de := ToDomainError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, de.HTTPStatus)
	assert.Equal(t, "op-1", de.Details["operator_id"])
}
