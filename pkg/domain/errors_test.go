package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	err := NewNotFoundError("company")
	assert.Equal(t, "NOT_FOUND: company not found", err.Error())

	cause := errors.New("connection reset")
	err = NewInternalError(cause)
	assert.Contains(t, err.Error(), "connection reset")
	assert.ErrorIs(t, err, cause)
}

func TestIsHelpers_SeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("purchase: %w", NewValidationError("no ids"))

	assert.True(t, IsValidation(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.Equal(t, ErrCodeValidation, GetErrorCode(wrapped))
}

func TestInsufficientCredits(t *testing.T) {
	err := fmt.Errorf("debit: %w", NewInsufficientCreditsError(3, 10))

	ice, ok := AsInsufficientCredits(err)
	assert.True(t, ok)
	assert.Equal(t, 3, ice.Balance)
	assert.Equal(t, 10, ice.Required)
	assert.Equal(t, ErrCodeInsufficientCredits, GetErrorCode(err))
}

func TestGetErrorCode_UnknownIsInternal(t *testing.T) {
	assert.Equal(t, ErrCodeInternal, GetErrorCode(errors.New("boom")))
	assert.True(t, IsConflict(NewConflictError("exists")))
	assert.True(t, IsUnauthorized(NewUnauthorizedError()))
	assert.Equal(t, ErrCodeForbidden, GetErrorCode(NewForbiddenError("admins only")))
}
