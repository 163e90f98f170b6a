package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "not_found: referral not found", NewNotFoundError("referral not found").Error())
	assert.Equal(t, "validation_error: bad input (limit)", NewValidationError("bad input", "limit").Error())
}

func TestAppError_Codes(t *testing.T) {
	tests := []struct {
		err  *AppError
		code int
	}{
		{NewValidationError("x"), http.StatusBadRequest},
		{NewNotFoundError("x"), http.StatusNotFound},
		{NewConflictError("x"), http.StatusConflict},
		{NewInternalError("x"), http.StatusInternalServerError},
		{NewBadRequestError("x"), http.StatusBadRequest},
		{NewUnavailableError("x"), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Type), func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestAppError_WithCause(t *testing.T) {
	sentinel := errors.New("no referral found for activation")
	err := fmt.Errorf("activate: %w", NewNotFoundError("missing").WithCause(sentinel))

	assert.True(t, errors.Is(err, sentinel))
	assert.True(t, IsNotFoundError(err))
	assert.False(t, IsConflictError(err))
	assert.Equal(t, "missing", GetAppError(err).Message)
	assert.Nil(t, GetAppError(sentinel))
}
