package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/client-portfolio/internal/types"
)

func TestCategorize_ServiceErrorCodes(t *testing.T) {
	tests := []struct {
		code       string
		statusCode int
		category   ErrorCategory
	}{
		{"INVALID_INPUT", http.StatusBadRequest, CategoryValidation},
		{"INVALID_ASSET", http.StatusBadRequest, CategoryValidation},
		{"INVALID_ADDRESS", http.StatusBadRequest, CategoryValidation},
		{"INVALID_EXCHANGE", http.StatusBadRequest, CategoryValidation},
		{"UNKNOWN_CLIENT", http.StatusNotFound, CategoryNotFound},
		{"CLIENT_NOT_FOUND", http.StatusNotFound, CategoryNotFound},
		{"WALLET_NOT_FOUND", http.StatusNotFound, CategoryNotFound},
		{"EXCHANGE_NOT_FOUND", http.StatusNotFound, CategoryNotFound},
		{"ASSET_NOT_FOUND", http.StatusNotFound, CategoryNotFound},
		{"POSITION_NOT_FOUND", http.StatusNotFound, CategoryNotFound},
		{"REFRESH_NOT_RUNNING", http.StatusNotFound, CategoryNotFound},
		{"REFRESH_IN_PROGRESS", http.StatusConflict, CategoryConflict},
		{"SOMETHING_ELSE", http.StatusInternalServerError, CategorySystem},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			catErr := Categorize(&types.ServiceError{Code: tt.code, Message: "boom"})
			require.NotNil(t, catErr)
			assert.Equal(t, tt.statusCode, catErr.StatusCode)
			assert.Equal(t, tt.category, catErr.Category)
			assert.Equal(t, tt.code, catErr.Code)
		})
	}
}

func TestCategorize_NilError(t *testing.T) {
	assert.Nil(t, Categorize(nil))
}

func TestCategorize_PlainErrorBecomesInternal(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	catErr := Categorize(cause)

	require.NotNil(t, catErr)
	assert.Equal(t, "INTERNAL_ERROR", catErr.Code)
	assert.Equal(t, http.StatusInternalServerError, catErr.StatusCode)
	assert.ErrorIs(t, catErr, cause)
}

func TestCategorize_PassesThroughCategorizedError(t *testing.T) {
	original := NewInternalError("bad state", nil)
	assert.Same(t, original, Categorize(original))
}

func TestGetHTTPStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound,
		GetHTTPStatusCode(&types.ServiceError{Code: "CLIENT_NOT_FOUND"}))
	assert.Equal(t, http.StatusInternalServerError,
		GetHTTPStatusCode(fmt.Errorf("oops")))
}

func TestIsUserError(t *testing.T) {
	assert.True(t, IsUserError(&types.ServiceError{Code: "INVALID_INPUT"}))
	assert.True(t, IsUserError(&types.ServiceError{Code: "REFRESH_IN_PROGRESS"}))
	assert.False(t, IsUserError(fmt.Errorf("oops")))
	assert.False(t, IsUserError(nil))
}
