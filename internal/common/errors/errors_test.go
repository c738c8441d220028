package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAs(t *testing.T) {
	assert.Nil(t, As(nil))

	dup := NewDuplicateRecordError("employee_id", "Employee ID already registered")
	wrapped := fmt.Errorf("create employee: %w", dup)
	got := As(wrapped)
	assert.Same(t, dup, got)
	assert.Equal(t, "employee_id", got.Field)

	plain := As(errors.New("disk full"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "disk full", plain.Details)
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NewRecordNotFoundError("Employee not found", "E999"))
	assert.True(t, HasCode(err, ErrCodeRecordNotFound))
	assert.False(t, HasCode(err, ErrCodeDuplicateRecord))
	assert.False(t, HasCode(errors.New("x"), ErrCodeRecordNotFound))
}

func TestStandardError_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewLLMUnavailableError(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "LLM_UNAVAILABLE")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected string
	}{
		{ErrCodeLLMTimeout, "AI"},
		{ErrCodeMalformedModelOutput, "AI"},
		{ErrCodeUnresolvedFunction, "DISPATCH"},
		{ErrCodeQueryTimeout, "DISPATCH"},
		{ErrCodeDatabaseConnectionFailed, "DATABASE"},
		{ErrCodeDuplicateRecord, "DATABASE"},
		{ErrCodeRequiredFieldMissing, "VALIDATION"},
		{ErrCodeRecordValidationFailed, "VALIDATION"},
		{ErrCodeCacheUnavailable, "INFRASTRUCTURE"},
		{ErrCodeInternal, "OTHER"},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorCategory(tt.code))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrCodeDuplicateRecord))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrCodeInvalidRequest))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrCodeRecordNotFound))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(ErrCodeDatabaseConnectionFailed))
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus(ErrCodeLLMTimeout))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrCodeInternal))
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewLLMTimeoutError(5 * time.Second)
	bpmnErr := ConvertToBPMNError(stdErr)
	assert.Equal(t, "LLM_TIMEOUT", bpmnErr.Code)
	assert.True(t, bpmnErr.Retryable)
	assert.Equal(t, 1, bpmnErr.Retries)

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "LLM_TIMEOUT", vars["errorCode"])
	assert.Equal(t, "LLM_TIMEOUT", vars["originalErrorCode"])

	invalid := ConvertToBPMNError(NewRequiredFieldMissingError("userPrompt"))
	assert.Equal(t, 0, invalid.Retries)
	assert.Equal(t, "userPrompt", invalid.ErrorVariables["errorField"])
}
