package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type ErrorCode string

const (
	// language model collaborator
	ErrCodeLLMUnavailable       ErrorCode = "LLM_UNAVAILABLE"
	ErrCodeLLMTimeout           ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMNotConfigured     ErrorCode = "LLM_NOT_CONFIGURED"
	ErrCodeMalformedModelOutput ErrorCode = "MALFORMED_MODEL_OUTPUT"

	// dispatch
	ErrCodeUnresolvedFunction     ErrorCode = "UNRESOLVED_FUNCTION"
	ErrCodeQueryExecutionFailed   ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout           ErrorCode = "QUERY_TIMEOUT"
	ErrCodeRecordValidationFailed ErrorCode = "RECORD_VALIDATION_FAILED"

	// record store
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDuplicateRecord          ErrorCode = "DUPLICATE_RECORD"
	ErrCodeRequiredFieldMissing     ErrorCode = "REQUIRED_FIELD_MISSING"
	ErrCodeInvalidFieldValue        ErrorCode = "INVALID_FIELD_VALUE"
	ErrCodeRecordNotFound           ErrorCode = "RECORD_NOT_FOUND"

	// transport
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"

	// optional infrastructure
	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeAuditFailed      ErrorCode = "AUDIT_FAILED"
)

// StandardError is the single error shape passed between layers. Field is set
// for validation failures that concern one input field.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Field     string                 `json:"field,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// As extracts a StandardError from err, wrapping anything else as INTERNAL_ERROR.
func As(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return errors.As(err, &stdErr) && stdErr.Code == code
}

func NewLLMUnavailableError(err error) *StandardError {
	return newError(ErrCodeLLMUnavailable, "Language model service unavailable", err.Error(), true, err)
}

func NewLLMTimeoutError(timeout time.Duration) *StandardError {
	return newError(ErrCodeLLMTimeout, "Language model call timed out",
		fmt.Sprintf("call exceeded %s", timeout), true, nil)
}

func NewLLMNotConfiguredError(details string) *StandardError {
	return newError(ErrCodeLLMNotConfigured, "Language model is not configured", details, false, nil)
}

func NewMalformedModelOutputError(details string) *StandardError {
	return newError(ErrCodeMalformedModelOutput, "Model reply does not match the intent contract", details, false, nil)
}

func NewUnresolvedFunctionError(functionName string) *StandardError {
	e := newError(ErrCodeUnresolvedFunction, "Function is not registered",
		fmt.Sprintf("functionName: %s", functionName), false, nil)
	e.Metadata = map[string]interface{}{"functionName": functionName}
	return e
}

func NewQueryExecutionFailedError(functionName string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Query execution error",
		fmt.Sprintf("functionName: %s, error: %s", functionName, err.Error()), true, err)
}

func NewQueryTimeoutError(functionName string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Query timeout",
		fmt.Sprintf("functionName: %s", functionName), true, nil)
}

func NewRecordValidationFailedError(schema string, details string) *StandardError {
	return newError(ErrCodeRecordValidationFailed, "Record does not match its schema",
		fmt.Sprintf("schema: %s, %s", schema, details), false, nil)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true, err)
}

// NewDuplicateRecordError reports a uniqueness violation; message is the
// client-facing text, e.g. "Employee ID already registered".
func NewDuplicateRecordError(field, message string) *StandardError {
	e := newError(ErrCodeDuplicateRecord, message, fmt.Sprintf("field: %s", field), false, nil)
	e.Field = field
	return e
}

func NewRequiredFieldMissingError(field string) *StandardError {
	e := newError(ErrCodeRequiredFieldMissing, fmt.Sprintf("%s is required", field), "", false, nil)
	e.Field = field
	return e
}

func NewInvalidFieldValueError(field, details string) *StandardError {
	e := newError(ErrCodeInvalidFieldValue, fmt.Sprintf("%s is invalid", field), details, false, nil)
	e.Field = field
	return e
}

// NewRecordNotFoundError uses message verbatim as the client-facing text.
func NewRecordNotFoundError(message, key string) *StandardError {
	return newError(ErrCodeRecordNotFound, message, fmt.Sprintf("key: %s", key), false, nil)
}

func NewInvalidRequestError(message string) *StandardError {
	return newError(ErrCodeInvalidRequest, message, "", false, nil)
}

func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Result cache unavailable", err.Error(), true, err)
}

func NewAuditFailedError(err error) *StandardError {
	return newError(ErrCodeAuditFailed, "Audit record could not be written", err.Error(), true, err)
}

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// GetRetryCount is the number of job retries a workflow engine may spend on
// a code. The assistant pipeline itself never retries.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed, ErrCodeLLMUnavailable:
		return 3
	case ErrCodeQueryTimeout, ErrCodeLLMTimeout:
		return 1
	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	if stdErr.Field != "" {
		vars["errorField"] = stdErr.Field
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "LLM") || strings.Contains(codeStr, "MODEL"):
		return "AI"
	case strings.Contains(codeStr, "FUNCTION") || strings.Contains(codeStr, "QUERY"):
		return "DISPATCH"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "RECORD_NOT_FOUND") || strings.Contains(codeStr, "DUPLICATE"):
		return "DATABASE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "MISSING"):
		return "VALIDATION"
	case strings.Contains(codeStr, "CACHE") || strings.Contains(codeStr, "AUDIT"):
		return "INFRASTRUCTURE"
	default:
		return "OTHER"
	}
}

// HTTPStatus maps a code onto the status the HTTP transport answers with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidRequest, ErrCodeDuplicateRecord, ErrCodeRequiredFieldMissing, ErrCodeInvalidFieldValue:
		return http.StatusBadRequest
	case ErrCodeRecordNotFound:
		return http.StatusNotFound
	case ErrCodeDatabaseConnectionFailed, ErrCodeLLMUnavailable, ErrCodeCacheUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeQueryTimeout, ErrCodeLLMTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
