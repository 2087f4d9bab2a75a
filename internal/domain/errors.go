package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrCacheMiss is returned by Cache implementations when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// ErrorCode classifies a domain error for the transport layer.
type ErrorCode string

const (
	CodeInternal   ErrorCode = "INTERNAL_ERROR"
	CodeValidation ErrorCode = "VALIDATION_ERROR"

	// Generation pipeline errors
	CodeParseExhausted       ErrorCode = "PARSE_EXHAUSTED"
	CodeProviderError        ErrorCode = "PROVIDER_ERROR"
	CodeAllProvidersFailed   ErrorCode = "ALL_PROVIDERS_FAILED"
	CodeNoQuestionsGenerated ErrorCode = "NO_QUESTIONS_GENERATED"
)

// DomainError is the error type surfaced to the error middleware.
type DomainError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"-"`
	Context map[string]any `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON keeps the wrapped cause out of API responses.
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError.
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Cause: err}
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

// NewParseExhaustedError reports that every parse attempt against one
// provider produced unparsable JSON. The last raw response (truncated) and
// the last parse error are kept for diagnostics.
func NewParseExhaustedError(attempts int, lastRaw string, lastErr error) *DomainError {
	const maxRawContext = 512
	if len(lastRaw) > maxRawContext {
		lastRaw = lastRaw[:maxRawContext]
	}
	e := NewError(CodeParseExhausted,
		fmt.Sprintf("response could not be parsed after %d attempts", attempts), lastErr)
	e.Context = map[string]any{"last_response": lastRaw}
	return e
}

// NewProviderError wraps a network/auth/rate-limit failure from a provider.
func NewProviderError(provider string, err error) *DomainError {
	return NewError(CodeProviderError,
		fmt.Sprintf("provider %s failed to generate", provider), err)
}

// NewAllProvidersFailedError aggregates the underlying failure of every
// provider attempted for one generation call.
func NewAllProvidersFailedError(errs []error) *DomainError {
	return NewError(CodeAllProvidersFailed,
		"all question providers failed", errors.Join(errs...))
}

func NewNoQuestionsGeneratedError() *DomainError {
	return NewError(CodeNoQuestionsGenerated,
		"no questions could be generated for this request", nil)
}

// ValidationError represents a single field-level validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates field-level failures for one request.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Message: "is required"}
}

func NewInvalidFormatError(field, value string) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("has invalid format: %s", value)}
}

func NewOutOfRangeError(field string, value, min, max int) ValidationError {
	return ValidationError{
		Field:   field,
		Message: fmt.Sprintf("must be between %d and %d, got %d", min, max, value),
	}
}
