package parser_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/higagan/quizcracker-backend/internal/domain"
	"github.com/higagan/quizcracker-backend/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWithRetry_FirstAttemptSucceeds(t *testing.T) {
	calls := 0
	generate := func(ctx context.Context) (string, error) {
		calls++
		return `[{"question": "Q1", "options": ["a", "b"], "answer": "a"}]`, nil
	}

	questions, err := parser.ParseWithRetry(context.Background(), generate, 3, time.Millisecond)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, 1, calls)

	q, ok := questions[0].StringField("question")
	assert.True(t, ok)
	assert.Equal(t, "Q1", q)
}

func TestParseWithRetry_SanitizerRepairsTruncation(t *testing.T) {
	// Truncated response: missing closing bracket. Repair must succeed on
	// the first attempt, no regeneration.
	calls := 0
	generate := func(ctx context.Context) (string, error) {
		calls++
		return `[{"question": "Q1", "options": ["a", "b", "c", "d"], "answer": "a"}`, nil
	}

	questions, err := parser.ParseWithRetry(context.Background(), generate, 3, time.Millisecond)
	require.NoError(t, err)
	assert.Len(t, questions, 1)
	assert.Equal(t, 1, calls)
}

func TestParseWithRetry_LoneObjectNormalized(t *testing.T) {
	generate := func(ctx context.Context) (string, error) {
		return `{"question": "Q1", "options": ["a", "b"], "answer": "b"}`, nil
	}

	questions, err := parser.ParseWithRetry(context.Background(), generate, 3, time.Millisecond)
	require.NoError(t, err)
	require.Len(t, questions, 1)
}

func TestParseWithRetry_RegeneratesOnParseFailure(t *testing.T) {
	calls := 0
	generate := func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "no json here at all, not even close {{{", nil
		}
		return `[{"question": "Q1", "options": ["a", "b"], "answer": "a"}]`, nil
	}

	questions, err := parser.ParseWithRetry(context.Background(), generate, 3, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, calls, "each retry regenerates from scratch")
	assert.Len(t, questions, 1)
}

func TestParseWithRetry_Exhaustion(t *testing.T) {
	calls := 0
	generate := func(ctx context.Context) (string, error) {
		calls++
		return "still not json {{{", nil
	}

	_, err := parser.ParseWithRetry(context.Background(), generate, 3, time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeParseExhausted, domainErr.Code)
	assert.Contains(t, domainErr.Context["last_response"], "still not json")
	assert.Error(t, domainErr.Cause)
}

func TestParseWithRetry_GenerationErrorPropagates(t *testing.T) {
	provErr := domain.NewProviderError("gemini", errors.New("rate limited"))
	calls := 0
	generate := func(ctx context.Context) (string, error) {
		calls++
		return "", provErr
	}

	_, err := parser.ParseWithRetry(context.Background(), generate, 3, time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, 1, calls, "generation failure is not retried here; fallback handles it")

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeProviderError, domainErr.Code)
}

func TestParseWithRetry_CancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	generate := func(ctx context.Context) (string, error) {
		cancel()
		return "not json", nil
	}

	_, err := parser.ParseWithRetry(ctx, generate, 3, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
}
