// Package parser turns raw provider text into raw question objects,
// regenerating from scratch when a response cannot be repaired into valid
// JSON. Retrying the generation (rather than re-sanitizing the same text)
// matters because the malformation usually comes from non-deterministic
// generation, not from a gap in the repair rules.
package parser

import (
	"context"
	"encoding/json"
	"time"

	"github.com/higagan/quizcracker-backend/internal/domain"
	"github.com/higagan/quizcracker-backend/internal/logger"
	"github.com/higagan/quizcracker-backend/internal/sanitizer"
	"go.uber.org/zap"
)

const (
	DefaultMaxAttempts = 3
	DefaultBackoff     = 500 * time.Millisecond
)

// GenerateFunc is the generation capability the parser drives: one call,
// one raw text response.
type GenerateFunc func(ctx context.Context) (string, error)

// ParseWithRetry invokes generate, sanitizes the response and parses it into
// raw question objects, retrying the whole generation up to maxAttempts
// times with a fixed backoff between attempts. A lone object is normalized
// to a one-element slice. Generation failures propagate immediately; only
// parse failures are retried. When every attempt produced unparsable JSON
// the returned error is a ParseExhausted domain error carrying the last raw
// text and parse error.
func ParseWithRetry(ctx context.Context, generate GenerateFunc, maxAttempts int, backoff time.Duration) ([]domain.RawQuestion, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if backoff <= 0 {
		backoff = DefaultBackoff
	}

	var lastRaw string
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := generate(ctx)
		if err != nil {
			return nil, err
		}

		questions, err := parseQuestions(sanitizer.Sanitize(raw))
		if err == nil {
			return questions, nil
		}

		lastRaw = raw
		lastErr = err
		logger.Get().Warn("Failed to parse generated response",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Error(err),
		)

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, domain.NewParseExhaustedError(maxAttempts, lastRaw, lastErr)
}

func parseQuestions(text string) ([]domain.RawQuestion, error) {
	var questions []domain.RawQuestion
	if err := json.Unmarshal([]byte(text), &questions); err == nil {
		return questions, nil
	}

	var single domain.RawQuestion
	if err := json.Unmarshal([]byte(text), &single); err != nil {
		return nil, err
	}
	return []domain.RawQuestion{single}, nil
}
