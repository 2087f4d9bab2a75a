package service

import (
	"strings"

	"github.com/higagan/quizcracker-backend/internal/domain"
	"github.com/higagan/quizcracker-backend/internal/logger"
	"github.com/xrash/smetrics"
	"go.uber.org/zap"
)

// answerSimilarityThreshold is the minimum Jaro-Winkler score for a fuzzy
// answer-to-option match.
const answerSimilarityThreshold = 0.9

// ResolveAnswer assigns positional identifiers ("a", "b", ...) to option
// texts and matches the declared answer to one of them. Matching tries an
// exact case-insensitive comparison first and falls back to Jaro-Winkler
// similarity. When nothing matches, the answer text is appended as a new
// option so the question stays answerable.
func ResolveAnswer(optionTexts []string, answer string) ([]domain.Option, string) {
	options := make([]domain.Option, 0, len(optionTexts))
	for i, text := range optionTexts {
		options = append(options, domain.Option{
			ID:   string(rune('a' + i)),
			Text: strings.TrimSpace(text),
		})
	}

	answer = strings.TrimSpace(answer)
	folded := foldAnswer(answer)

	for _, opt := range options {
		if foldAnswer(opt.Text) == folded {
			return options, opt.ID
		}
	}

	// First option at or above the threshold wins, in display order.
	bestScore := 0.0
	for _, opt := range options {
		score := smetrics.JaroWinkler(folded, foldAnswer(opt.Text), 0.7, 4)
		if score >= answerSimilarityThreshold {
			return options, opt.ID
		}
		if score > bestScore {
			bestScore = score
		}
	}

	appended := domain.Option{
		ID:   string(rune('a' + len(options))),
		Text: answer,
	}
	logger.Get().Warn("Answer did not match any option, appending it",
		zap.String("answer", answer),
		zap.String("option_id", appended.ID),
		zap.Float64("best_score", bestScore),
	)
	return append(options, appended), appended.ID
}

// foldAnswer lowercases and strips trailing punctuation so "Paris." and
// "paris" compare equal.
func foldAnswer(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimRight(s, ".!?")
}
