package service

import (
	"strings"

	"github.com/higagan/quizcracker-backend/internal/domain"
	"github.com/higagan/quizcracker-backend/internal/logger"
	"go.uber.org/zap"
)

// minOptions is the smallest option count a question may carry.
const minOptions = 2

// questionTextDenylist marks question texts that reference content the
// client cannot render. Matching is case-insensitive substring.
var questionTextDenylist = []string{
	"code snippet",
	"code example",
	"following code",
}

// SkippedQuestion records a raw question that normalization rejected,
// with the reason it was dropped.
type SkippedQuestion struct {
	Raw    domain.RawQuestion
	Reason string
}

// NormalizeResult splits a normalization pass into the questions that
// survived and the ones that were dropped.
type NormalizeResult struct {
	Accepted []domain.Question
	Skipped  []SkippedQuestion
}

// NormalizeQuestions turns raw provider questions into client-ready ones.
// Raw questions missing required keys, carrying empty options, or referring
// to code the client cannot show are skipped rather than failing the whole
// quiz. Accepted questions get strictly increasing sequence numbers, so
// skipped entries leave no gaps in the identifiers.
func NormalizeQuestions(raws []domain.RawQuestion, req domain.QuizRequest, quizID int64) NormalizeResult {
	var result NormalizeResult
	seq := 0

	for _, raw := range raws {
		text, ok := raw.StringField("question")
		if !ok {
			result.Skipped = append(result.Skipped, skip(raw, "missing question text"))
			continue
		}
		if reason, denied := deniedText(text); denied {
			result.Skipped = append(result.Skipped, skip(raw, reason))
			continue
		}
		optionTexts, ok := raw.OptionTexts()
		if !ok || len(optionTexts) == 0 {
			result.Skipped = append(result.Skipped, skip(raw, "missing or empty options"))
			continue
		}
		// A question needs at least two choices to be a question.
		if len(optionTexts) < minOptions {
			result.Skipped = append(result.Skipped, skip(raw, "fewer than two options"))
			continue
		}
		answer, ok := raw.StringField("answer")
		if !ok || strings.TrimSpace(answer) == "" {
			result.Skipped = append(result.Skipped, skip(raw, "missing answer"))
			continue
		}

		options, answerID := ResolveAnswer(optionTexts, answer)

		seq++
		result.Accepted = append(result.Accepted, domain.Question{
			ID:         domain.QuestionID(quizID, seq),
			Text:       strings.TrimSpace(text),
			Options:    options,
			Answer:     answerID,
			Difficulty: questionDifficulty(raw, req),
		})
	}

	return result
}

func skip(raw domain.RawQuestion, reason string) SkippedQuestion {
	logger.Get().Warn("Skipping malformed question", zap.String("reason", reason))
	return SkippedQuestion{Raw: raw, Reason: reason}
}

func deniedText(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, phrase := range questionTextDenylist {
		if strings.Contains(lower, phrase) {
			return "question references unrenderable code: " + phrase, true
		}
	}
	return "", false
}

// questionDifficulty prefers the difficulty the provider declared, then the
// single requested level, then the default.
func questionDifficulty(raw domain.RawQuestion, req domain.QuizRequest) string {
	if d, ok := raw.StringField("difficulty"); ok && strings.TrimSpace(d) != "" {
		return strings.ToLower(strings.TrimSpace(d))
	}
	if len(req.Difficulty) == 1 {
		return strings.ToLower(req.Difficulty[0])
	}
	return domain.DefaultDifficulty
}
