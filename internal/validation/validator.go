package validation

import (
	"regexp"
	"strings"

	"github.com/higagan/quizcracker-backend/internal/domain"
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateTopic validates a topic parameter
func (v *Validator) ValidateTopic(topic string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(topic) == "" {
		errors = append(errors, domain.NewMissingFieldError("topic"))
		return errors
	}

	if !isValidTopic(topic) {
		errors = append(errors, domain.NewInvalidFormatError("topic", topic))
	}

	return errors
}

// ValidateAnswerQuestion validates the pasted question text for the answer
// endpoint.
func (v *Validator) ValidateAnswerQuestion(questionText string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(questionText) == "" {
		errors = append(errors, domain.NewMissingFieldError("question_text"))
	} else if len(questionText) > 4000 {
		errors = append(errors, domain.NewOutOfRangeError("question_text", len(questionText), 1, 4000))
	}

	return errors
}

// isValidTopic checks if the topic format is reasonable: printable text up
// to 200 characters with no control characters.
func isValidTopic(s string) bool {
	if len(s) == 0 || len(s) > 200 {
		return false
	}
	validTopic := regexp.MustCompile(`^[^\x00-\x1f\x7f]+$`)
	return validTopic.MatchString(s)
}
