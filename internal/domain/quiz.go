package domain

import (
	"fmt"
	"strings"
)

// DefaultDifficulty is applied when the request carries several difficulty
// levels and the provider did not supply one of its own.
const DefaultDifficulty = "medium"

// DefaultSubtopics is substituted into the prompt when the caller did not
// narrow the topic down.
const DefaultSubtopics = "general concepts"

// QuizRequest is the immutable caller input for one quiz generation call.
type QuizRequest struct {
	Topic         string
	Subtopics     []string
	Difficulty    []string
	NumQuestions  int
	QuestionTypes []string
}

// Validate checks the request invariants. It returns ValidationErrors so the
// error middleware can render a field-level response.
func (r QuizRequest) Validate() error {
	var errs ValidationErrors

	if strings.TrimSpace(r.Topic) == "" {
		errs = append(errs, NewMissingFieldError("topic"))
	}
	if len(r.Difficulty) == 0 {
		errs = append(errs, NewMissingFieldError("difficulty"))
	}
	if r.NumQuestions <= 0 || r.NumQuestions > 50 {
		errs = append(errs, NewOutOfRangeError("numQuestions", r.NumQuestions, 1, 50))
	}
	if len(r.QuestionTypes) == 0 {
		errs = append(errs, NewMissingFieldError("questionTypes"))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RawQuestion is a provider-supplied question before normalization. The
// provider adapters translate their own response shapes into the canonical
// keys "question", "options" ([]string), "answer" and optional "difficulty";
// nothing beyond that is guaranteed, keys may be missing entirely.
type RawQuestion map[string]any

// StringField returns the named field as a trimmed string, reporting whether
// the key was present and held text.
func (q RawQuestion) StringField(key string) (string, bool) {
	v, ok := q[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// OptionTexts returns the "options" field as a string slice, reporting
// whether the key was present in a usable shape.
func (q RawQuestion) OptionTexts() ([]string, bool) {
	v, ok := q["options"]
	if !ok {
		return nil, false
	}
	switch opts := v.(type) {
	case []string:
		return opts, true
	case []any:
		out := make([]string, 0, len(opts))
		for _, o := range opts {
			s, ok := o.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// Option is a single answer choice. IDs are lowercase letters assigned by
// position ('a', 'b', 'c', ...), unique within a question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is the normalized question record. Answer always equals the ID of
// exactly one entry in Options.
type Question struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	Options    []Option `json:"options"`
	Answer     string   `json:"answer"`
	Difficulty string   `json:"difficulty"`
}

// Quiz is the value handed to the transport layer. It is created fresh per
// request and never persisted.
type Quiz struct {
	ID        int64      `json:"id"`
	Questions []Question `json:"questions"`
}

// QuestionID builds the canonical question identifier. Sequence numbers are
// counted over accepted questions only, starting at 1.
func QuestionID(quizID int64, seq int) string {
	return fmt.Sprintf("question_%d_%d", quizID, seq)
}
