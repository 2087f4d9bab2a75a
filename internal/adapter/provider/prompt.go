package provider

import (
	"fmt"
	"strings"

	"github.com/higagan/quizcracker-backend/internal/domain"
)

// BuildQuizPrompt renders the generation prompt for one batch of count
// questions. The prompt is provider-agnostic; every provider receives the
// same text and differs only in how its response is read back.
func BuildQuizPrompt(req domain.QuizRequest, count int) string {
	subtopics := domain.DefaultSubtopics
	if len(req.Subtopics) > 0 {
		subtopics = strings.Join(req.Subtopics, ", ")
	}
	difficulty := strings.Join(req.Difficulty, ", ")
	questionTypes := strings.Join(req.QuestionTypes, ", ")

	return fmt.Sprintf(
		"Generate %d %s questions on the topic '%s' with a strong focus on '%s'. "+
			"Each question should be a %s with clear options and a correct answer. "+
			"Ensure the difficulty level is %s. "+
			"The response must be a valid JSON array, with each question containing "+
			"the question text, options, correct answer, and difficulty level. "+
			"Do not include questions without answers and do not include code snippets.",
		count, questionTypes, req.Topic, subtopics, questionTypes, difficulty,
	)
}

// BuildSubtopicsPrompt asks for the core concepts of a topic as a flat list.
func BuildSubtopicsPrompt(topic string) string {
	return fmt.Sprintf(
		"Provide a combined list of all the core concepts and advanced features in %s "+
			"without explanation, in brief, in a single list without segregation. "+
			"Format the output as a valid JSON array of strings and ensure there are "+
			"no unterminated strings, special characters or unescaped characters.",
		topic,
	)
}

// BuildAnswerPrompt asks for the correct answer to a pasted MCQ question.
func BuildAnswerPrompt(questionText string) string {
	return fmt.Sprintf(
		"You are an intelligent assistant that helps answer multiple-choice questions. "+
			"Below is the question and the options. Provide the correct answer "+
			"(e.g., 'A', 'B', 'C', or 'D') along with a brief explanation.\n\n%s\n\nAnswer:",
		questionText,
	)
}
