package dto

import "github.com/higagan/quizcracker-backend/internal/domain"

// QuizGenerationRequest is the request body for generating a quiz.
// @Description Request body for quiz generation
type QuizGenerationRequest struct {
	Topic         string   `json:"topic"`
	Subtopics     []string `json:"subtopics"`
	Difficulty    []string `json:"difficulty"`
	NumQuestions  int      `json:"numQuestions"`
	QuestionTypes []string `json:"questionTypes"`
}

// ToDomain converts the transport shape into the domain request.
func (r QuizGenerationRequest) ToDomain() domain.QuizRequest {
	return domain.QuizRequest{
		Topic:         r.Topic,
		Subtopics:     r.Subtopics,
		Difficulty:    r.Difficulty,
		NumQuestions:  r.NumQuestions,
		QuestionTypes: r.QuestionTypes,
	}
}

// OptionResponse represents one answer choice in the API response
type OptionResponse struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionResponse represents a normalized question in the API response
type QuestionResponse struct {
	ID         string           `json:"id"`
	Text       string           `json:"text"`
	Options    []OptionResponse `json:"options"`
	Answer     string           `json:"answer"`
	Difficulty string           `json:"difficulty"`
}

// QuizPayload wraps the question list inside the response envelope
type QuizPayload struct {
	Questions []QuestionResponse `json:"questions"`
}

// QuizResponse is the quiz generation response envelope
// @Description Generated quiz
type QuizResponse struct {
	ID   int64       `json:"id"`
	Quiz QuizPayload `json:"quiz"`
}

// NewQuizResponse converts a domain quiz into the response envelope.
func NewQuizResponse(quiz *domain.Quiz) QuizResponse {
	questions := make([]QuestionResponse, len(quiz.Questions))
	for i, q := range quiz.Questions {
		options := make([]OptionResponse, len(q.Options))
		for j, opt := range q.Options {
			options[j] = OptionResponse{ID: opt.ID, Text: opt.Text}
		}
		questions[i] = QuestionResponse{
			ID:         q.ID,
			Text:       q.Text,
			Options:    options,
			Answer:     q.Answer,
			Difficulty: q.Difficulty,
		}
	}
	return QuizResponse{
		ID:   quiz.ID,
		Quiz: QuizPayload{Questions: questions},
	}
}

// SubtopicsResponse lists the core concepts of a topic
type SubtopicsResponse struct {
	Topic     string   `json:"topic"`
	Subtopics []string `json:"subtopics"`
}

// AnswerRequest carries a pasted multiple-choice question
// @Description Request body for answering a pasted question
type AnswerRequest struct {
	QuestionText string `json:"question_text"`
}

// AnswerResponse carries the provider's answer and explanation
type AnswerResponse struct {
	Answer string `json:"answer"`
}

// FeedbackRequest reports a problem with a generated question
type FeedbackRequest struct {
	QuestionID string `json:"question_id"`
	Message    string `json:"message"`
}

// FeedbackResponse acknowledges a feedback submission
type FeedbackResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}
