package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/higagan/quizcracker-backend/internal/dto"
	"github.com/higagan/quizcracker-backend/internal/logger"
	"github.com/higagan/quizcracker-backend/internal/service"
	"github.com/higagan/quizcracker-backend/internal/validation"
	"go.uber.org/zap"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service   service.QuizService
	validator *validation.Validator
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// GenerateQuiz godoc
// @Summary Generate a quiz
// @Description Generates a normalized multiple-choice quiz for a topic
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.QuizGenerationRequest true "Quiz parameters"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /api/quiz [post]
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	var req dto.QuizGenerationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	quiz, err := h.service.GenerateQuiz(c.Context(), req.ToDomain())
	if err != nil {
		return err
	}

	logger.Get().Info("Quiz generated",
		zap.Int64("quiz_id", quiz.ID),
		zap.String("topic", req.Topic),
		zap.Int("questions", len(quiz.Questions)),
	)
	return c.JSON(dto.NewQuizResponse(quiz))
}

// GetSubtopics godoc
// @Summary List subtopics for a topic
// @Description Returns the core concepts of a topic as a flat list
// @Tags quiz
// @Produce json
// @Param topic query string true "Topic"
// @Success 200 {object} dto.SubtopicsResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /api/subtopics [get]
// The route is guarded by ValidationMiddleware.ValidateTopic, which stores
// the checked value in locals.
func (h *QuizHandler) GetSubtopics(c *fiber.Ctx) error {
	topic, _ := c.Locals("validated_topic").(string)

	subtopics, err := h.service.GetSubtopics(c.Context(), topic)
	if err != nil {
		return err
	}

	return c.JSON(dto.SubtopicsResponse{
		Topic:     topic,
		Subtopics: subtopics,
	})
}

// GetAnswer godoc
// @Summary Answer a pasted question
// @Description Answers a pasted multiple-choice question with an explanation
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.AnswerRequest true "Question text"
// @Success 200 {object} dto.AnswerResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /api/answer [post]
func (h *QuizHandler) GetAnswer(c *fiber.Ctx) error {
	var req dto.AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if errs := h.validator.ValidateAnswerQuestion(req.QuestionText); len(errs) > 0 {
		return errs
	}

	answer, err := h.service.ExplainAnswer(c.Context(), req.QuestionText)
	if err != nil {
		return err
	}

	return c.JSON(dto.AnswerResponse{Answer: answer})
}
