package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/higagan/quizcracker-backend/internal/dto"
	"github.com/higagan/quizcracker-backend/internal/service"
)

// FeedbackHandler handles feedback submissions
type FeedbackHandler struct {
	service service.FeedbackService
}

// NewFeedbackHandler creates a new FeedbackHandler instance
func NewFeedbackHandler(service service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// SubmitFeedback godoc
// @Summary Submit feedback about a question
// @Description Records user feedback about a generated question
// @Tags feedback
// @Accept json
// @Produce json
// @Param request body dto.FeedbackRequest true "Feedback"
// @Success 200 {object} dto.FeedbackResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /api/feedback [post]
func (h *FeedbackHandler) SubmitFeedback(c *fiber.Ctx) error {
	var req dto.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	receipt, err := h.service.SubmitFeedback(c.Context(), req.QuestionID, req.Message)
	if err != nil {
		return err
	}

	return c.JSON(dto.FeedbackResponse{
		ID:     receipt.ID,
		Status: receipt.Status,
	})
}
