package service

import (
	"context"
	"strings"

	"github.com/higagan/quizcracker-backend/internal/domain"
	"github.com/higagan/quizcracker-backend/internal/logger"
	"github.com/higagan/quizcracker-backend/internal/util"
	"go.uber.org/zap"
)

// FeedbackReceipt acknowledges a stored feedback submission.
type FeedbackReceipt struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// FeedbackService records user feedback about generated quizzes.
type FeedbackService interface {
	SubmitFeedback(ctx context.Context, questionID, message string) (*FeedbackReceipt, error)
}

type feedbackService struct {
	logger *zap.Logger
}

// NewFeedbackService returns the log-backed feedback recorder. Submissions
// are written to the structured log for offline review; there is no database
// behind them.
func NewFeedbackService() FeedbackService {
	return &feedbackService{logger: logger.Get()}
}

func (s *feedbackService) SubmitFeedback(_ context.Context, questionID, message string) (*FeedbackReceipt, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.ValidationErrors{domain.NewMissingFieldError("message")}
	}

	receipt := &FeedbackReceipt{
		ID:     util.NewULID(),
		Status: "received",
	}
	s.logger.Info("Feedback received",
		zap.String("feedback_id", receipt.ID),
		zap.String("question_id", questionID),
		zap.String("message", message),
	)
	return receipt, nil
}
