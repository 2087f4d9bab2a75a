package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/higagan/quizcracker-backend/internal/validation"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateTopic validates the topic parameter from query or path
func (vm *ValidationMiddleware) ValidateTopic() fiber.Handler {
	return func(c *fiber.Ctx) error {
		topic := c.Params("topic")
		if topic == "" {
			topic = c.Query("topic")
		}

		if errors := vm.validator.ValidateTopic(topic); len(errors) > 0 {
			return errors // This will be handled by ErrorHandler middleware
		}

		// Store validated value in context for handlers to use
		c.Locals("validated_topic", topic)
		return c.Next()
	}
}
