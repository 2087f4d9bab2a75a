package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/higagan/quizcracker-backend/internal/domain"
	"github.com/higagan/quizcracker-backend/internal/parser"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
)

// GeminiProvider is the primary question provider. Its responses use the
// flat raw schema: options as a text sequence, answer as flat text.
type GeminiProvider struct {
	llm         *googleai.GoogleAI
	maxAttempts int
	backoff     time.Duration
	logger      *zap.Logger
}

// NewGeminiProvider creates the Gemini-backed provider.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string, maxAttempts int, backoff time.Duration, logger *zap.Logger) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key cannot be empty")
	}
	if modelName == "" {
		return nil, fmt.Errorf("gemini model name cannot be empty")
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logger.Info("Initialized Gemini provider", zap.String("model", modelName))
	return &GeminiProvider{
		llm:         llm,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		logger:      logger,
	}, nil
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

// GenerateText sends one prompt and returns the raw response text.
func (p *GeminiProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	response, err := llms.GenerateFromSinglePrompt(ctx, p.llm, prompt, llms.WithTemperature(0.2))
	if err != nil {
		return "", domain.NewProviderError(p.Name(), err)
	}
	return response, nil
}

// GenerateQuestions runs the recovery-parse loop against Gemini and applies
// the flat-schema reader.
func (p *GeminiProvider) GenerateQuestions(ctx context.Context, prompt string) ([]domain.RawQuestion, error) {
	raws, err := parser.ParseWithRetry(ctx, func(ctx context.Context) (string, error) {
		return p.GenerateText(ctx, prompt)
	}, p.maxAttempts, p.backoff)
	if err != nil {
		return nil, err
	}

	questions := make([]domain.RawQuestion, len(raws))
	for i, raw := range raws {
		questions[i] = readFlatQuestion(raw)
	}
	return questions, nil
}

var _ domain.QuestionProvider = (*GeminiProvider)(nil)
