package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/higagan/quizcracker-backend/internal/domain"
	"github.com/higagan/quizcracker-backend/internal/parser"
	"github.com/tmc/langchaingo/llms"
	openaiLLM "github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// OpenAIProvider is the secondary question provider. Its responses use a
// keyed raw schema: options may arrive as an identifier-to-text mapping and
// the answer key is "correct_answer".
type OpenAIProvider struct {
	llm         *openaiLLM.LLM
	maxAttempts int
	backoff     time.Duration
	logger      *zap.Logger
}

// NewOpenAIProvider creates the OpenAI-backed provider.
func NewOpenAIProvider(apiKey, modelName string, maxAttempts int, backoff time.Duration, logger *zap.Logger) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key cannot be empty")
	}
	if modelName == "" {
		modelName = "gpt-3.5-turbo"
	}

	llm, err := openaiLLM.New(
		openaiLLM.WithToken(apiKey),
		openaiLLM.WithModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	logger.Info("Initialized OpenAI provider", zap.String("model", modelName))
	return &OpenAIProvider{
		llm:         llm,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		logger:      logger,
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

// GenerateText sends one prompt and returns the raw response text.
func (p *OpenAIProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	response, err := llms.GenerateFromSinglePrompt(ctx, p.llm, prompt, llms.WithTemperature(0.2))
	if err != nil {
		return "", domain.NewProviderError(p.Name(), err)
	}
	return response, nil
}

// GenerateQuestions runs the recovery-parse loop against OpenAI and applies
// the keyed-schema reader.
func (p *OpenAIProvider) GenerateQuestions(ctx context.Context, prompt string) ([]domain.RawQuestion, error) {
	raws, err := parser.ParseWithRetry(ctx, func(ctx context.Context) (string, error) {
		return p.GenerateText(ctx, prompt)
	}, p.maxAttempts, p.backoff)
	if err != nil {
		return nil, err
	}

	questions := make([]domain.RawQuestion, len(raws))
	for i, raw := range raws {
		questions[i] = readKeyedQuestion(raw)
	}
	return questions, nil
}

var _ domain.QuestionProvider = (*OpenAIProvider)(nil)
