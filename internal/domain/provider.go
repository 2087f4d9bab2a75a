package domain

import "context"

// TextGenerator is the raw generation capability of an upstream model:
// prompt in, unstructured text out.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// QuestionProvider is one upstream generation strategy. GenerateQuestions
// runs the provider's recovery-parse loop and its raw-schema reader, so the
// returned RawQuestions always carry the canonical keys regardless of the
// provider's own response shape. Failures are ProviderError or
// ParseExhausted domain errors.
type QuestionProvider interface {
	TextGenerator
	Name() string
	GenerateQuestions(ctx context.Context, prompt string) ([]RawQuestion, error)
}
