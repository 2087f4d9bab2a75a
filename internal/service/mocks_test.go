package service

import (
	"context"
	"sync"
	"time"

	"github.com/higagan/quizcracker-backend/internal/domain"
)

type mockProvider struct {
	name              string
	generateTextFn    func(ctx context.Context, prompt string) (string, error)
	generateQuestions func(ctx context.Context, prompt string) ([]domain.RawQuestion, error)
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	return m.generateTextFn(ctx, prompt)
}

func (m *mockProvider) GenerateQuestions(ctx context.Context, prompt string) ([]domain.RawQuestion, error) {
	return m.generateQuestions(ctx, prompt)
}

var _ domain.QuestionProvider = (*mockProvider)(nil)

// mockCache is an in-memory domain.Cache for service tests.
type mockCache struct {
	mu    sync.Mutex
	store map[string]string
}

func newMockCache() *mockCache {
	return &mockCache{store: make(map[string]string)}
}

func (c *mockCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.store[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return val, nil
}

func (c *mockCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = value
	return nil
}

func (c *mockCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

func (c *mockCache) Ping(context.Context) error { return nil }
