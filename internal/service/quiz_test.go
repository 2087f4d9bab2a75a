package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/higagan/quizcracker-backend/internal/config"
	"github.com/higagan/quizcracker-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest(numQuestions int) domain.QuizRequest {
	return domain.QuizRequest{
		Topic:         "golang",
		Difficulty:    []string{"easy"},
		NumQuestions:  numQuestions,
		QuestionTypes: []string{"mcq"},
	}
}

func questionsFor(count int, label string) []domain.RawQuestion {
	raws := make([]domain.RawQuestion, count)
	for i := range raws {
		raws[i] = domain.RawQuestion{
			"question": fmt.Sprintf("%s question %d", label, i+1),
			"options":  []any{"right", "wrong"},
			"answer":   "right",
		}
	}
	return raws
}

// promptCount extracts the requested batch size from the generation prompt.
func promptCount(t *testing.T, prompt string) int {
	t.Helper()
	var count int
	_, err := fmt.Sscanf(prompt, "Generate %d", &count)
	require.NoError(t, err, "prompt must start with the batch size")
	return count
}

func newTestService(providers []domain.QuestionProvider, responseCache domain.Cache) QuizService {
	return NewQuizService(providers, responseCache, NewSequence(0), config.GenerationConfig{
		BatchSize:       10,
		BatchThreshold:  10,
		ProviderTimeout: 5 * time.Second,
	}, time.Hour)
}

func TestGenerateQuiz_SingleBatch(t *testing.T) {
	var calls atomic.Int32
	gemini := &mockProvider{
		name: "gemini",
		generateQuestions: func(_ context.Context, prompt string) ([]domain.RawQuestion, error) {
			calls.Add(1)
			return questionsFor(promptCount(t, prompt), "gemini"), nil
		},
	}

	svc := newTestService([]domain.QuestionProvider{gemini}, nil)
	quiz, err := svc.GenerateQuiz(context.Background(), validRequest(5))

	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load(), "a request at or below the threshold is one provider call")
	require.Len(t, quiz.Questions, 5)
	assert.Equal(t, fmt.Sprintf("question_%d_1", quiz.ID), quiz.Questions[0].ID)
	assert.Equal(t, fmt.Sprintf("question_%d_5", quiz.ID), quiz.Questions[4].ID)
}

func TestGenerateQuiz_ValidationFailsBeforeProviders(t *testing.T) {
	var calls atomic.Int32
	gemini := &mockProvider{
		name: "gemini",
		generateQuestions: func(context.Context, string) ([]domain.RawQuestion, error) {
			calls.Add(1)
			return nil, nil
		},
	}

	svc := newTestService([]domain.QuestionProvider{gemini}, nil)
	_, err := svc.GenerateQuiz(context.Background(), domain.QuizRequest{NumQuestions: 5})

	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Zero(t, calls.Load())
}

func TestGenerateQuiz_FallsBackToSecondaryProvider(t *testing.T) {
	gemini := &mockProvider{
		name: "gemini",
		generateQuestions: func(context.Context, string) ([]domain.RawQuestion, error) {
			return nil, domain.NewProviderError("gemini", errors.New("rate limited"))
		},
	}
	openai := &mockProvider{
		name: "openai",
		generateQuestions: func(_ context.Context, prompt string) ([]domain.RawQuestion, error) {
			return questionsFor(promptCount(t, prompt), "openai"), nil
		},
	}

	svc := newTestService([]domain.QuestionProvider{gemini, openai}, nil)
	quiz, err := svc.GenerateQuiz(context.Background(), validRequest(3))

	require.NoError(t, err)
	assert.Len(t, quiz.Questions, 3)
	assert.Contains(t, quiz.Questions[0].Text, "openai")
}

func TestGenerateQuiz_AllProvidersFail(t *testing.T) {
	failing := func(name string) *mockProvider {
		return &mockProvider{
			name: name,
			generateQuestions: func(context.Context, string) ([]domain.RawQuestion, error) {
				return nil, domain.NewProviderError(name, errors.New("unavailable"))
			},
		}
	}

	svc := newTestService([]domain.QuestionProvider{failing("gemini"), failing("openai")}, nil)
	_, err := svc.GenerateQuiz(context.Background(), validRequest(3))

	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.CodeAllProvidersFailed, derr.Code)
	assert.Contains(t, derr.Error(), "gemini")
	assert.Contains(t, derr.Error(), "openai")
}

func TestGenerateQuiz_BatchedMergePreservesBatchOrder(t *testing.T) {
	// 25 questions split as 10+10+5. The small batch answers instantly while
	// the full batches sleep, so a completion-ordered merge would put its
	// questions first. They must come last.
	gemini := &mockProvider{
		name: "gemini",
		generateQuestions: func(_ context.Context, prompt string) ([]domain.RawQuestion, error) {
			count := promptCount(t, prompt)
			if count == 10 {
				time.Sleep(30 * time.Millisecond)
			}
			return questionsFor(count, fmt.Sprintf("size%d", count)), nil
		},
	}

	svc := newTestService([]domain.QuestionProvider{gemini}, nil)
	quiz, err := svc.GenerateQuiz(context.Background(), validRequest(25))

	require.NoError(t, err)
	require.Len(t, quiz.Questions, 25)
	for i := 0; i < 20; i++ {
		assert.Contains(t, quiz.Questions[i].Text, "size10")
	}
	for i := 20; i < 25; i++ {
		assert.Contains(t, quiz.Questions[i].Text, "size5")
	}
	assert.Equal(t, fmt.Sprintf("question_%d_25", quiz.ID), quiz.Questions[24].ID)
}

func TestGenerateQuiz_ToleratesFailedBatch(t *testing.T) {
	gemini := &mockProvider{
		name: "gemini",
		generateQuestions: func(_ context.Context, prompt string) ([]domain.RawQuestion, error) {
			count := promptCount(t, prompt)
			if count == 5 {
				return nil, domain.NewProviderError("gemini", errors.New("timeout"))
			}
			return questionsFor(count, "ok"), nil
		},
	}

	svc := newTestService([]domain.QuestionProvider{gemini}, nil)
	quiz, err := svc.GenerateQuiz(context.Background(), validRequest(25))

	require.NoError(t, err, "a partial result is still a result")
	assert.Len(t, quiz.Questions, 20)
}

func TestGenerateQuiz_AllBatchesFail(t *testing.T) {
	gemini := &mockProvider{
		name: "gemini",
		generateQuestions: func(context.Context, string) ([]domain.RawQuestion, error) {
			return nil, domain.NewProviderError("gemini", errors.New("unavailable"))
		},
	}

	svc := newTestService([]domain.QuestionProvider{gemini}, nil)
	_, err := svc.GenerateQuiz(context.Background(), validRequest(25))

	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.CodeNoQuestionsGenerated, derr.Code)
}

func TestGenerateQuiz_AllQuestionsSkippedIsAnError(t *testing.T) {
	gemini := &mockProvider{
		name: "gemini",
		generateQuestions: func(context.Context, string) ([]domain.RawQuestion, error) {
			return []domain.RawQuestion{
				{"question": "What does the following code print?", "options": []any{"x"}, "answer": "x"},
				{"question": "no options"},
			}, nil
		},
	}

	svc := newTestService([]domain.QuestionProvider{gemini}, nil)
	_, err := svc.GenerateQuiz(context.Background(), validRequest(2))

	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.CodeNoQuestionsGenerated, derr.Code)
}

func TestGenerateQuiz_CacheHitMintsFreshIDs(t *testing.T) {
	var calls atomic.Int32
	gemini := &mockProvider{
		name: "gemini",
		generateQuestions: func(_ context.Context, prompt string) ([]domain.RawQuestion, error) {
			calls.Add(1)
			return questionsFor(promptCount(t, prompt), "gemini"), nil
		},
	}

	svc := newTestService([]domain.QuestionProvider{gemini}, newMockCache())
	req := validRequest(3)

	first, err := svc.GenerateQuiz(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.GenerateQuiz(context.Background(), req)
	require.NoError(t, err)

	assert.EqualValues(t, 1, calls.Load(), "second request must be served from cache")
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, fmt.Sprintf("question_%d_1", second.ID), second.Questions[0].ID)
	assert.Equal(t, first.Questions[0].Text, second.Questions[0].Text)
}

func TestGenerateQuiz_ConcurrentRequestsGetDistinctIDs(t *testing.T) {
	gemini := &mockProvider{
		name: "gemini",
		generateQuestions: func(_ context.Context, prompt string) ([]domain.RawQuestion, error) {
			return questionsFor(promptCount(t, prompt), "gemini"), nil
		},
	}
	svc := newTestService([]domain.QuestionProvider{gemini}, nil)

	const n = 20
	ids := make([]int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			quiz, err := svc.GenerateQuiz(context.Background(), validRequest(2))
			if !assert.NoError(t, err) {
				return
			}
			ids[i] = quiz.ID
		}()
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for _, id := range ids {
		assert.False(t, seen[id], "quiz ID %d issued twice", id)
		seen[id] = true
	}
}

func TestGetSubtopics(t *testing.T) {
	gemini := &mockProvider{
		name: "gemini",
		generateTextFn: func(_ context.Context, prompt string) (string, error) {
			assert.Contains(t, prompt, "golang")
			return "```json\n[\"goroutines\", \"channels\", \"interfaces\"]\n```", nil
		},
	}

	svc := newTestService([]domain.QuestionProvider{gemini}, nil)
	subtopics, err := svc.GetSubtopics(context.Background(), "golang")

	require.NoError(t, err)
	assert.Equal(t, []string{"goroutines", "channels", "interfaces"}, subtopics)
}

func TestGetSubtopics_SalvagesBulletedList(t *testing.T) {
	gemini := &mockProvider{
		name: "gemini",
		generateTextFn: func(context.Context, string) (string, error) {
			return "- goroutines\n- channels\n\n* interfaces", nil
		},
	}

	svc := newTestService([]domain.QuestionProvider{gemini}, nil)
	subtopics, err := svc.GetSubtopics(context.Background(), "golang")

	require.NoError(t, err)
	assert.Equal(t, []string{"goroutines", "channels", "interfaces"}, subtopics)
}

func TestGetSubtopics_EmptyTopic(t *testing.T) {
	svc := newTestService(nil, nil)
	_, err := svc.GetSubtopics(context.Background(), "   ")

	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

func TestExplainAnswer_FallsBack(t *testing.T) {
	gemini := &mockProvider{
		name: "gemini",
		generateTextFn: func(context.Context, string) (string, error) {
			return "", domain.NewProviderError("gemini", errors.New("unavailable"))
		},
	}
	openai := &mockProvider{
		name: "openai",
		generateTextFn: func(_ context.Context, prompt string) (string, error) {
			assert.True(t, strings.Contains(prompt, "capital of France"))
			return "  A. Paris, because it is the capital of France.  ", nil
		},
	}

	svc := newTestService([]domain.QuestionProvider{gemini, openai}, nil)
	answer, err := svc.ExplainAnswer(context.Background(), "What is the capital of France? A. Paris B. Berlin")

	require.NoError(t, err)
	assert.Equal(t, "A. Paris, because it is the capital of France.", answer)
}

func TestBatchCounts(t *testing.T) {
	assert.Equal(t, []int{10, 10, 5}, batchCounts(25, 10))
	assert.Equal(t, []int{10}, batchCounts(10, 10))
	assert.Equal(t, []int{3}, batchCounts(3, 10))
	assert.Nil(t, batchCounts(0, 10))
}
