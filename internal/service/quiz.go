package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/higagan/quizcracker-backend/internal/adapter/provider"
	"github.com/higagan/quizcracker-backend/internal/cache"
	"github.com/higagan/quizcracker-backend/internal/config"
	"github.com/higagan/quizcracker-backend/internal/domain"
	"github.com/higagan/quizcracker-backend/internal/logger"
	"github.com/higagan/quizcracker-backend/internal/sanitizer"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// QuizService generates quizzes, subtopic lists and answer explanations.
type QuizService interface {
	// GenerateQuiz produces a fully normalized quiz for the request.
	GenerateQuiz(ctx context.Context, req domain.QuizRequest) (*domain.Quiz, error)

	// GetSubtopics lists the core concepts of a topic.
	GetSubtopics(ctx context.Context, topic string) ([]string, error)

	// ExplainAnswer answers a pasted multiple-choice question.
	ExplainAnswer(ctx context.Context, questionText string) (string, error)
}

type quizService struct {
	providers []domain.QuestionProvider
	cache     domain.Cache
	seq       *Sequence
	cfg       config.GenerationConfig
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewQuizService assembles the generation pipeline. Providers are tried in
// order; responseCache may be nil to disable caching. Zero-valued generation
// settings fall back to working defaults.
func NewQuizService(
	providers []domain.QuestionProvider,
	responseCache domain.Cache,
	seq *Sequence,
	genCfg config.GenerationConfig,
	cacheTTL time.Duration,
) QuizService {
	if genCfg.BatchSize <= 0 {
		genCfg.BatchSize = 10
	}
	if genCfg.BatchThreshold <= 0 {
		genCfg.BatchThreshold = 10
	}
	if genCfg.ProviderTimeout <= 0 {
		genCfg.ProviderTimeout = 60 * time.Second
	}
	if seq == nil {
		seq = NewSequence(0)
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &quizService{
		providers: providers,
		cache:     responseCache,
		seq:       seq,
		cfg:       genCfg,
		cacheTTL:  cacheTTL,
		logger:    logger.Get(),
	}
}

func (s *quizService) GenerateQuiz(ctx context.Context, req domain.QuizRequest) (*domain.Quiz, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cacheKey := s.quizCacheKey(req)
	if cached, ok := s.cachedQuestions(ctx, cacheKey); ok {
		quizID := s.seq.Next()
		return &domain.Quiz{ID: quizID, Questions: reissueQuestionIDs(cached, quizID)}, nil
	}

	var raws []domain.RawQuestion
	var err error
	if req.NumQuestions <= s.cfg.BatchThreshold {
		raws, err = s.generateBatch(ctx, req, req.NumQuestions)
		if err != nil {
			return nil, err
		}
	} else {
		raws = s.generateBatched(ctx, req)
	}

	if len(raws) == 0 {
		return nil, domain.NewNoQuestionsGeneratedError()
	}

	quizID := s.seq.Next()
	result := NormalizeQuestions(raws, req, quizID)
	if len(result.Accepted) == 0 {
		return nil, domain.NewNoQuestionsGeneratedError()
	}
	if len(result.Skipped) > 0 {
		s.logger.Info("Dropped malformed questions during normalization",
			zap.Int("skipped", len(result.Skipped)),
			zap.Int("accepted", len(result.Accepted)),
		)
	}

	s.storeQuestions(ctx, cacheKey, result.Accepted)

	return &domain.Quiz{ID: quizID, Questions: result.Accepted}, nil
}

// generateBatched splits a large request into fixed-size batches dispatched
// concurrently. A failed batch is logged and dropped; the merged result keeps
// batch order regardless of completion order.
func (s *quizService) generateBatched(ctx context.Context, req domain.QuizRequest) []domain.RawQuestion {
	counts := batchCounts(req.NumQuestions, s.cfg.BatchSize)
	results := make([][]domain.RawQuestion, len(counts))

	g, gctx := errgroup.WithContext(ctx)
	for i, count := range counts {
		g.Go(func() error {
			raws, err := s.generateBatch(gctx, req, count)
			if err != nil {
				s.logger.Warn("Batch generation failed, continuing without it",
					zap.Int("batch", i),
					zap.Int("count", count),
					zap.Error(err),
				)
				return nil
			}
			results[i] = raws
			return nil
		})
	}
	_ = g.Wait()

	var merged []domain.RawQuestion
	for _, batch := range results {
		merged = append(merged, batch...)
	}
	return merged
}

// generateBatch asks each provider in turn for count questions and returns
// the first successful response.
func (s *quizService) generateBatch(ctx context.Context, req domain.QuizRequest, count int) ([]domain.RawQuestion, error) {
	prompt := provider.BuildQuizPrompt(req, count)

	var errs []error
	for _, p := range s.providers {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
		raws, err := p.GenerateQuestions(callCtx, prompt)
		cancel()
		if err == nil {
			return raws, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		s.logger.Warn("Provider failed, falling through to next",
			zap.String("provider", p.Name()),
			zap.Error(err),
		)
	}
	return nil, domain.NewAllProvidersFailedError(errs)
}

func (s *quizService) GetSubtopics(ctx context.Context, topic string) ([]string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, domain.ValidationErrors{domain.NewMissingFieldError("topic")}
	}

	raw, err := s.generateText(ctx, provider.BuildSubtopicsPrompt(topic))
	if err != nil {
		return nil, err
	}

	var subtopics []string
	if err := json.Unmarshal([]byte(sanitizer.Sanitize(raw)), &subtopics); err != nil {
		// Providers occasionally answer with a plain bulleted list instead
		// of JSON. A line-split still yields something usable.
		subtopics = splitSubtopicLines(raw)
		if len(subtopics) == 0 {
			return nil, domain.NewParseExhaustedError(1, raw, err)
		}
	}
	return subtopics, nil
}

// splitSubtopicLines salvages a non-JSON subtopic response by treating each
// line as one entry, stripping list markers and quotes.
func splitSubtopicLines(raw string) []string {
	var subtopics []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• \t")
		line = strings.Trim(line, `"',`)
		if line == "" || strings.HasPrefix(line, "```") || line == "[" || line == "]" {
			continue
		}
		subtopics = append(subtopics, line)
	}
	return subtopics
}

func (s *quizService) ExplainAnswer(ctx context.Context, questionText string) (string, error) {
	questionText = strings.TrimSpace(questionText)
	if questionText == "" {
		return "", domain.ValidationErrors{domain.NewMissingFieldError("question_text")}
	}

	answer, err := s.generateText(ctx, provider.BuildAnswerPrompt(questionText))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// generateText runs the provider fallback chain for a plain text prompt.
func (s *quizService) generateText(ctx context.Context, prompt string) (string, error) {
	var errs []error
	for _, p := range s.providers {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
		text, err := p.GenerateText(callCtx, prompt)
		cancel()
		if err == nil {
			return text, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		s.logger.Warn("Provider failed, falling through to next",
			zap.String("provider", p.Name()),
			zap.Error(err),
		)
	}
	return "", domain.NewAllProvidersFailedError(errs)
}

// quizCacheKey hashes the request fields that determine quiz content.
func (s *quizService) quizCacheKey(req domain.QuizRequest) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%d|%s",
		strings.ToLower(req.Topic),
		strings.ToLower(strings.Join(req.Subtopics, ",")),
		strings.ToLower(strings.Join(req.Difficulty, ",")),
		req.NumQuestions,
		strings.ToLower(strings.Join(req.QuestionTypes, ",")),
	)
	return cache.GenerateCacheKey("quiz", "response", hex.EncodeToString(h.Sum(nil)))
}

func (s *quizService) cachedQuestions(ctx context.Context, key string) ([]domain.Question, bool) {
	if s.cache == nil {
		return nil, false
	}
	val, err := s.cache.Get(ctx, key)
	if err != nil {
		if err != domain.ErrCacheMiss {
			s.logger.Warn("Quiz cache lookup failed", zap.Error(err))
		}
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal([]byte(val), &questions); err != nil {
		s.logger.Warn("Discarding unreadable cached quiz", zap.Error(err))
		_ = s.cache.Delete(ctx, key)
		return nil, false
	}
	if len(questions) == 0 {
		return nil, false
	}
	return questions, true
}

func (s *quizService) storeQuestions(ctx context.Context, key string, questions []domain.Question) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(questions)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil {
		s.logger.Warn("Failed to cache quiz response", zap.Error(err))
	}
}

// reissueQuestionIDs rewrites cached question identifiers under a freshly
// minted quiz ID so repeated requests never share identifiers.
func reissueQuestionIDs(questions []domain.Question, quizID int64) []domain.Question {
	out := make([]domain.Question, len(questions))
	for i, q := range questions {
		q.ID = domain.QuestionID(quizID, i+1)
		out[i] = q
	}
	return out
}

// batchCounts splits total into batches of at most size, preserving order.
func batchCounts(total, size int) []int {
	var counts []int
	for total > 0 {
		n := size
		if total < size {
			n = total
		}
		counts = append(counts, n)
		total -= n
	}
	return counts
}
