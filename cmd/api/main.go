package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/higagan/quizcracker-backend/internal/adapter"
	"github.com/higagan/quizcracker-backend/internal/adapter/provider"
	"github.com/higagan/quizcracker-backend/internal/cache"
	"github.com/higagan/quizcracker-backend/internal/config"
	"github.com/higagan/quizcracker-backend/internal/domain"
	"github.com/higagan/quizcracker-backend/internal/handler"
	"github.com/higagan/quizcracker-backend/internal/logger"
	"github.com/higagan/quizcracker-backend/internal/middleware"
	"github.com/higagan/quizcracker-backend/internal/service"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		// Process request
		err := c.Next()

		// Log request details
		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(logger.Config{Level: cfg.Logger.Level, Env: cfg.Logger.Env}); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx := context.Background()

	// Initialize question providers. Gemini is the primary and must be
	// configured; OpenAI is the fallback and optional.
	var providers []domain.QuestionProvider

	gemini, err := provider.NewGeminiProvider(ctx,
		cfg.Providers.Gemini.APIKey,
		cfg.Providers.Gemini.Model,
		cfg.Generation.MaxParseAttempts,
		cfg.Generation.RetryBackoff,
		appLogger,
	)
	if err != nil {
		appLogger.Fatal("Failed to create Gemini provider", zap.Error(err))
	}
	providers = append(providers, gemini)

	if cfg.Providers.OpenAI.APIKey != "" {
		openai, err := provider.NewOpenAIProvider(
			cfg.Providers.OpenAI.APIKey,
			cfg.Providers.OpenAI.Model,
			cfg.Generation.MaxParseAttempts,
			cfg.Generation.RetryBackoff,
			appLogger,
		)
		if err != nil {
			appLogger.Fatal("Failed to create OpenAI provider", zap.Error(err))
		}
		providers = append(providers, openai)
	} else {
		appLogger.Warn("OpenAI API key not set, running without fallback provider")
	}

	// Initialize the optional Redis response cache
	var responseCache domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		appLogger.Info("Successfully connected to Redis")
		responseCache = adapter.NewRedisCacheAdapter(redisClient)
	} else {
		appLogger.Info("Redis not configured, response caching disabled")
	}

	// Initialize services
	quizService := service.NewQuizService(
		providers,
		responseCache,
		service.NewSequence(time.Now().Unix()),
		cfg.Generation,
		cfg.Cache.QuizResponseTTL,
	)
	feedbackService := service.NewFeedbackService()

	// Initialize handlers
	quizHandler := handler.NewQuizHandler(quizService)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	// Add request logging middleware
	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept", MaxAge: 300}))
	app.Use(recover.New())

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API group
	validationMW := middleware.NewValidationMiddleware()
	apiGroup := app.Group("/api")
	apiGroup.Post("/quiz", quizHandler.GenerateQuiz)
	apiGroup.Get("/subtopics", validationMW.ValidateTopic(), quizHandler.GetSubtopics)
	apiGroup.Post("/answer", quizHandler.GetAnswer)
	apiGroup.Post("/feedback", feedbackHandler.SubmitFeedback)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
