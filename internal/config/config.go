package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env        string
	Server     ServerConfig
	Logger     LoggerConfig
	Redis      RedisConfig
	Providers  ProvidersConfig
	Generation GenerationConfig
	Cache      CacheConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LoggerConfig struct {
	Level string
	Env   string
}

// RedisConfig is optional; an empty address disables the response cache.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ProvidersConfig struct {
	Gemini ProviderConfig
	OpenAI ProviderConfig
}

type ProviderConfig struct {
	APIKey string
	Model  string
}

// GenerationConfig tunes the normalization pipeline.
type GenerationConfig struct {
	// MaxParseAttempts bounds the regenerate-and-reparse loop per provider.
	MaxParseAttempts int
	// RetryBackoff is the fixed sleep between parse attempts.
	RetryBackoff time.Duration
	// BatchSize is the per-provider-call question capacity.
	BatchSize int
	// BatchThreshold is the request size above which batching kicks in.
	BatchThreshold int
	// ProviderTimeout caps a single upstream provider call.
	ProviderTimeout time.Duration
}

type CacheConfig struct {
	QuizResponseTTL time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.read_timeout", 20)
	viper.SetDefault("server.write_timeout", 60)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("providers.gemini.model", "gemini-1.5-pro-latest")
	viper.SetDefault("providers.openai.model", "gpt-3.5-turbo")
	viper.SetDefault("generation.max_parse_attempts", 3)
	viper.SetDefault("generation.retry_backoff_ms", 500)
	viper.SetDefault("generation.batch_size", 10)
	viper.SetDefault("generation.batch_threshold", 10)
	viper.SetDefault("generation.provider_timeout", 60)
	viper.SetDefault("cache.quiz_response_ttl", "1h")

	if err := viper.ReadInConfig(); err != nil {
		// A config file is optional; defaults plus environment variables
		// are enough to run.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{
		Env: viper.GetString("env"),
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("env"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Providers: ProvidersConfig{
			Gemini: ProviderConfig{
				APIKey: viper.GetString("providers.gemini.api_key"),
				Model:  viper.GetString("providers.gemini.model"),
			},
			OpenAI: ProviderConfig{
				APIKey: viper.GetString("providers.openai.api_key"),
				Model:  viper.GetString("providers.openai.model"),
			},
		},
		Generation: GenerationConfig{
			MaxParseAttempts: viper.GetInt("generation.max_parse_attempts"),
			RetryBackoff:     viper.GetDuration("generation.retry_backoff_ms") * time.Millisecond,
			BatchSize:        viper.GetInt("generation.batch_size"),
			BatchThreshold:   viper.GetInt("generation.batch_threshold"),
			ProviderTimeout:  viper.GetDuration("generation.provider_timeout") * time.Second,
		},
		Cache: CacheConfig{
			QuizResponseTTL: parseTTLOrDefault(viper.GetString("cache.quiz_response_ttl"), time.Hour),
		},
	}

	// Credentials come from the environment when not in the config file.
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Providers.Gemini.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.Providers.OpenAI.APIKey = key
	}
	if addr := os.Getenv("REDIS_ADDRESS"); addr != "" {
		config.Redis.Address = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		config.Redis.Password = password
	}

	return config, nil
}

func parseTTLOrDefault(ttl string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(ttl)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
