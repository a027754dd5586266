package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service and worker.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseURL      string
	RedisURL         string
	NATSURL          string
	QuestionCacheTTL time.Duration
	MistralAPIKey    string
	MistralBaseURL   string
	MistralModel     string
	MistralMaxTokens int
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	QueueBatchSize   int
	SubmitRateLimit  int
	SubmitRateWindow time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("INTERVUE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Intervue API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("question.cache_ttl", "10m")
	v.SetDefault("mistral.base_url", "")
	v.SetDefault("mistral.model", "mistral-large-latest")
	v.SetDefault("mistral.max_tokens", 2000)
	v.SetDefault("retry.max_attempts", 4)
	v.SetDefault("retry.base_delay", "1s")
	v.SetDefault("queue.batch_size", 5)
	v.SetDefault("submit.rate_limit", 10)
	v.SetDefault("submit.rate_window", "1m")

	cacheTTL, err := time.ParseDuration(v.GetString("question.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid question cache ttl: %w", err)
	}

	baseDelay, err := time.ParseDuration(v.GetString("retry.base_delay"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid retry base delay: %w", err)
	}

	rateWindow, err := time.ParseDuration(v.GetString("submit.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid submit rate window: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		NATSURL:          v.GetString("nats.url"),
		QuestionCacheTTL: cacheTTL,
		MistralAPIKey:    v.GetString("mistral.api_key"),
		MistralBaseURL:   v.GetString("mistral.base_url"),
		MistralModel:     v.GetString("mistral.model"),
		MistralMaxTokens: v.GetInt("mistral.max_tokens"),
		RetryMaxAttempts: v.GetInt("retry.max_attempts"),
		RetryBaseDelay:   baseDelay,
		QueueBatchSize:   v.GetInt("queue.batch_size"),
		SubmitRateLimit:  v.GetInt("submit.rate_limit"),
		SubmitRateWindow: rateWindow,
	}

	if cfg.MistralAPIKey == "" {
		return Config{}, fmt.Errorf("mistral api key must be provided")
	}

	if cfg.QueueBatchSize <= 0 {
		cfg.QueueBatchSize = 5
	}

	if cfg.RetryMaxAttempts <= 0 {
		cfg.RetryMaxAttempts = 4
	}

	return cfg, nil
}
