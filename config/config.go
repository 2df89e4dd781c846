// Package config reads service settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type ValkeyConfig struct {
	Address  string
	Password string
	TLS      bool
}

type KafkaConfig struct {
	Broker       string
	GroupID      string
	RequestTopic string
	ResultsTopic string
}

type Config struct {
	Env      string
	HTTPAddr string

	// ModelLocation is a directory or an s3://bucket/prefix URL.
	ModelLocation  string
	VectorizerFile string
	ClassifierFile string
	Scorer         string
	OpenAIAPIKey   string
	OpenAIModel    string
	KeywordLimit   int

	Valkey ValkeyConfig
	Kafka  KafkaConfig

	AWSRegion   string
	AWSEndpoint string

	LogLevel        slog.Level
	ShutdownTimeout time.Duration
}

// Env returns APP_ENV, defaulting to "dev".
func Env() string {
	return getEnv("APP_ENV", "dev")
}

// Load builds a validated Config from environment variables.
func Load() (*Config, error) {
	c := &Config{
		Env:            Env(),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		ModelLocation:  getEnv("MODEL_LOCATION", "models"),
		VectorizerFile: getEnv("MODEL_VECTORIZER_FILE", "tfidf_vectorizer.json"),
		ClassifierFile: getEnv("MODEL_CLASSIFIER_FILE", "sentiment_model.json"),
		Scorer:         strings.ToLower(getEnv("SCORER", "model")),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:    getEnv("OPENAI_MODEL", ""),
		KeywordLimit:   getInt("ANALYSIS_KEYWORD_LIMIT", 5),
		Valkey: ValkeyConfig{
			Address:  getEnv("VALKEY_INIT_ADDRESS", ""),
			Password: getEnv("VALKEY_PASSWORD", ""),
			TLS:      getEnv("VALKEY_TLS", "false") == "true",
		},
		Kafka: KafkaConfig{
			Broker:       getEnv("KAFKA_BROKER", "localhost:29092"),
			GroupID:      getEnv("KAFKA_CONSUMER_GROUP_ID", "sentidash-analysis-group"),
			RequestTopic: getEnv("KAFKA_REQUEST_TOPIC", "analysis-request"),
			ResultsTopic: getEnv("KAFKA_RESULTS_TOPIC", "analysis-results"),
		},
		AWSRegion:       getEnv("AWS_REGION", "us-west-2"),
		AWSEndpoint:     getEnv("AWS_ENDPOINT", ""),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", "10s"),
	}

	if err := c.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the settings that can be overridden after Load.
func (c *Config) Validate() error {
	switch c.Scorer {
	case "model", "vader":
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when SCORER=openai")
		}
	default:
		return fmt.Errorf("SCORER must be one of model, vader or openai, got %q", c.Scorer)
	}

	if c.KeywordLimit <= 0 {
		return fmt.Errorf("ANALYSIS_KEYWORD_LIMIT must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}
