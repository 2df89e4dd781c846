package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/spacesedan/sentidash/config"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_ENV", "HTTP_ADDR", "MODEL_LOCATION", "MODEL_VECTORIZER_FILE", "MODEL_CLASSIFIER_FILE",
	"SCORER", "OPENAI_API_KEY", "OPENAI_MODEL", "ANALYSIS_KEYWORD_LIMIT",
	"VALKEY_INIT_ADDRESS", "VALKEY_PASSWORD", "VALKEY_TLS",
	"KAFKA_BROKER", "KAFKA_CONSUMER_GROUP_ID", "KAFKA_REQUEST_TOPIC", "KAFKA_RESULTS_TOPIC",
	"AWS_REGION", "AWS_ENDPOINT", "LOG_LEVEL", "SHUTDOWN_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, "models", cfg.ModelLocation)
	require.Equal(t, "tfidf_vectorizer.json", cfg.VectorizerFile)
	require.Equal(t, "sentiment_model.json", cfg.ClassifierFile)
	require.Equal(t, "model", cfg.Scorer)
	require.Equal(t, 5, cfg.KeywordLimit)
	require.Empty(t, cfg.Valkey.Address)
	require.False(t, cfg.Valkey.TLS)
	require.Equal(t, "localhost:29092", cfg.Kafka.Broker)
	require.Equal(t, "analysis-request", cfg.Kafka.RequestTopic)
	require.Equal(t, "analysis-results", cfg.Kafka.ResultsTopic)
	require.Equal(t, slog.LevelInfo, cfg.LogLevel)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("MODEL_LOCATION", "s3://models/sentiment")
	t.Setenv("SCORER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("ANALYSIS_KEYWORD_LIMIT", "8")
	t.Setenv("VALKEY_INIT_ADDRESS", "valkey:6379")
	t.Setenv("VALKEY_TLS", "true")
	t.Setenv("KAFKA_BROKER", "kafka:9092")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, ":9090", cfg.HTTPAddr)
	require.Equal(t, "s3://models/sentiment", cfg.ModelLocation)
	require.Equal(t, "openai", cfg.Scorer)
	require.Equal(t, "gpt-4o", cfg.OpenAIModel)
	require.Equal(t, 8, cfg.KeywordLimit)
	require.Equal(t, "valkey:6379", cfg.Valkey.Address)
	require.True(t, cfg.Valkey.TLS)
	require.Equal(t, "kafka:9092", cfg.Kafka.Broker)
	require.Equal(t, slog.LevelDebug, cfg.LogLevel)
	require.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown scorer":     {"SCORER": "bert"},
		"openai without key": {"SCORER": "openai"},
		"zero keyword limit": {"ANALYSIS_KEYWORD_LIMIT": "0"},
		"bad log level":      {"LOG_LEVEL": "chatty"},
		"negative keyword":   {"ANALYSIS_KEYWORD_LIMIT": "-2"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			require.Error(t, err)
		})
	}
}

func TestInvalidNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANALYSIS_KEYWORD_LIMIT", "many")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 5, cfg.KeywordLimit)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}
