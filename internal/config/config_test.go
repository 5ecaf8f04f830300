package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultModelPath = "models/flood_prediction_model.json"
	testWeatherKey   = "owm-test-key"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, defaultModelPath, cfg.ModelPath)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, "flood-predictions", cfg.KafkaPredictionTopic)
	assert.Empty(t, cfg.OpenWeatherAPIKey)
	assert.False(t, cfg.OpenWeatherEnabled)
	assert.Equal(t, 5*time.Second, cfg.OpenWeatherTimeout)
	assert.Equal(t, 5*time.Minute, cfg.OpenWeatherCacheTTL)
	assert.Equal(t, 100, cfg.OpenWeatherCacheSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("MODEL_PATH", "/srv/models/flood.json")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_PREDICTION_TOPIC", "custom-predictions")
	t.Setenv("OPENWEATHER_API_KEY", testWeatherKey)
	t.Setenv("OPENWEATHER_TIMEOUT", "2s")
	t.Setenv("OPENWEATHER_CACHE_TTL", "90s")
	t.Setenv("OPENWEATHER_CACHE_SIZE", "40")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/srv/models/flood.json", cfg.ModelPath)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, "custom-predictions", cfg.KafkaPredictionTopic)
	assert.Equal(t, testWeatherKey, cfg.OpenWeatherAPIKey)
	assert.True(t, cfg.OpenWeatherEnabled)
	assert.Equal(t, 2*time.Second, cfg.OpenWeatherTimeout)
	assert.Equal(t, 90*time.Second, cfg.OpenWeatherCacheTTL)
	assert.Equal(t, 40, cfg.OpenWeatherCacheSize)
}

func TestLoad_InvalidDurations(t *testing.T) {
	for _, key := range []string{"SHUTDOWN_TIMEOUT", "OPENWEATHER_TIMEOUT", "OPENWEATHER_CACHE_TTL"} {
		t.Run(key+" unparsable", func(t *testing.T) {
			t.Setenv(key, "not-a-duration")
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
		t.Run(key+" negative", func(t *testing.T) {
			t.Setenv(key, "-1s")
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_ShutdownTimeoutError(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "0s")
	_, err := Load()
	require.EqualError(t, err, "invalid SHUTDOWN_TIMEOUT")
}

func TestLoad_BrokerListTrimmed(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " broker1:9092 , ,broker2:9092,")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,,")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"https://a.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.KafkaEnabled)
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_EmptyCORSOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " , ")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS_ALLOWED_ORIGINS")
}

func TestLoad_OpenWeatherEnabledWithoutKey(t *testing.T) {
	t.Setenv("OPENWEATHER_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENWEATHER_API_KEY")
}

func TestLoad_OpenWeatherKeyImpliesEnabled(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", testWeatherKey)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.OpenWeatherEnabled)
}

func TestLoad_InvalidCacheSizeFallsBack(t *testing.T) {
	t.Setenv("OPENWEATHER_CACHE_SIZE", "-4")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.OpenWeatherCacheSize)
}
