package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, 30, cfg.Retention.Days)
	assert.Equal(t, 15*time.Minute, cfg.Retention.StaleAfter)
	assert.Equal(t, 10, cfg.Search.TopK)
	assert.Equal(t, 2, cfg.Queue.Workers)
	assert.Equal(t, 3*time.Second, cfg.Queue.PingTimeout)
	assert.True(t, cfg.Queue.PublishEvents)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("QUEUE_BACKEND", "NATS")
	t.Setenv("QUEUE_WORKERS", "8")
	t.Setenv("QUEUE_EMBEDDED_WORKERS", "true")
	t.Setenv("AI_PROVIDER", "Gemini")
	t.Setenv("AI_REQUESTS_PER_SECOND", "0.5")
	t.Setenv("RETENTION_DAYS", "7")
	t.Setenv("RETENTION_SWEEP_INTERVAL", "1h")
	t.Setenv("NATS_EVENTS_ENABLED", "false")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "nats", cfg.Queue.Backend)
	assert.Equal(t, 8, cfg.Queue.Workers)
	assert.True(t, cfg.Queue.EmbeddedWorkers)
	assert.False(t, cfg.Queue.PublishEvents)
	assert.Equal(t, "gemini", cfg.Ai.Provider)
	assert.Equal(t, 0.5, cfg.Ai.RequestsPerSecond)
	assert.Equal(t, 7, cfg.Retention.Days)
	assert.Equal(t, time.Hour, cfg.Retention.SweepInterval)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("QUEUE_WORKERS", "many")
	t.Setenv("QUEUE_PING_TIMEOUT", "soon")
	t.Setenv("OTEL_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 2, cfg.Queue.Workers)
	assert.Equal(t, 3*time.Second, cfg.Queue.PingTimeout)
	assert.False(t, cfg.Telemetry.Enabled)
}
