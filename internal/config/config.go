package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Queue     QueueConfig
	Ai        AIConfig
	Retention RetentionConfig
	Search    SearchConfig
	Telemetry TelemetryConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	WorkerLogFilePath  string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Connection string
}

type QueueConfig struct {
	Backend         string // "nats", "redis", "memory" or "none"
	NatsURL         string
	RedisURL        string
	Name            string
	Workers         int
	EmbeddedWorkers bool
	PingTimeout     time.Duration
	PublishEvents   bool // lifecycle events go to NATS_URL when it is reachable
}

// AIConfig is handed to the enrichment service at construction. Switching provider means
// building a new service from a new AIConfig.
type AIConfig struct {
	Provider          string // "openai", "gemini", "claude", "ollama", "huggingface" or "offline"
	EmbeddingProvider string // optional override: "openai", "gemini", "ollama" or "jina"

	OpenAIKey            string
	OpenAIBaseURL        string
	OpenAIModel          string
	OpenAIEmbeddingModel string

	GoogleGeminiKey      string
	GeminiModel          string
	GeminiEmbeddingModel string

	AnthropicKey   string
	AnthropicModel string

	OllamaBaseURL        string
	OllamaModel          string
	OllamaEmbeddingModel string

	HuggingFaceKey   string
	HuggingFaceURL   string
	HuggingFaceModel string

	JinaKey string

	EmbeddingDimensions int
	RequestsPerSecond   float64
	RequestTimeout      time.Duration
}

type RetentionConfig struct {
	Days          int
	SweepInterval time.Duration
	StaleAfter    time.Duration
}

type SearchConfig struct {
	TopK          int
	QueryCacheTTL time.Duration
}

type TelemetryConfig struct {
	Enabled      bool
	OtlpEndpoint string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			WorkerLogFilePath:  getEnv("WORKER_LOG_FILE_PATH", "logs/worker.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", "sqlite://knowledge_hub.db"),
		},
		Queue: QueueConfig{
			Backend:         strings.ToLower(getEnv("QUEUE_BACKEND", "memory")),
			NatsURL:         getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),
			Name:            getEnv("QUEUE_NAME", "default"),
			Workers:         getEnvAsInt("QUEUE_WORKERS", 2),
			EmbeddedWorkers: getEnvAsBool("QUEUE_EMBEDDED_WORKERS", false),
			PingTimeout:     getEnvAsDuration("QUEUE_PING_TIMEOUT", 3*time.Second),
			PublishEvents:   getEnvAsBool("NATS_EVENTS_ENABLED", true),
		},
		Ai: AIConfig{
			Provider:          strings.ToLower(getEnv("AI_PROVIDER", "openai")),
			EmbeddingProvider: strings.ToLower(getEnv("EMBEDDING_PROVIDER", "")),

			OpenAIKey:            getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:        getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			OpenAIModel:          getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
			OpenAIEmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),

			GoogleGeminiKey:      getEnv("GOOGLE_API_KEY", ""),
			GeminiModel:          getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			GeminiEmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),

			AnthropicKey:   getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicModel: getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),

			OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:          getEnv("OLLAMA_MODEL", "llama3"),
			OllamaEmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),

			HuggingFaceKey:   getEnv("HUGGINGFACE_API_KEY", ""),
			HuggingFaceURL:   getEnv("HUGGINGFACE_BASE_URL", "https://router.huggingface.co/v1"),
			HuggingFaceModel: getEnv("HUGGINGFACE_MODEL", "meta-llama/Llama-3.1-8B-Instruct"),

			JinaKey: getEnv("JINA_API_KEY", ""),

			EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 0),
			RequestsPerSecond:   getEnvAsFloat("AI_REQUESTS_PER_SECOND", 5),
			RequestTimeout:      getEnvAsDuration("AI_REQUEST_TIMEOUT", 60*time.Second),
		},
		Retention: RetentionConfig{
			Days:          getEnvAsInt("RETENTION_DAYS", 30),
			SweepInterval: getEnvAsDuration("RETENTION_SWEEP_INTERVAL", 24*time.Hour),
			StaleAfter:    getEnvAsDuration("STALE_NOTE_AFTER", 15*time.Minute),
		},
		Search: SearchConfig{
			TopK:          getEnvAsInt("SEARCH_TOP_K", 10),
			QueryCacheTTL: getEnvAsDuration("SEARCH_QUERY_CACHE_TTL", 10*time.Minute),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getEnvAsBool("OTEL_ENABLED", false),
			OtlpEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
