package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Pipeline PipelineConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	BrandAPIKey  string
	BrandAPIURL  string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama" or "gemini"
	LLMModel          string // e.g. "llama3", "gemini-1.5-flash"
}

// PipelineConfig tunes the generation pipeline and the guards around the
// LLM provider.
type PipelineConfig struct {
	MinAnswers          int     // eligible answers required before a job is accepted
	MaxLLMPerMinute     int     // sliding-window rate limit on provider calls
	LLMQueueDepth       int     // callers allowed to wait on the limiter
	BreakerThreshold    int     // consecutive failures before the circuit opens
	BreakerCooldownSecs int     // seconds before a half-open trial
	MaxRetries          int     // per-stage retry attempts
	DefaultMaxCostUSD   float64 // per-job cost cap when the request omits one
	ReviewThreshold     float64 // confidence below this flags a code for review
	WorkerDurableName   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			BrandAPIKey:  getEnv("BRAND_API_KEY", ""),
			BrandAPIURL:  getEnv("BRAND_API_URL", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
		},
		Pipeline: PipelineConfig{
			MinAnswers:          getEnvAsInt("PIPELINE_MIN_ANSWERS", 50),
			MaxLLMPerMinute:     getEnvAsInt("LLM_MAX_CALLS_PER_MINUTE", 60),
			LLMQueueDepth:       getEnvAsInt("LLM_QUEUE_DEPTH", 32),
			BreakerThreshold:    getEnvAsInt("LLM_BREAKER_THRESHOLD", 5),
			BreakerCooldownSecs: getEnvAsInt("LLM_BREAKER_COOLDOWN_SECONDS", 30),
			MaxRetries:          getEnvAsInt("PIPELINE_MAX_RETRIES", 3),
			DefaultMaxCostUSD:   getEnvAsFloat("PIPELINE_DEFAULT_MAX_COST_USD", 5.0),
			ReviewThreshold:     getEnvAsFloat("PIPELINE_REVIEW_THRESHOLD", 0.5),
			WorkerDurableName:   getEnv("PIPELINE_WORKER_DURABLE", "codeframe-worker"),
		},
	}
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
