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
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Usage    UsageConfig
	Watchdog WatchdogConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	PipelineLogPath    string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	OpenAI       string
	Claude       string
	GoogleGemini string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string

	// Provider selection per pipeline step ("openai", "claude", "ollama")
	GuardrailProvider string
	GuardrailModel    string
	RouterProvider    string
	RouterModel       string
	RephraseProvider  string // "openai" or "claude"
	RephraseModel     string
	ComposerStrategy  string // "openai", "claude" or "legacy"
	ComposerModel     string

	ForbiddenWords       []string
	RephraseHistoryDepth int

	SearchTopK      int
	SearchThreshold float64
	SearchCacheTTL  time.Duration
}

type UsageConfig struct {
	DailyQuestionLimit int
}

type WatchdogConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			PipelineLogPath:    getEnv("PIPELINE_LOG_PATH", "pipeline.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			Claude:       getEnv("ANTHROPIC_API_KEY", ""),
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),

			GuardrailProvider: getEnv("GUARDRAIL_PROVIDER", "openai"),
			GuardrailModel:    getEnv("GUARDRAIL_MODEL", "gpt-4o-mini"),
			RouterProvider:    getEnv("ROUTER_PROVIDER", "openai"),
			RouterModel:       getEnv("ROUTER_MODEL", "gpt-4o"),
			RephraseProvider:  getEnv("REPHRASE_PROVIDER", "openai"),
			RephraseModel:     getEnv("REPHRASE_MODEL", "gpt-4o-mini"),
			ComposerStrategy:  getEnv("COMPOSER_STRATEGY", "openai"),
			ComposerModel:     getEnv("COMPOSER_MODEL", "gpt-4o"),

			ForbiddenWords:       getEnvAsSlice("FORBIDDEN_WORDS", nil),
			RephraseHistoryDepth: getEnvAsInt("REPHRASE_HISTORY_DEPTH", 5),

			SearchTopK:      getEnvAsInt("SEARCH_TOP_K", 10),
			SearchThreshold: getEnvAsFloat("SEARCH_THRESHOLD", 0.35),
			SearchCacheTTL:  getEnvAsDuration("SEARCH_CACHE_TTL", time.Minute),
		},
		Usage: UsageConfig{
			DailyQuestionLimit: getEnvAsInt("DAILY_QUESTION_LIMIT", 50),
		},
		Watchdog: WatchdogConfig{
			Interval: getEnvAsDuration("WATCHDOG_INTERVAL", 30*time.Second),
			Timeout:  getEnvAsDuration("ANSWER_TIMEOUT", 5*time.Minute),
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsSlice(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	parts := strings.Split(strValue, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}
