package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
}

type AppConfig struct {
	Environment string
	LogFilePath string
	NatsURL     string `validate:"required"`
	RedisURL    string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
}

type AIConfig struct {
	EmbeddingProvider string `validate:"oneof=gemini ollama"`
	OllamaBaseURL     string `validate:"required_if=EmbeddingProvider ollama,omitempty,url"`
	OllamaModel       string

	SessionStore string `validate:"oneof=memory redis"`
	SessionTTL   time.Duration

	MaxResults       int     `validate:"gt=0"`
	MinSimilarity    float64 `validate:"gte=0,lte=1"`
	MultiCategoryMin float64 `validate:"gte=0,lte=1"`
	DecayWindowDays  int     `validate:"gt=0"`
	ConfidenceFloor  float64 `validate:"gte=0,lte=1"`

	KnowledgeTopic string `validate:"required"`
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "app.log"),
			NatsURL:     getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			SessionStore:      getEnv("SESSION_STORE", "memory"),
			SessionTTL:        getEnvAsDuration("SESSION_TTL", 30*time.Minute),
			MaxResults:        getEnvAsInt("RETRIEVAL_MAX_RESULTS", 5),
			MinSimilarity:     getEnvAsFloat("RETRIEVAL_MIN_SIMILARITY", 0.35),
			MultiCategoryMin:  getEnvAsFloat("RETRIEVAL_MULTI_CATEGORY_MIN", 0.3),
			DecayWindowDays:   getEnvAsInt("RETRIEVAL_DECAY_WINDOW_DAYS", 30),
			ConfidenceFloor:   getEnvAsFloat("CLASSIFIER_CONFIDENCE_FLOOR", 0.1),
			KnowledgeTopic:    getEnv("KNOWLEDGE_CHANGED_TOPIC_NAME", "KNOWLEDGE_CHANGED"),
		},
	}
}

// Validate checks the loaded configuration before the container wires
// anything that would fail later with a less helpful error.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
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
