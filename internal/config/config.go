package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis (optional, enables the live message feed)
	RedisURL string

	// Ollama
	OllamaBaseURL string
	OllamaTimeout time.Duration
	CodeGenModel  string
	AnalyzeModel  string
	SummaryModel  string

	// Placeholder identity until real auth exists
	AppID string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:          getEnvOrDefault("PORT", "8000"),
		Env:           getEnvOrDefault("ENV", "development"),
		DatabaseURL:   mustGetEnv("DATABASE_URL"),
		RedisURL:      getEnvOrDefault("REDIS_URL", ""),
		OllamaBaseURL: getEnvOrDefault("OLLAMA_BASE_URL", "http://ollama:11434"),
		OllamaTimeout: time.Duration(getEnvAsIntOrDefault("OLLAMA_TIMEOUT_SECONDS", 300)) * time.Second,
		CodeGenModel:  getEnvOrDefault("QWEN_CODE_GEN_MODEL", "qwen:7b-chat"),
		AnalyzeModel:  getEnvOrDefault("LLAMA_ANALYZE_MODEL", "llama3:8b"),
		SummaryModel:  getEnvOrDefault("LLAMA_SUMMARY_MODEL", "llama3:8b"),
		AppID:         getEnvOrDefault("FIREBASE_APP_ID", "default_app_id"),
		FrontendURL:   getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

// IsDevelopment reports whether the server runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// DefaultUserID is the owner attached to every request while there is no auth.
func (c *Config) DefaultUserID() string {
	return c.AppID + "_demo_user"
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}
