package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Logging
	LogLevel string

	// Redis (optional; in-memory fallbacks when empty)
	RedisURL string

	// Session tokens
	JWTSecret  string
	SessionTTL time.Duration

	// Gemini AI
	GeminiAPIKey   string
	GeminiModel    string
	GeminiEndpoint string

	// Advisor
	Provider           string
	AdvisorTimeout     time.Duration
	LocalResponseDelay time.Duration
	MessageRateLimit   int

	// Credential storage
	CredentialKey   string
	CredentialsFile string

	// Frontend
	FrontendURL string
}

const defaultGeminiModel = "gemini-1.5-flash"

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	model := getEnvOrDefault("GEMINI_MODEL", defaultGeminiModel)

	cfg := &Config{
		Port:               getEnvOrDefault("PORT", "8080"),
		Env:                getEnvOrDefault("ENV", "development"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		RedisURL:           getEnvOrDefault("REDIS_URL", ""),
		JWTSecret:          getEnvOrDefault("JWT_SECRET", ""),
		SessionTTL:         getEnvAsDurationOrDefault("SESSION_TTL", 24*time.Hour),
		GeminiAPIKey:       strings.TrimSpace(getEnvOrDefault("GEMINI_API_KEY", "")),
		GeminiModel:        model,
		GeminiEndpoint:     getEnvOrDefault("GEMINI_ENDPOINT", GeminiEndpointForModel(model)),
		Provider:           strings.ToLower(getEnvOrDefault("ADVISOR_PROVIDER", "local")),
		AdvisorTimeout:     getEnvAsDurationOrDefault("ADVISOR_TIMEOUT", 0),
		LocalResponseDelay: getEnvAsDurationOrDefault("LOCAL_RESPONSE_DELAY", 2*time.Second),
		MessageRateLimit:   getEnvAsIntOrDefault("MESSAGE_RATE_LIMIT", 30),
		CredentialKey:      getEnvOrDefault("CREDENTIAL_KEY", "gemini_api_key"),
		CredentialsFile:    getEnvOrDefault("CREDENTIALS_FILE", ""),
		FrontendURL:        getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

// MustLoadServer is Load plus the secrets the HTTP server cannot run without.
func MustLoadServer() *Config {
	cfg := Load()
	cfg.JWTSecret = mustGetEnv("JWT_SECRET")
	return cfg
}

// GeminiEndpointForModel returns the generateContent URL for a model name.
func GeminiEndpointForModel(model string) string {
	return fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent", model)
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
	if err != nil {
		return defaultVal
	}
	return n
}

// getEnvAsDurationOrDefault accepts Go durations ("1500ms", "2s") or a bare
// number of milliseconds.
func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil && d >= 0 {
		return d
	}
	if ms, err := strconv.Atoi(val); err == nil && ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultVal
}
