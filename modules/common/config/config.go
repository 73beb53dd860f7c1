package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config - all environment configuration in one place
type Config struct {
	// Server
	Port string

	// Auth
	AuthSecret string
	TokenTTL   time.Duration

	// Supabase
	SupabaseURL            string
	SupabaseServiceKey     string
	SupabaseStorageBaseURL string
	StorageBucket          string

	// Gemini API
	GeminiAPIKey string
	GeminiModel  string

	// OpenAI API (prompt optimizer / tagging) - optional
	OpenAIAPIKey string
	OpenAIModel  string

	// Redis (batch tagging queue) - optional
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	// Generation behavior
	StorageStrategy string        // "object" (default) or "inline" (deprecated)
	GenerationMode  string        // "sequential" (default) or "parallel"
	RetryDelay      time.Duration // delay before the single per-image retry
	PacingDelay     time.Duration // delay between images in sequential mode

	// Byte budget for encoded reference images (naive truncation above it)
	ReferenceByteBudget int
}

// LoadConfig - load .env and environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment variables")
	}

	useTLS := true // default
	if tlsStr := os.Getenv("REDIS_USE_TLS"); tlsStr != "" {
		if parsed, err := strconv.ParseBool(tlsStr); err == nil {
			useTLS = parsed
		}
	}

	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		AuthSecret: getEnv("AUTH_SECRET", ""),
		TokenTTL:   time.Hour,

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:     getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseStorageBaseURL: getEnv("SUPABASE_STORAGE_BASE_URL", ""),
		StorageBucket:          getEnv("STORAGE_BUCKET", "portraits"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash-image"),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   useTLS,

		StorageStrategy:     getEnv("STORAGE_STRATEGY", "object"),
		GenerationMode:      getEnv("GENERATION_MODE", "sequential"),
		RetryDelay:          getEnvSeconds("RETRY_DELAY_SECONDS", 5),
		PacingDelay:         getEnvSeconds("PACING_DELAY_SECONDS", 2),
		ReferenceByteBudget: getEnvInt("REFERENCE_BYTE_BUDGET", 1_400_000),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	log.Println("✅ Configuration loaded successfully")
	log.Printf("   Supabase: %s", cfg.SupabaseURL)
	log.Printf("   Gemini: %s", cfg.GeminiModel)
	log.Printf("   Storage strategy: %s, Generation mode: %s",
		cfg.StorageStrategy, cfg.GenerationMode)
	if cfg.RedisHost == "" {
		log.Println("   Redis: not configured (batch tagging disabled)")
	} else {
		log.Printf("   Redis: %s (TLS: %v)", cfg.GetRedisAddr(), cfg.RedisUseTLS)
	}

	return cfg, nil
}

// validate - hard-required keys only. OpenAI and Redis are optional and
// checked by the endpoints that need them.
func (c *Config) validate() error {
	if c.AuthSecret == "" {
		return fmt.Errorf("AUTH_SECRET is required")
	}
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.StorageStrategy != "object" && c.StorageStrategy != "inline" {
		return fmt.Errorf("STORAGE_STRATEGY must be \"object\" or \"inline\", got %q", c.StorageStrategy)
	}
	if c.GenerationMode != "sequential" && c.GenerationMode != "parallel" {
		return fmt.Errorf("GENERATION_MODE must be \"sequential\" or \"parallel\", got %q", c.GenerationMode)
	}
	return nil
}

// getEnv - environment variable with default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, defaultSeconds)) * time.Second
}

// GetRedisAddr - Redis connection address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// HasRedis - whether the tagging queue is configured
func (c *Config) HasRedis() bool {
	return c.RedisHost != ""
}

// HasOpenAI - whether the chat-completion features are configured
func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
