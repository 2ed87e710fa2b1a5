package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"starry-api/internal/logger"

	"github.com/sirupsen/logrus"
)

// AppConfig holds all application configuration
type AppConfig struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	OpenAI    OpenAIConfig
	RateLimit RateLimitConfig
	Chat      ChatConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret       []byte
	TokenExpiration time.Duration
}

// OpenAIConfig holds LLM provider configuration
type OpenAIConfig struct {
	APIKey      string
	Model       string
	TitleModel  string
	Temperature float64
	MaxTokens   int
}

// RateLimitConfig holds per-client rate limiting configuration
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

// ChatConfig holds per-chat budget configuration
type ChatConfig struct {
	MaxTokensPerChat   int
	MaxMessagesPerChat int
}

// LoadConfig loads and validates application configuration from environment
func LoadConfig() (*AppConfig, error) {
	config := &AppConfig{}

	config.Server = ServerConfig{
		Port: getEnvOrDefault("PORT", "3001"),
	}

	config.Database = DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "postgres"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
		Name:     getEnvOrDefault("DB_NAME", "starry"),
		SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable must be set")
	}
	if len(jwtSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters (current length: %d)", len(jwtSecret))
	}

	config.Auth = AuthConfig{
		JWTSecret:       []byte(jwtSecret),
		TokenExpiration: getEnvAsDuration("JWT_TOKEN_EXPIRATION", 168*time.Hour),
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		logger.Log.Warn("OPENAI_API_KEY environment variable not set")
	}

	config.OpenAI = OpenAIConfig{
		APIKey:      apiKey,
		Model:       getEnvOrDefault("OPENAI_MODEL", "gpt-4"),
		TitleModel:  getEnvOrDefault("OPENAI_TITLE_MODEL", "gpt-3.5-turbo"),
		Temperature: getEnvAsFloat("OPENAI_TEMPERATURE", 0.7),
		MaxTokens:   getEnvAsInt("OPENAI_MAX_TOKENS", 1000),
	}

	config.RateLimit = RateLimitConfig{
		MaxRequests: getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 100),
		Window:      getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
	}

	config.Chat = ChatConfig{
		MaxTokensPerChat:   getEnvAsInt("MAX_TOKENS_PER_CHAT", 32000),
		MaxMessagesPerChat: getEnvAsInt("MAX_MESSAGES_PER_CHAT", 100),
	}

	return config, nil
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "default": defaultValue}).Warn("Invalid integer value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "default": defaultValue}).Warn("Invalid float value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "default": defaultValue}).Warn("Invalid duration value, using default")
		return defaultValue
	}
	return value
}
