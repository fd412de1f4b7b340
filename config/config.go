package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port           string
	GoEnv          string
	DatabaseURL    string
	DataDir        string
	RetentionHours int
	AdminToken     string
	ResendAPIKey   string
	NotifyEmailTo  string
	AppBaseURL     string
	LogLevel       string
}

var configInstance *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	// Determine which environment file to load
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// If environment-specific file doesn't exist, try .env
		if err := godotenv.Load(); err != nil {
			// In production, environment variables are set directly
			// so it's okay if .env files don't exist
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	config := &Config{
		Port:           getEnv("PORT", "3001"),
		GoEnv:          getEnv("GO_ENV", "development"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DataDir:        getEnv("DATA_DIR", "./data"),
		RetentionHours: getEnvInt("RETENTION_HOURS", 72),
		AdminToken:     getEnv("ADMIN_TOKEN", ""),
		ResendAPIKey:   getEnv("RESEND_API_KEY", ""),
		NotifyEmailTo:  getEnv("NOTIFY_EMAIL_TO", ""),
		AppBaseURL:     getEnv("APP_BASE_URL", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	if config.AppBaseURL == "" {
		config.AppBaseURL = fmt.Sprintf("http://localhost:%s", config.Port)
	}

	if config.AdminToken == "" {
		log.Printf("ADMIN_TOKEN is not configured. Admin routes are disabled until it is set.")
	}

	configInstance = config
	return config, nil
}

// GetConfig returns the loaded configuration instance
func GetConfig() *Config {
	return configInstance
}

// SetConfig sets the configuration instance (primarily for testing)
func SetConfig(c *Config) {
	configInstance = c
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// AdminEnabled reports whether the admin surface is configured.
// Without a shared secret the admin routes fail closed.
func (c *Config) AdminEnabled() bool {
	return c.AdminToken != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid value for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
