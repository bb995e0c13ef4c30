package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Secrets  SecretsConfig
	Jobs     JobsConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           string
	Env            string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
	// BaseURL is the public site root, used in outbound email links
	BaseURL string
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string
	Port      string
	Namespace string
	Database  string
	User      string
	Password  string
}

// JWTConfig holds JWT signing settings
type JWTConfig struct {
	PrivateKeyPath string
	PublicKeyPath  string
	ExpirationMins int
	Issuer         string
	RefreshDays    int
}

// SMTPConfig holds outbound email settings
type SMTPConfig struct {
	Enabled     bool
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
	// Concurrent sends during bulk invitations and reminder runs
	SendConcurrency int
}

// SecretsConfig holds the encryption key for API credentials at rest
type SecretsConfig struct {
	// EncryptionKey is 32 bytes, base64 or raw, used for AES-256-GCM
	EncryptionKey string
}

// JobsConfig holds background job settings
type JobsConfig struct {
	ReminderInterval     time.Duration
	CleanupInterval      time.Duration
	ErrorRetentionDays   int
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("SERVER_ENV", "development"),
			ReadTimeout:    getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			AllowedOrigins: getSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			BaseURL:        getEnv("SITE_BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			Host:      getEnv("DB_HOST", "localhost"),
			Port:      getEnv("DB_PORT", "8000"),
			Namespace: getEnv("DB_NAMESPACE", "stitch"),
			Database:  getEnv("DB_DATABASE", "cms"),
			User:      getEnv("DB_USER", "root"),
			Password:  getEnv("DB_PASSWORD", "root"),
		},
		JWT: JWTConfig{
			PrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./keys/private.pem"),
			PublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./keys/public.pem"),
			ExpirationMins: getIntEnv("JWT_EXPIRATION_MINS", 15),
			Issuer:         getEnv("JWT_ISSUER", "api.stitchcms.dev"),
			RefreshDays:    getIntEnv("JWT_REFRESH_DAYS", 30),
		},
		SMTP: SMTPConfig{
			Enabled:         getBoolEnv("SMTP_ENABLED", false),
			Host:            getEnv("SMTP_HOST", "localhost"),
			Port:            getIntEnv("SMTP_PORT", 587),
			Username:        getEnv("SMTP_USERNAME", ""),
			Password:        getEnv("SMTP_PASSWORD", ""),
			FromAddress:     getEnv("SMTP_FROM_ADDRESS", "noreply@stitchcms.dev"),
			FromName:        getEnv("SMTP_FROM_NAME", "Stitch CMS"),
			SendConcurrency: getIntEnv("SMTP_SEND_CONCURRENCY", 5),
		},
		Secrets: SecretsConfig{
			EncryptionKey: getEnv("SECRETS_ENCRYPTION_KEY", ""),
		},
		Jobs: JobsConfig{
			ReminderInterval:   getDurationEnv("REMINDER_JOB_INTERVAL", time.Hour),
			CleanupInterval:    getDurationEnv("CLEANUP_JOB_INTERVAL", 24*time.Hour),
			ErrorRetentionDays: getIntEnv("ERROR_RETENTION_DAYS", 30),
		},
	}, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Server validation
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}

	// Database validation
	if c.Database.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.Database.Port == "" {
		errs = append(errs, errors.New("DB_PORT is required"))
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}

	// JWT validation - critical for production
	if c.IsProduction() {
		if c.JWT.PrivateKeyPath == "" {
			errs = append(errs, errors.New("JWT_PRIVATE_KEY_PATH is required in production"))
		}
		if c.JWT.PublicKeyPath == "" {
			errs = append(errs, errors.New("JWT_PUBLIC_KEY_PATH is required in production"))
		}
		if c.Secrets.EncryptionKey == "" {
			errs = append(errs, errors.New("SECRETS_ENCRYPTION_KEY is required in production"))
		}
	}
	if c.JWT.ExpirationMins <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION_MINS must be positive"))
	}
	if c.JWT.RefreshDays <= 0 {
		errs = append(errs, errors.New("JWT_REFRESH_DAYS must be positive"))
	}

	// SMTP validation
	if c.SMTP.Enabled {
		if c.SMTP.Host == "" {
			errs = append(errs, errors.New("SMTP_HOST is required when SMTP_ENABLED is true"))
		}
		if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
			errs = append(errs, fmt.Errorf("SMTP_PORT must be a valid port, got %d", c.SMTP.Port))
		}
		if c.SMTP.FromAddress == "" {
			errs = append(errs, errors.New("SMTP_FROM_ADDRESS is required when SMTP_ENABLED is true"))
		}
	}
	if c.SMTP.SendConcurrency <= 0 {
		errs = append(errs, errors.New("SMTP_SEND_CONCURRENCY must be positive"))
	}

	// Jobs validation
	if c.Jobs.ReminderInterval <= 0 {
		errs = append(errs, errors.New("REMINDER_JOB_INTERVAL must be positive"))
	}
	if c.Jobs.CleanupInterval <= 0 {
		errs = append(errs, errors.New("CLEANUP_JOB_INTERVAL must be positive"))
	}
	if c.Jobs.ErrorRetentionDays <= 0 {
		errs = append(errs, errors.New("ERROR_RETENTION_DAYS must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
