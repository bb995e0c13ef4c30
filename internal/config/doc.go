// Package config manages application configuration for the Stitch CMS API.
//
// The config package loads and validates configuration from environment variables.
// All configuration is centralized here to provide a single source of truth.
//
// # Configuration Loading
//
// Configuration is loaded from environment variables:
//
//	cfg := config.Load()
//
// # Configuration Groups
//
// Configuration is organized into logical groups:
//
//   - ServerConfig: HTTP server settings (port, timeouts, CORS)
//   - DatabaseConfig: SurrealDB connection settings
//   - JWTConfig: JWT signing and refresh token settings
//   - SMTPConfig: Outbound email delivery settings
//   - SecretsConfig: Encryption key for API credentials at rest
//   - JobsConfig: Background job intervals and retention windows
//
// # Environment Variables
//
// Key environment variables:
//
//	SERVER_PORT             - HTTP server port (default: 8080)
//	DB_HOST                 - SurrealDB host
//	DB_NAMESPACE            - Database namespace (default: stitch)
//	JWT_PRIVATE_KEY_PATH    - RSA private key for access tokens
//	SMTP_HOST               - Mail relay host
//	SECRETS_ENCRYPTION_KEY  - 32-byte AES key for stored API keys
//	REMINDER_JOB_INTERVAL   - Event reminder sweep interval
//
// # Default Values
//
// Sensible defaults are provided for development:
//
//	func getEnv(key, defaultValue string) string {
//	    if value := os.Getenv(key); value != "" {
//	        return value
//	    }
//	    return defaultValue
//	}
package config
