// Package secrets provides AES-256-GCM encryption for stored credentials
// and masking helpers for settings responses. API keys for AI providers and
// modules are sealed with the configured encryption key before they reach
// the database; settings endpoints use the masking helpers so secret values
// never leave the server in readable form.
package secrets
