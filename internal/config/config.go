// Package config provides configuration management for Kinfolk.
// It loads settings from environment variables with the KINFOLK_ prefix
// and provides sensible defaults for all configuration options.
//
// User settings (e.g., user_name) are persisted to the settings table in
// the database. LoadConfigFromDB reads from the database first and falls back
// to environment variables. SaveConfig writes user settings to the database.
package config

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration settings for the Kinfolk application.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Security  SecurityConfig
	Notify    NotifyConfig
	Inference InferenceConfig
	User      UserConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    // Server port (default: 7373)
	Host string // Server host (default: 127.0.0.1)
}

// StorageConfig contains database and storage configuration.
type StorageConfig struct {
	StorageEngine string // Storage engine type: sqlite, postgres (default: sqlite)
	DataPath      string // Path to data directory for sqlite (default: ./data)
	PostgresDSN   string // Postgres connection string, used when StorageEngine is postgres
}

// SecurityConfig contains security and authentication settings.
type SecurityConfig struct {
	SecurityMode string // Security mode: development, production (default: development)
	APIToken     string // API authentication token
}

// NotifyConfig contains webhook notification settings.
type NotifyConfig struct {
	WebhookURL     string // Webhook endpoint for validation/inference events (empty disables)
	WebhookTimeout string // HTTP timeout for webhook delivery (default: 10s)
}

// InferenceConfig contains relationship-inference settings.
type InferenceConfig struct {
	MaxPathDistance int  // Hop bound for path and relative queries (default: 6)
	AutoValidate    bool // Run the consistency validator after every inference pass (default: true)
}

// UserConfig contains user-specific settings that persist across restarts.
// These settings are stored in the settings table in the database.
type UserConfig struct {
	// UserName is the display name for the tree's owner.
	// Env var: KINFOLK_USER_NAME
	// Database key: user_name
	UserName string
}

// LoadConfig loads configuration from environment variables with sensible defaults.
// All environment variables use the KINFOLK_ prefix.
// User settings (UserConfig) are loaded from environment variables only.
// Use LoadConfigFromDB to also read persisted user settings from the database.
func LoadConfig() (*Config, error) {
	cfg := buildBaseConfig()
	return cfg, nil
}

// LoadConfigFromDB loads configuration from both environment variables and the
// database. The database value takes precedence over the environment variable
// for user settings. Falls back to environment variable when no DB entry exists.
//
// Returns an error if db is nil.
func LoadConfigFromDB(db *sql.DB) (*Config, error) {
	if db == nil {
		return nil, errors.New("config: database connection is required")
	}

	cfg := buildBaseConfig()

	// Load user_name from settings table (DB takes precedence over env var)
	userName, err := getSetting(db, "user_name")
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("config: failed to load user_name from database: %w", err)
	}

	if userName != "" {
		cfg.User.UserName = userName
	}
	// If no DB value, cfg.User.UserName already has the env var value from buildBaseConfig()

	return cfg, nil
}

// SaveConfig persists user configuration settings to the settings table in the
// database. Uses upsert semantics: inserts if not present, updates if already
// stored. This ensures user settings survive application restarts.
//
// Returns an error if db is nil.
func (c *Config) SaveConfig(db *sql.DB) error {
	if db == nil {
		return errors.New("config: database connection is required")
	}

	if err := setSetting(db, "user_name", c.User.UserName); err != nil {
		return fmt.Errorf("config: failed to save user_name: %w", err)
	}

	return nil
}

// getSetting retrieves a single setting value by key from the settings table.
// Returns an empty string and sql.ErrNoRows if the key does not exist.
func getSetting(db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// setSetting writes a key-value pair to the settings table using upsert semantics.
func setSetting(db *sql.DB, key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// buildBaseConfig constructs a Config with values from environment variables
// and defaults. This is the shared base for both LoadConfig and LoadConfigFromDB.
func buildBaseConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("KINFOLK_PORT", 7373),
			Host: getEnv("KINFOLK_HOST", "127.0.0.1"),
		},
		Storage: StorageConfig{
			StorageEngine: getEnv("KINFOLK_STORAGE_ENGINE", "sqlite"),
			DataPath:      getEnv("KINFOLK_DATA_PATH", "./data"),
			PostgresDSN:   getEnv("KINFOLK_POSTGRES_DSN", ""),
		},
		Security: SecurityConfig{
			SecurityMode: getEnv("KINFOLK_SECURITY_MODE", "development"),
			APIToken:     getEnv("KINFOLK_API_TOKEN", ""),
		},
		Notify: NotifyConfig{
			WebhookURL:     getEnv("KINFOLK_WEBHOOK_URL", ""),
			WebhookTimeout: getEnv("KINFOLK_WEBHOOK_TIMEOUT", "10s"),
		},
		Inference: InferenceConfig{
			MaxPathDistance: getEnvInt("KINFOLK_MAX_PATH_DISTANCE", 6),
			AutoValidate:    getEnvBool("KINFOLK_AUTO_VALIDATE", true),
		},
		User: UserConfig{
			UserName: getEnv("KINFOLK_USER_NAME", ""),
		},
	}
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// If the environment variable exists but cannot be parsed as an integer,
// it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value.
// It recognizes "true", "1", "yes" as true and "false", "0", "no" as false (case-insensitive).
// If the environment variable exists but cannot be parsed as a boolean,
// it returns the default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "true", "1", "yes", "True", "TRUE", "Yes", "YES":
			return true
		case "false", "0", "no", "False", "FALSE", "No", "NO":
			return false
		}
	}
	return defaultValue
}
