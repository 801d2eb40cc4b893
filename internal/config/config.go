// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Metadata MetadataConfig
	Server   ServerConfig
	Auth     AuthConfig
	Mirror   MirrorConfig
	Import   ImportConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "text"; empty picks by environment
}

// MetadataConfig holds metadata storage configuration.
// The database, token blocklist, search index and auth key live under BasePath.
type MetadataConfig struct {
	BasePath string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host           string
	Port           string        // Server port (default: 8080)
	ReadTimeout    time.Duration // HTTP read timeout (default: 30s)
	WriteTimeout   time.Duration // HTTP write timeout (default: 60s)
	IdleTimeout    time.Duration // HTTP idle timeout (default: 60s)
	AllowedOrigins []string      // CORS origins (default: *)
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key (32 bytes)
	AccessTokenKey []byte
	// Token lifetimes
	AccessTokenDuration  time.Duration // e.g., 1h
	RefreshTokenDuration time.Duration // e.g., 24h
}

// MirrorConfig holds configuration for the on-disk copy of note content.
type MirrorConfig struct {
	Enabled bool
	// Root defaults to ~/lifocus_data/notes
	Root string
}

// ImportConfig bounds uploads accepted by the note importer.
type ImportConfig struct {
	MaxUploadSize   int64 // multipart body limit in bytes (default: 64 MiB)
	MaxArchiveBytes int64 // total uncompressed archive size (default: 512 MiB)
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("lifocus", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := fs.String("log-format", "", "Log format (json, text)")
	metadataPath := fs.String("metadata-path", "", "Base path for database and index storage")

	// Auth flags
	accessTokenDuration := fs.String("access-token-duration", "", "Access token lifetime (e.g., 1h)")
	refreshTokenDuration := fs.String("refresh-token-duration", "", "Refresh token lifetime (e.g., 24h)")

	// Server flags
	serverHost := fs.String("host", "", "Server bind host (default: all interfaces)")
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 30s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 60s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	allowedOrigins := fs.String("allowed-origins", "", "Comma-separated CORS origins (default: *)")

	// Mirror flags
	mirrorEnabled := fs.String("mirror-enabled", "", "Write a copy of every note to disk (default: true)")
	mirrorRoot := fs.String("mirror-root", "", "Root directory of the note mirror (default: ~/lifocus_data/notes)")

	// Import flags
	maxUpload := fs.String("max-upload-size", "", "Maximum import upload size in bytes")
	maxArchive := fs.String("max-archive-bytes", "", "Maximum uncompressed archive size in bytes")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists. A missing file is fine; a malformed one is not.
	if err := loadEnvFile(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", *envFile, err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level:  getConfigValue(*logLevel, "LOG_LEVEL", "info"),
			Format: getConfigValue(*logFormat, "LOG_FORMAT", ""),
		},
		Metadata: MetadataConfig{
			BasePath: getConfigValue(*metadataPath, "METADATA_PATH", ""),
		},
		Server: ServerConfig{
			Host:           getConfigValue(*serverHost, "SERVER_HOST", ""),
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getConfigValue(*allowedOrigins, "ALLOWED_ORIGINS", "*")),
		},
		Mirror: MirrorConfig{
			Enabled: getBoolConfigValue(*mirrorEnabled, "MIRROR_ENABLED", true),
			Root:    getConfigValue(*mirrorRoot, "MIRROR_ROOT", ""),
		},
		Import: ImportConfig{
			MaxUploadSize:   getInt64ConfigValue(*maxUpload, "MAX_UPLOAD_SIZE", 64<<20),
			MaxArchiveBytes: getInt64ConfigValue(*maxArchive, "MAX_ARCHIVE_BYTES", 512<<20),
		},
	}

	var err error
	if cfg.Auth.AccessTokenDuration, err = getDurationConfigValue(*accessTokenDuration, "ACCESS_TOKEN_DURATION", "1h"); err != nil {
		return nil, err
	}
	if cfg.Auth.RefreshTokenDuration, err = getDurationConfigValue(*refreshTokenDuration, "REFRESH_TOKEN_DURATION", "24h"); err != nil {
		return nil, err
	}
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}

	if err := cfg.expandMetadataPath(); err != nil {
		return nil, fmt.Errorf("invalid metadata path: %w", err)
	}
	if err := cfg.expandMirrorRoot(); err != nil {
		return nil, fmt.Errorf("invalid mirror root: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Logger.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logger.Format)
	}

	if c.Metadata.BasePath == "" {
		return errors.New("metadata base path cannot be empty after expansion")
	}

	if c.Mirror.Enabled && c.Mirror.Root == "" {
		return errors.New("mirror root cannot be empty when the mirror is enabled")
	}

	if c.Import.MaxUploadSize <= 0 || c.Import.MaxArchiveBytes <= 0 {
		return errors.New("import size limits must be positive")
	}

	return nil
}

// DatabasePath returns the sqlite database file location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Metadata.BasePath, "lifocus.db")
}

// BlocklistPath returns the directory of the revoked-token store.
func (c *Config) BlocklistPath() string {
	return filepath.Join(c.Metadata.BasePath, "blocklist")
}

// SearchIndexPath returns the directory holding the note search index.
func (c *Config) SearchIndexPath() string {
	return filepath.Join(c.Metadata.BasePath, "search")
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandMetadataPath expands ~ and makes the path absolute.
func (c *Config) expandMetadataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "lifocus_data", "metadata")

	expanded, err := expandPath(c.Metadata.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Metadata.BasePath = expanded
	return nil
}

// expandMirrorRoot resolves the mirror root, defaulting to ~/lifocus_data/notes.
func (c *Config) expandMirrorRoot() error {
	if !c.Mirror.Enabled && c.Mirror.Root == "" {
		return nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "lifocus_data", "notes")

	expanded, err := expandPath(c.Mirror.Root, defaultPath)
	if err != nil {
		return err
	}
	c.Mirror.Root = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getInt64ConfigValue returns an int64 from flag, env var, or default.
// Unparseable values fall back to the default.
func getInt64ConfigValue(flagValue, envKey string, defaultValue int64) int64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseInt(strValue, 10, 64)
	if err != nil {
		return defaultValue
	}
	return result
}

// getDurationConfigValue parses a duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s %q: %w", envKey, strValue, err)
	}
	return d, nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Variables already present in the environment are not overwritten.
func loadEnvFile(path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		return err
	}

	for key, value := range values {
		if os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("failed to set env var %s: %w", key, err)
		}
	}

	return nil
}
