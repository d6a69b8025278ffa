// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chaptermatic/chaptermatic-server/internal/chapters"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Data      DataConfig
	Server    ServerConfig
	RateLimit RateLimitConfig
	Inbox     InboxConfig
	Segmenter SegmenterConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Format string // json or pretty; empty picks by environment
}

// DataConfig holds on-disk storage configuration.
type DataConfig struct {
	BasePath string // SQLite database and search index live here
}

// DatabasePath returns the SQLite database file path.
func (d DataConfig) DatabasePath() string {
	return filepath.Join(d.BasePath, "chaptermatic.db")
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port            string        // Server port (default: 8080)
	ReadTimeout     time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout    time.Duration // HTTP write timeout (default: 30s)
	IdleTimeout     time.Duration // HTTP idle timeout (default: 60s)
	ShutdownTimeout time.Duration // Graceful shutdown budget (default: 10s)
	CORSOrigins     []string      // Allowed origins (default: *)

	// TrustProxyHeaders takes the client address from X-Real-IP or
	// X-Forwarded-For. Enable only behind a proxy that sets them (default: false).
	TrustProxyHeaders bool
}

// RateLimitConfig holds per-IP limits for chapter generation.
type RateLimitConfig struct {
	GeneratePerMinute int // default: 30
	GenerateBurst     int // default: 10
}

// InboxConfig holds the transcript inbox worker configuration.
type InboxConfig struct {
	// Enabled starts the worker (default: false)
	Enabled bool
	// Path is the watched directory (default: {data}/inbox)
	Path string
	// SettleDelay is how long a file must stay unchanged before processing (default: 2s)
	SettleDelay time.Duration
	// MaxConcurrent is the maximum number of transcripts processed at once (default: 2)
	MaxConcurrent int
	// IgnorePatterns are glob patterns for files to skip
	IgnorePatterns []string
}

// SegmenterConfig holds chapter segmentation configuration.
type SegmenterConfig struct {
	// RulesFile is an optional YAML file overriding the default rules.
	RulesFile string
	// Rules are the loaded overrides; zero fields use the defaults.
	Rules chapters.Rules
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("chaptermatic", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := fs.String("log-format", "", "Log format (json, pretty)")
	dataPath := fs.String("data-path", "", "Base path for the database and search index")

	// Server flags
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 30s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	shutdownTimeout := fs.String("shutdown-timeout", "", "Graceful shutdown timeout (default: 10s)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated allowed CORS origins (default: *)")
	trustProxy := fs.String("trust-proxy-headers", "", "Use X-Real-IP/X-Forwarded-For as the client address (default: false)")

	// Rate limit flags
	generatePerMinute := fs.String("generate-per-minute", "", "Chapter generations per minute per IP (default: 30)")
	generateBurst := fs.String("generate-burst", "", "Chapter generation burst per IP (default: 10)")

	// Inbox flags
	inboxEnabled := fs.String("inbox-enabled", "", "Watch an inbox directory for transcripts (default: false)")
	inboxPath := fs.String("inbox-path", "", "Inbox directory (default: {data}/inbox)")
	inboxSettle := fs.String("inbox-settle-delay", "", "Time a file must be unchanged before processing (default: 2s)")
	inboxMaxConcurrent := fs.String("inbox-max-concurrent", "", "Max transcripts processed at once (default: 2)")

	rulesFile := fs.String("rules", "", "YAML file with segmentation rules")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level:  getConfigValue(*logLevel, "LOG_LEVEL", "info"),
			Format: getConfigValue(*logFormat, "LOG_FORMAT", ""),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:              getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins:       splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
			TrustProxyHeaders: getBoolConfigValue(*trustProxy, "TRUST_PROXY_HEADERS", false),
		},
		RateLimit: RateLimitConfig{
			GeneratePerMinute: getIntConfigValue(*generatePerMinute, "RATE_LIMIT_GENERATE_PER_MINUTE", 30),
			GenerateBurst:     getIntConfigValue(*generateBurst, "RATE_LIMIT_GENERATE_BURST", 10),
		},
		Inbox: InboxConfig{
			Enabled:        getBoolConfigValue(*inboxEnabled, "INBOX_ENABLED", false),
			Path:           getConfigValue(*inboxPath, "INBOX_PATH", ""),
			MaxConcurrent:  getIntConfigValue(*inboxMaxConcurrent, "INBOX_MAX_CONCURRENT", 2),
			IgnorePatterns: splitList(getConfigValue("", "INBOX_IGNORE_PATTERNS", "")),
		},
		Segmenter: SegmenterConfig{
			RulesFile: getConfigValue(*rulesFile, "RULES_FILE", ""),
		},
	}

	durations := []struct {
		flagValue, envKey, defaultValue string
		dst                             *time.Duration
	}{
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "30s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{*shutdownTimeout, "SHUTDOWN_TIMEOUT", "10s", &cfg.Server.ShutdownTimeout},
		{*inboxSettle, "INBOX_SETTLE_DELAY", "2s", &cfg.Inbox.SettleDelay},
	}
	for _, d := range durations {
		value, err := getDurationConfigValue(d.flagValue, d.envKey, d.defaultValue)
		if err != nil {
			return nil, err
		}
		*d.dst = value
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.expandInboxPath(); err != nil {
		return nil, fmt.Errorf("invalid inbox path: %w", err)
	}

	if cfg.Segmenter.RulesFile != "" {
		path, err := expandPath(cfg.Segmenter.RulesFile, "")
		if err != nil {
			return nil, fmt.Errorf("invalid rules file path: %w", err)
		}
		rules, err := LoadRules(path)
		if err != nil {
			return nil, err
		}
		cfg.Segmenter.RulesFile = path
		cfg.Segmenter.Rules = rules
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
	case "", "json", "pretty":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or pretty)", c.Logger.Format)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %s", c.Server.Port)
	}

	if c.RateLimit.GeneratePerMinute <= 0 || c.RateLimit.GenerateBurst <= 0 {
		return errors.New("rate limit values must be positive")
	}

	if c.Inbox.Enabled {
		if c.Inbox.Path == "" {
			return errors.New("inbox path is required when the inbox is enabled")
		}
		if c.Inbox.MaxConcurrent < 1 {
			return fmt.Errorf("invalid inbox max concurrent: %d", c.Inbox.MaxConcurrent)
		}
	}

	return validateRules(c.Segmenter.Rules)
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

// expandDataPath expands ~ and makes the path absolute.
// Defaults to ~/Chaptermatic/data.
func (c *Config) expandDataPath() error {
	defaultPath := ""
	if c.Data.BasePath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		defaultPath = filepath.Join(homeDir, "Chaptermatic", "data")
	}

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// expandInboxPath defaults the inbox to {data}/inbox.
func (c *Config) expandInboxPath() error {
	expanded, err := expandPath(c.Inbox.Path, filepath.Join(c.Data.BasePath, "inbox"))
	if err != nil {
		return err
	}
	c.Inbox.Path = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envKey != "" {
		if envValue := os.Getenv(envKey); envValue != "" {
			return envValue
		}
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

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strings.TrimSpace(strValue))
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
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), strValue, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", strings.ToLower(envKey), strValue)
	}
	return d, nil
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
