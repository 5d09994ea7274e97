package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Server config
	Server ServerConfig

	// CSRF and session cookie config
	Security SecurityConfig

	// Gemini API config
	APIs APIConfig

	// slog config
	Logging LoggingConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	Environment  string // development, staging, production
	BaseURL      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	CSRFSecret        string
	TrustedOrigins    []string
	SessionSecret     string
	SessionCookieName string
	SessionDuration   time.Duration
	MaxSessions       int
	SecureCookies     bool // true in production
}

// APIConfig holds external API configuration.
type APIConfig struct {
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	GeminiTimeout time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Addr is the listen address derived from the port.
func (c *Config) Addr() string {
	if strings.Contains(c.Server.Port, ":") {
		return c.Server.Port
	}
	return ":" + c.Server.Port
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Server = ServerConfig{
		Port:         getEnvOrDefault("SERVER_PORT", "8080"),
		Environment:  getEnvOrDefault("APP_ENV", "development"),
		BaseURL:      getEnvOrDefault("BASE_URL", "http://localhost:8080"),
		ReadTimeout:  getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getDurationOrDefault("SERVER_WRITE_TIMEOUT", 90*time.Second),
		IdleTimeout:  getDurationOrDefault("SERVER_IDLE_TIMEOUT", 60*time.Second),
	}

	sessionHours, err := strconv.Atoi(getEnvOrDefault("SESSION_DURATION_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_DURATION_HOURS: %w", err)
	}

	maxSessions, err := strconv.Atoi(getEnvOrDefault("SESSION_MAX_COUNT", "10000"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_MAX_COUNT: %w", err)
	}

	cfg.Security = SecurityConfig{
		CSRFSecret:        os.Getenv("CSRF_SECRET"),
		TrustedOrigins:    strings.Fields(getEnvOrDefault("CSRF_TRUSTED_ORIGINS", "")),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		SessionCookieName: getEnvOrDefault("SESSION_COOKIE_NAME", "linguist_session"),
		SessionDuration:   time.Duration(sessionHours) * time.Hour,
		MaxSessions:       maxSessions,
		SecureCookies:     cfg.IsProduction(),
	}

	// A missing key is not an error here. It surfaces as an authentication
	// error from the service on the first analysis.
	cfg.APIs = APIConfig{
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnvOrDefault("GEMINI_MODEL", "gemini-3-pro-preview"),
		GeminiBaseURL: getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiTimeout: getDurationOrDefault("GEMINI_TIMEOUT", 60*time.Second),
	}

	cfg.Logging = LoggingConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Format: getEnvOrDefault("LOG_FORMAT", "text"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks the settings every entry point needs.
func (c *Config) validate() error {
	var errs []error

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.Server.Environment] {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of: development, staging, production (got: %s)", c.Server.Environment))
	}

	if c.Security.SessionDuration <= 0 {
		errs = append(errs, errors.New("SESSION_DURATION_HOURS must be positive"))
	}

	if c.Security.MaxSessions <= 0 {
		errs = append(errs, errors.New("SESSION_MAX_COUNT must be positive"))
	}

	if strings.TrimSpace(c.APIs.GeminiModel) == "" {
		errs = append(errs, errors.New("GEMINI_MODEL must not be empty"))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json (got: %s)", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%w", errors.Join(errs...))
	}
	return nil
}

// ValidateServer checks the extra settings the web front-end needs.
func (c *Config) ValidateServer() error {
	var errs []error

	if c.Security.CSRFSecret == "" {
		errs = append(errs, errors.New("CSRF_SECRET is required"))
	} else if len(c.Security.CSRFSecret) < 32 {
		errs = append(errs, errors.New("CSRF_SECRET must be at least 32 characters"))
	}

	if c.Security.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	} else if len(c.Security.SessionSecret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 characters"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("server configuration validation failed:\n%w", errors.Join(errs...))
	}
	return nil
}

// FileConfig is the YAML overlay accepted by LoadFile. Empty values keep
// whatever the environment provided.
type FileConfig struct {
	Gemini struct {
		APIKey         string `yaml:"api_key"`
		Model          string `yaml:"model"`
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"gemini"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// LoadFile loads the environment config and then applies the YAML file at path.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.UnmarshalStrict(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.apply(fc)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) apply(fc FileConfig) {
	if fc.Gemini.APIKey != "" {
		c.APIs.GeminiAPIKey = fc.Gemini.APIKey
	}
	if fc.Gemini.Model != "" {
		c.APIs.GeminiModel = fc.Gemini.Model
	}
	if fc.Gemini.BaseURL != "" {
		c.APIs.GeminiBaseURL = fc.Gemini.BaseURL
	}
	if fc.Gemini.TimeoutSeconds > 0 {
		c.APIs.GeminiTimeout = time.Duration(fc.Gemini.TimeoutSeconds) * time.Second
	}
	if fc.Logging.Level != "" {
		c.Logging.Level = fc.Logging.Level
	}
	if fc.Logging.Format != "" {
		c.Logging.Format = fc.Logging.Format
	}
}

// getEnvOrDefault returns the .env value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			log.Printf("Warning: Invalid duration for %s: %v, using default", key, err)
			return defaultValue
		}
		return duration
	}
	return defaultValue
}
