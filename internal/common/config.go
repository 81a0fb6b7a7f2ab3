// Package common provides shared configuration, logging and utilities
// across the application.
package common

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/ternarybob/augur/internal/interfaces"
)

// Config represents the application configuration.
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Logging     LoggingConfig   `toml:"logging"`
	Storage     StorageConfig   `toml:"storage"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	LLM         LLMConfig       `toml:"llm"`
	Portfolio   PortfolioConfig `toml:"portfolio"`
	Watchlist   WatchlistConfig `toml:"watchlist"`
	Markets     MarketsConfig   `toml:"markets"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=debug info warn error"`
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration.
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

// GeminiConfig contains Google Gemini API configuration.
type GeminiConfig struct {
	APIKey         string  `toml:"api_key"`         // Gemini API key (env/KV store take precedence)
	Model          string  `toml:"model"`           // Default model (default: "gemini-3-flash-preview")
	Timeout        string  `toml:"timeout"`         // Operation timeout as duration string (default: "2m")
	RateLimit      string  `toml:"rate_limit"`      // Minimum interval between calls (default: "4s" for 15 RPM)
	Temperature    float32 `toml:"temperature"`     // Default completion temperature
	ThinkingBudget int     `toml:"thinking_budget"` // Thinking-token budget for model variants that support it (0 = provider default)
}

// ClaudeConfig contains Anthropic Claude API configuration.
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`      // Default model (default: "claude-haiku-3-5-20241022")
	MaxTokens   int     `toml:"max_tokens"` // Maximum tokens in response (default: 8192)
	Timeout     string  `toml:"timeout"`
	RateLimit   string  `toml:"rate_limit"`
	Temperature float32 `toml:"temperature"`
}

// LLMProvider represents the AI provider type.
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for all AI providers.
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider" validate:"oneof=gemini claude"`
}

// PortfolioConfig controls the scheduled portfolio quote refresh.
type PortfolioConfig struct {
	RefreshSchedule    string `toml:"refresh_schedule"`    // Cron schedule (empty = disabled)
	RefreshConcurrency int    `toml:"refresh_concurrency"` // Max in-flight quote calls during a refresh
}

// WatchlistConfig locates the YAML watchlist file.
type WatchlistConfig struct {
	Path string `toml:"path"` // Watchlist file (default: "watchlist.yaml")
}

// MarketsConfig contains exchange defaults for ticker parsing.
type MarketsConfig struct {
	DefaultExchange string `toml:"default_exchange"` // Exchange assumed for bare ticker codes (default: "ASX")
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings are exposed in augur.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Gemini: GeminiConfig{
			APIKey:         "",
			Model:          "gemini-3-flash-preview",
			Timeout:        "2m",
			RateLimit:      "4s", // 15 RPM free tier
			Temperature:    0.7,
			ThinkingBudget: 0,
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   8192,
			Timeout:     "2m",
			RateLimit:   "1s",
			Temperature: 0.7,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
		Portfolio: PortfolioConfig{
			RefreshSchedule:    "", // Disabled until the user opts in
			RefreshConcurrency: 4,
		},
		Watchlist: WatchlistConfig{
			Path: "watchlist.yaml",
		},
		Markets: MarketsConfig{
			DefaultExchange: "ASX",
		},
	}
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files; later files
// override earlier files, environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks structural constraints on the configuration.
func Validate(config *Config) error {
	v := validator.New()
	if err := v.Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyEnvOverrides applies recognized environment variables on top of the
// file-derived configuration.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("AUGUR_GEMINI_API_KEY"); v != "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("AUGUR_CLAUDE_API_KEY"); v != "" {
		config.Claude.APIKey = v
	}
	if v := os.Getenv("AUGUR_BADGER_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("AUGUR_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

// ApplyFlagOverrides applies command-line flag values (highest priority).
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ResolveAPIKey resolves an API key with priority: environment variable ->
// KV store -> config fallback. kvStorage can be nil (lookup skipped).
func ResolveAPIKey(ctx context.Context, kvStorage interfaces.KeyValueStorage, name string, configFallback string) (string, error) {
	keyToEnv := map[string][]string{
		"gemini_api_key":    {"AUGUR_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"anthropic_api_key": {"AUGUR_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
	}

	if envNames, ok := keyToEnv[name]; ok {
		for _, envName := range envNames {
			if v := os.Getenv(envName); v != "" {
				return v, nil
			}
		}
	}

	if kvStorage != nil {
		if apiKey, err := kvStorage.Get(ctx, name); err == nil && apiKey != "" {
			return apiKey, nil
		}
	}

	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("no value found for %s (checked environment, variable store, config)", name)
}
