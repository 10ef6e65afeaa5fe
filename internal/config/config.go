package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dfryer1193/memento/memento/domain"
	"github.com/dfryer1193/memento/memento/persistence"
	"github.com/dfryer1193/memento/shared/db/sqlite"
	"github.com/dfryer1193/memento/shared/llm"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort     = 8080
	DefaultLogLevel = "info"

	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Provider ProviderConfig `yaml:"provider"`
	Log      LogConfig      `yaml:"log"`
	// Schedule is a cron expression evaluated in US Eastern time. Empty disables scheduled generation.
	Schedule string `yaml:"schedule"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type ProviderConfig struct {
	APIKey      string  `yaml:"apiKey"`
	BaseURL     string  `yaml:"baseUrl"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"maxTokens"`
	Temperature float64 `yaml:"temperature"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: DefaultPort},
		Storage: StorageConfig{
			Driver: DriverJSON,
		},
		Provider: ProviderConfig{
			Model:       llm.DefaultModel,
			MaxTokens:   llm.DefaultMaxTokens,
			Temperature: llm.DefaultTemperature,
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped when path is empty)
// and environment overrides, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	setString(&c.Provider.APIKey, "OPENAI_API_KEY")
	setString(&c.Provider.BaseURL, "OPENAI_BASE_URL")
	setString(&c.Provider.Model, "OPENAI_MODEL")
	setString(&c.Storage.Path, "STORAGE_PATH")
	setString(&c.Storage.Driver, "STORAGE_DRIVER")
	setString(&c.Schedule, "MEMENTO_SCHEDULE")
	setString(&c.Log.Level, "MEMENTO_LOG_LEVEL")

	if v := getenv("MEMENTO_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MEMENTO_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}

	return nil
}

// Validate checks settings that have a fixed set of valid values
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverJSON, DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// StoragePath returns the configured storage location or the driver's default
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	if c.Storage.Driver == DriverSQLite {
		return sqlite.DefaultPath
	}
	return persistence.DefaultJSONPath
}

// RequireAPIKey reports a *domain.ConfigurationError when no provider credential is set
func (c *Config) RequireAPIKey() error {
	if c.Provider.APIKey == "" {
		return &domain.ConfigurationError{Setting: "OPENAI_API_KEY"}
	}
	return nil
}

// LLMConfig converts the provider settings for the llm package
func (c *Config) LLMConfig() llm.Config {
	return llm.Config{
		APIKey:      c.Provider.APIKey,
		BaseURL:     c.Provider.BaseURL,
		Model:       c.Provider.Model,
		MaxTokens:   c.Provider.MaxTokens,
		Temperature: c.Provider.Temperature,
	}
}
