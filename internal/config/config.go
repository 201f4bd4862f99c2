package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	ProviderCohere    = "cohere"
	ProviderAnthropic = "anthropic"

	defaultCohereModel    = "command-a-03-2025"
	defaultAnthropicModel = "claude-haiku-4-5"
	defaultEmbedModel     = "embed-v4.0"
	defaultEmbedDim       = 1024
	defaultCacheTTL       = "24h"
	defaultToastDuration  = "5s"
	defaultLogLevel       = "info"
)

type Config struct {
	Provider        string `json:"provider" env:"COLLOC_PROVIDER"`
	CohereAPIKey    string `json:"cohere_api_key" env:"COLLOC_COHERE_API_KEY"`
	AnthropicAPIKey string `json:"anthropic_api_key" env:"COLLOC_ANTHROPIC_API_KEY"`
	ChatModel       string `json:"chat_model" env:"COLLOC_CHAT_MODEL"`
	EmbedModel      string `json:"embed_model" env:"COLLOC_EMBED_MODEL"`
	EmbedDim        int    `json:"embed_dim" env:"COLLOC_EMBED_DIM"`
	CacheTTL        string `json:"cache_ttl" env:"COLLOC_CACHE_TTL"`
	ToastDuration   string `json:"toast_duration" env:"COLLOC_TOAST_DURATION"`
	LogLevel        string `json:"log_level" env:"COLLOC_LOG_LEVEL"`
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "colloc"), nil
}

// DefaultPath is the config file used when no --config flag is given.
func DefaultPath() string {
	dir, err := ConfigDir()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(dir, "config.json")
}

func DBPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "colloc.db"), nil
}

func LogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "colloc.log"), nil
}

// Load reads the JSON config at path and then applies COLLOC_* environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	var cfg Config

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("config: %w", err)
	default:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderCohere
	}
	if c.ChatModel == "" {
		c.ChatModel = DefaultChatModel(c.Provider)
	}
	if c.EmbedModel == "" {
		c.EmbedModel = defaultEmbedModel
	}
	if c.EmbedDim == 0 {
		c.EmbedDim = defaultEmbedDim
	}
	if c.CacheTTL == "" {
		c.CacheTTL = defaultCacheTTL
	}
	if c.ToastDuration == "" {
		c.ToastDuration = defaultToastDuration
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
}

func DefaultChatModel(provider string) string {
	if provider == ProviderAnthropic {
		return defaultAnthropicModel
	}
	return defaultCohereModel
}

// APIKey returns the key of the selected provider.
func (c *Config) APIKey() string {
	if c.Provider == ProviderAnthropic {
		return c.AnthropicAPIKey
	}
	return c.CohereAPIKey
}

// SetAPIKey stores key for the selected provider.
func (c *Config) SetAPIKey(key string) {
	if c.Provider == ProviderAnthropic {
		c.AnthropicAPIKey = key
		return
	}
	c.CohereAPIKey = key
}

// Embeddings reports whether related-word embeddings are available. Only the
// Cohere provider serves embeddings.
func (c *Config) Embeddings() bool {
	return c.CohereAPIKey != "" && c.EmbedDim > 0
}

func (c *Config) CacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

func (c *Config) ToastDurationValue() time.Duration {
	d, err := time.ParseDuration(c.ToastDuration)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(defaultToastDuration)
	}
	return d
}

// Validate checks that the config can be used for lookups.
func (c *Config) Validate() error {
	var errs []error

	switch c.Provider {
	case ProviderCohere, ProviderAnthropic:
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q (want %q or %q)", c.Provider, ProviderCohere, ProviderAnthropic))
	}

	if c.APIKey() == "" {
		errs = append(errs, fmt.Errorf("missing API key for provider %q", c.Provider))
	}
	if c.EmbedDim < 0 {
		errs = append(errs, fmt.Errorf("embed_dim must not be negative"))
	}
	if _, err := time.ParseDuration(c.CacheTTL); err != nil {
		errs = append(errs, fmt.Errorf("cache_ttl: %w", err))
	}
	if _, err := time.ParseDuration(c.ToastDuration); err != nil {
		errs = append(errs, fmt.Errorf("toast_duration: %w", err))
	}

	return errors.Join(errs...)
}

func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	data = append(data, '\n')
	return os.WriteFile(path, data, 0600)
}
