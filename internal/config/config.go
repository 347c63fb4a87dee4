// Package config loads the RMA intake configuration from .rma/config.yaml,
// an optional .env file and environment variables, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// Dir is the per-workspace directory holding config and logs.
	Dir = ".rma"
	// FileName is the config file inside Dir.
	FileName = "config.yaml"

	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = "30s"
)

// Config holds all RMA intake configuration.
type Config struct {
	// Classification assistant
	Assistant AssistantConfig `yaml:"assistant"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// AssistantConfig configures the Gemini classification call.
type AssistantConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url,omitempty"`
	Timeout string `yaml:"timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Assistant: AssistantConfig{
			Model:   DefaultModel,
			Timeout: DefaultTimeout,
		},
		UI: *DefaultUIConfig(),
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	return filepath.Join(workspace, Dir, FileName)
}

// LoadDotEnv loads <workspace>/.env if present. Variables already set in the
// process environment win.
func LoadDotEnv(workspace string) error {
	path := filepath.Join(workspace, ".env")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat .env: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load loads configuration from a YAML file. A missing file yields defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// API key, lowest to highest priority
	for _, name := range []string{"API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY"} {
		if key := os.Getenv(name); key != "" {
			c.Assistant.APIKey = key
		}
	}

	if model := os.Getenv("RMA_MODEL"); model != "" {
		c.Assistant.Model = model
	}
	if timeout := os.Getenv("RMA_TIMEOUT"); timeout != "" {
		c.Assistant.Timeout = timeout
	}
	if url := os.Getenv("RMA_BASE_URL"); url != "" {
		c.Assistant.BaseURL = url
	}
	if theme := os.Getenv("RMA_THEME"); theme != "" {
		c.UI.Theme = strings.ToLower(theme)
	}
}

// GetAssistantTimeout returns the classification timeout as a duration.
func (c *Config) GetAssistantTimeout() time.Duration {
	d, err := time.ParseDuration(c.Assistant.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetModel returns the model name, falling back to DefaultModel.
func (c *Config) GetModel() string {
	if strings.TrimSpace(c.Assistant.Model) == "" {
		return DefaultModel
	}
	return c.Assistant.Model
}

// HasAPIKey reports whether the assistant can be enabled.
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.Assistant.APIKey) != ""
}

// Redacted returns a copy safe to print: the API key is masked.
func (c *Config) Redacted() *Config {
	cp := *c
	cp.Assistant.APIKey = MaskKey(c.Assistant.APIKey)
	if c.Logging.Categories != nil {
		cp.Logging.Categories = make(map[string]bool, len(c.Logging.Categories))
		for k, v := range c.Logging.Categories {
			cp.Logging.Categories[k] = v
		}
	}
	return &cp
}

// MaskKey keeps the last four characters of a key.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
