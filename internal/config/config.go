package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the top-level application configuration.
type Config struct {
	Provider   ProviderConfig   `toml:"provider"`
	Generation GenerationConfig `toml:"generation"`
	Output     OutputConfig     `toml:"output"`
	Scan       ScanConfig       `toml:"scan"`
}

// ProviderConfig holds settings for AI provider selection and configuration.
type ProviderConfig struct {
	Default   string                   `toml:"default"`
	Model     string                   `toml:"model"`
	MaxTokens int                      `toml:"max_tokens"`
	Anthropic AnthropicProviderConfig  `toml:"anthropic"`
	OpenAI    []OpenAICompatibleConfig `toml:"openai_compatible"`
}

// AnthropicProviderConfig holds Anthropic-specific provider settings.
type AnthropicProviderConfig struct {
	BaseURL      string `toml:"base_url"`
	APIKeySource string `toml:"api_key_source"`
	APIKey       string `toml:"api_key"`
}

// OpenAICompatibleConfig holds settings for an OpenAI-compatible provider.
type OpenAICompatibleConfig struct {
	Name         string            `toml:"name"`
	BaseURL      string            `toml:"base_url"`
	APIKeySource string            `toml:"api_key_source"`
	APIKey       string            `toml:"api_key"`
	ExtraHeaders map[string]string `toml:"extra_headers"`
}

// GenerationConfig tunes how documents are requested from the provider.
type GenerationConfig struct {
	Cooldown       Duration `toml:"cooldown"`
	MaxAttempts    int      `toml:"max_attempts"`
	BaseDelay      Duration `toml:"base_delay"`
	MaxDelay       Duration `toml:"max_delay"`
	RequestTimeout Duration `toml:"request_timeout"`
	TruncateBudget int      `toml:"truncate_budget"`
	FallbackBudget int      `toml:"fallback_budget"`
	MinGroupLength int      `toml:"min_group_length"`
	MinFileLength  int      `toml:"min_file_length"`
	// Mode is "group" (one document per feature) or "file".
	Mode string `toml:"mode"`
}

// OutputConfig controls where documents are written.
type OutputConfig struct {
	Dir string `toml:"dir"`
	// DB is an optional sqlite file for the durable cache and job snapshots.
	DB string `toml:"db"`
}

// ScanConfig controls which files are read from the source tree.
type ScanConfig struct {
	SkipDirs     []string `toml:"skip_dirs"`
	MaxFileBytes int64    `toml:"max_file_bytes"`
}

// Duration is a time.Duration that decodes from TOML strings like "1s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultConfig returns a Config populated with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Default:   "anthropic",
			Model:     "claude-sonnet-4-5",
			MaxTokens: 4096,
			Anthropic: AnthropicProviderConfig{
				APIKeySource: "env",
			},
		},
		Generation: GenerationConfig{
			Cooldown:       Duration{time.Second},
			MaxAttempts:    3,
			BaseDelay:      Duration{2 * time.Second},
			MaxDelay:       Duration{30 * time.Second},
			RequestTimeout: Duration{60 * time.Second},
			TruncateBudget: 30000,
			FallbackBudget: 60000,
			MinGroupLength: 200,
			MinFileLength:  500,
			Mode:           "group",
		},
		Output: OutputConfig{
			Dir: "docs",
		},
		Scan: ScanConfig{
			SkipDirs:     []string{"node_modules", ".git", "vendor", "dist", "build", "coverage", ".next", "__pycache__"},
			MaxFileBytes: 1 << 20,
		},
	}
}

// DefaultPath returns ~/.config/docsynth/config.toml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "docsynth", "config.toml")
}

// Load reads the TOML file at path over DefaultConfig. A missing file is not
// an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	g := c.Generation
	switch {
	case g.Mode != "group" && g.Mode != "file":
		return fmt.Errorf("generation.mode must be \"group\" or \"file\", got %q", g.Mode)
	case g.MaxAttempts < 1:
		return fmt.Errorf("generation.max_attempts must be at least 1")
	case g.TruncateBudget <= 0 || g.FallbackBudget <= 0:
		return fmt.Errorf("generation budgets must be positive")
	case g.MaxDelay.Duration < g.BaseDelay.Duration:
		return fmt.Errorf("generation.max_delay must not be below base_delay")
	}
	return nil
}
