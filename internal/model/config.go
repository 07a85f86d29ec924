package model

import "time"

// Config holds the complete configuration for a pipeline run. Every
// invocation builds its own Config; nothing is shared between runs.
type Config struct {
	Backend     BackendConfig     `yaml:"backend"`
	Prompt      PromptConfig      `yaml:"prompt"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// BackendConfig configures the text-completion backend
type BackendConfig struct {
	Provider    string        `yaml:"provider"`    // openai, anthropic, ollama
	Model       string        `yaml:"model"`       // provider-specific model name
	APIKey      string        `yaml:"-"`           // never serialized; from env
	BaseURL     string        `yaml:"base_url"`    // custom endpoint (e.g. Ollama)
	Timeout     time.Duration `yaml:"timeout"`     // per-request timeout
	MaxRetries  int           `yaml:"max_retries"` // idempotent resends before giving up
	RetryDelay  time.Duration `yaml:"retry_delay"` // fixed delay between retries
	Temperature float32       `yaml:"temperature"` // sampling temperature
	MaxTokens   int           `yaml:"max_tokens"`  // caps prompt plus response size
}

// PromptConfig configures prompt construction
type PromptConfig struct {
	MaxGroupSize int `yaml:"max_group_size"` // sentences per group the backend may form
}

// CacheConfig configures completion-response caching
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir"`
	TTL     time.Duration `yaml:"ttl"`
}

// ConcurrencyConfig configures batch processing
type ConcurrencyConfig struct {
	Workers           int     `yaml:"workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
	// ProviderRates overrides the shared rate for named providers,
	// e.g. a lower ceiling for openai than for a local ollama
	ProviderRates map[string]float64 `yaml:"provider_rates,omitempty"`
}

// OutputConfig configures output rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns sensible defaults matching the reference dataset runs
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Timeout:     60 * time.Second,
			MaxRetries:  2,
			RetryDelay:  time.Second,
			Temperature: 0.2,
			MaxTokens:   2000,
		},
		Prompt: PromptConfig{
			MaxGroupSize: 8,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "",
			TTL:     24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers:           4,
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		Output: OutputConfig{
			Verbose: false,
		},
	}
}
