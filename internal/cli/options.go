package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfabbri/lexanno/internal/model"
)

// Flags shared by the group, categorize, annotate, and batch commands
var (
	providerName string
	modelName    string
	maxTokens    int
	temperature  float32
	timeout      time.Duration
	maxRetries   int
	noCache      bool
	cacheDir     string
	maxGroupSize int
)

// flagBindings maps config keys to the flag names that override them. Flags
// are bound per invocation so the executing command's flag instances win;
// a command without a given flag simply leaves that key to env/file/defaults.
var flagBindings = map[string]string{
	"backend.provider":                "provider",
	"backend.model":                   "model",
	"backend.max_tokens":              "max-tokens",
	"backend.temperature":             "temperature",
	"backend.timeout":                 "timeout",
	"backend.max_retries":             "max-retries",
	"cache.dir":                       "cache-dir",
	"prompt.max_group_size":           "max-group-size",
	"concurrency.workers":             "concurrency",
	"concurrency.requests_per_second": "rate",
	"concurrency.burst_size":          "burst",
}

// addBackendFlags registers the backend and cache flags on a command
func addBackendFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&providerName, "provider", "openai", "backend provider (openai, anthropic, ollama)")
	cmd.Flags().StringVar(&modelName, "model", "gpt-4o-mini", "backend model name")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 2000, "token budget for prompt and response (0 for no cap)")
	cmd.Flags().Float32Var(&temperature, "temperature", 0.2, "sampling temperature")
	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "per-request backend timeout")
	cmd.Flags().IntVar(&maxRetries, "max-retries", 2, "idempotent resends before reporting the backend unavailable")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the completion cache (force fresh backend calls)")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "completion cache directory (default: ~/.lexanno/cache)")
	cmd.Flags().IntVar(&maxGroupSize, "max-group-size", 8, "maximum sentences the backend may place in one group")
}

// resolveConfig assembles the run configuration through the documented
// hierarchy: flags > LEXANNO_* environment > config file > defaults.
func resolveConfig(cmd *cobra.Command) *model.Config {
	cfg := model.DefaultConfig()
	setConfigDefaults(cfg)

	for key, name := range flagBindings {
		if f := cmd.Flags().Lookup(name); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}

	cfg.Backend.Provider = viper.GetString("backend.provider")
	cfg.Backend.Model = viper.GetString("backend.model")
	cfg.Backend.BaseURL = viper.GetString("backend.base_url")
	cfg.Backend.MaxTokens = viper.GetInt("backend.max_tokens")
	cfg.Backend.Temperature = float32(viper.GetFloat64("backend.temperature"))
	cfg.Backend.Timeout = viper.GetDuration("backend.timeout")
	cfg.Backend.MaxRetries = viper.GetInt("backend.max_retries")
	cfg.Backend.RetryDelay = viper.GetDuration("backend.retry_delay")
	cfg.Prompt.MaxGroupSize = viper.GetInt("prompt.max_group_size")
	cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	cfg.Cache.Dir = viper.GetString("cache.dir")
	cfg.Cache.TTL = viper.GetDuration("cache.ttl")
	cfg.Output.Verbose = verbose

	// The concurrency keys keep the batch flag defaults when nothing else
	// sets them; zero values never clobber the built-in defaults.
	if workers := viper.GetInt("concurrency.workers"); workers > 0 {
		cfg.Concurrency.Workers = workers
	}
	if rps := viper.GetFloat64("concurrency.requests_per_second"); rps > 0 {
		cfg.Concurrency.RequestsPerSecond = rps
	}
	if burst := viper.GetInt("concurrency.burst_size"); burst > 0 {
		cfg.Concurrency.BurstSize = burst
	}
	cfg.Concurrency.ProviderRates = providerRates()

	if noCache {
		cfg.Cache.Enabled = false
	}

	return cfg
}

// setConfigDefaults seeds viper with the built-in defaults so file and env
// lookups fall through to them
func setConfigDefaults(cfg *model.Config) {
	viper.SetDefault("backend.provider", cfg.Backend.Provider)
	viper.SetDefault("backend.model", cfg.Backend.Model)
	viper.SetDefault("backend.max_tokens", cfg.Backend.MaxTokens)
	viper.SetDefault("backend.temperature", cfg.Backend.Temperature)
	viper.SetDefault("backend.timeout", cfg.Backend.Timeout)
	viper.SetDefault("backend.max_retries", cfg.Backend.MaxRetries)
	viper.SetDefault("backend.retry_delay", cfg.Backend.RetryDelay)
	viper.SetDefault("prompt.max_group_size", cfg.Prompt.MaxGroupSize)
	viper.SetDefault("cache.enabled", cfg.Cache.Enabled)
	viper.SetDefault("cache.ttl", cfg.Cache.TTL)
}

// providerRates reads per-provider request-rate overrides from the
// concurrency section of the config file
func providerRates() map[string]float64 {
	raw := viper.GetStringMap("concurrency.provider_rates")
	if len(raw) == 0 {
		return nil
	}
	rates := make(map[string]float64, len(raw))
	for name, v := range raw {
		switch n := v.(type) {
		case float64:
			rates[name] = n
		case int:
			rates[name] = float64(n)
		}
	}
	return rates
}

// buildConfig resolves the run configuration and fails fast when the
// selected provider's API key is absent
func buildConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg := resolveConfig(cmd)

	switch cfg.Backend.Provider {
	case "openai":
		cfg.Backend.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Backend.APIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY environment variable not set", model.ErrMissingCredential)
		}
	case "anthropic", "claude":
		cfg.Backend.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.Backend.APIKey == "" {
			return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY environment variable not set", model.ErrMissingCredential)
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.Backend.BaseURL = baseURL
		}
	}

	return cfg, nil
}

// deriveOutputs computes default output paths next to the input when the
// flags were left empty
func deriveOutputs(inPath, outXML, outJSON, suffix string) (string, string) {
	base := strings.TrimSuffix(inPath, ".xml")
	if outXML == "" {
		outXML = base + "_" + suffix + ".xml"
	}
	if outJSON == "" {
		outJSON = base + "_" + suffix + ".json"
	}
	return outXML, outJSON
}
