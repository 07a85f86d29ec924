package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfabbri/lexanno/internal/model"
)

// newBackendCommand builds a throwaway command carrying the shared backend
// flags, the way group/categorize/annotate register them.
func newBackendCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test", Run: func(*cobra.Command, []string) {}}
	addBackendFlags(cmd)
	return cmd
}

// writeConfigFile writes a config file and points initConfig at it
func writeConfigFile(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	cfgFile = path
	t.Cleanup(func() { cfgFile = "" })
	initConfig()
}

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestBuildConfig_FileValuesReachConfig(t *testing.T) {
	resetViper(t)
	t.Setenv("OPENAI_API_KEY", "test-key")
	writeConfigFile(t, `backend:
  model: gpt-4o
  max_retries: 5
  timeout: 30s
cache:
  enabled: false
prompt:
  max_group_size: 5
concurrency:
  provider_rates:
    openai: 0.5
`)

	cfg, err := buildConfig(newBackendCommand())
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if cfg.Backend.Model != "gpt-4o" {
		t.Errorf("Model = %q, want file value gpt-4o", cfg.Backend.Model)
	}
	if cfg.Backend.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.Backend.MaxRetries)
	}
	if cfg.Backend.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Backend.Timeout)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled = true, want false from file")
	}
	if cfg.Prompt.MaxGroupSize != 5 {
		t.Errorf("MaxGroupSize = %d, want 5", cfg.Prompt.MaxGroupSize)
	}
	if got := cfg.Concurrency.ProviderRates["openai"]; got != 0.5 {
		t.Errorf("ProviderRates[openai] = %v, want 0.5", got)
	}
}

func TestBuildConfig_FlagsOverrideFile(t *testing.T) {
	resetViper(t)
	t.Setenv("OPENAI_API_KEY", "test-key")
	writeConfigFile(t, `backend:
  provider: ollama
  model: gpt-4o
`)

	cmd := newBackendCommand()
	if err := cmd.Flags().Set("model", "gpt-4.1"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if err := cmd.Flags().Set("provider", "openai"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if cfg.Backend.Model != "gpt-4.1" {
		t.Errorf("Model = %q, want flag value gpt-4.1", cfg.Backend.Model)
	}
	if cfg.Backend.Provider != "openai" {
		t.Errorf("Provider = %q, want flag value openai", cfg.Backend.Provider)
	}
}

func TestBuildConfig_EnvOverridesFile(t *testing.T) {
	resetViper(t)
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("LEXANNO_BACKEND_MODEL", "env-model")
	writeConfigFile(t, `backend:
  model: gpt-4o
`)

	cfg, err := buildConfig(newBackendCommand())
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if cfg.Backend.Model != "env-model" {
		t.Errorf("Model = %q, want env value env-model", cfg.Backend.Model)
	}
}

func TestBuildConfig_DefaultsWithoutFile(t *testing.T) {
	resetViper(t)
	t.Setenv("OPENAI_API_KEY", "test-key")

	cfg, err := buildConfig(newBackendCommand())
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	def := model.DefaultConfig()
	if cfg.Backend.Provider != def.Backend.Provider {
		t.Errorf("Provider = %q, want default %q", cfg.Backend.Provider, def.Backend.Provider)
	}
	if cfg.Backend.Model != def.Backend.Model {
		t.Errorf("Model = %q, want default %q", cfg.Backend.Model, def.Backend.Model)
	}
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled = false, want default true")
	}
	if cfg.Cache.TTL != def.Cache.TTL {
		t.Errorf("Cache.TTL = %v, want default %v", cfg.Cache.TTL, def.Cache.TTL)
	}
}

func TestBuildConfig_NoCacheFlagBeatsFile(t *testing.T) {
	resetViper(t)
	t.Setenv("OPENAI_API_KEY", "test-key")
	writeConfigFile(t, `cache:
  enabled: true
`)

	cmd := newBackendCommand()
	if err := cmd.Flags().Set("no-cache", "true"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled = true, want --no-cache to win")
	}
}

func TestBuildConfig_MissingCredential(t *testing.T) {
	resetViper(t)
	t.Setenv("OPENAI_API_KEY", "")

	_, err := buildConfig(newBackendCommand())
	if !errors.Is(err, model.ErrMissingCredential) {
		t.Errorf("err = %v, want ErrMissingCredential", err)
	}
}

func TestDeriveOutputs(t *testing.T) {
	xml, json := deriveOutputs("case.xml", "", "", "grouped")
	if xml != "case_grouped.xml" || json != "case_grouped.json" {
		t.Errorf("derived %q, %q", xml, json)
	}

	xml, json = deriveOutputs("case.xml", "out.xml", "", "annotated")
	if xml != "out.xml" || json != "case_annotated.json" {
		t.Errorf("derived %q, %q", xml, json)
	}
}
