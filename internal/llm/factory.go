package llm

import (
	"fmt"
	"strings"

	"github.com/mfabbri/lexanno/internal/model"
)

// NewProvider creates a completion provider based on configuration. Unlike
// optional-LLM tools, the backend is mandatory here: an empty provider name
// is an error.
func NewProvider(config model.BackendConfig) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, fmt.Errorf("no backend provider configured (supported: openai, anthropic, ollama)")

	default:
		return nil, fmt.Errorf("unknown backend provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}
