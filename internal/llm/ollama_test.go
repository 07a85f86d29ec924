package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mfabbri/lexanno/internal/model"
)

func TestOllamaProvider_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}

		var apiReq ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&apiReq); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if apiReq.Stream {
			t.Error("Streaming must be disabled")
		}
		if apiReq.Model != "llama3.2" {
			t.Errorf("Unexpected model: %s", apiReq.Model)
		}

		resp := ollamaResponse{
			Model:           "llama3.2",
			Response:        `{"groups":[]}`,
			Done:            true,
			PromptEvalCount: 30,
			EvalCount:       20,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(model.BackendConfig{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		System: "s",
		User:   "u",
		Model:  "llama3.2",
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Text != `{"groups":[]}` {
		t.Errorf("Unexpected text: %s", resp.Text)
	}
	if resp.TokensUsed != 50 {
		t.Errorf("Expected 50 tokens used, got %d", resp.TokensUsed)
	}
}

func TestOllamaProvider_Complete_RequiresModel(t *testing.T) {
	provider, err := NewOllamaProvider(model.BackendConfig{BaseURL: "http://localhost:1"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Complete(context.Background(), CompletionRequest{System: "s", User: "u"})
	if err == nil {
		t.Fatal("Expected error for missing model name")
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("Expected path /api/tags, got %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(model.BackendConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be available")
	}

	server.Close()
	if provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be unavailable after server shutdown")
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   model.BackendConfig
		wantName string
		wantErr  bool
	}{
		{
			name:     "openai",
			config:   model.BackendConfig{Provider: "openai", APIKey: "k"},
			wantName: "openai",
		},
		{
			name:     "anthropic",
			config:   model.BackendConfig{Provider: "anthropic", APIKey: "k"},
			wantName: "anthropic",
		},
		{
			name:     "claude alias",
			config:   model.BackendConfig{Provider: "claude", APIKey: "k"},
			wantName: "anthropic",
		},
		{
			name:     "ollama",
			config:   model.BackendConfig{Provider: "ollama"},
			wantName: "ollama",
		},
		{
			name:     "case insensitive",
			config:   model.BackendConfig{Provider: "OpenAI", APIKey: "k"},
			wantName: "openai",
		},
		{
			name:    "empty",
			config:  model.BackendConfig{},
			wantErr: true,
		},
		{
			name:    "unknown",
			config:  model.BackendConfig{Provider: "bard"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider failed: %v", err)
			}
			if provider.Name() != tt.wantName {
				t.Errorf("Expected name %s, got %s", tt.wantName, provider.Name())
			}
		})
	}
}
