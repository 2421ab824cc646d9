package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/fpt/klein-relay/pkg/client/anthropic"
	"github.com/fpt/klein-relay/pkg/client/gemini"
	"github.com/fpt/klein-relay/pkg/client/ollama"
	"github.com/fpt/klein-relay/pkg/client/openai"
	"github.com/fpt/klein-relay/pkg/domain"
)

// Settings selects and tunes a completion backend.
type Settings struct {
	Backend   string `json:"backend" yaml:"backend"`                           // "openai", "anthropic", "gemini" or "ollama"
	Model     string `json:"model" yaml:"model"`                               // empty = backend default
	MaxTokens int    `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"` // 0 = model default
}

// APIKeyEnv returns the environment variable holding the backend's API key,
// or "" when the backend needs none.
func APIKeyEnv(backend string) string {
	switch normalizeBackend(backend) {
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// NewLLMClient creates a completion backend based on settings.
func NewLLMClient(ctx context.Context, settings Settings) (domain.LLM, error) {
	switch normalizeBackend(settings.Backend) {
	case "openai":
		return openai.NewOpenAIClient(settings.Model, settings.MaxTokens)
	case "anthropic":
		return anthropic.NewAnthropicClient(settings.Model, settings.MaxTokens)
	case "gemini":
		return gemini.NewGeminiClient(ctx, settings.Model, settings.MaxTokens)
	case "ollama":
		return ollama.NewOllamaClient(settings.Model, settings.MaxTokens)
	default:
		return nil, fmt.Errorf("unsupported backend %q (expected openai, anthropic, gemini or ollama)", settings.Backend)
	}
}

func normalizeBackend(backend string) string {
	switch b := strings.ToLower(strings.TrimSpace(backend)); b {
	case "", "openai", "gpt":
		return "openai"
	case "claude":
		return "anthropic"
	case "google":
		return "gemini"
	default:
		return b
	}
}
