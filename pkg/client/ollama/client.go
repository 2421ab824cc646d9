package ollama

import (
	"context"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/pkg/errors"

	"github.com/fpt/klein-relay/pkg/domain"
)

const (
	defaultModel     = "gpt-oss:latest"
	defaultMaxTokens = 1024
)

// OllamaClient implements domain.LLM against a local or remote Ollama server.
type OllamaClient struct {
	client    *api.Client
	model     string
	maxTokens int
}

// NewOllamaClient creates a client from OLLAMA_HOST (default localhost:11434).
func NewOllamaClient(model string, maxTokens int) (*OllamaClient, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Ollama client")
	}
	return NewOllamaClientWithAPI(client, model, maxTokens), nil
}

// NewOllamaClientWithAPI wraps an existing api.Client.
func NewOllamaClientWithAPI(client *api.Client, model string, maxTokens int) *OllamaClient {
	if model == "" {
		model = defaultModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &OllamaClient{client: client, model: model, maxTokens: maxTokens}
}

func (c *OllamaClient) ModelID() string { return c.model }

// Complete implements domain.LLM
func (c *OllamaClient) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	stream := false
	chatRequest := &api.ChatRequest{
		Model:    c.model,
		Messages: toOllamaMessages(req.Messages),
		Stream:   &stream,
		Options: map[string]any{
			"num_predict": maxTokens,
		},
	}

	var content strings.Builder
	err := c.client.Chat(ctx, chatRequest, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "ollama chat error")
	}

	text := strings.TrimSpace(content.String())
	if text == "" {
		return "", errors.Wrap(domain.ErrNoContent, "ollama returned an empty message")
	}
	return text, nil
}
