package openai

import (
	"context"
	"os"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/pkg/errors"

	"github.com/fpt/klein-relay/pkg/domain"
)

// OpenAIClient implements domain.VisionLLM on the Chat Completions API.
type OpenAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIClient creates a client from OPENAI_API_KEY (and OPENAI_BASE_URL
// when set). maxTokens = 0 means the model default.
func NewOpenAIClient(model string, maxTokens int) (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return NewOpenAIClientWithOptions(model, maxTokens, opts...), nil
}

// NewOpenAIClientWithOptions builds a client from explicit request options.
// SDK retries are disabled: a failed call surfaces immediately and the caller
// falls back to a canned reply.
func NewOpenAIClientWithOptions(model string, maxTokens int, opts ...option.RequestOption) *OpenAIClient {
	opts = append([]option.RequestOption{option.WithMaxRetries(0)}, opts...)
	client := openai.NewClient(opts...)

	return &OpenAIClient{
		client:    &client,
		model:     getOpenAIModel(model),
		maxTokens: maxTokens,
	}
}

func (c *OpenAIClient) ModelID() string { return c.model }

// SupportsImageURLs reports whether image turns are sent as image_url parts.
func (c *OpenAIClient) SupportsImageURLs() bool {
	return getModelCapabilities(c.model).SupportsVision
}

var _ domain.VisionLLM = (*OpenAIClient)(nil)

// Complete implements domain.LLM
func (c *OpenAIClient) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: toChatMessages(req.Messages, c.SupportsImageURLs()),
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", errors.Wrap(err, "openai chat completion failed")
	}

	if len(resp.Choices) == 0 {
		return "", errors.Wrap(domain.ErrNoContent, "openai returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.Wrap(domain.ErrNoContent, "openai returned an empty message")
	}
	return text, nil
}
