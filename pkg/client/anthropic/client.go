package anthropic

import (
	"context"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"

	"github.com/fpt/klein-relay/pkg/domain"
)

// Anthropic requires an explicit output cap on every request.
const defaultMaxTokens = 1024

// AnthropicClient implements domain.LLM on the Messages API.
type AnthropicClient struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int
}

// NewAnthropicClient creates a client from ANTHROPIC_API_KEY.
func NewAnthropicClient(model string, maxTokens int) (*AnthropicClient, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY environment variable not set")
	}
	return NewAnthropicClientWithOptions(model, maxTokens, option.WithAPIKey(apiKey)), nil
}

// NewAnthropicClientWithOptions builds a client from explicit request options
// with SDK retries disabled.
func NewAnthropicClientWithOptions(model string, maxTokens int, opts ...option.RequestOption) *AnthropicClient {
	opts = append([]option.RequestOption{option.WithMaxRetries(0)}, opts...)
	client := anthropic.NewClient(opts...)

	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &AnthropicClient{
		client:    &client,
		model:     getAnthropicModel(model),
		maxTokens: maxTokens,
	}
}

func (c *AnthropicClient) ModelID() string { return string(c.model) }

// Complete implements domain.LLM
func (c *AnthropicClient) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	system, turns := splitSystem(req.Messages)

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: int64(maxTokens),
		Messages:  toAnthropicMessages(turns),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", errors.Wrap(err, "anthropic messages call failed")
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(variant.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.Wrap(domain.ErrNoContent, "anthropic returned no text blocks")
	}
	return text, nil
}
