package gemini

import (
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/genai"

	"github.com/fpt/klein-relay/pkg/domain"
	pkgLogger "github.com/fpt/klein-relay/pkg/logger"
)

var geminiLogger = pkgLogger.NewComponentLogger("gemini-client")

// GeminiClient implements domain.LLM on the Gemini API.
type GeminiClient struct {
	client    *genai.Client
	model     string
	maxTokens int
}

// NewGeminiClient creates a client from GEMINI_API_KEY.
func NewGeminiClient(ctx context.Context, model string, maxTokens int) (*GeminiClient, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Gemini client")
	}

	return &GeminiClient{
		client:    client,
		model:     getGeminiModel(model),
		maxTokens: maxTokens,
	}, nil
}

func (c *GeminiClient) ModelID() string { return c.model }

// Complete implements domain.LLM
func (c *GeminiClient) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	contents, system := toGeminiContents(req.Messages)

	config := &genai.GenerateContentConfig{}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	if maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}
	if system != nil {
		config.SystemInstruction = system
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", errors.Wrap(err, "Gemini API call failed")
	}

	if resp.UsageMetadata != nil {
		geminiLogger.DebugWithIntention(pkgLogger.IntentionCompletion, "Gemini API usage",
			"input_tokens", resp.UsageMetadata.PromptTokenCount,
			"output_tokens", resp.UsageMetadata.CandidatesTokenCount,
			"model", c.model)
	}

	if len(resp.Candidates) == 0 {
		return "", errors.Wrap(domain.ErrNoContent, "no candidates from Gemini")
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.Wrap(domain.ErrNoContent, "empty response from Gemini")
	}
	return text, nil
}
